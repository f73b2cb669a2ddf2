// Package diag defines the diagnostic model shared by the fixture loader,
// the resolution engine and the driver.
//
// Diagnostic is the central record: a Severity, a Code with a stable ID
// ("RES3001"), a one-line Message, the primary source.Span and optional
// Notes and Fixes. Producers emit through a Reporter, usually via
// ReportError(...).WithNote(...).Emit(). BagReporter collects into a Bag
// which the driver sorts and hands to internal/diagfmt.
//
// The resolution engine guarantees at most one error per failed call site,
// so reporters here never reorder or merge; DedupReporter only guards the
// revisit of deferred local constructor sites.
package diag
