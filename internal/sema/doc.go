// Package sema binds call sites to callables.
//
// A Resolver handles method invocations, class instance creations and
// explicit constructor invocations. Overloads are tried in up to three
// phases (strict, loose, variable arity) and the first phase with an
// applicable candidate decides; the most specific candidate wins and a
// tie is reported as ambiguous.
//
// Unqualified names are searched outward through the enclosing types. The
// first type that sees the name decides the call even when nothing there
// applies, and single and on-demand static imports are consulted only when
// no enclosing type has the name. Calls that cross a private or protected
// boundary between nested classes are rewritten to generated accessors.
//
// A failed site gets exactly one diagnostic and the bad type, which every
// later check accepts silently. Resolve returns a *Failure for it; Run
// counts failures and stops only on structural errors or cancellation.
//
//	res := sema.NewResolver(table, unit, reporter, sema.DefaultOptions())
//	stats, err := res.Run(ctx)
package sema
