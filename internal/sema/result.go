package sema

import (
	"fmt"

	"jopa/internal/ast"
	"jopa/internal/diag"
)

// FailureKind classifies why a call site did not resolve.
type FailureKind uint8

const (
	// FailureNotFound: no applicable callable; one diagnostic was reported.
	FailureNotFound FailureKind = iota + 1
	// FailureRejected: a callable was chosen but its use is illegal here.
	FailureRejected
	// FailureBadReceiver: the receiver is null, bad or primitive.
	FailureBadReceiver
	// FailureBadArgument: an argument already carries the bad type.
	FailureBadArgument
	// FailureCycle: a member table was requested while being built.
	FailureCycle
)

var failureNames = [...]string{
	FailureNotFound:    "not-found",
	FailureRejected:    "rejected",
	FailureBadReceiver: "bad-receiver",
	FailureBadArgument: "bad-argument",
	FailureCycle:       "cycle",
}

func (k FailureKind) String() string {
	if int(k) < len(failureNames) && failureNames[k] != "" {
		return failureNames[k]
	}
	return "unknown"
}

// Failure is the error value of a call site that ended with the bad type.
// Code is diag.UnknownCode when the failure was silent.
type Failure struct {
	Kind FailureKind
	Code diag.Code
	Site ast.SiteID
	Err  error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("call site %d: %s", f.Site, f.Kind)
	if f.Code != diag.UnknownCode {
		msg += " (" + f.Code.ID() + ")"
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// Silent reports whether no diagnostic accompanies the failure.
func (f *Failure) Silent() bool { return f.Code == diag.UnknownCode }

// fail records the bad sentinel on site and returns the failure value.
func (r *Resolver) fail(site *ast.CallSite, kind FailureKind, code diag.Code, err error) error {
	site.Result = ast.Resolution{State: ast.Failed, Type: r.builtins.Bad}
	return &Failure{Kind: kind, Code: code, Site: site.ID, Err: err}
}
