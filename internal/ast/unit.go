package ast

import (
	"jopa/internal/source"
	"jopa/internal/types"
)

// StepKind separates call sites from local class completion events.
type StepKind uint8

const (
	StepCall StepKind = iota
	StepComplete
)

// Step is one entry of a unit's program, processed strictly in order.
type Step struct {
	Kind StepKind
	Site SiteID
	Env  *Env
	// Class is the local class whose body finished (StepComplete).
	Class types.TypeID
	Span  source.Span
}

// StaticImport is a single-static import T.name, or an on-demand static
// import T.* when Name is empty.
type StaticImport struct {
	Type types.TypeID
	Name string
}

// Unit is one fixture file: its call sites, program order and imports.
type Unit struct {
	File     source.FileID
	Path     string
	Sites    *Arena[CallSite]
	Steps    []Step
	Single   []StaticImport
	OnDemand []StaticImport
	labels   map[string]SiteID
}

// NewUnit creates an empty unit for file.
func NewUnit(file source.FileID, path string) *Unit {
	return &Unit{
		File:   file,
		Path:   path,
		Sites:  NewArena[CallSite](32),
		labels: make(map[string]SiteID),
	}
}

// AddSite stores a call site and records a program step for it.
func (u *Unit) AddSite(site CallSite, env *Env) SiteID {
	id := SiteID(u.Sites.Allocate(site))
	s := u.Sites.Get(uint32(id))
	s.ID = id
	if s.Label != "" {
		u.labels[s.Label] = id
	}
	u.Steps = append(u.Steps, Step{Kind: StepCall, Site: id, Env: env, Span: s.Span})
	return id
}

// AddComplete records that the body of a local class is finished.
func (u *Unit) AddComplete(class types.TypeID, span source.Span) {
	u.Steps = append(u.Steps, Step{Kind: StepComplete, Class: class, Span: span})
}

// Site returns the call site for id.
func (u *Unit) Site(id SiteID) *CallSite {
	return u.Sites.Get(uint32(id))
}

// SiteByLabel finds a call site by its fixture label.
func (u *Unit) SiteByLabel(label string) (SiteID, bool) {
	id, ok := u.labels[label]
	return id, ok
}
