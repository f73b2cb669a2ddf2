package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"jopa/internal/driver"
	"jopa/internal/fixture"
	"jopa/internal/metrics"
	"jopa/internal/sema"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <fixture.yaml>",
	Short: "Dump the loaded universe of a fixture and its resolutions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

// classDump is one declared class with its members rendered by name.
type classDump struct {
	Name         string
	Kind         string
	Access       string
	Super        string
	Interfaces   []string
	TypeParams   []string
	Fields       []string
	Methods      []string
	Constructors []string
	Accessors    []string
	Captures     []string
}

type fixtureDump struct {
	Path        string
	Options     string
	Classes     []classDump
	Sites       []driver.SiteReport
	Diagnostics []string
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, cleanup, err := setupTracing(cmd, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := runOptions(&cfg, metrics.New())
	if err != nil {
		return err
	}
	opts.Cache = nil
	opts.Jobs = 1
	opts.KeepFixtures = true

	res, err := driver.ResolveFiles(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	f := res.Files[0]
	if f.Err != nil {
		return f.Err
	}
	writeDump(cmd.OutOrStdout(), buildDump(f, opts.Resolve))
	return nil
}

func writeDump(w io.Writer, d fixtureDump) {
	dumpConfig.Fdump(w, d)
}

func buildDump(f *driver.FileResult, base sema.Options) fixtureDump {
	out := fixtureDump{Path: f.Path, Sites: f.Sites}
	if f.Fixture != nil {
		o := f.Fixture.Options.Apply(base)
		out.Options = fmt.Sprintf("source=%s deprecation=%t pedantic=%t", o.Source, o.Deprecation, o.Pedantic)
		for _, id := range f.Fixture.Classes {
			out.Classes = append(out.Classes, dumpClass(f.Fixture, id))
		}
	}
	if f.Bag != nil {
		for _, d := range f.Bag.Items() {
			out.Diagnostics = append(out.Diagnostics, fmt.Sprintf("%s %s: %s", d.Severity.Label(), d.Code.ID(), d.Message))
		}
	}
	return out
}

func dumpClass(fx *fixture.Fixture, id types.TypeID) classDump {
	in := fx.Types
	out := classDump{Name: in.QualifiedName(id), Kind: "class"}
	info, ok := in.ClassInfo(id)
	if !ok {
		return out
	}
	switch {
	case info.IsInterface():
		out.Kind = "interface"
	case info.Is(types.ClassEnum):
		out.Kind = "enum"
	}
	out.Access = info.Access.String()
	if info.Super.IsValid() {
		out.Super = in.Name(info.Super)
	}
	for _, iface := range info.Interfaces {
		out.Interfaces = append(out.Interfaces, in.Name(iface))
	}
	for _, tp := range info.TypeParams {
		out.TypeParams = append(out.TypeParams, in.Name(tp))
	}

	members := fx.Table.Members(id)
	for _, fid := range members.Fields {
		fld := fx.Table.Field(fid)
		out.Fields = append(out.Fields, fmt.Sprintf("%s %s %s", fld.Access, in.Name(fld.Type), fld.Name))
	}
	out.Methods = headers(fx.Table, members.Methods)
	out.Constructors = headers(fx.Table, members.Ctors)
	out.Accessors = headers(fx.Table, members.Accessors)
	for _, c := range fx.Table.Captures(id) {
		out.Captures = append(out.Captures, c.Name+" "+in.Name(c.Type))
	}
	return out
}

func headers(t *symbols.Table, ids []symbols.MethodID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Header(id)
	}
	return out
}
