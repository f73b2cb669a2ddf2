package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// position is where a YAML node starts; lines and columns are 1-based.
type position struct {
	Line   int
	Column int
}

func (p *position) from(n *yaml.Node) {
	p.Line, p.Column = n.Line, n.Column
}

type document struct {
	Options *optionsDoc `yaml:"options"`
	Classes []classDoc  `yaml:"classes"`
	Imports importsDoc  `yaml:"imports"`
	Program []stepDoc   `yaml:"program"`
}

type optionsDoc struct {
	Source      *string  `yaml:"source"`
	Deprecation *bool    `yaml:"deprecation"`
	Pedantic    *bool    `yaml:"pedantic"`
	Pos         position `yaml:"-"`
}

func (d *optionsDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain optionsDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

type classDoc struct {
	Name         string      `yaml:"name"`
	Kind         string      `yaml:"kind"`
	Access       string      `yaml:"access"`
	Flags        []string    `yaml:"flags"`
	TypeParams   []string    `yaml:"type_params"`
	Super        string      `yaml:"super"`
	Interfaces   []string    `yaml:"interfaces"`
	Captures     []string    `yaml:"captures"`
	Fields       []fieldDoc  `yaml:"fields"`
	Methods      []methodDoc `yaml:"methods"`
	Constructors []methodDoc `yaml:"constructors"`
	Classes      []classDoc  `yaml:"classes"`
	Pos          position    `yaml:"-"`
}

func (d *classDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain classDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

type fieldDoc struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Access string   `yaml:"access"`
	Static bool     `yaml:"static"`
	Final  bool     `yaml:"final"`
	Pos    position `yaml:"-"`
}

func (d *fieldDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain fieldDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

type methodDoc struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params"`
	Returns    string   `yaml:"returns"`
	TypeParams []string `yaml:"type_params"`
	Access     string   `yaml:"access"`
	Flags      []string `yaml:"flags"`
	Throws     []string `yaml:"throws"`
	Pos        position `yaml:"-"`
}

func (d *methodDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain methodDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

type importsDoc struct {
	SingleStatic   []string `yaml:"single_static"`
	OnDemandStatic []string `yaml:"on_demand_static"`
	Pos            position `yaml:"-"`
}

func (d *importsDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain importsDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

// stepDoc is one program entry: a call site or a complete marker.
type stepDoc struct {
	ID                string    `yaml:"id"`
	In                string    `yaml:"in"`
	Static            bool      `yaml:"static"`
	ExplicitCtor      bool      `yaml:"explicit_ctor"`
	DeprecatedContext bool      `yaml:"deprecated_context"`
	Handled           []string  `yaml:"handled"`
	Locals            localsDoc `yaml:"locals"`
	Call              string    `yaml:"call"`
	New               string    `yaml:"new"`
	This              bool      `yaml:"this"`
	Super             bool      `yaml:"super"`
	Outer             *exprDoc  `yaml:"outer"`
	Receiver          *exprDoc  `yaml:"receiver"`
	TypeArgs          []string  `yaml:"type_args"`
	Args              []exprDoc `yaml:"args"`
	Body              *bodyDoc  `yaml:"body"`
	Complete          string    `yaml:"complete"`
	Pos               position  `yaml:"-"`
}

func (d *stepDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain stepDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

// exprDoc describes an argument, receiver or enclosing instance.
type exprDoc struct {
	Type         string   `yaml:"type"`
	Const        bool     `yaml:"const"`
	Null         bool     `yaml:"null"`
	ClassLiteral string   `yaml:"class_literal"`
	New          string   `yaml:"new"`
	Call         string   `yaml:"call"`
	TypeName     string   `yaml:"type_name"`
	Local        string   `yaml:"local"`
	This         bool     `yaml:"this"`
	Super        bool     `yaml:"super"`
	Pos          position `yaml:"-"`
}

func (d *exprDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain exprDoc
	if n.Kind == yaml.MappingNode {
		for i := 0; i < len(n.Content); i += 2 {
			// A bare null key resolves to !!null and would never reach the null field.
			if key := n.Content[i]; key.Tag == "!!null" && key.Value == "null" {
				key.Tag = "!!str"
			}
		}
	}
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

type bodyDoc struct {
	Captures []string `yaml:"captures"`
	Pos      position `yaml:"-"`
}

func (d *bodyDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain bodyDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Pos.from(n)
	return nil
}

// localsDoc accepts either a list of declarations for the innermost frame
// or a mapping from enclosing type to its declarations.
type localsDoc struct {
	Innermost []string
	ByFrame   []frameLocals
}

type frameLocals struct {
	Frame string
	Decls []string
	Pos   position
}

func (d *localsDoc) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Decode(&d.Innermost)
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			fl := frameLocals{Frame: key.Value}
			fl.Pos.from(key)
			if err := val.Decode(&fl.Decls); err != nil {
				return err
			}
			d.ByFrame = append(d.ByFrame, fl)
		}
		return nil
	}
	return fmt.Errorf("line %d: locals must be a list or a mapping", n.Line)
}

func (d *localsDoc) empty() bool {
	return len(d.Innermost) == 0 && len(d.ByFrame) == 0
}

// decodeDocument parses raw fixture bytes; an empty document is valid.
func decodeDocument(content []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
