package schema

import (
	"fmt"

	language "github.com/hanpama/gqladmin/internal/language"
)

const (
	defaultQueryType    = "Query"
	defaultMutationType = "Mutation"
)

// Document is a read-only view over a parsed schema document. Type
// extensions are folded into their base definitions and the root operation
// type names follow the schema definition when one is present.
type Document struct {
	Name         string
	QueryType    string
	MutationType string

	doc   *language.SchemaDocument
	defs  map[string]*language.Definition
	order []string
}

// Parse parses sdl and wraps the result in a Document.
func Parse(name, sdl string) (*Document, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}
	return New(name, doc), nil
}

// New wraps an already parsed schema document.
func New(name string, doc *language.SchemaDocument) *Document {
	d := &Document{
		Name:         name,
		QueryType:    defaultQueryType,
		MutationType: defaultMutationType,
		doc:          doc,
		defs:         make(map[string]*language.Definition),
	}
	for _, def := range doc.Definitions {
		d.add(def)
	}
	for _, ext := range doc.Extensions {
		d.extend(ext)
	}
	for _, sd := range doc.Schema {
		d.setRoots(sd)
	}
	for _, sd := range doc.SchemaExtension {
		d.setRoots(sd)
	}
	return d
}

func (d *Document) setRoots(sd *language.SchemaDefinition) {
	for _, op := range sd.OperationTypes {
		switch op.Operation {
		case language.Query:
			d.QueryType = op.Type
		case language.Mutation:
			d.MutationType = op.Type
		}
	}
}

func (d *Document) add(def *language.Definition) {
	if _, ok := d.defs[def.Name]; ok {
		// first declaration wins, later duplicates are treated as extensions
		d.extend(def)
		return
	}
	cp := *def
	cp.Fields = append(language.FieldList(nil), def.Fields...)
	d.defs[def.Name] = &cp
	d.order = append(d.order, def.Name)
}

func (d *Document) extend(ext *language.Definition) {
	base, ok := d.defs[ext.Name]
	if !ok {
		d.add(ext)
		return
	}
	base.Fields = append(base.Fields, ext.Fields...)
}

// Definition returns the named type definition or nil.
func (d *Document) Definition(name string) *language.Definition { return d.defs[name] }

// Query returns the root query definition (nil if absent).
func (d *Document) Query() *language.Definition { return d.defs[d.QueryType] }

// Mutation returns the root mutation definition (nil if absent).
func (d *Document) Mutation() *language.Definition { return d.defs[d.MutationType] }

// Definitions returns all definitions in declaration order.
func (d *Document) Definitions() []*language.Definition {
	out := make([]*language.Definition, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.defs[name])
	}
	return out
}

// AST returns the document as parsed, extensions unmerged.
func (d *Document) AST() *language.SchemaDocument { return d.doc }
