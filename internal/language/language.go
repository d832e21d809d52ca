package language

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseSchema parses SDL without validating it against the GraphQL type
// system rules. Incomplete schemas (undeclared types, missing roots) parse.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FormatSchema prints doc back to SDL with two-space indentation.
func FormatSchema(doc *SchemaDocument) string {
	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchemaDocument(doc)
	return buf.String()
}
