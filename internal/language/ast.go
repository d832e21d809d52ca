package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	SchemaDocument   = ast.SchemaDocument
	SchemaDefinition = ast.SchemaDefinition
	FieldList        = ast.FieldList
	Type             = ast.Type
	Definition       = ast.Definition
)

type DefinitionKind = ast.DefinitionKind

type Operation = ast.Operation

const (
	Query    Operation = ast.Query
	Mutation Operation = ast.Mutation

	Object    DefinitionKind = ast.Object
	Interface DefinitionKind = ast.Interface
)
