package shape

import (
	"errors"
	"fmt"
	"log"
	"strings"

	language "github.com/hanpama/gqladmin/internal/language"
	"github.com/hanpama/gqladmin/internal/overlay"
	"github.com/hanpama/gqladmin/internal/schema"
)

var (
	// ErrMissingQuery indicates the schema declares no root query type.
	ErrMissingQuery = errors.New("shape: schema has no query type")
	// ErrMissingMutation indicates the schema declares no root mutation type.
	ErrMissingMutation = errors.New("shape: schema has no mutation type")
)

// Options tune shape generation.
type Options struct {
	// Rules is the user override tree. It is read while building (resolver
	// names and allowed flags) and overlaid by Generate.
	Rules overlay.Value

	// Exclude lists type names that never enter the shape.
	Exclude []string

	// Logger receives notes about skipped Query fields. Nil discards them.
	Logger *log.Logger
}

type builder struct {
	query    *language.Definition
	mutation *language.Definition
	rules    overlay.Value
	exclude  map[string]bool
	families map[string]bool
	logger   *log.Logger
}

// Build derives the raw shape from doc. Only types that are returned by a
// Query field and have at least one "{Type}_..." mutation are included.
func Build(doc *schema.Document, opts Options) (*Shape, error) {
	query := doc.Query()
	if query == nil {
		return nil, fmt.Errorf("%w: %q not found", ErrMissingQuery, doc.QueryType)
	}
	mutation := doc.Mutation()
	if mutation == nil {
		return nil, fmt.Errorf("%w: %q not found", ErrMissingMutation, doc.MutationType)
	}

	b := &builder{
		query:    query,
		mutation: mutation,
		rules:    opts.Rules,
		exclude:  make(map[string]bool, len(opts.Exclude)),
		families: make(map[string]bool),
		logger:   opts.Logger,
	}
	for _, name := range opts.Exclude {
		b.exclude[name] = true
	}
	for _, f := range mutation.Fields {
		family, _, _ := strings.Cut(f.Name, "_")
		b.families[family] = true
	}

	out := newShape()
	for _, f := range query.Fields {
		typeName := schema.ElementType(f.Type)
		if typeName == "" {
			b.logf("skip %s.%s: return type %s has no element type", query.Name, f.Name, schema.TypeString(f.Type))
			continue
		}
		if !b.families[typeName] {
			continue
		}
		if b.exclude[typeName] {
			continue
		}
		def := doc.Definition(typeName)
		if def == nil {
			b.logf("skip %s.%s: type %s is not defined", query.Name, f.Name, typeName)
			continue
		}
		if !hasFields(def.Kind) {
			b.logf("skip %s.%s: %s is %s, not an object type", query.Name, f.Name, typeName, strings.ToLower(string(def.Kind)))
			continue
		}
		out.set(typeName, b.buildType(typeName, def))
	}
	return out, nil
}

// hasFields reports whether definitions of kind declare output fields.
func hasFields(kind language.DefinitionKind) bool {
	return kind == language.Object || kind == language.Interface
}

func (b *builder) buildType(typeName string, def *language.Definition) *TypeDescriptor {
	td := &TypeDescriptor{
		Label:     typeName,
		Resolvers: make(map[Method]*ResolverDescriptor, len(Methods)),
	}
	for _, m := range Methods {
		td.Resolvers[m] = b.buildResolver(typeName, m)
	}

	update := td.Resolvers[Update]
	for _, prop := range def.Fields {
		fieldType := schema.NamedType(prop.Type)
		if prop.Name == "" || fieldType == "" {
			continue
		}
		if prop.Name == "Query" || prop.Name == "Mutation" {
			continue
		}
		if len(td.ListHeader.ID) == 0 && (prop.Name == "id" || prop.Name == "_id") {
			td.ListHeader.ID = append(td.ListHeader.ID, prop.Name)
		}
		// The title column is the second declared field of the type,
		// whichever field is being visited.
		if len(td.ListHeader.Title) == 0 && len(def.Fields) > 1 {
			td.ListHeader.Title = append(td.ListHeader.Title, def.Fields[1].Name)
		}

		typeString := schema.TypeString(prop.Type)
		_, editable := update.Args.Mutation.Lookup(prop.Name)
		td.setField(&FieldDescriptor{
			Name:         prop.Name,
			Label:        prop.Name,
			FieldType:    typeString,
			InputType:    InputType(typeString),
			InputControl: InputControl(typeString),
			Disabled:     !editable,
			Exclude:      false,
		})
	}
	return td
}

func (b *builder) buildResolver(typeName string, m Method) *ResolverDescriptor {
	r := &ResolverDescriptor{
		Resolver: ResolverName(typeName, m, b.rules),
		Args: Args{
			Query:    ResolverArgs(typeName, m, b.query.Fields, b.rules),
			Mutation: ResolverArgs(typeName, m, b.mutation.Fields, b.rules),
		},
	}
	if m == Find {
		r.Allowed = true
	} else {
		r.Allowed = IsAllowed(typeName, m, b.mutation.Fields, b.rules)
	}
	return r
}

func (b *builder) logf(format string, args ...any) {
	if b.logger != nil {
		b.logger.Printf(format, args...)
	}
}

// Generate builds the shape for doc and overlays opts.Rules onto it. The
// result is pruned of disallowed resolvers and owned by the caller.
func Generate(doc *schema.Document, opts Options) (overlay.Value, error) {
	s, err := Build(doc, opts)
	if err != nil {
		return overlay.Value{}, err
	}
	return overlay.Merge(s.Tree(), opts.Rules), nil
}
