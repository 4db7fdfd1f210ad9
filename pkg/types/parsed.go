package types

// ParsedModule is the output of the source-structure parser: every definition
// the ingestion pipeline needs, already extracted. The pipeline never inspects
// source code itself.
type ParsedModule struct {
	ModuleName   string
	RepoPath     string
	SourceRoot   string
	Types        []TypeDef
	Methods      []MethodDef
	Endpoints    []EndpointDef
	Dependencies []TypeDependencyDef
}

// TypeDef describes one named type declaration.
type TypeDef struct {
	ModuleName string
	FQName     string // package-qualified name, e.g. "internal/auth.Service"
	Name       string
	Kind       string // struct, interface, alias
	Path       string // source path relative to the repo root
	StartLine  int
	EndLine    int
}

// MethodDef describes one method declaration attached to a type.
type MethodDef struct {
	ModuleName    string
	DeclaringType string // FQName of the receiver type
	Name          string
	Signature     string
	ReturnType    string
	Visibility    string // exported, unexported
	PointerRecv   bool
	Path          string
	StartLine     int
	EndLine       int
}

// EndpointDef describes one HTTP endpoint declared by a handler method.
type EndpointDef struct {
	ModuleName            string
	HTTPMethod            string
	Path                  string
	ImplementingType      string // FQName
	ImplementingSignature string
}

// TypeDependencyDef describes one type-to-type dependency edge found in
// source, discriminated by kind and the member it flows through.
type TypeDependencyDef struct {
	SourceFQName string
	TargetFQName string
	Kind         string // field, embeds, param, result
	Via          string // member name carrying the dependency
}

// Visibility values for MethodDef.
const (
	VisibilityExported   = "exported"
	VisibilityUnexported = "unexported"
)
