package types

// Node records. Each is an upsert payload keyed by its natural key; the
// remaining fields are properties set on create and refreshed on match.

// ModuleNode is keyed by Name.
type ModuleNode struct {
	Name string
	Path string
}

// TypeNode is keyed by (Module, FQName).
type TypeNode struct {
	Module    string
	FQName    string
	Name      string
	Kind      string
	Path      string
	StartLine int
	EndLine   int
}

// MethodNode is keyed by (Module, FQName, Signature). FQName is the
// declaring type's fully qualified name.
type MethodNode struct {
	Module      string
	FQName      string
	Name        string
	Signature   string
	ReturnType  string
	Visibility  string
	PointerRecv bool
	Path        string
	StartLine   int
	EndLine     int
}

// EndpointNode is keyed by (Module, HTTPMethod, Path).
type EndpointNode struct {
	Module     string
	HTTPMethod string
	Path       string
}

// Relationship records. Both endpoint keys are carried in full, including the
// module/FQName pairs that overlap the node keys; the duplication is kept for
// cross-module edge disambiguation.

// ModuleContainsType links Module(ModuleName) -> Type(TypeModule, TypeFQName).
type ModuleContainsType struct {
	ModuleName string
	TypeModule string
	TypeFQName string
}

// TypeDeclaresMethod links Type -> Method.
type TypeDeclaresMethod struct {
	TypeModule   string
	TypeFQName   string
	MethodModule string
	MethodFQName string
	Signature    string
}

// TypeDependency links Type -> Type, discriminated by Kind and Via.
type TypeDependency struct {
	SourceModule string
	SourceFQName string
	TargetModule string
	TargetFQName string
	Kind         string
	Via          string
}

// TypeExposesEndpoint links Type -> Endpoint.
type TypeExposesEndpoint struct {
	TypeModule     string
	TypeFQName     string
	EndpointModule string
	HTTPMethod     string
	Path           string
}

// EndpointImplementsMethod links Endpoint -> Method.
type EndpointImplementsMethod struct {
	EndpointModule string
	HTTPMethod     string
	Path           string
	MethodModule   string
	MethodFQName   string
	Signature      string
}

// ChunkOfMethod links Chunk -> Method.
type ChunkOfMethod struct {
	ChunkID      string
	MethodModule string
	MethodFQName string
	Signature    string
}

// UpsertResult aggregates the created/updated counts of one batch merge.
// The zero value is the result of an empty batch.
type UpsertResult struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// Add folds another batch result into this one.
func (r *UpsertResult) Add(other UpsertResult) {
	r.Created += other.Created
	r.Updated += other.Updated
}
