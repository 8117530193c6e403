package mdwriter

// This file defines the in-memory module graph the builder consumes (§3).
// Every *Def / *Ref type here is a logical entity: identity is the Go
// pointer itself (reference identity, §4.5), never structural equality.
// The graph is produced and owned externally; the builder only reads it.

// Module is the root of the graph: exactly one per build.
type Module struct {
	Name     string
	Mvid     [16]byte
	EncID    [16]byte
	EncBaseID [16]byte

	// ModuleType is the synthetic <Module> TypeDef, always RID 1 in the
	// output TypeDef table (invariant 2, §3).
	ModuleType *TypeDef

	// Types are the remaining top-level (non-nested) type definitions, in
	// declaration order. Nested types are reached through TypeDef.Nested.
	Types []*TypeDef

	Assembly *Assembly

	TypeRefs       []*TypeRef
	ModuleRefs     []*ModuleRef
	AssemblyRefs   []*AssemblyRef
	MemberRefs     []*MemberRef
	TypeSpecs      []*TypeSpec
	MethodSpecs    []*MethodSpec
	StandAloneSigs []*StandAloneSig
	ExportedTypes  []*ExportedType
	Files          []*FileDef
	Resources      []Resource

	CustomAttributes []*CustomAttributeDef
}

// Assembly corresponds to the single Assembly row a module may host.
type Assembly struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      []byte
	Name           string
	Culture        string

	SecurityDeclarations []*SecurityDecl
	CustomAttributes     []*CustomAttributeDef
}

// TypeAttr is the TypeDef/TypeRef flags bitmask, ECMA-335 §II.23.1.15.
type TypeAttr uint32

// TypeDef is a class or interface definition.
type TypeDef struct {
	Name      string
	Namespace string
	Flags     TypeAttr
	Extends   TypeDefOrRefEntity // nil => no base type (e.g. System.Object, interfaces)

	Fields     []*FieldDef // may contain nil entries (§9 open question 4)
	Methods    []*MethodDef
	Events     []*EventDef
	Properties []*PropertyDef
	Nested     []*TypeDef // types nested directly inside this one

	Interfaces []*InterfaceImplDef
	Layout     *ClassLayoutDef // nil => no ClassLayout row

	GenericParams []*GenericParamDef

	SecurityDeclarations []*SecurityDecl
	CustomAttributes     []*CustomAttributeDef
}

// ClassLayoutDef carries a TypeDef's packing size / class size, if present.
type ClassLayoutDef struct {
	PackingSize uint16
	ClassSize   uint32
}

// FieldAttr is the Field flags bitmask, ECMA-335 §II.23.1.5.
type FieldAttr uint16

// FieldDef is a field definition owned by a TypeDef.
type FieldDef struct {
	Name      string
	Flags     FieldAttr
	Signature *TypeSig

	Layout       *uint32 // non-nil => FieldLayout.Offset
	Marshal      []byte  // non-nil => FieldMarshal.NativeType blob
	RVAData      []byte  // non-nil => FieldRVA (data emitted by an external store)
	ImplMap      *ImplMapDef
	Constant     *ConstantDef
	CustomAttributes []*CustomAttributeDef
}

// ImplMapDef is a P/Invoke mapping, owned by a field or method.
type ImplMapDef struct {
	Flags        uint16
	ImportName   string
	ImportScope  *ModuleRef
}

// ConstantDef is a literal default value attached to a field, param, or
// property (§4.6.3).
type ConstantDef struct {
	Type  ElementType
	Value any // bool, rune, int8/16/32/64, uint8/16/32/64, float32/64, string, or nil
}

// MethodAttr / MethodImplAttr are the MethodDef flags, ECMA-335 §II.23.1.10/.9.
type MethodAttr uint16
type MethodImplAttr uint16

// MethodDef is a method definition owned by a TypeDef.
type MethodDef struct {
	Name      string
	Flags     MethodAttr
	ImplFlags MethodImplAttr
	Signature *MethodSig

	// RVA is filled in later by the method-body subsystem (§4.6 step 4c);
	// the builder copies this value into the MethodDef row as-is (0 when
	// unset) and leaves the column to be patched by the external
	// collaborator once bodies are laid out.
	RVA uint32

	Params []*ParamDef // may contain nil entries

	GenericParams []*GenericParamDef
	Overrides     []*MethodOverride // -> MethodImpl rows
	ImplMap       *ImplMapDef

	SecurityDeclarations []*SecurityDecl
	CustomAttributes     []*CustomAttributeDef
}

// ParamAttr is the Param flags bitmask, ECMA-335 §II.23.1.13.
type ParamAttr uint16

// ParamDef is a parameter definition owned by a MethodDef. Sequence 0 is
// the implicit return value; it's only materialized as a Param row when it
// carries marshaling, a constant, or custom attributes (§12.2).
type ParamDef struct {
	Name     string
	Flags    ParamAttr
	Sequence uint16

	Marshal          []byte
	Constant         *ConstantDef
	CustomAttributes []*CustomAttributeDef
}

// MethodOverride describes one MethodImpl row: Body overrides Declaration.
// A nil Body means the MethodDef whose Overrides list holds this entry.
type MethodOverride struct {
	Body        *MethodDef
	Declaration MethodDefOrRefEntity
}

// GenericParamDef is a type or method generic parameter.
type GenericParamDef struct {
	Number      uint16
	Flags       uint16
	Name        string
	Constraints []*GenericParamConstraintDef

	CustomAttributes []*CustomAttributeDef
}

// GenericParamConstraintDef is one GenericParamConstraint row: a single
// bound on an owning GenericParamDef.
type GenericParamConstraintDef struct {
	Constraint TypeDefOrRefEntity

	CustomAttributes []*CustomAttributeDef
}

// InterfaceImplDef is one InterfaceImpl row: a single interface implemented
// by an owning TypeDef.
type InterfaceImplDef struct {
	Interface TypeDefOrRefEntity

	CustomAttributes []*CustomAttributeDef
}

// EventAttr is the Event flags bitmask, ECMA-335 §II.23.1.4.
type EventAttr uint16

// EventDef is an event definition owned by a TypeDef.
type EventDef struct {
	Name      string
	Flags     EventAttr
	EventType TypeDefOrRefEntity

	AddOn, RemoveOn, Fire *MethodDef
	Other                 []*MethodDef

	CustomAttributes []*CustomAttributeDef
}

// PropertyAttr is the Property flags bitmask, ECMA-335 §II.23.1.14.
type PropertyAttr uint16

// PropertyDef is a property definition owned by a TypeDef.
type PropertyDef struct {
	Name      string
	Flags     PropertyAttr
	Signature *PropertySig

	Getter, Setter *MethodDef
	Other          []*MethodDef

	Constant         *ConstantDef
	CustomAttributes []*CustomAttributeDef
}

// SecurityDecl is a DeclSecurity row owned by a TypeDef, MethodDef, or
// Assembly (§12.3).
type SecurityDecl struct {
	Action      uint16
	Permissions []byte // the PermissionSet blob

	CustomAttributes []*CustomAttributeDef
}

// CustomAttributeDef is one CustomAttribute row, owned by any entity kind
// admissible under HasCustomAttribute (§12.1).
type CustomAttributeDef struct {
	Ctor  MethodDefOrRefEntity
	Value []byte
}

// --- Reference entities (§3, deduplicated by identity, §3 invariant 7) ---

// TypeRef references a type defined in another module/assembly.
type TypeRef struct {
	ResolutionScope ResolutionScopeEntity // nil => resolved by exhaustive search (rare)
	TypeName        string
	TypeNamespace   string

	CustomAttributes []*CustomAttributeDef
}

// ModuleRef references another module of the same assembly.
type ModuleRef struct {
	Name string

	CustomAttributes []*CustomAttributeDef
}

// AssemblyRef references an external assembly.
type AssemblyRef struct {
	MajorVersion, MinorVersion, BuildNumber, RevisionNumber uint16
	Flags                                                   uint32
	PublicKeyOrToken                                        []byte
	Name, Culture                                           string
	HashValue                                               []byte

	CustomAttributes []*CustomAttributeDef
}

// MemberRef references a field or method in another type.
type MemberRef struct {
	Class     MemberRefParentEntity
	Name      string
	Signature []byte // pre-encoded FieldSig or MethodRefSig blob

	CustomAttributes []*CustomAttributeDef
}

// TypeSpec is a type signature that doesn't fit in TypeDefOrRef directly
// (generic instantiations, arrays, pointers, …).
type TypeSpec struct {
	Signature *TypeSig

	CustomAttributes []*CustomAttributeDef
}

// MethodSpec is a generic method instantiation.
type MethodSpec struct {
	Method      MethodDefOrRefEntity
	Instantiation []*TypeSig

	CustomAttributes []*CustomAttributeDef
}

// StandAloneSig is a signature used by local variables or calli.
type StandAloneSig struct {
	Signature []byte // pre-encoded LocalVarSig or MethodRefSig blob

	CustomAttributes []*CustomAttributeDef
}

// ExportedType announces a public type defined in another module of this
// assembly (only emitted by the assembly's prime module).
type ExportedType struct {
	Flags          TypeAttr
	TypeDefID      uint32 // original TypeDef token in the defining module, informational
	TypeName       string
	TypeNamespace  string
	Implementation ImplementationEntity

	CustomAttributes []*CustomAttributeDef
}

// FileDef is a file belonging to this module's assembly.
type FileDef struct {
	Flags     uint32
	Name      string
	HashValue []byte

	CustomAttributes []*CustomAttributeDef
}

// --- Resources (§4.6.1) ---

// Resource is the sum type of the three ManifestResource variants.
type Resource interface{ isResource() }

// EmbeddedResource is appended to the net-resources byte store; its
// ManifestResource.Offset is the offset returned by that store at
// insertion time.
type EmbeddedResource struct {
	Name  string
	Flags uint32
	Data  []byte

	CustomAttributes []*CustomAttributeDef
}

// AssemblyLinkedResource points at a resource hosted by another assembly.
type AssemblyLinkedResource struct {
	Name      string
	Flags     uint32
	Assembly  *AssemblyRef

	CustomAttributes []*CustomAttributeDef
}

// FileLinkedResource points at a resource hosted by a file of this module's
// assembly.
type FileLinkedResource struct {
	Name   string
	Flags  uint32
	File   *FileDef
	Offset uint32

	CustomAttributes []*CustomAttributeDef
}

func (EmbeddedResource) isResource()      {}
func (AssemblyLinkedResource) isResource() {}
func (FileLinkedResource) isResource()     {}

// --- Coded-token entity interfaces ---
//
// These mark which Go types are legal members of each coded-token kind at
// the graph level; the token service (the resolve* methods in builder.go) maps a concrete
// value to its (table, rid) pair via a type switch, the Go equivalent of
// the tagged-union dispatch described in spec.md §9.

// TypeDefOrRefEntity is *TypeDef, *TypeRef, or *TypeSpec.
type TypeDefOrRefEntity interface{ isTypeDefOrRef() }

func (*TypeDef) isTypeDefOrRef()  {}
func (*TypeRef) isTypeDefOrRef()  {}
func (*TypeSpec) isTypeDefOrRef() {}

// ResolutionScopeEntity is *Module, *ModuleRef, *AssemblyRef, or *TypeRef.
type ResolutionScopeEntity interface{ isResolutionScope() }

func (*Module) isResolutionScope()      {}
func (*ModuleRef) isResolutionScope()   {}
func (*AssemblyRef) isResolutionScope() {}
func (*TypeRef) isResolutionScope()     {}

// MemberRefParentEntity is *TypeDef, *TypeRef, *ModuleRef, *MethodDef, or
// *TypeSpec.
type MemberRefParentEntity interface{ isMemberRefParent() }

func (*TypeDef) isMemberRefParent()   {}
func (*TypeRef) isMemberRefParent()   {}
func (*ModuleRef) isMemberRefParent() {}
func (*MethodDef) isMemberRefParent() {}
func (*TypeSpec) isMemberRefParent()  {}

// MethodDefOrRefEntity is *MethodDef or *MemberRef.
type MethodDefOrRefEntity interface{ isMethodDefOrRef() }

func (*MethodDef) isMethodDefOrRef() {}
func (*MemberRef) isMethodDefOrRef() {}

// ImplementationEntity is *FileDef, *AssemblyRef, or *ExportedType.
type ImplementationEntity interface{ isImplementation() }

func (*FileDef) isImplementation()      {}
func (*AssemblyRef) isImplementation()  {}
func (*ExportedType) isImplementation() {}

// HasConstantEntity is *FieldDef, *ParamDef, or *PropertyDef.
type HasConstantEntity interface{ isHasConstant() }

func (*FieldDef) isHasConstant()    {}
func (*ParamDef) isHasConstant()    {}
func (*PropertyDef) isHasConstant() {}
