package mdwriter

// Metadata table identifiers, ECMA-335 §II.22. These are the same values the
// runtime and reference tooling use to tag a token's high byte.
const (
	Module                 = 0x00
	TypeRef                = 0x01
	TypeDef                = 0x02
	FieldPtr               = 0x03
	Field                  = 0x04
	MethodPtr              = 0x05
	MethodDef              = 0x06
	ParamPtr               = 0x07
	Param                  = 0x08
	InterfaceImpl          = 0x09
	MemberRef              = 0x0A
	Constant               = 0x0B
	CustomAttribute        = 0x0C
	FieldMarshal           = 0x0D
	DeclSecurity           = 0x0E
	ClassLayout            = 0x0F
	FieldLayout            = 0x10
	StandAloneSig          = 0x11
	EventMap               = 0x12
	EventPtr               = 0x13
	Event                  = 0x14
	PropertyMap            = 0x15
	PropertyPtr            = 0x16
	Property               = 0x17
	MethodSemantics        = 0x18
	MethodImpl             = 0x19
	ModuleRef              = 0x1A
	TypeSpec               = 0x1B
	ImplMap                = 0x1C
	FieldRVA               = 0x1D
	ENCLog                 = 0x1E
	ENCMap                 = 0x1F
	Assembly               = 0x20
	AssemblyProcessor      = 0x21
	AssemblyOS             = 0x22
	AssemblyRef            = 0x23
	AssemblyRefProcessor   = 0x24
	AssemblyRefOS          = 0x25
	FileMD                 = 0x26
	ExportedType           = 0x27
	ManifestResource       = 0x28
	NestedClass            = 0x29
	GenericParam           = 0x2A
	MethodSpec             = 0x2B
	GenericParamConstraint = 0x2C
)

// tableName maps a table id to its ECMA name, used in diagnostics.
var tableName = map[int]string{
	Module:                 "Module",
	TypeRef:                "TypeRef",
	TypeDef:                "TypeDef",
	Field:                  "Field",
	MethodDef:              "MethodDef",
	Param:                  "Param",
	InterfaceImpl:          "InterfaceImpl",
	MemberRef:              "MemberRef",
	Constant:               "Constant",
	CustomAttribute:        "CustomAttribute",
	FieldMarshal:           "FieldMarshal",
	DeclSecurity:           "DeclSecurity",
	ClassLayout:            "ClassLayout",
	FieldLayout:            "FieldLayout",
	StandAloneSig:          "StandAloneSig",
	EventMap:               "EventMap",
	Event:                  "Event",
	PropertyMap:            "PropertyMap",
	Property:               "Property",
	MethodSemantics:        "MethodSemantics",
	MethodImpl:             "MethodImpl",
	ModuleRef:              "ModuleRef",
	TypeSpec:               "TypeSpec",
	ImplMap:                "ImplMap",
	FieldRVA:               "FieldRVA",
	Assembly:               "Assembly",
	AssemblyRef:            "AssemblyRef",
	FileMD:                 "File",
	ExportedType:           "ExportedType",
	ManifestResource:       "ManifestResource",
	NestedClass:            "NestedClass",
	GenericParam:           "GenericParam",
	MethodSpec:             "MethodSpec",
	GenericParamConstraint: "GenericParamConstraint",
}

// MetadataTableIndexToString returns the ECMA name of a table id, or "" if
// the id is not one of the tables this writer emits.
func MetadataTableIndexToString(id int) string {
	return tableName[id]
}

// Heap stream bit positions within a MetadataTableStreamHeader.Heaps flag
// byte (ECMA-335 §II.24.2.6: bit 0 -> #Strings, bit 1 -> #GUID, bit 2 -> #Blob).
const (
	StringStream = 0
	GUIDStream   = 1
	BlobStream   = 2
)

// sortedTables is the set of tables that ECMA-335 §II.22 requires to be emitted
// in ascending key order. The builder appends rows in discovery order and
// defers the actual sort (and RID rewriting) to the tables store's final
// pass (§4.2, §9 "Sorted tables").
var sortedTables = map[int]bool{
	InterfaceImpl:          true,
	ClassLayout:            true,
	FieldLayout:            true,
	MethodSemantics:        true,
	MethodImpl:             true,
	GenericParam:           true,
	GenericParamConstraint: true,
	Constant:               true,
	FieldMarshal:           true,
	FieldRVA:               true,
	ImplMap:                true,
	DeclSecurity:           true,
	NestedClass:            true,
	CustomAttribute:        true,
}

// MethodSemantics association flags, ECMA-335 §II.23.1.12.
const (
	SemanticsSetter  uint16 = 0x0001
	SemanticsGetter  uint16 = 0x0002
	SemanticsOther   uint16 = 0x0004
	SemanticsAddOn   uint16 = 0x0008
	SemanticsRemoveOn uint16 = 0x0010
	SemanticsFire    uint16 = 0x0020
)

// ElementType tags used by the constant and signature encoders, ECMA-335
// §II.23.1.16.
type ElementType byte

const (
	ElementTypeEnd      ElementType = 0x00
	ElementTypeVoid     ElementType = 0x01
	ElementTypeBoolean  ElementType = 0x02
	ElementTypeChar     ElementType = 0x03
	ElementTypeI1       ElementType = 0x04
	ElementTypeU1       ElementType = 0x05
	ElementTypeI2       ElementType = 0x06
	ElementTypeU2       ElementType = 0x07
	ElementTypeI4       ElementType = 0x08
	ElementTypeU4       ElementType = 0x09
	ElementTypeI8       ElementType = 0x0A
	ElementTypeU8       ElementType = 0x0B
	ElementTypeR4       ElementType = 0x0C
	ElementTypeR8       ElementType = 0x0D
	ElementTypeString   ElementType = 0x0E
	ElementTypePtr      ElementType = 0x0F
	ElementTypeByRef    ElementType = 0x10
	ElementTypeValueType ElementType = 0x11
	ElementTypeClass    ElementType = 0x12
	ElementTypeVar      ElementType = 0x13
	ElementTypeArray    ElementType = 0x14
	ElementTypeGenericInst ElementType = 0x15
	ElementTypeTypedByRef ElementType = 0x16
	ElementTypeI        ElementType = 0x18
	ElementTypeU        ElementType = 0x19
	ElementTypeFnPtr    ElementType = 0x1B
	ElementTypeObject   ElementType = 0x1C
	ElementTypeSZArray  ElementType = 0x1D
	ElementTypeMVar     ElementType = 0x1E
	ElementTypeCModReqD ElementType = 0x1F
	ElementTypeCModOpt  ElementType = 0x20
	ElementTypePinned   ElementType = 0x45
)

// Calling-convention / signature leading bytes, ECMA-335 §II.23.2.1.
const (
	SigDefault       byte = 0x00
	SigVarArg        byte = 0x05
	SigGeneric       byte = 0x10
	SigHasThis       byte = 0x20
	SigExplicitThis  byte = 0x40
	SigField         byte = 0x06
	SigLocalVarSig   byte = 0x07
	SigProperty      byte = 0x08
	SigGenericInst   byte = 0x0A
)
