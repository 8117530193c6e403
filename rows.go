package mdwriter

// Output row structs, one per metadata table the writer emits. Column
// names, types and ECMA-335 §II.22 semantics are carried over verbatim
// from the teacher's parser-side TableRow structs (dotnet_metadata_tables.go);
// here they are the *write* target instead of the *parse* target, so there
// are no parse methods, only the bytes a row layout needs once sorting is
// done and column widths are known (tablestore.go).

// ModuleTableRow is the Module table's single row, §II.22.30.
type ModuleTableRow struct {
	Generation uint16 // reserved, shall be zero
	Name       uint32 // #Strings offset
	Mvid       uint32 // #Guid index
	EncID      uint32 // #Guid index, reserved
	EncBaseID  uint32 // #Guid index, reserved
}

// TypeRefTableRow, §II.22.38.
type TypeRefTableRow struct {
	ResolutionScope uint32 // coded ResolutionScope
	TypeName        uint32 // #Strings offset
	TypeNamespace   uint32 // #Strings offset
}

// TypeDefTableRow, §II.22.37.
type TypeDefTableRow struct {
	Flags         uint32
	TypeName      uint32 // #Strings offset
	TypeNamespace uint32 // #Strings offset
	Extends       uint32 // coded TypeDefOrRef
	FieldList     uint32 // RID into Field
	MethodList    uint32 // RID into MethodDef
}

// FieldTableRow, §II.22.15.
type FieldTableRow struct {
	Flags     uint16
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
}

// MethodDefTableRow, §II.22.26.
type MethodDefTableRow struct {
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
	ParamList uint32 // RID into Param
}

// ParamTableRow, §II.22.33.
type ParamTableRow struct {
	Flags    uint16
	Sequence uint16
	Name     uint32 // #Strings offset
}

// InterfaceImplTableRow, §II.22.23. Sorted by (Class, Interface).
type InterfaceImplTableRow struct {
	Class     uint32 // RID into TypeDef
	Interface uint32 // coded TypeDefOrRef
}

// MemberRefTableRow, §II.22.25.
type MemberRefTableRow struct {
	Class     uint32 // coded MemberRefParent
	Name      uint32 // #Strings offset
	Signature uint32 // #Blob offset
}

// ConstantTableRow, §II.22.9. Sorted by Parent.
type ConstantTableRow struct {
	Type    uint8
	Padding uint8
	Parent  uint32 // coded HasConstant
	Value   uint32 // #Blob offset
}

// CustomAttributeTableRow, §II.22.10. Sorted by Parent.
type CustomAttributeTableRow struct {
	Parent uint32 // coded HasCustomAttribute
	Type   uint32 // coded CustomAttributeType
	Value  uint32 // #Blob offset
}

// FieldMarshalTableRow, §II.22.17. Sorted by Parent.
type FieldMarshalTableRow struct {
	Parent     uint32 // coded HasFieldMarshal
	NativeType uint32 // #Blob offset
}

// DeclSecurityTableRow, §II.22.11. Sorted by Parent.
type DeclSecurityTableRow struct {
	Action        uint16
	Parent        uint32 // coded HasDeclSecurity
	PermissionSet uint32 // #Blob offset
}

// ClassLayoutTableRow, §II.22.8. Sorted by Parent.
type ClassLayoutTableRow struct {
	PackingSize uint16
	ClassSize   uint32
	Parent      uint32 // RID into TypeDef
}

// FieldLayoutTableRow, §II.22.16. Sorted by Field.
type FieldLayoutTableRow struct {
	Offset uint32
	Field  uint32 // RID into Field
}

// StandAloneSigTableRow, §II.22.36.
type StandAloneSigTableRow struct {
	Signature uint32 // #Blob offset
}

// EventMapTableRow, §II.22.12.
type EventMapTableRow struct {
	Parent    uint32 // RID into TypeDef
	EventList uint32 // RID into Event
}

// EventTableRow, §II.22.13.
type EventTableRow struct {
	EventFlags uint16
	Name       uint32 // #Strings offset
	EventType  uint32 // coded TypeDefOrRef
}

// PropertyMapTableRow, §II.22.35.
type PropertyMapTableRow struct {
	Parent       uint32 // RID into TypeDef
	PropertyList uint32 // RID into Property
}

// PropertyTableRow, §II.22.34.
type PropertyTableRow struct {
	Flags uint16
	Name  uint32 // #Strings offset
	Type  uint32 // #Blob offset (PropertySig)
}

// MethodSemanticsTableRow, §II.22.28. Sorted by Association.
type MethodSemanticsTableRow struct {
	Semantics   uint16
	Method      uint32 // RID into MethodDef
	Association uint32 // coded HasSemantics
}

// MethodImplTableRow, §II.22.27. Sorted by Class.
type MethodImplTableRow struct {
	Class             uint32 // RID into TypeDef
	MethodBody        uint32 // coded MethodDefOrRef
	MethodDeclaration uint32 // coded MethodDefOrRef
}

// ModuleRefTableRow, §II.22.31.
type ModuleRefTableRow struct {
	Name uint32 // #Strings offset
}

// TypeSpecTableRow, §II.22.39.
type TypeSpecTableRow struct {
	Signature uint32 // #Blob offset
}

// ImplMapTableRow, §II.22.22. Sorted by MemberForwarded.
type ImplMapTableRow struct {
	MappingFlags    uint16
	MemberForwarded uint32 // coded MemberForwarded
	ImportName      uint32 // #Strings offset
	ImportScope     uint32 // RID into ModuleRef
}

// FieldRVATableRow, §II.22.18. Sorted by Field.
type FieldRVATableRow struct {
	RVA   uint32
	Field uint32 // RID into Field
}

// AssemblyTableRow, §II.22.2.
type AssemblyTableRow struct {
	HashAlgID      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32 // #Blob offset
	Name           uint32 // #Strings offset
	Culture        uint32 // #Strings offset
}

// AssemblyRefTableRow, §II.22.5.
type AssemblyRefTableRow struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken uint32 // #Blob offset
	Name             uint32 // #Strings offset
	Culture          uint32 // #Strings offset
	HashValue        uint32 // #Blob offset
}

// FileTableRow, §II.22.19.
type FileTableRow struct {
	Flags     uint32
	Name      uint32 // #Strings offset
	HashValue uint32 // #Blob offset
}

// ExportedTypeTableRow, §II.22.14.
type ExportedTypeTableRow struct {
	Flags          uint32
	TypeDefID      uint32
	TypeName       uint32 // #Strings offset
	TypeNamespace  uint32 // #Strings offset
	Implementation uint32 // coded Implementation
}

// ManifestResourceTableRow, §II.22.24.
type ManifestResourceTableRow struct {
	Offset         uint32
	Flags          uint32
	Name           uint32 // #Strings offset
	Implementation uint32 // coded Implementation, 0 for embedded
}

// NestedClassTableRow, §II.22.32. Sorted by NestedClass.
type NestedClassTableRow struct {
	NestedClass    uint32 // RID into TypeDef
	EnclosingClass uint32 // RID into TypeDef
}

// GenericParamTableRow, §II.22.20. Sorted by (Owner, Number).
type GenericParamTableRow struct {
	Number uint16
	Flags  uint16
	Owner  uint32 // coded TypeOrMethodDef
	Name   uint32 // #Strings offset
}

// MethodSpecTableRow, §II.22.29.
type MethodSpecTableRow struct {
	Method        uint32 // coded MethodDefOrRef
	Instantiation uint32 // #Blob offset
}

// GenericParamConstraintTableRow, §II.22.21. Sorted by Owner.
type GenericParamConstraintTableRow struct {
	Owner      uint32 // RID into GenericParam
	Constraint uint32 // coded TypeDefOrRef
}
