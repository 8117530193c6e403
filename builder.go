package mdwriter

import (
	"fmt"

	"github.com/clrmeta/mdwriter/internal/log"
)

// Builder is the plumbing shared by the normal (builder_normal.go) and
// preserving (builder_preserving.go) strategies: heaps, tables, the RID
// registries for every deduplicated reference-entity kind (§4.5), and the
// token-service operations the signature writer calls back into (§4.6.2).
//
// Per spec.md §9 "Two builder strategies", each strategy is a single
// function (BuildNormal, BuildPreserving) that returns a populated
// *Builder. This struct is embedded by NormalBuilder, whose per-type walk
// both strategies run, rather than being an interface, since Go favors
// composition over a base-class relationship.
type Builder struct {
	Strings *StringsHeap
	US      *UserStringsHeap
	Guid    *GuidHeap
	Blob    *BlobHeap
	Tables  *TablesStore

	typeDefRID map[*TypeDef]uint32
	methodRID  map[*MethodDef]uint32
	paramRID   map[*ParamDef]uint32
	eventRID   map[*EventDef]uint32
	propRID    map[*PropertyDef]uint32

	regTypeRef       *ridRegistry[*TypeRef]
	regModuleRef     *ridRegistry[*ModuleRef]
	regAssemblyRef   *ridRegistry[*AssemblyRef]
	regMemberRef     *ridRegistry[*MemberRef]
	regTypeSpec      *ridRegistry[*TypeSpec]
	regMethodSpec    *ridRegistry[*MethodSpec]
	regStandAloneSig *ridRegistry[*StandAloneSig]
	regExportedType  *ridRegistry[*ExportedType]
	regFileDef       *ridRegistry[*FileDef]

	resources ResourceStores
	warnings  WarningSink
	log       *log.Helper

	pendingCA []pendingCustomAttr
}

// pendingCustomAttr defers a CustomAttribute row until every entity kind has
// a final RID (§4.6 step 8); shared by both builder strategies since the
// reference-entity resolveX methods below (shared plumbing) and the
// NormalBuilder walk (used by BuildNormal and BuildPreserving) both need to
// enqueue one.
type pendingCustomAttr struct {
	table int
	rid   uint32
	attr  *CustomAttributeDef
}

// deferCustomAttr enqueues attrs to be materialized as CustomAttribute rows
// parented at (table, rid) once resolvePendingCustomAttributes runs.
func (b *Builder) deferCustomAttr(table int, rid uint32, attrs []*CustomAttributeDef) {
	for _, a := range attrs {
		if a == nil {
			b.warn(WarnNilGraphEntry, "nil custom attribute skipped", rid)
			continue
		}
		b.pendingCA = append(b.pendingCA, pendingCustomAttr{table: table, rid: rid, attr: a})
	}
}

func (b *Builder) resolvePendingCustomAttributes() error {
	for _, ca := range b.pendingCA {
		parentToken, err := HasCustomAttribute.encode(ca.table, ca.rid)
		if err != nil {
			return err
		}
		ctorTable, ctorRID, err := b.resolveMethodDefOrRef(ca.attr.Ctor)
		if err != nil {
			return err
		}
		ctorToken, err := CustomAttributeType.encode(ctorTable, ctorRID)
		if err != nil {
			return err
		}
		b.Tables.CustomAttribute.add(CustomAttributeTableRow{
			Parent: parentToken,
			Type:   ctorToken,
			Value:  b.Blob.Add(ca.attr.Value),
		})
	}
	return nil
}

// ResourceStores are the three external byte-chunk collaborators named in
// spec.md §6: the metadata writer appends to ResourceStore (for embedded
// manifest resources) and FieldData (for field RVA-data) during the build;
// MethodBody is accepted but never called by the metadata writer, and
// Build does not return it in Output, since method body content is
// produced by the out-of-scope IL serializer (§1).
type ResourceStores struct {
	ResourceStore ByteChunkStore
	FieldData     ByteChunkStore
	MethodBody    ByteChunkStore
}

// ByteChunkStore is an append-only byte sink that returns the offset a
// chunk was written at; the caller (here) treats the offset as opaque and
// passes it straight into a row column, trusting the downstream PE writer
// to turn it into a final RVA (§6).
type ByteChunkStore interface {
	Append(data []byte) uint32
}

// newBuilder wires up empty heaps/tables and registries. Preservation
// seeding (if any) happens after this, in orchestrator.go, before the walk
// starts.
func newBuilder(resources ResourceStores, warnings WarningSink, logger *log.Helper) *Builder {
	if warnings == nil {
		warnings = nopSink{}
	}
	return &Builder{
		Strings:          NewStringsHeap(),
		US:               NewUserStringsHeap(),
		Guid:             NewGuidHeap(),
		Blob:             NewBlobHeap(),
		Tables:           NewTablesStore(),
		typeDefRID:       make(map[*TypeDef]uint32),
		methodRID:        make(map[*MethodDef]uint32),
		paramRID:         make(map[*ParamDef]uint32),
		eventRID:         make(map[*EventDef]uint32),
		propRID:          make(map[*PropertyDef]uint32),
		regTypeRef:       newRIDRegistry[*TypeRef](),
		regModuleRef:     newRIDRegistry[*ModuleRef](),
		regAssemblyRef:   newRIDRegistry[*AssemblyRef](),
		regMemberRef:     newRIDRegistry[*MemberRef](),
		regTypeSpec:      newRIDRegistry[*TypeSpec](),
		regMethodSpec:    newRIDRegistry[*MethodSpec](),
		regStandAloneSig: newRIDRegistry[*StandAloneSig](),
		regExportedType:  newRIDRegistry[*ExportedType](),
		regFileDef:       newRIDRegistry[*FileDef](),
		resources:        resources,
		warnings:         warnings,
		log:              logger,
	}
}

func (b *Builder) warn(code WarnCode, msg string, entity any) {
	b.warnings.Add(BuildWarning{Code: code, Message: msg, Entity: entity})
}

// --- Token service (§4.6.2) ---

// encodedTypeDefOrRef implements tokenProvider for the signature writer: it
// materializes e's row if necessary and returns its encoded TypeDefOrRef
// coded token.
func (b *Builder) encodedTypeDefOrRef(e TypeDefOrRefEntity) (uint32, error) {
	if e == nil {
		return 0, nil
	}
	table, rid, err := b.resolveTypeDefOrRef(e)
	if err != nil {
		return 0, err
	}
	return TypeDefOrRef.encode(table, rid)
}

func (b *Builder) resolveTypeDefOrRef(e TypeDefOrRefEntity) (int, uint32, error) {
	switch v := e.(type) {
	case *TypeDef:
		rid, ok := b.typeDefRID[v]
		if !ok {
			return 0, 0, fmt.Errorf("mdwriter: TypeDef %q referenced before it was emitted", v.Name)
		}
		return TypeDef, rid, nil
	case *TypeRef:
		rid, err := b.resolveTypeRef(v)
		return TypeRef, rid, err
	case *TypeSpec:
		rid, err := b.resolveTypeSpec(v)
		return TypeSpec, rid, err
	default:
		return 0, 0, fmt.Errorf("mdwriter: unsupported TypeDefOrRef entity %T", e)
	}
}

// resolveTypeRef materializes r's TypeRef row if not already present,
// following the tentative-RID-0 pattern (§3 invariant 8, §9) to break
// cycles through ResolutionScope -> TypeRef -> ResolutionScope.
func (b *Builder) resolveTypeRef(r *TypeRef) (uint32, error) {
	if rid, ok := b.regTypeRef.tryGet(r); ok {
		if rid == 0 {
			return 0, fmt.Errorf("mdwriter: cyclic TypeRef resolution for %q.%q", r.TypeNamespace, r.TypeName)
		}
		return rid, nil
	}
	b.regTypeRef.insert(r, 0)

	var scopeToken uint32
	if r.ResolutionScope != nil {
		table, rid, err := b.resolveResolutionScope(r.ResolutionScope)
		if err != nil {
			return 0, err
		}
		scopeToken, err = ResolutionScope.encode(table, rid)
		if err != nil {
			return 0, err
		}
	}

	row := TypeRefTableRow{
		ResolutionScope: scopeToken,
		TypeName:        b.Strings.Add(r.TypeName),
		TypeNamespace:   b.Strings.Add(r.TypeNamespace),
	}
	rid := b.Tables.TypeRef.add(row)
	b.regTypeRef.set(r, rid)
	b.deferCustomAttr(TypeRef, rid, r.CustomAttributes)
	return rid, nil
}

func (b *Builder) resolveResolutionScope(e ResolutionScopeEntity) (int, uint32, error) {
	switch v := e.(type) {
	case *Module:
		return Module, 1, nil
	case *ModuleRef:
		rid, err := b.resolveModuleRef(v)
		return ModuleRef, rid, err
	case *AssemblyRef:
		rid, err := b.resolveAssemblyRef(v)
		return AssemblyRef, rid, err
	case *TypeRef:
		rid, err := b.resolveTypeRef(v)
		return TypeRef, rid, err
	default:
		return 0, 0, fmt.Errorf("mdwriter: unsupported ResolutionScope entity %T", e)
	}
}

func (b *Builder) resolveModuleRef(r *ModuleRef) (uint32, error) {
	if rid, ok := b.regModuleRef.tryGet(r); ok {
		return rid, nil
	}
	rid := b.Tables.ModuleRef.add(ModuleRefTableRow{Name: b.Strings.Add(r.Name)})
	b.regModuleRef.insert(r, rid)
	b.deferCustomAttr(ModuleRef, rid, r.CustomAttributes)
	return rid, nil
}

func (b *Builder) resolveAssemblyRef(r *AssemblyRef) (uint32, error) {
	if rid, ok := b.regAssemblyRef.tryGet(r); ok {
		return rid, nil
	}
	row := AssemblyRefTableRow{
		MajorVersion:     r.MajorVersion,
		MinorVersion:     r.MinorVersion,
		BuildNumber:      r.BuildNumber,
		RevisionNumber:   r.RevisionNumber,
		Flags:            r.Flags,
		PublicKeyOrToken: b.Blob.Add(r.PublicKeyOrToken),
		Name:             b.Strings.Add(r.Name),
		Culture:          b.Strings.Add(r.Culture),
		HashValue:        b.Blob.Add(r.HashValue),
	}
	rid := b.Tables.AssemblyRef.add(row)
	b.regAssemblyRef.insert(r, rid)
	b.deferCustomAttr(AssemblyRef, rid, r.CustomAttributes)
	return rid, nil
}

func (b *Builder) resolveTypeSpec(t *TypeSpec) (uint32, error) {
	if rid, ok := b.regTypeSpec.tryGet(t); ok {
		if rid == 0 {
			return 0, fmt.Errorf("mdwriter: cyclic TypeSpec resolution")
		}
		return rid, nil
	}
	b.regTypeSpec.insert(t, 0)
	sigBytes, err := WriteTypeSig(b, t.Signature)
	if err != nil {
		return 0, err
	}
	rid := b.Tables.TypeSpec.add(TypeSpecTableRow{Signature: b.Blob.Add(sigBytes)})
	b.regTypeSpec.set(t, rid)
	b.deferCustomAttr(TypeSpec, rid, t.CustomAttributes)
	return rid, nil
}

// resolveMemberRefParent resolves the MemberRefParent coded index (§4.3).
func (b *Builder) resolveMemberRefParent(e MemberRefParentEntity) (int, uint32, error) {
	switch v := e.(type) {
	case *TypeDef:
		rid, ok := b.typeDefRID[v]
		if !ok {
			return 0, 0, fmt.Errorf("mdwriter: TypeDef %q referenced before it was emitted", v.Name)
		}
		return TypeDef, rid, nil
	case *TypeRef:
		rid, err := b.resolveTypeRef(v)
		return TypeRef, rid, err
	case *ModuleRef:
		rid, err := b.resolveModuleRef(v)
		return ModuleRef, rid, err
	case *MethodDef:
		rid, ok := b.methodDefRID(v)
		if !ok {
			return 0, 0, fmt.Errorf("mdwriter: MethodDef %q referenced before it was emitted", v.Name)
		}
		return MethodDef, rid, nil
	case *TypeSpec:
		rid, err := b.resolveTypeSpec(v)
		return TypeSpec, rid, err
	default:
		return 0, 0, fmt.Errorf("mdwriter: unsupported MemberRefParent entity %T", e)
	}
}

// methodDefRID retrieves the RID assigned to a MethodDef by the normal/
// preserving walk. Stored alongside typeDefRID since methods, like types,
// are walked directly rather than deduplicated through a registry.
func (b *Builder) methodDefRID(m *MethodDef) (uint32, bool) {
	rid, ok := b.methodRID[m]
	return rid, ok
}

func (b *Builder) resolveMemberRef(m *MemberRef) (uint32, error) {
	if rid, ok := b.regMemberRef.tryGet(m); ok {
		return rid, nil
	}
	table, rid, err := b.resolveMemberRefParent(m.Class)
	if err != nil {
		return 0, err
	}
	classToken, err := MemberRefParent.encode(table, rid)
	if err != nil {
		return 0, err
	}
	row := MemberRefTableRow{
		Class:     classToken,
		Name:      b.Strings.Add(m.Name),
		Signature: b.Blob.Add(m.Signature),
	}
	newRID := b.Tables.MemberRef.add(row)
	b.regMemberRef.insert(m, newRID)
	b.deferCustomAttr(MemberRef, newRID, m.CustomAttributes)
	return newRID, nil
}

// resolveMethodDefOrRef resolves the MethodDefOrRef coded index.
func (b *Builder) resolveMethodDefOrRef(e MethodDefOrRefEntity) (int, uint32, error) {
	switch v := e.(type) {
	case *MethodDef:
		rid, ok := b.methodDefRID(v)
		if !ok {
			return 0, 0, fmt.Errorf("mdwriter: MethodDef %q referenced before it was emitted", v.Name)
		}
		return MethodDef, rid, nil
	case *MemberRef:
		rid, err := b.resolveMemberRef(v)
		return MemberRef, rid, err
	default:
		return 0, 0, fmt.Errorf("mdwriter: unsupported MethodDefOrRef entity %T", e)
	}
}

// resolveImplementation resolves the Implementation coded index.
func (b *Builder) resolveImplementation(e ImplementationEntity) (int, uint32, error) {
	switch v := e.(type) {
	case *FileDef:
		rid, err := b.resolveFileDef(v)
		return FileMD, rid, err
	case *AssemblyRef:
		rid, err := b.resolveAssemblyRef(v)
		return AssemblyRef, rid, err
	case *ExportedType:
		rid, err := b.resolveExportedType(v)
		return ExportedType, rid, err
	default:
		return 0, 0, fmt.Errorf("mdwriter: unsupported Implementation entity %T", e)
	}
}

func (b *Builder) resolveFileDef(f *FileDef) (uint32, error) {
	if rid, ok := b.regFileDef.tryGet(f); ok {
		return rid, nil
	}
	row := FileTableRow{
		Flags:     f.Flags,
		Name:      b.Strings.Add(f.Name),
		HashValue: b.Blob.Add(f.HashValue),
	}
	rid := b.Tables.FileMD.add(row)
	b.regFileDef.insert(f, rid)
	b.deferCustomAttr(FileMD, rid, f.CustomAttributes)
	return rid, nil
}

func (b *Builder) resolveExportedType(e *ExportedType) (uint32, error) {
	if rid, ok := b.regExportedType.tryGet(e); ok {
		if rid == 0 {
			return 0, fmt.Errorf("mdwriter: cyclic ExportedType resolution for %q", e.TypeName)
		}
		return rid, nil
	}
	b.regExportedType.insert(e, 0)
	var implToken uint32
	if e.Implementation != nil {
		table, rid, err := b.resolveImplementation(e.Implementation)
		if err != nil {
			return 0, err
		}
		implToken, err = Implementation.encode(table, rid)
		if err != nil {
			return 0, err
		}
	}
	row := ExportedTypeTableRow{
		Flags:          uint32(e.Flags),
		TypeDefID:      e.TypeDefID,
		TypeName:       b.Strings.Add(e.TypeName),
		TypeNamespace:  b.Strings.Add(e.TypeNamespace),
		Implementation: implToken,
	}
	rid := b.Tables.ExportedType.add(row)
	b.regExportedType.set(e, rid)
	b.deferCustomAttr(ExportedType, rid, e.CustomAttributes)
	return rid, nil
}

func (b *Builder) resolveMethodSpec(m *MethodSpec) (uint32, error) {
	if rid, ok := b.regMethodSpec.tryGet(m); ok {
		return rid, nil
	}
	table, rid, err := b.resolveMethodDefOrRef(m.Method)
	if err != nil {
		return 0, err
	}
	methodToken, err := MethodDefOrRef.encode(table, rid)
	if err != nil {
		return 0, err
	}
	instBytes, err := WriteGenericInstSig(b, &GenericInstSig{Args: m.Instantiation})
	if err != nil {
		return 0, err
	}
	row := MethodSpecTableRow{Method: methodToken, Instantiation: b.Blob.Add(instBytes)}
	newRID := b.Tables.MethodSpec.add(row)
	b.regMethodSpec.insert(m, newRID)
	b.deferCustomAttr(MethodSpec, newRID, m.CustomAttributes)
	return newRID, nil
}

func (b *Builder) resolveStandAloneSig(s *StandAloneSig) (uint32, error) {
	if rid, ok := b.regStandAloneSig.tryGet(s); ok {
		return rid, nil
	}
	rid := b.Tables.StandAloneSig.add(StandAloneSigTableRow{Signature: b.Blob.Add(s.Signature)})
	b.regStandAloneSig.insert(s, rid)
	b.deferCustomAttr(StandAloneSig, rid, s.CustomAttributes)
	return rid, nil
}

// getToken implements the token service's string case: it inserts s into
// #US and returns the pseudo coded token (0x70, offset), per spec.md
// §4.6.2. Entities go through encodedTypeDefOrRef / the other resolveX
// methods instead; getToken's "accepts either an entity or a string"
// contract is expressed in Go as two call sites rather than one any-typed
// function, since Go's type system makes the entity path exact already.
func (b *Builder) getToken(s string) uint32 {
	const userStringTag = 0x70
	return userStringTag<<24 | b.US.Add(s)
}

// getTokenForObject is the any-typed fallback mentioned in §4.6.2 for a
// host that doesn't know ahead of time whether it holds a string or an
// entity; unsupported kinds return the §7 sentinel token and a warning.
func (b *Builder) getTokenForObject(obj any) uint32 {
	switch v := obj.(type) {
	case string:
		return b.getToken(v)
	case TypeDefOrRefEntity:
		tok, err := b.encodedTypeDefOrRef(v)
		if err == nil {
			return tok
		}
	}
	b.warn(WarnUnsupportedTokenRequest, fmt.Sprintf("unsupported token request for %T", obj), obj)
	return sentinelToken
}
