package mdwriter

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/clrmeta/mdwriter/internal/log"
)

// NormalBuilder implements the §4.6 canonical walk: tokens are freshly
// assigned in a deterministic order, never preserved from a source module.
// It is the counterpart to BuildPreserving (builder_preserving.go), which
// reuses this type's per-type walk; both share the Builder plumbing
// (builder.go) and expose the single build() operation spec.md §9 calls
// for, expressed here as BuildNormal.
type NormalBuilder struct {
	*Builder
	module *Module

	parentOf map[*TypeDef]*TypeDef

	pendingImpl      []pendingMethodImpl
	pendingSemantics []pendingSemantics
}

type pendingMethodImpl struct {
	classRID uint32
	body     *MethodDef
	decl     MethodDefOrRefEntity
}

type pendingSemantics struct {
	assocTable int
	assocRID   uint32
	event      *EventDef
	property   *PropertyDef
}

// BuildNormal runs the full normal-mode walk over module, including the
// final Tables.Finalize sort pass, and returns the populated Builder
// (heaps + tables), ready for downstream PE emission.
func BuildNormal(module *Module, resources ResourceStores, warnings WarningSink, logger *log.Helper) (*Builder, error) {
	if module.ModuleType == nil {
		return nil, ErrNoModuleType
	}
	nb := &NormalBuilder{
		Builder:  newBuilder(resources, warnings, logger),
		module:   module,
		parentOf: make(map[*TypeDef]*TypeDef),
	}
	if err := nb.run(); err != nil {
		return nil, err
	}
	return nb.Builder, nil
}

func (nb *NormalBuilder) run() error {
	sortedTypes := nb.computeSortedTypes()

	// Steps 2-3: skeleton TypeDef rows (name/namespace/flags only).
	for _, t := range sortedTypes {
		row := TypeDefTableRow{
			Flags:         uint32(t.Flags),
			TypeName:      nb.Strings.Add(t.Name),
			TypeNamespace: nb.Strings.Add(t.Namespace),
		}
		rid := nb.Tables.TypeDef.add(row)
		nb.typeDefRID[t] = rid
	}

	// Step 2: the Module row.
	nb.Tables.Module.add(ModuleTableRow{
		Name:      nb.Strings.Add(nb.module.Name),
		Mvid:      nb.Guid.Add(nb.module.Mvid),
		EncID:     nb.Guid.Add(nb.module.EncID),
		EncBaseID: nb.Guid.Add(nb.module.EncBaseID),
	})
	nb.deferCustomAttr(Module, 1, nb.module.CustomAttributes)

	// Step 4: fill cross-refs and emit owned rows, type by type.
	for _, t := range sortedTypes {
		if err := nb.emitTypeBody(t); err != nil {
			return err
		}
	}

	// Step 5: the Assembly row.
	if a := nb.module.Assembly; a != nil {
		row := AssemblyTableRow{
			HashAlgID:      a.HashAlgID,
			MajorVersion:   a.MajorVersion,
			MinorVersion:   a.MinorVersion,
			BuildNumber:    a.BuildNumber,
			RevisionNumber: a.RevisionNumber,
			Flags:          a.Flags,
			PublicKey:      nb.Blob.Add(a.PublicKey),
			Name:           nb.Strings.Add(a.Name),
			Culture:        nb.Strings.Add(a.Culture),
		}
		rid := nb.Tables.Assembly.add(row)
		for _, s := range a.SecurityDeclarations {
			if err := nb.emitSecurity(Assembly, rid, s); err != nil {
				return err
			}
		}
		nb.deferCustomAttr(Assembly, rid, a.CustomAttributes)
	}

	// Step 6: second pass over late edges.
	for child, parent := range nb.parentOf {
		nb.Tables.NestedClass.add(NestedClassTableRow{
			NestedClass:    nb.typeDefRID[child],
			EnclosingClass: nb.typeDefRID[parent],
		})
	}
	if err := nb.resolvePendingMethodImpl(); err != nil {
		return err
	}
	if err := nb.resolvePendingSemantics(); err != nil {
		return err
	}

	// Force-materialize every reference entity the graph lists explicitly,
	// even if nothing else in the graph ended up pointing at it (§4.6,
	// sorted_types dataflow note: the graph owns these lists for a reason -
	// e.g. an ExportedType with no in-module referrer still belongs in the
	// assembly's public surface).
	if err := nb.materializeExplicitReferences(); err != nil {
		return err
	}

	// Step 7: resources.
	if err := nb.emitResources(); err != nil {
		return err
	}

	// Step 8: deferred CustomAttribute rows, now that every entity this
	// build will ever emit has a final RID.
	if err := nb.resolvePendingCustomAttributes(); err != nil {
		return err
	}

	// Step 9: sort pass.
	return nb.Tables.Finalize()
}

// computeSortedTypes implements §4.6 step 1: <Module> first, then each
// top-level type immediately followed by the depth-first closure of its
// nested types. Also records each nested type's immediate enclosing type
// for the NestedClass pass.
func (nb *NormalBuilder) computeSortedTypes() []*TypeDef {
	out := make([]*TypeDef, 0, 1+len(nb.module.Types))
	out = append(out, nb.module.ModuleType)

	var walk func(t *TypeDef)
	walk = func(t *TypeDef) {
		out = append(out, t)
		for _, n := range t.Nested {
			if n == nil {
				nb.warn(WarnNilGraphEntry, "nil nested type skipped", t)
				continue
			}
			nb.parentOf[n] = t
			walk(n)
		}
	}
	for _, t := range nb.module.Types {
		if t == nil {
			nb.warn(WarnNilGraphEntry, "nil top-level type skipped", nb.module)
			continue
		}
		walk(t)
	}
	return out
}

func (nb *NormalBuilder) emitTypeBody(t *TypeDef) error {
	rid := nb.typeDefRID[t]
	row := nb.Tables.TypeDef.row(rid)

	if t.Extends != nil {
		table, erid, err := nb.resolveTypeDefOrRef(t.Extends)
		if err != nil {
			return err
		}
		row.Extends, err = TypeDefOrRef.encode(table, erid)
		if err != nil {
			return err
		}
	}
	row.FieldList = nb.Tables.Field.count() + 1
	row.MethodList = nb.Tables.MethodDef.count() + 1

	for _, f := range t.Fields {
		if f == nil {
			nb.warn(WarnNilGraphEntry, "nil field skipped", t)
			continue
		}
		if err := nb.emitField(f); err != nil {
			return err
		}
	}
	for _, m := range t.Methods {
		if m == nil {
			nb.warn(WarnNilGraphEntry, "nil method skipped", t)
			continue
		}
		if err := nb.emitMethod(rid, m); err != nil {
			return err
		}
	}
	if err := nb.emitGenericParams(TypeDef, rid, t.GenericParams); err != nil {
		return err
	}
	for _, iface := range t.Interfaces {
		if iface == nil || iface.Interface == nil {
			nb.warn(WarnNilGraphEntry, "nil interface skipped", t)
			continue
		}
		table, irid, err := nb.resolveTypeDefOrRef(iface.Interface)
		if err != nil {
			return err
		}
		encoded, err := TypeDefOrRef.encode(table, irid)
		if err != nil {
			return err
		}
		iiRID := nb.Tables.InterfaceImpl.add(InterfaceImplTableRow{Class: rid, Interface: encoded})
		nb.deferCustomAttr(InterfaceImpl, iiRID, iface.CustomAttributes)
	}
	if t.Layout != nil {
		nb.Tables.ClassLayout.add(ClassLayoutTableRow{
			PackingSize: t.Layout.PackingSize,
			ClassSize:   t.Layout.ClassSize,
			Parent:      rid,
		})
	}
	for _, s := range t.SecurityDeclarations {
		if err := nb.emitSecurity(TypeDef, rid, s); err != nil {
			return err
		}
	}

	if len(t.Events) > 0 {
		first := nb.Tables.Event.count() + 1
		nb.Tables.EventMap.add(EventMapTableRow{Parent: rid, EventList: first})
		for _, e := range t.Events {
			if e == nil {
				nb.warn(WarnNilGraphEntry, "nil event skipped", t)
				continue
			}
			if err := nb.emitEvent(e); err != nil {
				return err
			}
		}
	}
	if len(t.Properties) > 0 {
		first := nb.Tables.Property.count() + 1
		nb.Tables.PropertyMap.add(PropertyMapTableRow{Parent: rid, PropertyList: first})
		for _, p := range t.Properties {
			if p == nil {
				nb.warn(WarnNilGraphEntry, "nil property skipped", t)
				continue
			}
			if err := nb.emitProperty(p); err != nil {
				return err
			}
		}
	}

	nb.deferCustomAttr(TypeDef, rid, t.CustomAttributes)
	return nil
}

func (nb *NormalBuilder) emitField(f *FieldDef) error {
	sigBytes, err := WriteFieldSig(nb.Builder, f.Signature)
	if err != nil {
		return err
	}
	rid := nb.Tables.Field.add(FieldTableRow{
		Flags:     uint16(f.Flags),
		Name:      nb.Strings.Add(f.Name),
		Signature: nb.Blob.Add(sigBytes),
	})

	if f.Layout != nil {
		nb.Tables.FieldLayout.add(FieldLayoutTableRow{Offset: *f.Layout, Field: rid})
	}
	if f.Marshal != nil {
		token, err := HasFieldMarshal.encode(Field, rid)
		if err != nil {
			return err
		}
		nb.Tables.FieldMarshal.add(FieldMarshalTableRow{Parent: token, NativeType: nb.Blob.Add(f.Marshal)})
	}
	if f.RVAData != nil {
		var offset uint32
		if nb.resources.FieldData != nil {
			offset = nb.resources.FieldData.Append(f.RVAData)
		} else {
			nb.warn(WarnUnknownResourceKind, "field RVA data dropped: no FieldDataStore configured", f)
		}
		nb.Tables.FieldRVA.add(FieldRVATableRow{RVA: offset, Field: rid})
	}
	if f.ImplMap != nil {
		if err := nb.emitImplMap(Field, rid, f.ImplMap); err != nil {
			return err
		}
	}
	if f.Constant != nil {
		if err := nb.emitConstant(Field, rid, f.Constant); err != nil {
			return err
		}
	}
	nb.deferCustomAttr(Field, rid, f.CustomAttributes)
	return nil
}

func (nb *NormalBuilder) emitMethod(typeRID uint32, m *MethodDef) error {
	sigBytes, err := WriteMethodSig(nb.Builder, m.Signature)
	if err != nil {
		return err
	}
	rid := nb.Tables.MethodDef.add(MethodDefTableRow{
		RVA:       m.RVA,
		ImplFlags: uint16(m.ImplFlags),
		Flags:     uint16(m.Flags),
		Name:      nb.Strings.Add(m.Name),
		Signature: nb.Blob.Add(sigBytes),
		ParamList: nb.Tables.Param.count() + 1,
	})
	nb.methodRID[m] = rid

	for _, p := range m.Params {
		if p == nil {
			nb.warn(WarnNilGraphEntry, "nil param skipped", m)
			continue
		}
		if p.Sequence == 0 && p.Marshal == nil && p.Constant == nil && len(p.CustomAttributes) == 0 {
			continue
		}
		if err := nb.emitParam(p); err != nil {
			return err
		}
	}
	if err := nb.emitGenericParams(MethodDef, rid, m.GenericParams); err != nil {
		return err
	}
	if m.ImplMap != nil {
		if err := nb.emitImplMap(MethodDef, rid, m.ImplMap); err != nil {
			return err
		}
	}
	for _, s := range m.SecurityDeclarations {
		if err := nb.emitSecurity(MethodDef, rid, s); err != nil {
			return err
		}
	}
	nb.deferCustomAttr(MethodDef, rid, m.CustomAttributes)

	for _, ov := range m.Overrides {
		if ov == nil || ov.Declaration == nil {
			nb.warn(WarnNilGraphEntry, "nil method override skipped", m)
			continue
		}
		body := ov.Body
		if body == nil {
			body = m
		}
		nb.pendingImpl = append(nb.pendingImpl, pendingMethodImpl{classRID: typeRID, body: body, decl: ov.Declaration})
	}
	return nil
}

func (nb *NormalBuilder) emitParam(p *ParamDef) error {
	rid := nb.Tables.Param.add(ParamTableRow{
		Flags:    uint16(p.Flags),
		Sequence: p.Sequence,
		Name:     nb.Strings.Add(p.Name),
	})
	if p.Marshal != nil {
		token, err := HasFieldMarshal.encode(Param, rid)
		if err != nil {
			return err
		}
		nb.Tables.FieldMarshal.add(FieldMarshalTableRow{Parent: token, NativeType: nb.Blob.Add(p.Marshal)})
	}
	if p.Constant != nil {
		if err := nb.emitConstant(Param, rid, p.Constant); err != nil {
			return err
		}
	}
	nb.deferCustomAttr(Param, rid, p.CustomAttributes)
	return nil
}

func (nb *NormalBuilder) emitGenericParams(ownerTable int, ownerRID uint32, gps []*GenericParamDef) error {
	ownerToken, err := TypeOrMethodDef.encode(ownerTable, ownerRID)
	if err != nil {
		return err
	}
	for _, gp := range gps {
		if gp == nil {
			nb.warn(WarnNilGraphEntry, "nil generic param skipped", ownerRID)
			continue
		}
		rid := nb.Tables.GenericParam.add(GenericParamTableRow{
			Number: gp.Number,
			Flags:  gp.Flags,
			Owner:  ownerToken,
			Name:   nb.Strings.Add(gp.Name),
		})
		nb.deferCustomAttr(GenericParam, rid, gp.CustomAttributes)
		for _, c := range gp.Constraints {
			if c == nil || c.Constraint == nil {
				nb.warn(WarnNilGraphEntry, "nil generic constraint skipped", gp)
				continue
			}
			table, crid, err := nb.resolveTypeDefOrRef(c.Constraint)
			if err != nil {
				return err
			}
			encoded, err := TypeDefOrRef.encode(table, crid)
			if err != nil {
				return err
			}
			gpcRID := nb.Tables.GenericParamConstraint.add(GenericParamConstraintTableRow{Owner: rid, Constraint: encoded})
			nb.deferCustomAttr(GenericParamConstraint, gpcRID, c.CustomAttributes)
		}
	}
	return nil
}

func (nb *NormalBuilder) emitImplMap(table int, rid uint32, im *ImplMapDef) error {
	var scopeRID uint32
	if im.ImportScope != nil {
		var err error
		scopeRID, err = nb.resolveModuleRef(im.ImportScope)
		if err != nil {
			return err
		}
	}
	token, err := MemberForwarded.encode(table, rid)
	if err != nil {
		return err
	}
	nb.Tables.ImplMap.add(ImplMapTableRow{
		MappingFlags:    im.Flags,
		MemberForwarded: token,
		ImportName:      nb.Strings.Add(im.ImportName),
		ImportScope:     scopeRID,
	})
	return nil
}

func (nb *NormalBuilder) emitConstant(table int, rid uint32, c *ConstantDef) error {
	token, err := HasConstant.encode(table, rid)
	if err != nil {
		return err
	}
	value := encodeConstantValue(c, nb.warnings)
	nb.Tables.Constant.add(ConstantTableRow{
		Type:   byte(c.Type),
		Parent: token,
		Value:  nb.Blob.Add(value),
	})
	return nil
}

func (nb *NormalBuilder) emitSecurity(table int, rid uint32, s *SecurityDecl) error {
	token, err := HasDeclSecurity.encode(table, rid)
	if err != nil {
		return err
	}
	dsRID := nb.Tables.DeclSecurity.add(DeclSecurityTableRow{
		Action:        s.Action,
		Parent:        token,
		PermissionSet: nb.Blob.Add(s.Permissions),
	})
	nb.deferCustomAttr(DeclSecurity, dsRID, s.CustomAttributes)
	return nil
}

func (nb *NormalBuilder) emitEvent(e *EventDef) error {
	var typeToken uint32
	if e.EventType != nil {
		table, rid, err := nb.resolveTypeDefOrRef(e.EventType)
		if err != nil {
			return err
		}
		typeToken, err = TypeDefOrRef.encode(table, rid)
		if err != nil {
			return err
		}
	}
	rid := nb.Tables.Event.add(EventTableRow{
		EventFlags: uint16(e.Flags),
		Name:       nb.Strings.Add(e.Name),
		EventType:  typeToken,
	})
	nb.eventRID[e] = rid
	nb.deferCustomAttr(Event, rid, e.CustomAttributes)
	nb.pendingSemantics = append(nb.pendingSemantics, pendingSemantics{assocTable: Event, assocRID: rid, event: e})
	return nil
}

func (nb *NormalBuilder) emitProperty(p *PropertyDef) error {
	sigBytes, err := WritePropertySig(nb.Builder, p.Signature)
	if err != nil {
		return err
	}
	rid := nb.Tables.Property.add(PropertyTableRow{
		Flags: uint16(p.Flags),
		Name:  nb.Strings.Add(p.Name),
		Type:  nb.Blob.Add(sigBytes),
	})
	nb.propRID[p] = rid
	if p.Constant != nil {
		if err := nb.emitConstant(Property, rid, p.Constant); err != nil {
			return err
		}
	}
	nb.deferCustomAttr(Property, rid, p.CustomAttributes)
	nb.pendingSemantics = append(nb.pendingSemantics, pendingSemantics{assocTable: Property, assocRID: rid, property: p})
	return nil
}

func (nb *NormalBuilder) resolvePendingMethodImpl() error {
	for _, pi := range nb.pendingImpl {
		bodyRID, ok := nb.methodRID[pi.body]
		if !ok {
			return fmt.Errorf("mdwriter: method override body %q has no assigned RID", pi.body.Name)
		}
		bodyToken, err := MethodDefOrRef.encode(MethodDef, bodyRID)
		if err != nil {
			return err
		}
		declTable, declRID, err := nb.resolveMethodDefOrRef(pi.decl)
		if err != nil {
			return err
		}
		declToken, err := MethodDefOrRef.encode(declTable, declRID)
		if err != nil {
			return err
		}
		nb.Tables.MethodImpl.add(MethodImplTableRow{
			Class:             pi.classRID,
			MethodBody:        bodyToken,
			MethodDeclaration: declToken,
		})
	}
	return nil
}

func (nb *NormalBuilder) resolvePendingSemantics() error {
	emit := func(semantics uint16, m *MethodDef, assocToken uint32) error {
		if m == nil {
			return nil
		}
		rid, ok := nb.methodRID[m]
		if !ok {
			return fmt.Errorf("mdwriter: semantics method %q has no assigned RID", m.Name)
		}
		nb.Tables.MethodSemantics.add(MethodSemanticsTableRow{
			Semantics:   semantics,
			Method:      rid,
			Association: assocToken,
		})
		return nil
	}
	for _, ps := range nb.pendingSemantics {
		assocToken, err := HasSemantics.encode(ps.assocTable, ps.assocRID)
		if err != nil {
			return err
		}
		switch {
		case ps.event != nil:
			if err := emit(SemanticsAddOn, ps.event.AddOn, assocToken); err != nil {
				return err
			}
			if err := emit(SemanticsRemoveOn, ps.event.RemoveOn, assocToken); err != nil {
				return err
			}
			if err := emit(SemanticsFire, ps.event.Fire, assocToken); err != nil {
				return err
			}
			for _, o := range ps.event.Other {
				if err := emit(SemanticsOther, o, assocToken); err != nil {
					return err
				}
			}
		case ps.property != nil:
			if err := emit(SemanticsGetter, ps.property.Getter, assocToken); err != nil {
				return err
			}
			if err := emit(SemanticsSetter, ps.property.Setter, assocToken); err != nil {
				return err
			}
			for _, o := range ps.property.Other {
				if err := emit(SemanticsOther, o, assocToken); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (nb *NormalBuilder) materializeExplicitReferences() error {
	for _, r := range nb.module.TypeRefs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveTypeRef(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.ModuleRefs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveModuleRef(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.AssemblyRefs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveAssemblyRef(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.MemberRefs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveMemberRef(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.TypeSpecs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveTypeSpec(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.MethodSpecs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveMethodSpec(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.StandAloneSigs {
		if r == nil {
			continue
		}
		if _, err := nb.resolveStandAloneSig(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.ExportedTypes {
		if r == nil {
			continue
		}
		if _, err := nb.resolveExportedType(r); err != nil {
			return err
		}
	}
	for _, r := range nb.module.Files {
		if r == nil {
			continue
		}
		if _, err := nb.resolveFileDef(r); err != nil {
			return err
		}
	}
	return nil
}

func (nb *NormalBuilder) emitResources() error {
	for _, r := range nb.module.Resources {
		switch v := r.(type) {
		case EmbeddedResource:
			var offset uint32
			if nb.resources.ResourceStore != nil {
				offset = nb.resources.ResourceStore.Append(v.Data)
			} else {
				nb.warn(WarnUnknownResourceKind, "embedded resource dropped: no ResourceStore configured", v)
			}
			mrRID := nb.Tables.ManifestResource.add(ManifestResourceTableRow{
				Offset: offset,
				Flags:  v.Flags,
				Name:   nb.Strings.Add(v.Name),
			})
			nb.deferCustomAttr(ManifestResource, mrRID, v.CustomAttributes)
		case AssemblyLinkedResource:
			rid, err := nb.resolveAssemblyRef(v.Assembly)
			if err != nil {
				return err
			}
			token, err := Implementation.encode(AssemblyRef, rid)
			if err != nil {
				return err
			}
			mrRID := nb.Tables.ManifestResource.add(ManifestResourceTableRow{
				Flags:          v.Flags,
				Name:           nb.Strings.Add(v.Name),
				Implementation: token,
			})
			nb.deferCustomAttr(ManifestResource, mrRID, v.CustomAttributes)
		case FileLinkedResource:
			rid, err := nb.resolveFileDef(v.File)
			if err != nil {
				return err
			}
			token, err := Implementation.encode(FileMD, rid)
			if err != nil {
				return err
			}
			mrRID := nb.Tables.ManifestResource.add(ManifestResourceTableRow{
				Offset:         v.Offset,
				Flags:          v.Flags,
				Name:           nb.Strings.Add(v.Name),
				Implementation: token,
			})
			nb.deferCustomAttr(ManifestResource, mrRID, v.CustomAttributes)
		default:
			nb.warn(WarnUnknownResourceKind, fmt.Sprintf("unrecognized resource kind %T", r), r)
		}
	}
	return nil
}

// encodeConstantValue implements §4.6.3: the Constant blob is the raw
// little-endian bytes of the primitive value. A declared/actual kind
// mismatch is non-fatal (a warning); an unrecognized Go value kind falls
// back to 8 zero bytes.
func encodeConstantValue(c *ConstantDef, sink WarningSink) []byte {
	mismatch := func() {
		sink.Add(BuildWarning{
			Code:    WarnConstantKindMismatch,
			Message: fmt.Sprintf("constant declared as %v but value has Go type %T", c.Type, c.Value),
			Entity:  c,
		})
	}
	switch v := c.Value.(type) {
	case bool:
		if c.Type != ElementTypeBoolean {
			mismatch()
		}
		if v {
			return []byte{1}
		}
		return []byte{0}
	case int8:
		if c.Type != ElementTypeI1 {
			mismatch()
		}
		return []byte{byte(v)}
	case uint8:
		if c.Type != ElementTypeU1 {
			mismatch()
		}
		return []byte{v}
	case int16:
		if c.Type != ElementTypeI2 {
			mismatch()
		}
		return le16(uint16(v))
	case uint16:
		if c.Type != ElementTypeU2 {
			mismatch()
		}
		return le16(v)
	case int32:
		// rune is an alias for int32 in Go: a declared Char constant is
		// distinguished from I4 by c.Type, not by the Go value's kind.
		if c.Type == ElementTypeChar {
			return le16(uint16(v))
		}
		if c.Type != ElementTypeI4 {
			mismatch()
		}
		return le32(uint32(v))
	case uint32:
		if c.Type != ElementTypeU4 {
			mismatch()
		}
		return le32(v)
	case int64:
		if c.Type != ElementTypeI8 {
			mismatch()
		}
		return le64(uint64(v))
	case uint64:
		if c.Type != ElementTypeU8 {
			mismatch()
		}
		return le64(v)
	case float32:
		if c.Type != ElementTypeR4 {
			mismatch()
		}
		return le32(math.Float32bits(v))
	case float64:
		if c.Type != ElementTypeR8 {
			mismatch()
		}
		return le64(math.Float64bits(v))
	case string:
		if c.Type != ElementTypeString {
			mismatch()
		}
		return encodeUTF16LE(v)
	case nil:
		if c.Type != ElementTypeClass {
			mismatch()
		}
		return make([]byte, 4)
	default:
		sink.Add(BuildWarning{
			Code:    WarnConstantKindMismatch,
			Message: fmt.Sprintf("unrecognized constant value type %T", c.Value),
			Entity:  c,
		})
		return make([]byte, 8)
	}
}

func le16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func le32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
func le64(v uint64) []byte { b := make([]byte, 8); binary.LittleEndian.PutUint64(b, v); return b }
