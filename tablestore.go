package mdwriter

import "sort"

// table is a typed row vector for one metadata table: append-only during
// construction, RIDs are 1-based and equal to the row's position (§4.2).
type table[T any] struct {
	rows []T
}

// create appends row without attempting dedup (used for tables that are
// sorted after construction, or whose caller has already deduplicated via
// the RID registry, §4.2) and returns its 1-based RID.
func (t *table[T]) create(row T) uint32 {
	t.rows = append(t.rows, row)
	return uint32(len(t.rows))
}

// add is create's synonym for reference tables, kept distinct only to
// mirror the two named operations in spec.md §4.2 (`Create` vs `Add`); both
// have identical behavior here since dedup already happened in the RID
// registry before the row was built.
func (t *table[T]) add(row T) uint32 { return t.create(row) }

func (t *table[T]) count() uint32 { return uint32(len(t.rows)) }

func (t *table[T]) row(rid uint32) *T { return &t.rows[rid-1] }

// TablesStore holds one table per ECMA-335 §II.22 table this writer
// emits. Tables the teacher itself marks as "does not exist in optimized
// metadata (#~ stream)" (the *Ptr tables, ENCLog/ENCMap,
// AssemblyOS/Processor, AssemblyRefOS/Processor) are intentionally absent:
// this writer only ever produces the optimized #~ stream (spec.md §1 scope,
// "optimizing heap size beyond trivial dedup" aside — emitting the
// unoptimized #- layout is a header/option choice, not a table-shape one).
type TablesStore struct {
	Module                 table[ModuleTableRow]
	TypeRef                table[TypeRefTableRow]
	TypeDef                table[TypeDefTableRow]
	Field                  table[FieldTableRow]
	MethodDef              table[MethodDefTableRow]
	Param                  table[ParamTableRow]
	InterfaceImpl          table[InterfaceImplTableRow]
	MemberRef              table[MemberRefTableRow]
	Constant               table[ConstantTableRow]
	CustomAttribute        table[CustomAttributeTableRow]
	FieldMarshal           table[FieldMarshalTableRow]
	DeclSecurity           table[DeclSecurityTableRow]
	ClassLayout            table[ClassLayoutTableRow]
	FieldLayout            table[FieldLayoutTableRow]
	StandAloneSig          table[StandAloneSigTableRow]
	EventMap               table[EventMapTableRow]
	Event                  table[EventTableRow]
	PropertyMap            table[PropertyMapTableRow]
	Property               table[PropertyTableRow]
	MethodSemantics        table[MethodSemanticsTableRow]
	MethodImpl             table[MethodImplTableRow]
	ModuleRef              table[ModuleRefTableRow]
	TypeSpec               table[TypeSpecTableRow]
	ImplMap                table[ImplMapTableRow]
	FieldRVA               table[FieldRVATableRow]
	Assembly               table[AssemblyTableRow]
	AssemblyRef            table[AssemblyRefTableRow]
	FileMD                 table[FileTableRow]
	ExportedType           table[ExportedTypeTableRow]
	ManifestResource       table[ManifestResourceTableRow]
	NestedClass            table[NestedClassTableRow]
	GenericParam           table[GenericParamTableRow]
	MethodSpec             table[MethodSpecTableRow]
	GenericParamConstraint table[GenericParamConstraintTableRow]
}

// NewTablesStore returns an empty tables store.
func NewTablesStore() *TablesStore { return &TablesStore{} }

// RowCount returns the number of rows table currently holds, by table id
// (constants.go). Used by the coded-token encoder to decide 2- vs 4-byte
// column widths (codedtoken.go).
func (s *TablesStore) RowCount(tableID int) uint32 {
	switch tableID {
	case Module:
		return s.Module.count()
	case TypeRef:
		return s.TypeRef.count()
	case TypeDef:
		return s.TypeDef.count()
	case Field:
		return s.Field.count()
	case MethodDef:
		return s.MethodDef.count()
	case Param:
		return s.Param.count()
	case InterfaceImpl:
		return s.InterfaceImpl.count()
	case MemberRef:
		return s.MemberRef.count()
	case Constant:
		return s.Constant.count()
	case CustomAttribute:
		return s.CustomAttribute.count()
	case FieldMarshal:
		return s.FieldMarshal.count()
	case DeclSecurity:
		return s.DeclSecurity.count()
	case ClassLayout:
		return s.ClassLayout.count()
	case FieldLayout:
		return s.FieldLayout.count()
	case StandAloneSig:
		return s.StandAloneSig.count()
	case EventMap:
		return s.EventMap.count()
	case Event:
		return s.Event.count()
	case PropertyMap:
		return s.PropertyMap.count()
	case Property:
		return s.Property.count()
	case MethodSemantics:
		return s.MethodSemantics.count()
	case MethodImpl:
		return s.MethodImpl.count()
	case ModuleRef:
		return s.ModuleRef.count()
	case TypeSpec:
		return s.TypeSpec.count()
	case ImplMap:
		return s.ImplMap.count()
	case FieldRVA:
		return s.FieldRVA.count()
	case Assembly:
		return s.Assembly.count()
	case AssemblyRef:
		return s.AssemblyRef.count()
	case FileMD:
		return s.FileMD.count()
	case ExportedType:
		return s.ExportedType.count()
	case ManifestResource:
		return s.ManifestResource.count()
	case NestedClass:
		return s.NestedClass.count()
	case GenericParam:
		return s.GenericParam.count()
	case MethodSpec:
		return s.MethodSpec.count()
	case GenericParamConstraint:
		return s.GenericParamConstraint.count()
	}
	return 0
}

// Finalize applies the §4.2/§9 "Sorted tables" final pass: every table in
// the ECMA §II.22 sorted set is stably sorted by its key columns, and every
// column elsewhere that referenced a row in a resorted table by RID or
// coded token is rewritten to the row's new position. Must be called
// exactly once, after every row has been inserted. Used by normal builds,
// where every row is new.
func (s *TablesStore) Finalize() error {
	return s.finalize(nil)
}

// FinalizePreserving is Finalize's token-preserving-build counterpart: rows
// already copied forward from a preservation source (builder_preserving.go)
// must keep their existing RIDs, so only the newly appended rows in each
// sorted table — those beyond preserved[tableID], the row count captured
// right after copyTablesForward and before any new content was added — are
// sorted among themselves. The preserved prefix is never reordered, and the
// new suffix is never interleaved with it: the table as a whole is in
// ascending key order only when every new row's key sorts at or after the
// last preserved key. Coded key columns (Parent/Association/...) carry the
// target table's tag in their low bits, so a new row whose key references a
// freshly minted entity can still sort below a preserved key that
// references another table; such a row stays in the suffix.
func (s *TablesStore) FinalizePreserving(preserved map[int]uint32) error {
	return s.finalize(preserved)
}

func (s *TablesStore) finalize(preserved map[int]uint32) error {
	preservedCount := func(tableID int) uint32 { return preserved[tableID] }
	caParent := func(i int) *uint32 { return &s.CustomAttribute.rows[i].Parent }

	// InterfaceImpl: sorted by (Class, Interface). Referenced into by
	// CustomAttribute.Parent via HasCustomAttribute.
	remap := sortByKey(s.InterfaceImpl.rows, preservedCount(InterfaceImpl), func(r InterfaceImplTableRow) (uint32, uint32) {
		return r.Class, r.Interface
	})
	if err := s.rewriteCodedColumn(HasCustomAttribute, InterfaceImpl, remap, func(i int) *uint32 {
		return &s.CustomAttribute.rows[i].Parent
	}, len(s.CustomAttribute.rows)); err != nil {
		return err
	}

	// GenericParam: sorted by (Owner, Number). Referenced into by
	// GenericParamConstraint.Owner via a *simple* RID (not coded), and by
	// CustomAttribute.Parent via HasCustomAttribute.
	gpRemap := sortByKey(s.GenericParam.rows, preservedCount(GenericParam), func(r GenericParamTableRow) (uint32, uint32) {
		return r.Owner, uint32(r.Number)
	})
	for i := range s.GenericParamConstraint.rows {
		old := s.GenericParamConstraint.rows[i].Owner
		if old != 0 {
			if nw, ok := gpRemap[old]; ok {
				s.GenericParamConstraint.rows[i].Owner = nw
			}
		}
	}
	if err := s.rewriteCodedColumn(HasCustomAttribute, GenericParam, gpRemap, caParent, len(s.CustomAttribute.rows)); err != nil {
		return err
	}

	// GenericParamConstraint: sorted by Owner (post-remap). Referenced into
	// by CustomAttribute.Parent via HasCustomAttribute.
	gpcRemap := sortByKey(s.GenericParamConstraint.rows, preservedCount(GenericParamConstraint), func(r GenericParamConstraintTableRow) (uint32, uint32) {
		return r.Owner, 0
	})
	if err := s.rewriteCodedColumn(HasCustomAttribute, GenericParamConstraint, gpcRemap, caParent, len(s.CustomAttribute.rows)); err != nil {
		return err
	}

	// DeclSecurity: sorted by Parent. Referenced into by
	// CustomAttribute.Parent via HasCustomAttribute.
	dsRemap := sortByKey(s.DeclSecurity.rows, preservedCount(DeclSecurity), func(r DeclSecurityTableRow) (uint32, uint32) { return r.Parent, 0 })
	if err := s.rewriteCodedColumn(HasCustomAttribute, DeclSecurity, dsRemap, caParent, len(s.CustomAttribute.rows)); err != nil {
		return err
	}

	// The remaining sorted tables have no inbound RID/coded references
	// from any other table (verified against every coded-token tag table
	// in codedtoken.go), so a plain key sort is sufficient.
	sortByKey(s.ClassLayout.rows, preservedCount(ClassLayout), func(r ClassLayoutTableRow) (uint32, uint32) { return r.Parent, 0 })
	sortByKey(s.FieldLayout.rows, preservedCount(FieldLayout), func(r FieldLayoutTableRow) (uint32, uint32) { return r.Field, 0 })
	sortByKey(s.MethodSemantics.rows, preservedCount(MethodSemantics), func(r MethodSemanticsTableRow) (uint32, uint32) { return r.Association, 0 })
	sortByKey(s.MethodImpl.rows, preservedCount(MethodImpl), func(r MethodImplTableRow) (uint32, uint32) { return r.Class, 0 })
	sortByKey(s.Constant.rows, preservedCount(Constant), func(r ConstantTableRow) (uint32, uint32) { return r.Parent, 0 })
	sortByKey(s.FieldMarshal.rows, preservedCount(FieldMarshal), func(r FieldMarshalTableRow) (uint32, uint32) { return r.Parent, 0 })
	sortByKey(s.FieldRVA.rows, preservedCount(FieldRVA), func(r FieldRVATableRow) (uint32, uint32) { return r.Field, 0 })
	sortByKey(s.ImplMap.rows, preservedCount(ImplMap), func(r ImplMapTableRow) (uint32, uint32) { return r.MemberForwarded, 0 })
	sortByKey(s.NestedClass.rows, preservedCount(NestedClass), func(r NestedClassTableRow) (uint32, uint32) { return r.NestedClass, 0 })
	// CustomAttribute sorts last, after its Parent column has already been
	// rewritten above for any InterfaceImpl, GenericParam,
	// GenericParamConstraint and DeclSecurity parents.
	sortByKey(s.CustomAttribute.rows, preservedCount(CustomAttribute), func(r CustomAttributeTableRow) (uint32, uint32) { return r.Parent, 0 })

	return nil
}

// sortByKey stably sorts rows[preserved:] by the (primary, secondary) key
// keyFn extracts, leaving rows[:preserved] untouched at their existing
// indices, and returns the old-RID -> new-RID map (1-based) for every row,
// used by callers that must rewrite inbound references. preserved is 0 for
// a normal (nothing-preserved) build, in which case the whole slice sorts
// and this behaves exactly like a full-table sort.
func sortByKey[T any](rows []T, preserved uint32, keyFn func(T) (uint32, uint32)) map[uint32]uint32 {
	n := len(rows)
	start := int(preserved)
	if start > n {
		start = n
	}

	remap := make(map[uint32]uint32, n)
	for i := 0; i < start; i++ {
		remap[uint32(i+1)] = uint32(i + 1)
	}

	oldIndex := make([]int, n-start)
	for i := range oldIndex {
		oldIndex[i] = start + i
	}
	sort.SliceStable(oldIndex, func(i, j int) bool {
		ai, bi := oldIndex[i], oldIndex[j]
		pa, sa := keyFn(rows[ai])
		pb, sb := keyFn(rows[bi])
		if pa != pb {
			return pa < pb
		}
		return sa < sb
	})
	sorted := make([]T, n-start)
	for newPos, oldPos := range oldIndex {
		sorted[newPos] = rows[oldPos]
		remap[uint32(oldPos+1)] = uint32(start + newPos + 1)
	}
	copy(rows[start:], sorted)
	return remap
}

// rewriteCodedColumn rewrites every row's coded column (accessed via at)
// that currently decodes to (targetTable, oldRID) so it instead encodes
// (targetTable, remap[oldRID]).
func (s *TablesStore) rewriteCodedColumn(kind codedIndex, targetTable int, remap map[uint32]uint32, at func(i int) *uint32, n int) error {
	for i := 0; i < n; i++ {
		col := at(i)
		table, rid, ok := kind.decode(*col)
		if !ok || table != targetTable || rid == 0 {
			continue
		}
		newRID, ok := remap[rid]
		if !ok {
			continue
		}
		encoded, err := kind.encode(targetTable, newRID)
		if err != nil {
			return err
		}
		*col = encoded
	}
	return nil
}
