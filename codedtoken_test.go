package mdwriter

import "testing"

func TestCodedIndexEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		kind  codedIndex
		table int
		rid   uint32
	}{
		{"TypeDefOrRef/TypeDef", TypeDefOrRef, TypeDef, 1},
		{"TypeDefOrRef/TypeRef", TypeDefOrRef, TypeRef, 42},
		{"TypeDefOrRef/TypeSpec", TypeDefOrRef, TypeSpec, 0xFFFF},
		{"HasCustomAttribute/MethodDef", HasCustomAttribute, MethodDef, 7},
		{"HasCustomAttribute/GenericParamConstraint", HasCustomAttribute, GenericParamConstraint, 3},
		{"HasCustomAttribute/MethodSpec", HasCustomAttribute, MethodSpec, 9},
		{"Implementation/FileMD", Implementation, FileMD, 2},
		{"Implementation/ExportedType", Implementation, ExportedType, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.kind.encode(tt.table, tt.rid)
			if err != nil {
				t.Fatalf("encode(%s, %d) failed: %v", tableName[tt.table], tt.rid, err)
			}
			table, rid, ok := tt.kind.decode(encoded)
			if !ok {
				t.Fatalf("decode(%#x) returned ok=false", encoded)
			}
			if table != tt.table || rid != tt.rid {
				t.Errorf("round-trip mismatch: got (%s, %d), want (%s, %d)",
					tableName[table], rid, tableName[tt.table], tt.rid)
			}
		})
	}
}

func TestCodedIndexEncodeNullReference(t *testing.T) {
	encoded, err := TypeDefOrRef.encode(TypeDef, 0)
	if err != nil {
		t.Fatalf("encode with rid=0 should never fail: %v", err)
	}
	if encoded != 0 {
		t.Errorf("encode(TypeDef, 0) = %#x, want 0", encoded)
	}
	table, rid, ok := TypeDefOrRef.decode(0)
	if !ok || table != 0 || rid != 0 {
		t.Errorf("decode(0) = (%d, %d, %v), want (0, 0, true)", table, rid, ok)
	}
}

func TestCodedIndexEncodeUnrepresentableTable(t *testing.T) {
	// Field is not a member of TypeDefOrRef's tag table.
	if _, err := TypeDefOrRef.encode(Field, 1); err == nil {
		t.Fatal("expected an error encoding an unrepresentable table, got nil")
	}
}

func TestCustomAttributeTypeUsesReservedTagLayout(t *testing.T) {
	// ECMA-335 §II.24.2.6: CustomAttributeType reserves tags 0 and 1
	// ("not used") and assigns MethodDef=2, MemberRef=3 — unlike every
	// other coded-token kind, its tag table is not dense from 0.
	if tag, ok := CustomAttributeType.tagOf(MethodDef); !ok || tag != 2 {
		t.Errorf("CustomAttributeType.tagOf(MethodDef) = (%d, %v), want (2, true)", tag, ok)
	}
	if tag, ok := CustomAttributeType.tagOf(MemberRef); !ok || tag != 3 {
		t.Errorf("CustomAttributeType.tagOf(MemberRef) = (%d, %v), want (3, true)", tag, ok)
	}

	encoded, err := CustomAttributeType.encode(MethodDef, 7)
	if err != nil {
		t.Fatalf("encode(MethodDef, 7): %v", err)
	}
	if want := uint32(7<<3 | 2); encoded != want {
		t.Errorf("encode(MethodDef, 7) = %#x, want %#x", encoded, want)
	}
	table, rid, ok := CustomAttributeType.decode(encoded)
	if !ok || table != MethodDef || rid != 7 {
		t.Errorf("decode(%#x) = (%s, %d, %v), want (MethodDef, 7, true)", encoded, tableName[table], rid, ok)
	}
}

func TestCustomAttributeTypeReservedTagsDecodeToFalse(t *testing.T) {
	// Tags 0 and 1 are "not used": a coded value carrying either must not
	// decode to a fabricated table/rid pair.
	for _, tag := range []uint32{0, 1} {
		v := uint32(1<<3) | tag // rid=1 at a reserved tag
		if _, _, ok := CustomAttributeType.decode(v); ok {
			t.Errorf("decode of reserved tag %d returned ok=true, want false", tag)
		}
	}
}

func TestHasCustomAttributeCoversEveryMemberDef(t *testing.T) {
	// Every table that can own a custom attribute per ECMA-335 §II.24.2.6
	// must be representable; a gap here silently drops custom attributes
	// on whichever member kind is missing.
	want := []int{
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, FileMD, ExportedType,
		ManifestResource, GenericParam, GenericParamConstraint, MethodSpec,
	}
	for _, table := range want {
		if _, ok := HasCustomAttribute.tagOf(table); !ok {
			t.Errorf("HasCustomAttribute is missing table %s", tableName[table])
		}
	}
}

func TestMaxIndexSizeWidens(t *testing.T) {
	small := func(table int) uint32 { return 10 }
	if got := TypeDefOrRef.maxIndexSize(small); got != 2 {
		t.Errorf("maxIndexSize with few rows = %d, want 2", got)
	}

	large := func(table int) uint32 { return 1 << 15 }
	if got := TypeDefOrRef.maxIndexSize(large); got != 4 {
		t.Errorf("maxIndexSize with many rows = %d, want 4", got)
	}
}

func TestSimpleIndexSize(t *testing.T) {
	if got := simpleIndexSize(10); got != 2 {
		t.Errorf("simpleIndexSize(10) = %d, want 2", got)
	}
	if got := simpleIndexSize(1 << 16); got != 4 {
		t.Errorf("simpleIndexSize(1<<16) = %d, want 4", got)
	}
}
