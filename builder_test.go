package mdwriter

import "testing"

func newTestBuilder() *Builder {
	return newBuilder(ResourceStores{}, nil, nil)
}

func TestResolveTypeRefCyclicResolutionScopeErrors(t *testing.T) {
	b := newTestBuilder()

	// A TypeRef whose own ResolutionScope points back at itself: the
	// tentative-RID-0 registry entry makes the recursive resolveTypeRef
	// call observe rid==0 and report a cycle instead of looping forever.
	cyclic := &TypeRef{TypeName: "Cyclic"}
	cyclic.ResolutionScope = cyclic

	if _, err := b.resolveTypeRef(cyclic); err == nil {
		t.Fatal("expected an error resolving a self-referential TypeRef scope")
	}
}

func TestResolveTypeRefDedupesByPointer(t *testing.T) {
	b := newTestBuilder()
	scope := &AssemblyRef{Name: "mscorlib"}
	ref := &TypeRef{ResolutionScope: scope, TypeName: "Object", TypeNamespace: "System"}

	rid1, err := b.resolveTypeRef(ref)
	if err != nil {
		t.Fatalf("resolveTypeRef: %v", err)
	}
	rid2, err := b.resolveTypeRef(ref)
	if err != nil {
		t.Fatalf("resolveTypeRef (again): %v", err)
	}
	if rid1 != rid2 {
		t.Errorf("resolving the same *TypeRef twice gave different RIDs: %d vs %d", rid1, rid2)
	}
	if got := b.Tables.RowCount(TypeRef); got != 1 {
		t.Errorf("TypeRef row count = %d, want 1", got)
	}
}

func TestResolveTypeDefOrRefUnemittedTypeDefErrors(t *testing.T) {
	b := newTestBuilder()
	td := &TypeDef{Name: "Unemitted"}
	if _, err := b.encodedTypeDefOrRef(td); err == nil {
		t.Fatal("expected an error referencing a TypeDef before it has a RID")
	}
}

func TestEncodedTypeDefOrRefNilIsNullToken(t *testing.T) {
	b := newTestBuilder()
	tok, err := b.encodedTypeDefOrRef(nil)
	if err != nil {
		t.Fatalf("encodedTypeDefOrRef(nil): %v", err)
	}
	if tok != 0 {
		t.Errorf("encodedTypeDefOrRef(nil) = %#x, want 0", tok)
	}
}

func TestGetTokenEncodesUserStringPseudoToken(t *testing.T) {
	b := newTestBuilder()
	tok := b.getToken("hello")
	if got := tok >> 24; got != 0x70 {
		t.Errorf("getToken tag byte = %#x, want 0x70", got)
	}
	if got := tok & 0x00FFFFFF; got != b.US.Add("hello") {
		t.Errorf("getToken offset = %#x, want the #US offset of the same string", got)
	}
}

func TestGetTokenForObjectUnsupportedReturnsSentinelAndWarns(t *testing.T) {
	warnings := &SliceSink{}
	b := newBuilder(ResourceStores{}, warnings, nil)

	tok := b.getTokenForObject(42) // an int is neither a string nor a TypeDefOrRefEntity
	if tok != sentinelToken {
		t.Errorf("getTokenForObject(unsupported) = %#x, want sentinel %#x", tok, sentinelToken)
	}
	if len(warnings.Warnings) != 1 || warnings.Warnings[0].Code != WarnUnsupportedTokenRequest {
		t.Errorf("expected one WarnUnsupportedTokenRequest warning, got %+v", warnings.Warnings)
	}
}

func TestGetTokenForObjectAcceptsEntity(t *testing.T) {
	b := newTestBuilder()
	ref := &TypeRef{TypeName: "Object"}
	tok := b.getTokenForObject(ref)
	if tok == sentinelToken {
		t.Error("getTokenForObject(*TypeRef) returned the sentinel, want a resolved token")
	}
}

func TestResolveExportedTypeCyclicImplementationErrors(t *testing.T) {
	b := newTestBuilder()
	cyclic := &ExportedType{TypeName: "Cyclic"}
	cyclic.Implementation = cyclic

	if _, err := b.resolveExportedType(cyclic); err == nil {
		t.Fatal("expected an error resolving a self-referential ExportedType implementation")
	}
}

func TestResolveTypeRefDefersItsOwnCustomAttributes(t *testing.T) {
	b := newTestBuilder()
	ctor := &MemberRef{Class: &TypeRef{TypeName: "CustomAttribute", TypeNamespace: "System"}, Name: ".ctor"}
	ref := &TypeRef{
		TypeName:      "Object",
		TypeNamespace: "System",
		CustomAttributes: []*CustomAttributeDef{
			{Ctor: ctor, Value: []byte{1, 0, 0, 0}},
		},
	}

	rid, err := b.resolveTypeRef(ref)
	if err != nil {
		t.Fatalf("resolveTypeRef: %v", err)
	}
	if err := b.resolvePendingCustomAttributes(); err != nil {
		t.Fatalf("resolvePendingCustomAttributes: %v", err)
	}

	if got := b.Tables.RowCount(CustomAttribute); got != 1 {
		t.Fatalf("CustomAttribute row count = %d, want 1", got)
	}
	wantParent, err := HasCustomAttribute.encode(TypeRef, rid)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := b.Tables.CustomAttribute.row(1).Parent; got != wantParent {
		t.Errorf("CustomAttribute.Parent = %#x, want %#x (TypeRef rid %d)", got, wantParent, rid)
	}
}
