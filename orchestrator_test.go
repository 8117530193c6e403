package mdwriter

import "testing"

func TestBuildNormalModuleTypeIsAlwaysRIDOne(t *testing.T) {
	module := &Module{
		Name:       "test.dll",
		ModuleType: &TypeDef{Name: "<Module>"},
		Types: []*TypeDef{
			{
				Name:      "Foo",
				Namespace: "N",
				Fields: []*FieldDef{
					{Name: "x", Signature: &TypeSig{Elem: ElementTypeI4}},
				},
				Methods: []*MethodDef{
					{
						Name: "DoIt",
						Signature: &MethodSig{
							SentinelIndex: -1,
							RetType:       &TypeSig{Elem: ElementTypeVoid},
						},
					},
				},
			},
		},
	}

	out, err := Build(module, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := out.Tables.RowCount(TypeDef); got != 2 {
		t.Fatalf("TypeDef row count = %d, want 2 (<Module> + Foo)", got)
	}
	if name := out.Tables.TypeDef.row(1).TypeName; name != out.Strings.Add("<Module>") {
		t.Errorf("TypeDef RID 1 is not <Module>")
	}
	if got := out.Tables.RowCount(Field); got != 1 {
		t.Errorf("Field row count = %d, want 1", got)
	}
	if got := out.Tables.RowCount(MethodDef); got != 1 {
		t.Errorf("MethodDef row count = %d, want 1", got)
	}
}

func TestBuildNormalRejectsMissingModuleType(t *testing.T) {
	module := &Module{Name: "test.dll"}
	if _, err := Build(module, Options{}); err == nil {
		t.Fatal("expected an error when module.ModuleType is nil")
	}
}

func TestBuildNormalDeduplicatesTypeRefs(t *testing.T) {
	scope := &AssemblyRef{Name: "mscorlib"}
	sharedRef := &TypeRef{ResolutionScope: scope, TypeName: "Object", TypeNamespace: "System"}

	module := &Module{
		Name:       "test.dll",
		ModuleType: &TypeDef{Name: "<Module>"},
		Types: []*TypeDef{
			{Name: "A", Extends: sharedRef},
			{Name: "B", Extends: sharedRef},
		},
	}

	out, err := Build(module, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := out.Tables.RowCount(TypeRef); got != 1 {
		t.Errorf("TypeRef row count = %d, want 1 (shared Extends target deduplicated)", got)
	}
	if got := out.Tables.RowCount(AssemblyRef); got != 1 {
		t.Errorf("AssemblyRef row count = %d, want 1", got)
	}
}

func TestBuildPreservingCopiesSourceTablesForward(t *testing.T) {
	sourceTables := NewTablesStore()
	sourceTables.TypeDef.add(TypeDefTableRow{TypeName: 1}) // <Module> at RID 1
	sourceTables.Module.add(ModuleTableRow{Name: 1})
	sourceTables.TypeDef.add(TypeDefTableRow{TypeName: 2}) // a preexisting type at RID 2

	source := &SourceModule{Tables: sourceTables}

	module := &Module{
		Name:       "test.dll",
		ModuleType: &TypeDef{Name: "<Module>"},
		Types: []*TypeDef{
			{Name: "NewType", Namespace: "N"},
		},
	}

	out, err := Build(module, Options{
		PreserveOptions: PreserveOptions{PreserveTokens: true},
		Source:          source,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := out.Tables.RowCount(TypeDef); got != 3 {
		t.Fatalf("TypeDef row count = %d, want 3 (2 preserved + 1 new)", got)
	}
	if out.Tables.TypeDef.row(2).TypeName != 2 {
		t.Errorf("preserved TypeDef RID 2 was not copied forward unchanged")
	}
}
