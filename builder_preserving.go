package mdwriter

import "github.com/clrmeta/mdwriter/internal/log"

// BuildPreserving implements §4.7: it starts from a SourceModule (a
// previously built module's heaps and tables) and treats the supplied
// module graph as the *incremental* content to add on top of it. Every
// row already present in source.Tables is copied forward verbatim, at its
// original RID; the graph's own entities are then appended after the
// copied originals, so every preserved RID and heap offset survives
// unchanged (§4.7, §8 property 9).
//
// Scope decision (DESIGN.md): because ECMA-335 requires each TypeDef's
// Field/MethodList range to be contiguous with the next TypeDef's, this
// append-only strategy cannot add new members to a TypeDef that already
// existed in source without shifting every subsequent type's ranges -
// which would itself violate token preservation. Preserving mode therefore
// supports adding whole new top-level types (with their own new members)
// but not new members on a preserved type; module.ModuleType itself must
// carry no new Fields/Methods/etc. here, since <Module> always already
// exists in the source at RID 1. This is the spec's own open question 3
// (§9), resolved this way rather than left stubbed.
func BuildPreserving(module *Module, source *SourceModule, opts PreserveOptions, resources ResourceStores, warnings WarningSink, logger *log.Helper) (*Builder, error) {
	if module.ModuleType == nil {
		return nil, ErrNoModuleType
	}
	b := newBuilder(resources, warnings, logger)

	// preservedSortedCounts records, per sorted table (constants.go's
	// sortedTables set), how many of its rows were copied forward from the
	// preservation source before any incremental content was added. Passed
	// to FinalizePreserving so the final sort pass never reorders a
	// preserved row out of its original RID.
	preservedSortedCounts := make(map[int]uint32, len(sortedTables))

	if source != nil {
		if opts.PreserveStringsOffsets && source.Strings != nil {
			b.Strings.seedRaw(source.Strings)
		}
		if opts.PreserveUSOffsets && source.US != nil {
			b.US.seedRaw(source.US)
		}
		if opts.PreserveBlobOffsets && source.Blob != nil {
			b.Blob.seedRaw(source.Blob)
		}
		if opts.PreserveTokens && source.Tables != nil {
			copyTablesForward(b.Tables, source.Tables)
			for tableID := range sortedTables {
				preservedSortedCounts[tableID] = b.Tables.RowCount(tableID)
			}
		}
	}

	// <Module>/Module row 1 already exists in the copied tables (or, with
	// no source, is created fresh exactly like normal mode).
	if b.Tables.TypeDef.count() == 0 {
		b.Tables.TypeDef.add(TypeDefTableRow{
			Flags:         uint32(module.ModuleType.Flags),
			TypeName:      b.Strings.Add(module.ModuleType.Name),
			TypeNamespace: b.Strings.Add(module.ModuleType.Namespace),
		})
		b.Tables.Module.add(ModuleTableRow{
			Name:      b.Strings.Add(module.Name),
			Mvid:      b.Guid.Add(module.Mvid),
			EncID:     b.Guid.Add(module.EncID),
			EncBaseID: b.Guid.Add(module.EncBaseID),
		})
	}
	b.typeDefRID[module.ModuleType] = 1

	nb := &NormalBuilder{Builder: b, module: module, parentOf: make(map[*TypeDef]*TypeDef)}

	sortedTypes := nb.computeSortedTypes() // [0] is always module.ModuleType
	newTypes := sortedTypes[1:]

	for _, t := range newTypes {
		rid := nb.Tables.TypeDef.add(TypeDefTableRow{
			Flags:         uint32(t.Flags),
			TypeName:      nb.Strings.Add(t.Name),
			TypeNamespace: nb.Strings.Add(t.Namespace),
		})
		nb.typeDefRID[t] = rid
	}
	for _, t := range newTypes {
		if err := nb.emitTypeBody(t); err != nil {
			return nil, err
		}
	}

	if a := module.Assembly; a != nil && b.Tables.Assembly.count() == 0 {
		row := AssemblyTableRow{
			HashAlgID:      a.HashAlgID,
			MajorVersion:   a.MajorVersion,
			MinorVersion:   a.MinorVersion,
			BuildNumber:    a.BuildNumber,
			RevisionNumber: a.RevisionNumber,
			Flags:          a.Flags,
			PublicKey:      b.Blob.Add(a.PublicKey),
			Name:           b.Strings.Add(a.Name),
			Culture:        b.Strings.Add(a.Culture),
		}
		rid := b.Tables.Assembly.add(row)
		for _, s := range a.SecurityDeclarations {
			if err := nb.emitSecurity(Assembly, rid, s); err != nil {
				return nil, err
			}
		}
		nb.deferCustomAttr(Assembly, rid, a.CustomAttributes)
	}

	for child, parent := range nb.parentOf {
		nb.Tables.NestedClass.add(NestedClassTableRow{
			NestedClass:    nb.typeDefRID[child],
			EnclosingClass: nb.typeDefRID[parent],
		})
	}
	if err := nb.resolvePendingMethodImpl(); err != nil {
		return nil, err
	}
	if err := nb.resolvePendingSemantics(); err != nil {
		return nil, err
	}
	if err := nb.materializeExplicitReferences(); err != nil {
		return nil, err
	}
	if err := nb.emitResources(); err != nil {
		return nil, err
	}
	if err := nb.resolvePendingCustomAttributes(); err != nil {
		return nil, err
	}

	if err := b.Tables.FinalizePreserving(preservedSortedCounts); err != nil {
		return nil, err
	}
	return b, nil
}

// copyTablesForward copies every row of every table in src into dst
// verbatim, preserving RIDs exactly (dst is assumed empty).
func copyTablesForward(dst, src *TablesStore) {
	copyTable(&dst.Module, &src.Module)
	copyTable(&dst.TypeRef, &src.TypeRef)
	copyTable(&dst.TypeDef, &src.TypeDef)
	copyTable(&dst.Field, &src.Field)
	copyTable(&dst.MethodDef, &src.MethodDef)
	copyTable(&dst.Param, &src.Param)
	copyTable(&dst.InterfaceImpl, &src.InterfaceImpl)
	copyTable(&dst.MemberRef, &src.MemberRef)
	copyTable(&dst.Constant, &src.Constant)
	copyTable(&dst.CustomAttribute, &src.CustomAttribute)
	copyTable(&dst.FieldMarshal, &src.FieldMarshal)
	copyTable(&dst.DeclSecurity, &src.DeclSecurity)
	copyTable(&dst.ClassLayout, &src.ClassLayout)
	copyTable(&dst.FieldLayout, &src.FieldLayout)
	copyTable(&dst.StandAloneSig, &src.StandAloneSig)
	copyTable(&dst.EventMap, &src.EventMap)
	copyTable(&dst.Event, &src.Event)
	copyTable(&dst.PropertyMap, &src.PropertyMap)
	copyTable(&dst.Property, &src.Property)
	copyTable(&dst.MethodSemantics, &src.MethodSemantics)
	copyTable(&dst.MethodImpl, &src.MethodImpl)
	copyTable(&dst.ModuleRef, &src.ModuleRef)
	copyTable(&dst.TypeSpec, &src.TypeSpec)
	copyTable(&dst.ImplMap, &src.ImplMap)
	copyTable(&dst.FieldRVA, &src.FieldRVA)
	copyTable(&dst.Assembly, &src.Assembly)
	copyTable(&dst.AssemblyRef, &src.AssemblyRef)
	copyTable(&dst.FileMD, &src.FileMD)
	copyTable(&dst.ExportedType, &src.ExportedType)
	copyTable(&dst.ManifestResource, &src.ManifestResource)
	copyTable(&dst.NestedClass, &src.NestedClass)
	copyTable(&dst.GenericParam, &src.GenericParam)
	copyTable(&dst.MethodSpec, &src.MethodSpec)
	copyTable(&dst.GenericParamConstraint, &src.GenericParamConstraint)
}

func copyTable[T any](dst, src *table[T]) {
	if len(src.rows) == 0 {
		return
	}
	dst.rows = append(dst.rows[:0], src.rows...)
}
