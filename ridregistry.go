package mdwriter

// ridRegistry maps a logical reference entity to its assigned RID, by
// reference identity (§4.5). One instance is kept per deduplicated entity
// kind in the builder (typeRefs, memberRefs, moduleRefs, assemblyRefs,
// typeSpecs, methodSpecs, standAloneSigs, exportedTypes, files). Go
// interface values compare by (type, pointer) for our entity kinds, which
// is exactly reference identity since every entity is always held as a
// pointer.
type ridRegistry[K comparable] struct {
	rid map[K]uint32
}

func newRIDRegistry[K comparable]() *ridRegistry[K] {
	return &ridRegistry[K]{rid: make(map[K]uint32)}
}

// tryGet returns the RID assigned to key, if any.
func (r *ridRegistry[K]) tryGet(key K) (uint32, bool) {
	rid, ok := r.rid[key]
	return rid, ok
}

// insert installs a new mapping. It panics on a duplicate key: that is a
// builder logic error (the caller should have used tryGet first), never a
// condition the input graph can trigger.
func (r *ridRegistry[K]) insert(key K, rid uint32) {
	if _, ok := r.rid[key]; ok {
		panic(ErrDuplicateEntity)
	}
	r.rid[key] = rid
}

// set overwrites a tentative placeholder (§3 invariant 8, §9 "Cyclic
// references") with the final RID. Unlike insert, set is expected to
// follow an earlier tentative insert(key, 0).
func (r *ridRegistry[K]) set(key K, rid uint32) {
	r.rid[key] = rid
}
