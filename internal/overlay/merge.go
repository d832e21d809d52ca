package overlay

// Merge overlays overrides onto generated and prunes disallowed resolvers
// from the result. Neither argument is modified.
//
// Precedence:
//   - falsy overrides (absent, null, false) pass generated through;
//   - composite generated entries are merged recursively into the matching
//     override slot, creating an empty slot when it is absent or null;
//   - scalar generated entries fill override slots that are falsy and not
//     booleans, so "" and 0 fall back to the generated value while an
//     explicit false is kept;
//   - entries that only exist in overrides are kept.
func Merge(generated, overrides Value) Value {
	var out Value
	if !overrides.Truthy() {
		out = generated.Clone()
	} else {
		out = mergeInto(generated, overrides.Clone())
	}
	Prune(out)
	return out
}

// mergeInto merges the composite gen into dst, which is owned by the caller.
func mergeInto(gen, dst Value) Value {
	switch gen.kind {
	case Object:
		if dst.kind != Object {
			return dst
		}
		for _, key := range gen.obj.keys {
			cur, _ := dst.Get(key)
			dst.Set(key, mergeEntry(gen.obj.vals[key], cur))
		}
		return dst
	case List:
		if dst.kind != List {
			return dst
		}
		for i, g := range gen.list {
			if i < len(dst.list) {
				dst.list[i] = mergeEntry(g, dst.list[i])
			} else {
				dst.list = append(dst.list, mergeEntry(g, Value{}))
			}
		}
		return dst
	}
	return dst
}

func mergeEntry(gen, cur Value) Value {
	switch gen.kind {
	case Object:
		if cur.kind == Null {
			cur = NewObject()
		}
		return mergeInto(gen, cur)
	case List:
		if cur.kind == Null {
			cur = Value{kind: List}
		}
		return mergeInto(gen, cur)
	}
	if !cur.Truthy() && cur.kind != Bool {
		return gen
	}
	return cur
}

// Prune deletes, for every direct child of root that carries a "resolvers"
// object, each resolver entry without a truthy "allowed". Deeper levels are
// not inspected. Prune modifies root in place.
func Prune(root Value) {
	if root.kind != Object {
		return
	}
	for _, typeName := range root.obj.keys {
		resolvers, ok := root.obj.vals[typeName].Get("resolvers")
		if !ok || resolvers.kind != Object {
			continue
		}
		for _, method := range resolvers.Keys() {
			entry, _ := resolvers.Get(method)
			if allowed, _ := entry.Get("allowed"); !allowed.Truthy() {
				resolvers.Delete(method)
			}
		}
	}
}

// ResolverCount returns how many resolver entries the direct children of
// root carry, the same entries Prune inspects.
func ResolverCount(root Value) int {
	if root.kind != Object {
		return 0
	}
	n := 0
	for _, typeName := range root.obj.keys {
		if resolvers, ok := root.obj.vals[typeName].Get("resolvers"); ok {
			n += resolvers.Len()
		}
	}
	return n
}
