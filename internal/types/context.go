package types

// Context owns the vector of Type, the interning map, and the node-to-type
// annotation table (spec.md §3 Type Context, §4.4). Primitives are
// pre-interned deterministically at construction so primitive() is O(1).
type Context struct {
	types    []Type
	interned map[string]TypeID
	prims    [len(allPrimitives)]TypeID

	// annotations maps a NodeID (declared by internal/ast) to its
	// resolved TypeID; it is filled only through Annotate, which the
	// checker does not call. Stored as plain int keys here to avoid
	// importing internal/ast.
	annotations map[int]TypeID
}

// NewContext creates a Context with every primitive kind pre-interned.
func NewContext() *Context {
	c := &Context{
		interned:    make(map[string]TypeID),
		annotations: make(map[int]TypeID),
	}
	for i, p := range allPrimitives {
		id := c.intern(TPrimitive{Kind: p})
		c.prims[i] = id
		_ = i
	}
	return c
}

// Intern returns the TypeID for kind, assigning a new one only if no
// structurally equal kind has been interned before (spec.md §4.4:
// "structurally equal kinds map to the same id").
func (c *Context) Intern(kind TypeKind) TypeID {
	return c.intern(kind)
}

func (c *Context) intern(kind TypeKind) TypeID {
	k := kind.key()
	if id, ok := c.interned[k]; ok {
		return id
	}
	id := TypeID(len(c.types))
	c.types = append(c.types, Type{ID: id, Kind: kind})
	c.interned[k] = id
	return id
}

// Lookup returns the Type for id. Looking up NoType is a compiler bug and
// traps, matching the Rust original's assert (spec.md §4.4).
func (c *Context) Lookup(id TypeID) *Type {
	if id == NoType {
		panic("types: lookup of NoType")
	}
	if int(id) < 0 || int(id) >= len(c.types) {
		panic("types: lookup of unknown TypeID")
	}
	return &c.types[id]
}

// Primitive returns the interned TypeID for p.
func (c *Context) Primitive(p Primitive) TypeID {
	for i, pp := range allPrimitives {
		if pp == p {
			return c.prims[i]
		}
	}
	panic("types: unknown primitive")
}

// Void returns the interned TypeID for the Void primitive.
func (c *Context) Void() TypeID { return c.Primitive(Void) }

// Resolve transparently unwraps Alias (only), returning the underlying
// TypeID. Repeated application is idempotent (spec.md §8).
func (c *Context) Resolve(id TypeID) TypeID {
	for {
		t := c.Lookup(id)
		alias, ok := t.Kind.(TAlias)
		if !ok {
			return id
		}
		id = alias.Elem
	}
}

// DeepResolve additionally unwraps Unique, used only by the IR emitter to
// obtain storage-class equivalence (spec.md §4.4, §9: preserve the
// asymmetry with Resolve).
func (c *Context) DeepResolve(id TypeID) TypeID {
	for {
		id = c.Resolve(id)
		t := c.Lookup(id)
		unique, ok := t.Kind.(TUnique)
		if !ok {
			return id
		}
		id = unique.Elem
	}
}

// Equivalent reports whether a and b resolve (shallow, alias-only) to the
// same TypeID (spec.md §4.4: equivalent(unique-i32, i32) = false).
func (c *Context) Equivalent(a, b TypeID) bool {
	return c.Resolve(a) == c.Resolve(b)
}

// Annotate records the resolved type for a node, keyed by its NodeID
// (passed as a plain int to avoid importing internal/ast here).
func (c *Context) Annotate(nodeID int, id TypeID) {
	c.annotations[nodeID] = id
}

// TypeOf returns the annotated type for a node, if any.
func (c *Context) TypeOf(nodeID int) (TypeID, bool) {
	id, ok := c.annotations[nodeID]
	return id, ok
}

// ToString renders id as a human-readable type name, the way diagnostics
// quote "expected 'X', got 'Y'" (spec.md §4.4 to_string).
func (c *Context) ToString(id TypeID) string {
	t := c.Lookup(id)
	switch k := t.Kind.(type) {
	case TPrimitive:
		return k.Kind.String()
	case TPointer:
		return "*" + c.ToString(k.Elem)
	case TArray:
		return "[]" + c.ToString(k.Elem)
	case TAlias:
		return k.Name
	case TUnique:
		return k.Name
	case TFunction:
		s := "func("
		for i, p := range k.Params {
			if i > 0 {
				s += ", "
			}
			s += c.ToString(p)
		}
		s += ")"
		if rs := c.ToString(k.Ret); rs != "void" {
			s += " " + rs
		}
		return s
	default:
		return "?"
	}
}
