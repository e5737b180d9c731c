package types

// Builder provides a fluent API over a Context for constructing types in
// tests, so call sites read as type signatures rather than nested
// TypeKind literals. The checker's evalType calls Context directly.
type Builder struct {
	ctx *Context
}

// NewBuilder wraps ctx in a Builder.
func NewBuilder(ctx *Context) *Builder {
	return &Builder{ctx: ctx}
}

func (b *Builder) Void() TypeID   { return b.ctx.Primitive(Void) }
func (b *Builder) I8() TypeID     { return b.ctx.Primitive(I8) }
func (b *Builder) I16() TypeID    { return b.ctx.Primitive(I16) }
func (b *Builder) I32() TypeID    { return b.ctx.Primitive(I32) }
func (b *Builder) I64() TypeID    { return b.ctx.Primitive(I64) }
func (b *Builder) U8() TypeID     { return b.ctx.Primitive(U8) }
func (b *Builder) U16() TypeID    { return b.ctx.Primitive(U16) }
func (b *Builder) U32() TypeID    { return b.ctx.Primitive(U32) }
func (b *Builder) U64() TypeID    { return b.ctx.Primitive(U64) }
func (b *Builder) F32() TypeID    { return b.ctx.Primitive(F32) }
func (b *Builder) F64() TypeID    { return b.ctx.Primitive(F64) }
func (b *Builder) Bool() TypeID   { return b.ctx.Primitive(Bool) }
func (b *Builder) Byte() TypeID   { return b.ctx.Primitive(Byte) }
func (b *Builder) String() TypeID { return b.ctx.Primitive(String) }

// Pointer interns a pointer-to-elem type.
func (b *Builder) Pointer(elem TypeID) TypeID {
	return b.ctx.Intern(TPointer{Elem: elem})
}

// Array interns an array-of-elem type.
func (b *Builder) Array(elem TypeID) TypeID {
	return b.ctx.Intern(TArray{Elem: elem})
}

// Alias interns a transparent rename of elem.
func (b *Builder) Alias(name string, elem TypeID) TypeID {
	return b.ctx.Intern(TAlias{Name: name, Elem: elem})
}

// Unique interns a nominal wrapper around elem.
func (b *Builder) Unique(name string, elem TypeID) TypeID {
	return b.ctx.Intern(TUnique{Name: name, Elem: elem})
}

// Func interns a function type from params to ret.
func (b *Builder) Func(params []TypeID, ret TypeID) TypeID {
	return b.ctx.Intern(TFunction{Params: params, Ret: ret})
}
