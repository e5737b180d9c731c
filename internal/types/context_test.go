package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesPreinterned(t *testing.T) {
	ctx := NewContext()
	i64 := ctx.Primitive(I64)
	assert.Equal(t, i64, ctx.Primitive(I64), "primitive() must be idempotent")
}

func TestInternIdempotent(t *testing.T) {
	ctx := NewContext()
	a := ctx.Intern(TPointer{Elem: ctx.Primitive(I32)})
	b := ctx.Intern(TPointer{Elem: ctx.Primitive(I32)})
	assert.Equal(t, a, b, "structurally equal TypeKinds must intern to the same TypeID")
}

func TestResolveUnwrapsAliasOnly(t *testing.T) {
	ctx := NewContext()
	i32 := ctx.Primitive(I32)
	alias := ctx.Intern(TAlias{Name: "MyInt", Elem: i32})
	unique := ctx.Intern(TUnique{Name: "UserID", Elem: i32})

	assert.True(t, ctx.Equivalent(alias, i32), "alias must be equivalent to its target")
	assert.False(t, ctx.Equivalent(unique, i32), "unique must not be equivalent to its underlying type")

	assert.Equal(t, i32, ctx.Resolve(alias))
	assert.Equal(t, unique, ctx.Resolve(unique), "resolve must not unwrap Unique")
	assert.Equal(t, i32, ctx.DeepResolve(unique), "deep_resolve must unwrap Unique")
}

func TestResolveIdempotent(t *testing.T) {
	ctx := NewContext()
	i32 := ctx.Primitive(I32)
	alias := ctx.Intern(TAlias{Name: "MyInt", Elem: i32})
	require.Equal(t, ctx.Resolve(alias), ctx.Resolve(ctx.Resolve(alias)))

	unique := ctx.Intern(TUnique{Name: "UserID", Elem: i32})
	require.Equal(t, ctx.DeepResolve(unique), ctx.DeepResolve(ctx.DeepResolve(unique)))
}

func TestLookupNoTypeTraps(t *testing.T) {
	ctx := NewContext()
	assert.Panics(t, func() { ctx.Lookup(NoType) })
}

func TestToString(t *testing.T) {
	ctx := NewContext()
	b := NewBuilder(ctx)
	fn := b.Func([]TypeID{b.I64(), b.Bool()}, b.I64())
	assert.Equal(t, "func(i64, bool) i64", ctx.ToString(fn))
}
