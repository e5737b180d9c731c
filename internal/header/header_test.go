package header_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/header"
	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/types"
)

// TestRoundTripPreservesSymbolsAndTypes exercises spec.md §8's "decode(encode(E))
// == E up to interning" property: the type identities may change (decoding
// reinterns every type through a fresh Context) but every symbol's name,
// export flags, and structural type shape must come back unchanged.
func TestRoundTripPreservesSymbolsAndTypes(t *testing.T) {
	ctx := types.NewContext()
	b := types.NewBuilder(ctx)

	ptrToI32 := b.Pointer(b.I32())
	fnType := b.Func([]types.TypeID{ptrToI32, b.Bool()}, b.String())

	exports := module.NewSymbolList()
	require.NoError(t, exports.Add(module.Symbol{
		Name:     "Parse",
		TypeID:   fnType,
		Origin:   module.Origin{Kind: module.OriginModule, Path: "strings"},
		NoMangle: false,
		IsInline: true,
	}))
	require.NoError(t, exports.Add(module.Symbol{
		Name:   "MaxLen",
		TypeID: b.I64(),
		Origin: module.Origin{Kind: module.OriginModule, Path: "strings"},
	}))

	blob := header.Encode(ctx, exports)
	require.NotEmpty(t, blob)

	decodedCtx := types.NewContext()
	path := module.NewModulePath("strings")
	mod, err := header.Decode(decodedCtx, path, blob)
	require.NoError(t, err)
	require.Equal(t, module.KindExternalPackage, mod.Kind)
	require.Equal(t, 2, mod.Exports.Len())

	parse, ok := mod.Exports.Get("Parse")
	require.True(t, ok)
	require.True(t, parse.IsExported)
	require.True(t, parse.IsInline)
	require.Equal(t, ctx.ToString(fnType), decodedCtx.ToString(parse.TypeID))

	maxLen, ok := mod.Exports.Get("MaxLen")
	require.True(t, ok)
	require.Equal(t, "i64", decodedCtx.ToString(maxLen.TypeID))
}

func TestEncodeDeduplicatesSharedTypeReferences(t *testing.T) {
	ctx := types.NewContext()
	b := types.NewBuilder(ctx)
	i32 := b.I32()

	exports := module.NewSymbolList()
	require.NoError(t, exports.Add(module.Symbol{Name: "a", TypeID: b.Pointer(i32), Origin: module.Origin{Kind: module.OriginModule, Path: "m"}}))
	require.NoError(t, exports.Add(module.Symbol{Name: "b", TypeID: b.Pointer(i32), Origin: module.Origin{Kind: module.OriginModule, Path: "m"}}))

	blob := header.Encode(ctx, exports)

	decodedCtx := types.NewContext()
	mod, err := header.Decode(decodedCtx, module.NewModulePath("m"), blob)
	require.NoError(t, err)

	a, _ := mod.Exports.Get("a")
	c, _ := mod.Exports.Get("b")
	require.Equal(t, a.TypeID, c.TypeID, "identical structural types must intern to the same decoded TypeID")
}
