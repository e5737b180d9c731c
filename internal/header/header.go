// Package header implements the module header codec (spec.md §4.11): a
// compact, self-contained binary encoding of a module's exported symbols
// and the type structures they transitively reference.
//
// The encoding is custom (not a generic serialization framework) because
// spec.md explicitly requires header-local sequential type indices
// assigned by collecting the transitive closure of referenced TypeIds,
// which has no direct mapping onto an off-the-shelf wire format; the
// corpus's own header codec (module/header.rs in the retrieved Rust
// original) similarly hand-rolls its own structural encoder rather than
// reaching for a general serializer.
package header

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jesperkha/koi/internal/module"
	"github.com/jesperkha/koi/internal/types"
)

// kindTag identifies a TypeKind variant in the structural encoding.
type kindTag byte

const (
	tagPrimitive kindTag = iota
	tagPointer
	tagArray
	tagAlias
	tagUnique
	tagFunction
)

// symKind mirrors module.OriginKind for the wire format.
type symKind byte

const (
	symModule symKind = iota
	symExtern
	symLibrary
)

// Encode serializes exports (a module's exported symbol list) into a
// binary header blob (spec.md §4.11 steps 1-4).
func Encode(ctx *types.Context, exports *module.SymbolList) []byte {
	var buf bytes.Buffer

	localIndex := make(map[types.TypeID]uint32)
	visiting := make(map[types.TypeID]bool)
	var order []types.TypeID

	// collect assigns a type its header-local index in post-order: every
	// type it references is collected (and indexed) first. Decode relies
	// on this to resolve a referenced index immediately, since it reads
	// types in the same order they were appended to order.
	var collect func(id types.TypeID)
	collect = func(id types.TypeID) {
		if _, ok := localIndex[id]; ok {
			return
		}
		if visiting[id] {
			return // structurally self-referential type; break the cycle
		}
		visiting[id] = true

		switch k := ctx.Lookup(id).Kind.(type) {
		case types.TPointer:
			collect(k.Elem)
		case types.TArray:
			collect(k.Elem)
		case types.TAlias:
			collect(k.Elem)
		case types.TUnique:
			collect(k.Elem)
		case types.TFunction:
			for _, p := range k.Params {
				collect(p)
			}
			collect(k.Ret)
		}

		delete(visiting, id)
		localIndex[id] = uint32(len(order))
		order = append(order, id)
	}

	for _, sym := range exports.All() {
		collect(sym.TypeID)
	}

	writeU32(&buf, uint32(len(order)))
	for _, id := range order {
		writeType(&buf, ctx.Lookup(id).Kind, localIndex)
	}

	all := exports.All()
	writeU32(&buf, uint32(len(all)))
	for _, sym := range all {
		writeString(&buf, sym.Name)
		writeU32(&buf, localIndex[sym.TypeID])
		buf.WriteByte(byte(symKindOf(sym.Origin.Kind)))
		writeBool(&buf, sym.NoMangle)
		writeBool(&buf, sym.IsInline)
		writeBool(&buf, sym.IsNaked)
	}

	return buf.Bytes()
}

func symKindOf(k module.OriginKind) symKind {
	switch k {
	case module.OriginExtern:
		return symExtern
	case module.OriginLibrary:
		return symLibrary
	default:
		return symModule
	}
}

// Decode reconstructs a module's export set from a header blob, interning
// every referenced type through ctx (spec.md §4.11: "decode types in
// order, interning each through the consumer's Type Context; this
// re-assigns stable TypeIds"). The returned module has all symbols
// exported, per spec.
func Decode(ctx *types.Context, path module.ModulePath, data []byte) (*module.Module, error) {
	r := bytes.NewReader(data)

	numTypes, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("header: reading type count: %w", err)
	}

	// localIDs accumulates decoded TypeIDs in the same order Encode wrote
	// them: post-order, so every index a type references was written (and
	// is decoded) before that type itself. Reading in this order means
	// localIDs[idx] is always already populated when referenced.
	localIDs := make([]types.TypeID, numTypes)
	for i := uint32(0); i < numTypes; i++ {
		id, err := readType(r, ctx, localIDs)
		if err != nil {
			return nil, fmt.Errorf("header: decoding type %d: %w", i, err)
		}
		localIDs[i] = id
	}

	numSyms, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("header: reading symbol count: %w", err)
	}

	exports := module.NewSymbolList()
	for i := uint32(0); i < numSyms; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("header: decoding symbol %d name: %w", i, err)
		}
		typeIdx, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("header: decoding symbol %d type index: %w", i, err)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("header: decoding symbol %d kind: %w", i, err)
		}
		noMangle, err := readBool(r)
		if err != nil {
			return nil, err
		}
		isInline, err := readBool(r)
		if err != nil {
			return nil, err
		}
		isNaked, err := readBool(r)
		if err != nil {
			return nil, err
		}

		origin := module.Origin{Path: path.Full()}
		switch symKind(kindByte) {
		case symExtern:
			origin.Kind = module.OriginExtern
		case symLibrary:
			origin.Kind = module.OriginLibrary
		default:
			origin.Kind = module.OriginModule
		}

		sym := module.Symbol{
			Name:       name,
			TypeID:     localIDs[typeIdx],
			Origin:     origin,
			IsExported: true,
			NoMangle:   noMangle,
			IsInline:   isInline,
			IsNaked:    isNaked,
		}
		if err := exports.Add(sym); err != nil {
			return nil, fmt.Errorf("header: duplicate export %q", name)
		}
	}

	return &module.Module{
		Path:    path,
		Exports: exports,
		Kind:    module.KindExternalPackage,
	}, nil
}

func writeType(buf *bytes.Buffer, kind types.TypeKind, localIndex map[types.TypeID]uint32) {
	switch k := kind.(type) {
	case types.TPrimitive:
		buf.WriteByte(byte(tagPrimitive))
		buf.WriteByte(byte(k.Kind))
	case types.TPointer:
		buf.WriteByte(byte(tagPointer))
		writeU32(buf, localIndex[k.Elem])
	case types.TArray:
		buf.WriteByte(byte(tagArray))
		writeU32(buf, localIndex[k.Elem])
	case types.TAlias:
		buf.WriteByte(byte(tagAlias))
		writeString(buf, k.Name)
		writeU32(buf, localIndex[k.Elem])
	case types.TUnique:
		buf.WriteByte(byte(tagUnique))
		writeString(buf, k.Name)
		writeU32(buf, localIndex[k.Elem])
	case types.TFunction:
		buf.WriteByte(byte(tagFunction))
		writeU32(buf, uint32(len(k.Params)))
		for _, p := range k.Params {
			writeU32(buf, localIndex[p])
		}
		writeU32(buf, localIndex[k.Ret])
	}
}

func readType(r *bytes.Reader, ctx *types.Context, localIDs []types.TypeID) (types.TypeID, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return types.NoType, err
	}
	switch kindTag(tagByte) {
	case tagPrimitive:
		pb, err := r.ReadByte()
		if err != nil {
			return types.NoType, err
		}
		return ctx.Primitive(types.Primitive(pb)), nil
	case tagPointer:
		idx, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		return ctx.Intern(types.TPointer{Elem: localIDs[idx]}), nil
	case tagArray:
		idx, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		return ctx.Intern(types.TArray{Elem: localIDs[idx]}), nil
	case tagAlias:
		name, err := readString(r)
		if err != nil {
			return types.NoType, err
		}
		idx, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		return ctx.Intern(types.TAlias{Name: name, Elem: localIDs[idx]}), nil
	case tagUnique:
		name, err := readString(r)
		if err != nil {
			return types.NoType, err
		}
		idx, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		return ctx.Intern(types.TUnique{Name: name, Elem: localIDs[idx]}), nil
	case tagFunction:
		n, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		params := make([]types.TypeID, n)
		for i := range params {
			idx, err := readU32(r)
			if err != nil {
				return types.NoType, err
			}
			params[i] = localIDs[idx]
		}
		retIdx, err := readU32(r)
		if err != nil {
			return types.NoType, err
		}
		return ctx.Intern(types.TFunction{Params: params, Ret: localIDs[retIdx]}), nil
	default:
		return types.NoType, fmt.Errorf("header: unknown type tag %d", tagByte)
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}
