// Package source owns source texts and their line-offset indices, and
// assigns the stable source identifiers used by every Pos in the compiler.
package source

import (
	"sync/atomic"

	"golang.org/x/text/unicode/norm"
)

// ID identifies a Source within a Map. Stable for the lifetime of a build.
type ID int

var nextID atomic.Int64

// Pos is an immutable source position: which source, its byte offset, and
// the precomputed row/column/line-begin-offset used for diagnostics.
type Pos struct {
	Source     ID
	Offset     int
	Row        int
	Col        int
	LineBegin  int
}

// Source owns one file's byte contents and a precomputed list of line-start
// offsets, so line-text retrieval for diagnostics is O(1).
type Source struct {
	ID       ID
	Filepath string
	Bytes    []byte
	lines    []int
}

// New ingests raw bytes for filepath, stripping a UTF-8 BOM and normalizing
// to NFC so that lexically equivalent source produces identical tokens
// regardless of encoding variation.
func New(filepath string, raw []byte) *Source {
	raw = normalize(raw)
	s := &Source{
		ID:       ID(nextID.Add(1) - 1),
		Filepath: filepath,
		Bytes:    raw,
		lines:    lineBeginnings(raw),
	}
	return s
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func normalize(src []byte) []byte {
	if len(src) >= 3 && src[0] == bom[0] && src[1] == bom[1] && src[2] == bom[2] {
		src = src[3:]
	}
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}

func lineBeginnings(src []byte) []int {
	lines := make([]int, 0, 16)
	i := 0
	for i < len(src) {
		lines = append(lines, i)
		end := endOfLine(src, i)
		if end == i {
			i++
			continue
		}
		i = end + 1
	}
	if len(lines) == 0 {
		lines = append(lines, 0)
	}
	return lines
}

func endOfLine(src []byte, offset int) int {
	for i := offset; i < len(src); i++ {
		if src[i] == '\n' {
			return i
		}
	}
	if len(src) == 0 {
		return 0
	}
	return len(src) - 1
}

// Line returns the full text of the given 0-based row, without its
// trailing newline.
func (s *Source) Line(row int) string {
	if row < 0 || row >= len(s.lines) {
		panic("source: row out of bounds")
	}
	start := s.lines[row]
	end := endOfLine(s.Bytes, start)
	if end < len(s.Bytes) && s.Bytes[end] == '\n' {
		return s.strRange(start, end)
	}
	return s.strRange(start, end+1)
}

func (s *Source) strRange(from, to int) string {
	if from > to {
		panic("source: invalid range")
	}
	if to > len(s.Bytes) {
		to = len(s.Bytes)
	}
	return string(s.Bytes[from:to])
}

// NumLines returns the number of indexed lines.
func (s *Source) NumLines() int { return len(s.lines) }

// Map owns all Sources for a build and hands out read-only views keyed by
// ID. The orchestrator owns the Map for the duration of a build so that
// Pos values remain valid for as long as diagnostics need them.
type Map struct {
	sources map[ID]*Source
}

// NewMap creates an empty source map.
func NewMap() *Map {
	return &Map{sources: make(map[ID]*Source)}
}

// Add ingests raw bytes under filepath and registers the resulting Source.
func (m *Map) Add(filepath string, raw []byte) *Source {
	s := New(filepath, raw)
	m.sources[s.ID] = s
	return s
}

// Get returns the Source for id, or nil if unknown.
func (m *Map) Get(id ID) *Source {
	return m.sources[id]
}

// Len reports how many sources are registered.
func (m *Map) Len() int { return len(m.sources) }
