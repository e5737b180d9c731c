// Package lexer turns a source.Source into a stream of tokens, per
// spec.md §4.1. It never stops at the first error: all lexical errors
// are accumulated and returned together.
package lexer

import (
	"log/slog"
	"strconv"

	"github.com/jesperkha/koi/internal/diag"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/token"
)

// Scanner tokenizes a single Source.
type Scanner struct {
	src *source.Source

	pos       int
	row       int
	col       int
	lineBegin int

	diag *diag.Bag
	log  *slog.Logger
}

// New creates a Scanner over src. log may be nil.
func New(src *source.Source, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{src: src, diag: diag.NewBag(), log: log}
}

// Scan tokenizes the entire source, returning the accumulated token
// stream and diagnostics bag (empty on success).
func Scan(src *source.Source, log *slog.Logger) ([]token.Token, *diag.Bag) {
	s := New(src, log)
	return s.scan()
}

func (s *Scanner) scan() ([]token.Token, *diag.Bag) {
	s.log.Info("scanning source", "file", s.src.Filepath)

	var toks []token.Token
	for !s.eof() {
		tok, ok := s.next()
		if !ok {
			// Recover: consume until next whitespace, then keep going.
			for !s.eof() && !isWhitespace(s.cur()) {
				s.pos++
			}
			continue
		}
		if tok.Kind == token.Invalid {
			continue // whitespace/comment, not emitted
		}
		toks = append(toks, tok)
	}

	if !s.diag.Empty() {
		return nil, s.diag
	}
	s.log.Debug("scan complete", "tokens", len(toks))
	return toks, s.diag
}

func (s *Scanner) eof() bool { return s.pos >= len(s.src.Bytes) }

func (s *Scanner) cur() byte {
	if s.eof() {
		return 0
	}
	return s.src.Bytes[s.pos]
}

func (s *Scanner) at(i int) byte {
	if i >= len(s.src.Bytes) {
		return 0
	}
	return s.src.Bytes[i]
}

func (s *Scanner) peek() byte { return s.at(s.pos + 1) }

func (s *Scanner) pos_() source.Pos {
	return source.Pos{
		Source:    s.src.ID,
		Offset:    s.pos,
		Row:       s.row,
		Col:       s.col,
		LineBegin: s.lineBegin,
	}
}

func isWhitespace(b byte) bool   { return b == ' ' || b == '\t' || b == '\r' }
func isAlpha(b byte) bool        { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool        { return b >= '0' && b <= '9' }
func isAlphaNum(b byte) bool     { return isAlpha(b) || isDigit(b) }

// next scans and returns the next token. ok is false if a diagnostic was
// raised (caller should recover and keep scanning).
func (s *Scanner) next() (token.Token, bool) {
	for !s.eof() && isWhitespace(s.cur()) {
		s.pos++
		s.col++
	}
	if s.eof() {
		return token.Token{}, true
	}

	start := s.pos_()

	switch c := s.cur(); {
	case c == '\n':
		s.pos++
		s.row++
		s.col = 0
		s.lineBegin = s.pos
		return token.Token{Kind: token.Newline, Length: 1, Pos: start, End: s.pos_()}, true

	case c == '/' && s.peek() == '/':
		for !s.eof() && s.cur() != '\n' {
			s.pos++
			s.col++
		}
		return token.Token{Kind: token.Invalid}, true

	case c == '/' && s.peek() == '*':
		return s.scanBlockComment(start)

	case isAlpha(c):
		return s.scanIdent(start)

	case isDigit(c):
		return s.scanNumber(start)

	case c == '"':
		return s.scanString(start)

	case c == '\'':
		return s.scanChar(start)

	default:
		return s.scanOperator(start)
	}
}

func (s *Scanner) scanBlockComment(start source.Pos) (token.Token, bool) {
	depth := 1
	i := s.pos + 2
	for i+1 < len(s.src.Bytes) && depth > 0 {
		c1, c2 := s.at(i), s.at(i+1)
		if c1 == '/' && c2 == '*' {
			depth++
			i += 2
			continue
		}
		if c1 == '*' && c2 == '/' {
			depth--
			i += 2
			continue
		}
		i++
	}
	if depth != 0 {
		s.diag.Add(diag.NewCodeError("block comment was not terminated", start, 2, ""))
		s.pos = len(s.src.Bytes)
		return token.Token{}, false
	}
	for s.pos < i {
		if s.cur() == '\n' {
			s.row++
			s.col = 0
			s.lineBegin = s.pos + 1
		} else {
			s.col++
		}
		s.pos++
	}
	return token.Token{Kind: token.Invalid}, true
}

func (s *Scanner) scanIdent(start source.Pos) (token.Token, bool) {
	begin := s.pos
	for !s.eof() && isAlphaNum(s.cur()) {
		s.pos++
		s.col++
	}
	lexeme := string(s.src.Bytes[begin:s.pos])
	length := s.pos - begin
	if kind, ok := token.Lookup(lexeme); ok {
		return token.Token{Kind: kind, Length: length, Pos: start, End: s.pos_(), Lit: lexeme}, true
	}
	return token.Token{Kind: token.IdentLit, Length: length, Pos: start, End: s.pos_(), Lit: lexeme}, true
}

func (s *Scanner) scanNumber(start source.Pos) (token.Token, bool) {
	begin := s.pos
	for !s.eof() && isDigit(s.cur()) {
		s.pos++
		s.col++
	}
	isFloat := false
	if s.cur() == '.' && isDigit(s.peek()) {
		isFloat = true
		s.pos++
		s.col++
		for !s.eof() && isDigit(s.cur()) {
			s.pos++
			s.col++
		}
	}
	lexeme := string(s.src.Bytes[begin:s.pos])
	length := s.pos - begin

	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			s.diag.Add(diag.NewCodeError("invalid number literal", start, length, ""))
			return token.Token{}, false
		}
		return token.Token{Kind: token.FloatLit, Length: length, Pos: start, End: s.pos_(), Lit: lexeme, Float: f}, true
	}

	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		s.diag.Add(diag.NewCodeError("invalid number literal", start, length, ""))
		return token.Token{}, false
	}
	return token.Token{Kind: token.IntLit, Length: length, Pos: start, End: s.pos_(), Lit: lexeme, Int: n}, true
}

func (s *Scanner) scanString(start source.Pos) (token.Token, bool) {
	begin := s.pos
	s.pos++
	s.col++
	for !s.eof() && s.cur() != '"' && s.cur() != '\n' {
		s.pos++
		s.col++
	}
	if s.eof() || s.cur() != '"' {
		s.diag.Add(diag.NewCodeError("expected end quote", s.pos_(), 1, ""))
		return token.Token{}, false
	}
	s.pos++
	s.col++
	lexeme := string(s.src.Bytes[begin+1 : s.pos-1])
	length := s.pos - begin
	return token.Token{Kind: token.StringLit, Length: length, Pos: start, End: s.pos_(), Lit: lexeme}, true
}

func (s *Scanner) scanChar(start source.Pos) (token.Token, bool) {
	begin := s.pos
	s.pos++
	s.col++
	for !s.eof() && s.cur() != '\'' && s.cur() != '\n' {
		s.pos++
		s.col++
	}
	if s.eof() || s.cur() != '\'' {
		s.diag.Add(diag.NewCodeError("expected end quote", s.pos_(), 1, ""))
		return token.Token{}, false
	}
	s.pos++
	s.col++
	length := s.pos - begin
	if length != 3 {
		s.diag.Add(diag.NewCodeError("byte string must be exactly one character", start, length, ""))
		return token.Token{}, false
	}
	ch := s.src.Bytes[begin+1]
	return token.Token{Kind: token.CharLit, Length: length, Pos: start, End: s.pos_(), Char: ch, Lit: string(ch)}, true
}

func (s *Scanner) scanOperator(start source.Pos) (token.Token, bool) {
	// Prefer the longest match: try the two-character operator first, but
	// only if the character after it is not itself alphanumeric.
	if s.pos+1 < len(s.src.Bytes) {
		two := string(s.src.Bytes[s.pos : s.pos+2])
		if kind, ok := token.Lookup2(two); ok && !isAlphaNum(s.at(s.pos+2)) {
			s.pos += 2
			s.col += 2
			return token.Token{Kind: kind, Length: 2, Pos: start, End: s.pos_(), Lit: two}, true
		}
	}
	if kind, ok := token.Lookup1(s.cur()); ok {
		lexeme := string(s.cur())
		s.pos++
		s.col++
		return token.Token{Kind: kind, Length: 1, Pos: start, End: s.pos_(), Lit: lexeme}, true
	}
	s.diag.Add(diag.NewCodeError("illegal token", start, 1, ""))
	s.pos++
	s.col++
	return token.Token{}, false
}
