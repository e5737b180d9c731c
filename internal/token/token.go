// Package token defines the lexical token vocabulary shared by the
// scanner and parser.
package token

import (
	"fmt"

	"github.com/jesperkha/koi/internal/source"
)

// Kind identifies the syntactic category of a Token.
type Kind int

const (
	Invalid Kind = iota
	Newline
	EOF

	// Literals carrying payload.
	IdentLit
	IntLit
	FloatLit
	StringLit
	CharLit

	// Reserved words.
	True
	False
	Return
	Func
	Extern
	Import
	Package
	Pub
	As

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Eq
	EqEq
	NotEq
	Greater
	Less
	GreaterEq
	LessEq
	Colon
	ColonEq
	ColonColon

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	Dot
	Comma

	// Primitive type keywords.
	KwVoid
	KwInt
	KwFloat
	KwString
	KwByte
	KwBool
	KwI8
	KwI16
	KwI32
	KwI64
	KwU8
	KwU16
	KwU32
	KwU64
	KwF32
	KwF64
)

// keywords maps reserved-word lexemes to their Kind. Checked before an
// identifier lexeme is treated as IdentLit.
var keywords = map[string]Kind{
	"true":   True,
	"false":  False,
	"return": Return,
	"func":   Func,
	"extern": Extern,
	"import": Import,
	"package": Package,
	"pub":    Pub,
	"as":     As,

	"void":   KwVoid,
	"int":    KwInt,
	"float":  KwFloat,
	"string": KwString,
	"byte":   KwByte,
	"bool":   KwBool,
	"i8":     KwI8,
	"i16":    KwI16,
	"i32":    KwI32,
	"i64":    KwI64,
	"u8":     KwU8,
	"u16":    KwU16,
	"u32":    KwU32,
	"u64":    KwU64,
	"f32":    KwF32,
	"f64":    KwF64,
}

// operators2 lists the two-character operators, checked before
// single-character operators so the scanner always prefers the
// longest match.
var operators2 = map[string]Kind{
	"==": EqEq,
	"!=": NotEq,
	">=": GreaterEq,
	"<=": LessEq,
	":=": ColonEq,
	"::": ColonColon,
}

var operators1 = map[byte]Kind{
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'%': Percent,
	'=': Eq,
	'>': Greater,
	'<': Less,
	':': Colon,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'.': Dot,
	',': Comma,
}

// Lookup returns the keyword Kind for lexeme, or (Invalid, false) if it is
// not a reserved word.
func Lookup(lexeme string) (Kind, bool) {
	k, ok := keywords[lexeme]
	return k, ok
}

// Lookup2 returns the Kind for a two-character operator lexeme.
func Lookup2(lexeme string) (Kind, bool) {
	k, ok := operators2[lexeme]
	return k, ok
}

// Lookup1 returns the Kind for a single-character operator/punctuation byte.
func Lookup1(b byte) (Kind, bool) {
	k, ok := operators1[b]
	return k, ok
}

// IsPrimitive reports whether k is one of the primitive type keywords.
func IsPrimitive(k Kind) bool {
	return k >= KwVoid && k <= KwF64
}

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "INVALID"
	case Newline:
		return "NEWLINE"
	case EOF:
		return "EOF"
	case IdentLit:
		return "IDENT"
	case IntLit:
		return "INT"
	case FloatLit:
		return "FLOAT"
	case StringLit:
		return "STRING"
	case CharLit:
		return "CHAR"
	case True:
		return "true"
	case False:
		return "false"
	case Return:
		return "return"
	case Func:
		return "func"
	case Extern:
		return "extern"
	case Import:
		return "import"
	case Package:
		return "package"
	case Pub:
		return "pub"
	case As:
		return "as"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Eq:
		return "="
	case EqEq:
		return "=="
	case NotEq:
		return "!="
	case Greater:
		return ">"
	case Less:
		return "<"
	case GreaterEq:
		return ">="
	case LessEq:
		return "<="
	case Colon:
		return ":"
	case ColonEq:
		return ":="
	case ColonColon:
		return "::"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case Dot:
		return "."
	case Comma:
		return ","
	default:
		if IsPrimitive(k) {
			for lex, kk := range keywords {
				if kk == k {
					return lex
				}
			}
		}
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexical unit: its kind, lexeme length in bytes, and
// the positions of its first character and the character immediately
// after it.
type Token struct {
	Kind   Kind
	Length int
	Pos    source.Pos
	End    source.Pos

	// Lit carries the literal payload for IdentLit/IntLit/FloatLit/
	// StringLit/CharLit tokens; it is the raw lexeme otherwise.
	Lit string
	// Int, Float, Char hold parsed literal payloads when Kind demands it.
	Int   int64
	Float float64
	Char  byte
}

func (t Token) String() string {
	if t.Lit != "" {
		return t.Lit
	}
	return t.Kind.String()
}
