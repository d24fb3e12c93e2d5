package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// tokenType is the kind of a lexed token.
type tokenType int

const (
	tokEOF tokenType = iota

	// Literals and identifiers
	tokNumber
	tokString
	tokIdent

	// Keywords
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
	tokNone

	// Operators
	tokPlus    // +
	tokMinus   // -
	tokStar    // *
	tokSlash   // /
	tokPercent // %
	tokEq      // ==
	tokNeq     // !=
	tokLt      // <
	tokLte     // <=
	tokGt      // >
	tokGte     // >=

	// Grouping
	tokLParen // (
	tokRParen // )

	// Whitelist sentinels: recognized but categorically rejected by the
	// parser with a structural error naming the construct.
	tokDot     // .  attribute access
	tokLBrack  // [  indexing / list literal
	tokRBrack  // ]
	tokComma   // ,
	tokAssign  // =
	tokLBrace  // {
	tokRBrace  // }
)

// token is a single lexed token with its source offset.
type token struct {
	typ tokenType
	lit string
	num float64
	pos int
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return fmt.Sprintf("number %s", t.lit)
	case tokString:
		return fmt.Sprintf("string %q", t.lit)
	case tokIdent:
		return fmt.Sprintf("name %q", t.lit)
	default:
		return fmt.Sprintf("%q", t.lit)
	}
}

// keywords maps reserved words to their token types. Both Python-style
// (True/False/None) and lowercase spellings are accepted so that rules
// written against the JSON vocabulary also parse.
var keywords = map[string]tokenType{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"True":  tokTrue,
	"true":  tokTrue,
	"False": tokFalse,
	"false": tokFalse,
	"None":  tokNone,
	"null":  tokNone,
}

// lexer turns a condition string into a token stream.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// next returns the next token, or a *SyntaxError for characters outside the
// whitelist.
func (l *lexer) next() (token, error) {
	l.skipSpace()

	start := l.pos
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]

	switch {
	case c >= '0' && c <= '9', c == '.' && l.peekDigit():
		return l.lexNumber()
	case c == '\'' || c == '"':
		return l.lexString(c)
	case isIdentStart(rune(c)):
		return l.lexIdent()
	}

	// Single- and double-character operators.
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return token{typ: tokEq, lit: two, pos: start}, nil
	case "!=":
		l.pos += 2
		return token{typ: tokNeq, lit: two, pos: start}, nil
	case "<=":
		l.pos += 2
		return token{typ: tokLte, lit: two, pos: start}, nil
	case ">=":
		l.pos += 2
		return token{typ: tokGte, lit: two, pos: start}, nil
	}

	l.pos++
	one := string(c)
	switch c {
	case '+':
		return token{typ: tokPlus, lit: one, pos: start}, nil
	case '-':
		return token{typ: tokMinus, lit: one, pos: start}, nil
	case '*':
		return token{typ: tokStar, lit: one, pos: start}, nil
	case '/':
		return token{typ: tokSlash, lit: one, pos: start}, nil
	case '%':
		return token{typ: tokPercent, lit: one, pos: start}, nil
	case '<':
		return token{typ: tokLt, lit: one, pos: start}, nil
	case '>':
		return token{typ: tokGt, lit: one, pos: start}, nil
	case '(':
		return token{typ: tokLParen, lit: one, pos: start}, nil
	case ')':
		return token{typ: tokRParen, lit: one, pos: start}, nil
	case '.':
		return token{typ: tokDot, lit: one, pos: start}, nil
	case '[':
		return token{typ: tokLBrack, lit: one, pos: start}, nil
	case ']':
		return token{typ: tokRBrack, lit: one, pos: start}, nil
	case ',':
		return token{typ: tokComma, lit: one, pos: start}, nil
	case '=':
		return token{typ: tokAssign, lit: one, pos: start}, nil
	case '{':
		return token{typ: tokLBrace, lit: one, pos: start}, nil
	case '}':
		return token{typ: tokRBrace, lit: one, pos: start}, nil
	}

	return token{}, syntaxErrorf(start, "unexpected character %q", c)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) peekDigit() bool {
	return l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9'
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			l.pos++
			continue
		}
		break
	}

	lit := l.src[start:l.pos]
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return token{}, syntaxErrorf(start, "malformed number %q", lit)
	}
	return token{typ: tokNumber, lit: lit, num: n, pos: start}, nil
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return token{typ: tokString, lit: sb.String(), pos: start}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			esc := l.src[l.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			default:
				return token{}, syntaxErrorf(l.pos-1, "unknown escape sequence \\%c", esc)
			}
			l.pos++
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}

	return token{}, syntaxErrorf(start, "unterminated string literal")
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}

	lit := l.src[start:l.pos]
	if typ, ok := keywords[lit]; ok {
		return token{typ: typ, lit: lit, pos: start}, nil
	}
	return token{typ: tokIdent, lit: lit, pos: start}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
