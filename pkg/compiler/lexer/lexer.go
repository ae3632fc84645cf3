// Package lexer provides lexical analysis for BNA scripts (.bna files).
//
// BNA is line oriented: the lexer reports line breaks as NEWLINE tokens so the
// parser can tell where one statement ends.
package lexer

import (
	"strings"

	"github.com/zurustar/bna/pkg/compiler/token"
	"github.com/zurustar/bna/pkg/value"
)

// Lexer tokenizes BNA source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '\n':
		tok = l.newToken(token.NEWLINE, l.ch)
		l.readChar()
		l.line++
		l.column = 1
		return tok
	case '#':
		tok.Type = token.COMMENT
		tok.Literal = l.readComment()
		return tok
	case '^':
		tok = l.newToken(token.CARET, l.ch)
	case ':':
		tok = l.newToken(token.COLON, l.ch)
	case '@':
		tok = l.newToken(token.AT, l.ch)
	case '(':
		tok = l.newToken(token.LPAREN, l.ch)
	case ')':
		tok = l.newToken(token.RPAREN, l.ch)
	case ',':
		tok = l.newToken(token.COMMA, l.ch)
	case '>':
		tok = l.newToken(token.GT, l.ch)
	case '<':
		tok = l.newToken(token.LT, l.ch)
	case '=':
		tok = l.newToken(token.EQ, l.ch)
	case '!':
		tok = l.newToken(token.BANG, l.ch)
	case '"':
		return l.readString(tok.Line, tok.Column)
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) || ((l.ch == '-' || l.ch == '.') && (isDigit(l.peekChar()) || l.peekChar() == '.')) {
			return l.readNumber(tok.Line, tok.Column)
		}
		tok = l.newToken(token.ILLEGAL, l.ch)
	}

	l.readChar()
	return tok
}

// Tokens returns every remaining token, EOF included.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or decimal number, with an optional leading minus.
// Anything glued to the number that cannot be part of it makes the token ILLEGAL.
func (l *Lexer) readNumber(line, column int) token.Token {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) || isLetter(l.ch) || l.ch == '.' {
		l.readChar()
	}
	literal := l.input[position:l.position]
	if _, ok := value.Parse(literal); !ok || strings.ContainsAny(literal, "eEnN") {
		return token.Token{Type: token.ILLEGAL, Literal: literal, Line: line, Column: column}
	}
	return token.Token{Type: token.NUMBER, Literal: literal, Line: line, Column: column}
}

// readString reads a string literal. Escapes: \" \\ \n \t.
// An unterminated string becomes an ILLEGAL token.
func (l *Lexer) readString(line, column int) token.Token {
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			l.readChar()
			return token.Token{Type: token.STRING, Literal: b.String(), Line: line, Column: column}
		case '\n', '\r', 0:
			return token.Token{Type: token.ILLEGAL, Literal: `"` + b.String(), Line: line, Column: column}
		case '\\':
			switch l.peekChar() {
			case '"', '\\':
				l.readChar()
				b.WriteByte(l.ch)
			case 'n':
				l.readChar()
				b.WriteByte('\n')
			case 't':
				l.readChar()
				b.WriteByte('\t')
			default:
				b.WriteByte('\\')
			}
		default:
			b.WriteByte(l.ch)
		}
	}
}

// readComment reads a comment up to the end of the line.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return strings.TrimRight(l.input[position:l.position], "\r")
}

// skipWhitespace skips whitespace other than line breaks.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// isLetter checks if a character can start an identifier.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
