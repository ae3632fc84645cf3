package token

import "strings"

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"
	COMMENT = "COMMENT"
	LABEL   = "LABEL" // statement kind of ^name:, never produced by the lexer

	// Identifiers + Literals
	IDENT  = "IDENT"  // counter, xs
	NUMBER = "NUMBER" // 12, -3, 1.5
	STRING = "STRING" // "abc"

	// Symbols
	CARET  = "^"
	COLON  = ":"
	AT     = "@"
	LPAREN = "("
	RPAREN = ")"
	COMMA  = ","
	GT     = ">"
	LT     = "<"
	EQ     = "="
	BANG   = "!"

	// Statement keywords
	SET      = "SET"
	ADD      = "ADD"
	SUBTRACT = "SUBTRACT"
	MULTIPLY = "MULTIPLY"
	DIVIDE   = "DIVIDE"
	RAISE    = "RAISE"
	MOD      = "MOD"
	LOG      = "LOG"
	AND      = "AND"
	OR       = "OR"
	XOR      = "XOR"
	NEGATE   = "NEGATE"
	ROUND    = "ROUND"
	RANDOM   = "RANDOM"
	WAIT     = "WAIT"
	TEST     = "TEST"
	GOTO     = "GOTO"
	LIST     = "LIST"
	APPEND   = "APPEND"
	SIZE     = "SIZE"
	TYPE     = "TYPE"
	OPEN     = "OPEN"
	CLOSE    = "CLOSE"
	READ     = "READ"
	WRITE    = "WRITE"
	INPUT    = "INPUT"
	PRINT    = "PRINT"
	EXIT     = "EXIT"
	ERROR    = "ERROR"
	SCOPE    = "SCOPE"

	// Keywords that only appear inside a statement
	TO   = "TO"
	BY   = "BY"
	FROM = "FROM"
	MAX  = "MAX"
	IF   = "IF"
	WITH = "WITH"
	OF   = "OF"
	AS   = "AS"
)

var keywords = map[string]TokenType{
	"SET": SET, "ADD": ADD, "SUBTRACT": SUBTRACT, "MULTIPLY": MULTIPLY, "DIVIDE": DIVIDE,
	"RAISE": RAISE, "MOD": MOD, "LOG": LOG, "AND": AND, "OR": OR, "XOR": XOR,
	"NEGATE": NEGATE, "ROUND": ROUND, "RANDOM": RANDOM, "WAIT": WAIT, "TEST": TEST,
	"GOTO": GOTO, "LIST": LIST, "APPEND": APPEND, "SIZE": SIZE, "TYPE": TYPE,
	"OPEN": OPEN, "CLOSE": CLOSE, "READ": READ, "WRITE": WRITE, "INPUT": INPUT,
	"PRINT": PRINT, "EXIT": EXIT, "ERROR": ERROR, "SCOPE": SCOPE,
	"TO": TO, "BY": BY, "FROM": FROM, "MAX": MAX, "IF": IF, "WITH": WITH, "OF": OF, "AS": AS,
}

// LookupIdent returns the keyword type of ident, ignoring case, or IDENT.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[strings.ToUpper(ident)]; ok {
		return tt
	}
	return IDENT
}

// IsKeyword reports whether t is a keyword type.
func IsKeyword(t TokenType) bool {
	_, ok := keywords[string(t)]
	return ok
}
