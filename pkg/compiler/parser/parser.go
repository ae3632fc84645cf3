package parser

import (
	"fmt"
	"strings"

	"github.com/zurustar/bna/pkg/compiler/lexer"
	"github.com/zurustar/bna/pkg/compiler/token"
	"github.com/zurustar/bna/pkg/value"
)

// operandSet is the set of operand kinds a statement slot accepts.
type operandSet uint8

const (
	allowVar operandSet = 1 << iota
	allowNumber
	allowString
	allowList

	numeric  = allowVar | allowNumber
	anyValue = allowVar | allowNumber | allowString | allowList
)

func (s operandSet) allows(k OperandKind) bool {
	switch k {
	case VariableOperand:
		return s&allowVar != 0
	case NumberOperand:
		return s&allowNumber != 0
	case StringOperand:
		return s&allowString != 0
	case ListOperand:
		return s&allowList != 0
	}
	return false
}

func (s operandSet) String() string {
	var names []string
	if s&allowVar != 0 {
		names = append(names, "variable")
	}
	if s&allowNumber != 0 {
		names = append(names, "number")
	}
	if s&allowString != 0 {
		names = append(names, "string")
	}
	if s&allowList != 0 {
		names = append(names, "list")
	}
	return strings.Join(names, " or ")
}

// Error is a syntax error with its source position.
// Lexical is set when the error comes from a token the lexer could not read.
type Error struct {
	Message string
	Line    int
	Column  int
	Lexical bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Parser parses BNA source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []*Error

	curToken  token.Token
	peekToken token.Token
}

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*Error{},
	}

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parser errors in source order.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// ParseProgram parses the entire program.
// Lines with errors are skipped; parsing continues with the next line so that
// every error in the script is reported at once.
func (p *Parser) ParseProgram() *Program {
	program := &Program{}
	program.Statements = []*Statement{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			if p.endOfStatement() {
				program.Statements = append(program.Statements, stmt)
			}
		}
		p.skipLine()
	}

	return program
}

// parseStatement parses one statement starting at curToken. On success
// curToken is the last token of the statement.
func (p *Parser) parseStatement() *Statement {
	stmt := &Statement{Token: p.curToken, Kind: p.curToken.Type}

	switch p.curToken.Type {
	case token.CARET:
		return p.parseLabel(stmt)
	case token.SET:
		return p.pattern(stmt, p.target, p.keyword(token.TO), p.value(anyValue))
	case token.ADD, token.APPEND, token.WRITE:
		allowed := numeric
		if stmt.Kind != token.ADD {
			allowed = anyValue
		}
		return p.pattern(stmt, p.value(allowed), p.keyword(token.TO), p.target)
	case token.SUBTRACT:
		return p.pattern(stmt, p.value(numeric), p.keyword(token.FROM), p.target)
	case token.MULTIPLY, token.DIVIDE:
		return p.pattern(stmt, p.target, p.keyword(token.BY), p.value(numeric))
	case token.AND, token.OR, token.XOR:
		return p.pattern(stmt, p.target, p.keyword(token.WITH), p.value(numeric))
	case token.MOD, token.LOG:
		return p.pattern(stmt, p.value(numeric), p.keyword(token.OF), p.target)
	case token.RAISE:
		return p.pattern(stmt, p.target, p.keyword(token.TO), p.value(numeric))
	case token.NEGATE, token.ROUND, token.CLOSE:
		return p.pattern(stmt, p.target)
	case token.RANDOM:
		return p.pattern(stmt, p.target, p.keyword(token.MAX), p.value(numeric))
	case token.WAIT:
		return p.pattern(stmt, p.value(numeric))
	case token.TEST:
		return p.parseTest(stmt)
	case token.GOTO:
		return p.parseGoto(stmt)
	case token.LIST:
		return p.pattern(stmt, p.target, p.keyword(token.SIZE), p.value(numeric))
	case token.SIZE:
		return p.pattern(stmt, p.target, p.keyword(token.OF), p.value(allowVar|allowString|allowList))
	case token.TYPE:
		return p.pattern(stmt, p.target, p.keyword(token.OF), p.value(anyValue))
	case token.OPEN:
		return p.pattern(stmt, p.value(allowVar|allowString), p.keyword(token.AS), p.openMode, p.target)
	case token.READ:
		return p.pattern(stmt, p.target, p.keyword(token.FROM), p.value(allowVar))
	case token.INPUT:
		return p.pattern(stmt, p.target, p.keyword(token.WITH), p.value(allowVar|allowString))
	case token.PRINT:
		return p.pattern(stmt, p.value(anyValue))
	case token.ERROR:
		return p.pattern(stmt, p.value(allowVar|allowString))
	case token.EXIT:
		return stmt
	case token.SCOPE:
		p.addError(p.curToken, "SCOPE blocks are not supported")
		return nil
	case token.ILLEGAL:
		p.illegalError(p.curToken)
		return nil
	default:
		p.addError(p.curToken, fmt.Sprintf("invalid start of statement: %s", describe(p.curToken)))
		return nil
	}
}

// step consumes the next part of a statement pattern and records it in stmt.
type step func(stmt *Statement) bool

// pattern runs each step in order, stopping at the first failure.
func (p *Parser) pattern(stmt *Statement, steps ...step) *Statement {
	for _, s := range steps {
		if !s(stmt) {
			return nil
		}
	}
	return stmt
}

// target reads the variable operand a statement writes (or TEST reads).
func (p *Parser) target(stmt *Statement) bool {
	p.nextToken()
	op := p.parseOperand(allowVar)
	if op == nil {
		return false
	}
	stmt.Target = op
	return true
}

// value returns a step reading the statement's value operand.
func (p *Parser) value(allowed operandSet) step {
	return func(stmt *Statement) bool {
		p.nextToken()
		op := p.parseOperand(allowed)
		if op == nil {
			return false
		}
		stmt.Value = op
		return true
	}
}

// keyword returns a step expecting the helper keyword t.
func (p *Parser) keyword(t token.TokenType) step {
	return func(*Statement) bool {
		return p.expectPeek(t)
	}
}

func (p *Parser) openMode(stmt *Statement) bool {
	switch p.peekToken.Type {
	case token.READ, token.WRITE:
		p.nextToken()
		stmt.Op = string(p.curToken.Type)
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected READ or WRITE, got %s", describe(p.peekToken)))
	return false
}

// parseLabel parses ^name:
func (p *Parser) parseLabel(stmt *Statement) *Statement {
	stmt.Kind = token.LABEL
	if !p.expectName("label name") {
		return nil
	}
	stmt.Label = p.curToken.Literal
	if !p.expectPeek(token.COLON) {
		return nil
	}
	return stmt
}

// parseTest parses TEST var (>|<) num and TEST var (=|!) value.
// Text may only be compared for (in)equality.
func (p *Parser) parseTest(stmt *Statement) *Statement {
	if !p.target(stmt) {
		return nil
	}

	allowed := numeric
	switch p.peekToken.Type {
	case token.GT, token.LT:
	case token.EQ, token.BANG:
		allowed |= allowString
	default:
		p.addError(p.peekToken, fmt.Sprintf("expected comparison (> < = !), got %s", describe(p.peekToken)))
		return nil
	}
	p.nextToken()
	stmt.Op = p.curToken.Literal

	return p.pattern(stmt, p.value(allowed))
}

// parseGoto parses GOTO name, optionally followed by IF value.
func (p *Parser) parseGoto(stmt *Statement) *Statement {
	if !p.expectName("label name") {
		return nil
	}
	stmt.Label = p.curToken.Literal

	if !p.peekTokenIs(token.IF) {
		return stmt
	}
	p.nextToken()
	return p.pattern(stmt, p.value(numeric))
}

// parseOperand parses the operand starting at curToken and checks it against
// the kinds the slot accepts.
func (p *Parser) parseOperand(allowed operandSet) *Operand {
	var op *Operand

	switch p.curToken.Type {
	case token.IDENT:
		op = p.parseVariable()
	case token.NUMBER:
		op = p.parseNumber()
	case token.STRING:
		op = &Operand{Token: p.curToken, Kind: StringOperand, Value: value.Str(p.curToken.Literal)}
	case token.LPAREN:
		op = p.parseList()
	case token.ILLEGAL:
		p.illegalError(p.curToken)
		return nil
	default:
		if token.IsKeyword(p.curToken.Type) {
			p.addError(p.curToken, fmt.Sprintf("%q is a reserved word and cannot be used as a variable", p.curToken.Literal))
		} else {
			p.addError(p.curToken, fmt.Sprintf("expected %s, got %s", allowed, describe(p.curToken)))
		}
		return nil
	}

	if op == nil {
		return nil
	}
	if !allowed.allows(op.Kind) {
		p.addError(op.Token, fmt.Sprintf("expected %s, got %s %s", allowed, op.Kind, op))
		return nil
	}
	return op
}

// parseVariable parses name or name@index, where index is a variable or an
// integer literal.
func (p *Parser) parseVariable() *Operand {
	op := &Operand{Token: p.curToken, Kind: VariableOperand, Name: p.curToken.Literal}
	if !p.peekTokenIs(token.AT) {
		return op
	}
	p.nextToken()
	p.nextToken()

	var index *Operand
	switch p.curToken.Type {
	case token.IDENT:
		index = &Operand{Token: p.curToken, Kind: VariableOperand, Name: p.curToken.Literal}
	case token.NUMBER:
		index = p.parseNumber()
		if index == nil {
			return nil
		}
		if index.Value.Kind() != value.Integer {
			p.addError(p.curToken, fmt.Sprintf("list index must be an integer, got %s", p.curToken.Literal))
			return nil
		}
	default:
		p.addError(p.curToken, fmt.Sprintf("expected index after @, got %s", describe(p.curToken)))
		return nil
	}
	if p.peekTokenIs(token.AT) {
		p.addError(p.peekToken, "nested element access is not supported")
		return nil
	}
	op.Index = index
	return op
}

func (p *Parser) parseNumber() *Operand {
	v, ok := value.Parse(p.curToken.Literal)
	if !ok {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}
	return &Operand{Token: p.curToken, Kind: NumberOperand, Value: v}
}

// parseList parses (elem, elem, ...) where each element is a number or a
// plain variable. The empty list () is allowed.
func (p *Parser) parseList() *Operand {
	op := &Operand{Token: p.curToken, Kind: ListOperand, Elems: []*Operand{}}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return op
	}

	for {
		p.nextToken()
		var elem *Operand
		switch p.curToken.Type {
		case token.NUMBER:
			elem = p.parseNumber()
		case token.IDENT:
			elem = &Operand{Token: p.curToken, Kind: VariableOperand, Name: p.curToken.Literal}
		default:
			p.addError(p.curToken, fmt.Sprintf("list elements must be numbers or variables, got %s", describe(p.curToken)))
			return nil
		}
		if elem == nil {
			return nil
		}
		op.Elems = append(op.Elems, elem)

		switch p.peekToken.Type {
		case token.COMMA:
			p.nextToken()
		case token.RPAREN:
			p.nextToken()
			return op
		default:
			p.addError(p.peekToken, fmt.Sprintf("expected , or ) in list, got %s", describe(p.peekToken)))
			return nil
		}
	}
}

// endOfStatement reports whether the statement is followed by the end of the
// line, recording an error otherwise.
func (p *Parser) endOfStatement() bool {
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		return true
	}
	if p.peekTokenIs(token.ILLEGAL) {
		p.illegalError(p.peekToken)
	} else {
		p.addError(p.peekToken, fmt.Sprintf("unexpected %s after statement", describe(p.peekToken)))
	}
	return false
}

// skipLine advances past the current line.
func (p *Parser) skipLine() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// expectName expects an identifier (label names share the variable syntax).
func (p *Parser) expectName(what string) bool {
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		return true
	}
	if token.IsKeyword(p.peekToken.Type) {
		p.addError(p.peekToken, fmt.Sprintf("%q is a reserved word and cannot be used as a %s", p.peekToken.Literal, what))
		return false
	}
	p.addError(p.peekToken, fmt.Sprintf("expected %s, got %s", what, describe(p.peekToken)))
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	// Skip comments
	for p.peekToken.Type == token.COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) peekError(t token.TokenType) {
	if p.peekTokenIs(token.ILLEGAL) {
		p.illegalError(p.peekToken)
		return
	}
	p.addError(p.peekToken, fmt.Sprintf("expected %s, got %s", t, describe(p.peekToken)))
}

func (p *Parser) illegalError(tok token.Token) {
	msg := fmt.Sprintf("illegal token %q", tok.Literal)
	if strings.HasPrefix(tok.Literal, `"`) {
		msg = "unterminated string literal"
	}
	p.errors = append(p.errors, &Error{Message: msg, Line: tok.Line, Column: tok.Column, Lexical: true})
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, &Error{Message: msg, Line: tok.Line, Column: tok.Column})
}

// describe names a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.NEWLINE:
		return "end of line"
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case token.NUMBER:
		return fmt.Sprintf("number %s", tok.Literal)
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	}
	if token.IsKeyword(tok.Type) {
		return fmt.Sprintf("keyword %s", tok.Type)
	}
	return fmt.Sprintf("%q", tok.Literal)
}
