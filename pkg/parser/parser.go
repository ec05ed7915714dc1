// Package parser is a minimal hand-written lexer and recursive-descent
// parser over the expression-tree grammar pkg/ast implements: literals,
// path queries, variable references, unary/binary operators, blocks,
// if/else if/else, plain and error-coalescing assignment, function
// calls, abort, and array/object literals. It is not a general VRL
// grammar - no iteration, pattern matching, type annotations, or
// closures - only enough surface syntax to drive an expression tree
// through every execution backend end to end.
package parser

import (
	"fmt"
	"strconv"

	"github.com/vrlcore/vrlcore/pkg/ast"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Parser converts a token stream into an *ast.Block. Field names and the
// current/advance/check/match/expect helper shape mirror the teacher's
// pkg/parser/parser.go; the grammar itself is VRL's, not GLYPH's.
type Parser struct {
	tokens   []Token
	position int
	source   string
}

func NewParser(tokens []Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source}
}

// Parse lexes and parses a complete VRL program in one step, the entry
// point pkg/runtime.Compile calls.
func Parse(source string) (*ast.Block, error) {
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, source).ParseProgram()
}

// ParseProgram parses a sequence of statements up to EOF - the
// top-level program is itself just a Block, the same way a predicate's
// or an if-branch's body is.
func (p *Parser) ParseProgram() (*ast.Block, error) {
	var nodes []ast.Node
	p.skipNewlines()
	for !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, stmt)
		if !p.isAtEnd() && !p.check(NEWLINE) {
			return nil, p.errorAt("expected newline between statements")
		}
		p.skipNewlines()
	}
	return ast.NewBlock(nodes...), nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	p.skipNewlines()

	var nodes []ast.Node
	for !p.check(RBRACE) && !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, stmt)
		if !p.check(RBRACE) {
			if !p.check(NEWLINE) {
				return nil, p.errorAt("expected newline between statements")
			}
			p.skipNewlines()
		}
	}
	if err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return ast.NewBlock(nodes...), nil
}

// parseStatement parses one statement: if/else, abort, or an expression
// optionally followed by an assignment suffix. Assignment is decided
// after the fact, the way VRL itself does it: `.foo = expr` and
// `x = expr` both start as an ordinary expression (a Query or a
// Variable) and only become an Assignment once '=' or ', err =' is
// seen trailing it.
func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.current().Type {
	case IF:
		return p.parseIfStatement()
	case ABORT:
		return p.parseAbort()
	}

	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.check(COMMA) {
		p.advance()
		errTarget, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(EQUALS); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		assignment := &ast.Assignment{Value: value}
		switch target := left.(type) {
		case *ast.Query:
			path := target.Path
			assignment.Path = &path
		case *ast.Variable:
			assignment.VariableName = target.Name
		default:
			return nil, p.errorAt("left side of an error-coalescing assignment must be a path query or a variable")
		}
		switch errTarget := errTarget.(type) {
		case *ast.Query:
			errPath := errTarget.Path
			assignment.ErrPath = &errPath
		case *ast.Variable:
			assignment.ErrVar = errTarget.Name
		default:
			return nil, p.errorAt("right side of an error-coalescing assignment's comma must be a path query or a variable")
		}
		return assignment, nil
	}

	if p.check(EQUALS) {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		switch target := left.(type) {
		case *ast.Query:
			path := target.Path
			return &ast.Assignment{Path: &path, Value: value}, nil
		case *ast.Variable:
			return &ast.Assignment{VariableName: target.Name, Value: value}, nil
		default:
			return nil, p.errorAt("left side of an assignment must be a path query or a variable")
		}
	}

	return left, nil
}

func (p *Parser) parseIfStatement() (ast.Node, error) {
	p.advance() // consume 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var alternative *ast.Block
	if p.check(ELSE) {
		p.advance()
		if p.check(IF) {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			alternative = ast.NewBlock(nested)
		} else {
			alternative, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}

	return &ast.IfStatement{
		Predicate:   ast.NewPredicate(cond),
		Consequent:  consequent,
		Alternative: alternative,
	}, nil
}

func (p *Parser) parseAbort() (ast.Node, error) {
	p.advance() // consume 'abort'
	message := ""
	if p.check(STRING) {
		message = p.current().Literal
		p.advance()
	}
	return &ast.Abort{Message: message}, nil
}

func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseOr()
}

// parseOr/parseAnd desugar && and || into an IfStatement rather than a
// BinaryOp: the VM and JIT backends have no OpAnd/OpOr, and short-circuit
// evaluation (the right operand must not even be compiled/resolved when
// it can't change the result) falls out for free by reusing the
// already-correct three-backend IfStatement instead of adding two new
// opcodes that would need their own short-circuit jump patterns in both
// CompileToVM and EmitLLVM.
func (p *Parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(OR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.IfStatement{
			Predicate:   ast.NewPredicate(left),
			Consequent:  ast.NewBlock(&ast.Literal{Value: value.Boolean(true)}),
			Alternative: ast.NewBlock(right),
		}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.check(AND) {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.IfStatement{
			Predicate:   ast.NewPredicate(left),
			Consequent:  ast.NewBlock(right),
			Alternative: ast.NewBlock(&ast.Literal{Value: value.Boolean(false)}),
		}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOp(p.current().Type)
		if !ok {
			break
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := vm.OpAdd
		if p.current().Type == MINUS {
			op = vm.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) || p.check(PERCENT) {
		var op vm.Opcode
		switch p.current().Type {
		case STAR:
			op = vm.OpMul
		case SLASH:
			op = vm.OpDiv
		default:
			op = vm.OpMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.check(BANG) {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Inner: inner}, nil
	}
	if p.check(MINUS) {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Negate{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.current()
	switch tok.Type {
	case INTEGER:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorAt(fmt.Sprintf("invalid integer literal %q", tok.Literal))
		}
		p.advance()
		return &ast.Literal{Value: value.Integer(n)}, nil

	case FLOAT:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorAt(fmt.Sprintf("invalid float literal %q", tok.Literal))
		}
		p.advance()
		return &ast.Literal{Value: value.Float(f)}, nil

	case STRING:
		p.advance()
		return &ast.Literal{Value: value.Bytes(tok.Literal)}, nil

	case TRUE:
		p.advance()
		return &ast.Literal{Value: value.Boolean(true)}, nil

	case FALSE:
		p.advance()
		return &ast.Literal{Value: value.Boolean(false)}, nil

	case NULL:
		p.advance()
		return &ast.Literal{Value: value.Null}, nil

	case DOT:
		p.advance()
		path, err := p.parsePathSegments()
		if err != nil {
			return nil, err
		}
		return &ast.Query{Path: path}, nil

	case LPAREN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case LBRACKET:
		return p.parseArray()

	case LBRACE:
		return p.parseObject()

	case IDENT:
		name := tok.Literal
		p.advance()
		if p.check(LPAREN) {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{Name: name, Args: args}, nil
		}
		return &ast.Variable{Name: name}, nil
	}

	return nil, p.errorAt(fmt.Sprintf("unexpected token %s", tok.Type))
}

// parsePathSegments consumes the `ident` / `[index]` chain following a
// leading '.' already consumed by the caller. A bare '.' with no
// following identifier is the root path, addressing the whole event.
func (p *Parser) parsePathSegments() (target.Path, error) {
	var segments []target.Segment
	for p.check(IDENT) {
		segments = append(segments, target.Field(p.current().Literal))
		p.advance()

		for p.check(LBRACKET) {
			p.advance()
			if !p.check(INTEGER) {
				return target.Path{}, p.errorAt("expected integer index inside [...]")
			}
			n, err := strconv.Atoi(p.current().Literal)
			if err != nil {
				return target.Path{}, p.errorAt(fmt.Sprintf("invalid array index %q", p.current().Literal))
			}
			p.advance()
			if err := p.expect(RBRACKET); err != nil {
				return target.Path{}, err
			}
			segments = append(segments, target.Index(n))
		}

		if p.check(DOT) {
			p.advance()
			continue
		}
		break
	}
	return target.NewPath(segments...), nil
}

func (p *Parser) parseCallArgs() ([]ast.Node, error) {
	if err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Node
	if !p.check(RPAREN) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.check(COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseArray() (ast.Node, error) {
	p.advance() // consume '['
	p.skipNewlines()
	var items []ast.Node
	for !p.check(RBRACKET) {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipNewlines()
		if p.check(COMMA) {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return &ast.Array{Items: items}, nil
}

func (p *Parser) parseObject() (ast.Node, error) {
	p.advance() // consume '{'
	p.skipNewlines()
	var keys []string
	var values []ast.Node
	for !p.check(RBRACE) {
		var key string
		switch p.current().Type {
		case STRING, IDENT:
			key = p.current().Literal
			p.advance()
		default:
			return nil, p.errorAt("expected object key")
		}
		if err := p.expect(COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		values = append(values, val)
		p.skipNewlines()
		if p.check(COMMA) {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &ast.Object{Keys: keys, Values: values}, nil
}

func comparisonOp(t TokenType) (vm.Opcode, bool) {
	switch t {
	case EQ_EQ:
		return vm.OpEq, true
	case NOT_EQ:
		return vm.OpNe, true
	case LESS:
		return vm.OpLt, true
	case LESS_EQ:
		return vm.OpLe, true
	case GREATER:
		return vm.OpGt, true
	case GREATER_EQ:
		return vm.OpGe, true
	default:
		return 0, false
	}
}

func (p *Parser) current() Token {
	if p.position >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.position]
}

func (p *Parser) advance() {
	if !p.isAtEnd() {
		p.position++
	}
}

func (p *Parser) isAtEnd() bool {
	return p.position >= len(p.tokens) || p.current().Type == EOF
}

func (p *Parser) check(t TokenType) bool {
	return p.current().Type == t
}

func (p *Parser) expect(t TokenType) error {
	if p.check(t) {
		p.advance()
		return nil
	}
	return p.errorAt(fmt.Sprintf("expected %s, found %s", t, p.current().Type))
}

func (p *Parser) skipNewlines() {
	for p.check(NEWLINE) {
		p.advance()
	}
}

func (p *Parser) errorAt(message string) error {
	tok := p.current()
	return &ParseError{Message: message, Line: tok.Line, Column: tok.Column, Source: p.source}
}
