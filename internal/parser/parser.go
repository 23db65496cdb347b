// Package parser builds an ast.Expression tree from the demo surface
// syntax tokenized by internal/lexer. Like lexer, this is a convenience
// collaborator for cmd/refinex and test fixtures only — per spec.md §1 the
// staged evaluator accepts a pre-built Expression tree and never imports
// this package.
package parser

import (
	"fmt"
	"strconv"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/lexer"
)

// MaxRecursionDepth guards parseExpression against pathological input,
// mirroring the teacher's own parser recursion-depth counter.
const MaxRecursionDepth = 500

const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
)

var precedences = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEquality, "!=": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
	"(": precCall, ".": precCall, "[": precCall,
}

// Parser is a Pratt parser over lexer.Token: a prefix parse function per
// leading token shape, then a precedence-climbing loop over infix
// operators, the same structure the teacher's parser uses.
type Parser struct {
	l *lexer.Lexer

	cur, peek lexer.Token
	errors    []string
	depth     int
}

func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d:%d: %s", p.cur.Line, p.cur.Column, fmt.Sprintf(format, args...)))
}

func (p *Parser) pos() ast.Pos { return ast.Pos{Line: p.cur.Line, Column: p.cur.Column} }

func (p *Parser) curIs(lexeme string) bool {
	return (p.cur.Type == lexer.PUNCT || p.cur.Type == lexer.KEYWORD) && p.cur.Lexeme == lexeme
}

func (p *Parser) peekIs(lexeme string) bool {
	return (p.peek.Type == lexer.PUNCT || p.peek.Type == lexer.KEYWORD) && p.peek.Lexeme == lexeme
}

func (p *Parser) expect(lexeme string) bool {
	if p.peekIs(lexeme) {
		p.next()
		return true
	}
	p.errorf("expected %q, got %q", lexeme, p.peek.Lexeme)
	return false
}

func (p *Parser) peekPrecedence() int {
	if p.peek.Type == lexer.PUNCT {
		if prec, ok := precedences[p.peek.Lexeme]; ok {
			return prec
		}
	}
	return precLowest
}

// ParseExpression is the single entry point: parse one expression from
// the whole input, which for this demo grammar is always a full program.
func ParseExpression(input string) (ast.Expression, []string) {
	p := New(input)
	expr := p.parseExpression(precLowest)
	return expr, p.errors
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorf("expression too deeply nested")
		return nil
	}

	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for !p.peekIs(";") && precedence < p.peekPrecedence() {
		switch p.peek.Lexeme {
		case "(":
			p.next()
			left = p.parseCall(left)
		case ".":
			p.next()
			left = p.parseFieldOrMethod(left)
		case "[":
			p.next()
			left = p.parseIndex(left)
		default:
			p.next()
			left = p.parseInfix(left)
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch {
	case p.cur.Type == lexer.NUMBER:
		return p.parseNumber()
	case p.cur.Type == lexer.STRING:
		return &ast.StringLiteral{Value: p.cur.Lexeme}
	case p.cur.Type == lexer.IDENT:
		return &ast.Identifier{Name: p.cur.Lexeme}
	case p.curIs("true"):
		return &ast.BoolLiteral{Value: true}
	case p.curIs("false"):
		return &ast.BoolLiteral{Value: false}
	case p.curIs("null"):
		return &ast.NullLiteral{}
	case p.curIs("-") || p.curIs("!"):
		return p.parseUnary()
	case p.curIs("("):
		return p.parseGrouped()
	case p.curIs("["):
		return p.parseArray()
	case p.curIs("{"):
		return p.parseObject()
	case p.curIs("if"):
		return p.parseConditional()
	case p.curIs("let"):
		return p.parseLet()
	case p.curIs("fn"):
		return p.parseFunc()
	}
	p.errorf("unexpected token %q", p.cur.Lexeme)
	return nil
}

func (p *Parser) parseNumber() ast.Expression {
	n, err := strconv.ParseFloat(p.cur.Lexeme, 64)
	if err != nil {
		p.errorf("invalid number literal %q", p.cur.Lexeme)
		return nil
	}
	return &ast.NumberLiteral{Value: n}
}

func (p *Parser) parseUnary() ast.Expression {
	op := ast.UnOp(p.cur.Lexeme)
	p.next()
	operand := p.parseExpression(precUnary)
	return &ast.UnaryExpr{Op: op, Operand: operand}
}

func (p *Parser) parseGrouped() ast.Expression {
	p.next()
	expr := p.parseExpression(precLowest)
	p.expect(")")
	return expr
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	op := ast.BinOp(p.cur.Lexeme)
	prec := precedences[p.cur.Lexeme]
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Op: op, Left: left, Right: right}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	args := p.parseArgList(")")
	return &ast.CallExpr{Callee: callee, Args: args}
}

func (p *Parser) parseFieldOrMethod(obj ast.Expression) ast.Expression {
	if !p.expect2IdentAfterDot() {
		return nil
	}
	name := p.cur.Lexeme
	if p.peekIs("(") {
		p.next()
		args := p.parseArgList(")")
		return &ast.MethodCallExpr{Receiver: obj, Name: name, Args: args}
	}
	return &ast.FieldAccessExpr{Object: obj, Name: name}
}

func (p *Parser) expect2IdentAfterDot() bool {
	if p.peek.Type != lexer.IDENT {
		p.errorf("expected field name after '.', got %q", p.peek.Lexeme)
		return false
	}
	p.next()
	return true
}

func (p *Parser) parseIndex(arr ast.Expression) ast.Expression {
	p.next()
	idx := p.parseExpression(precLowest)
	p.expect("]")
	return &ast.IndexExpr{Array: arr, Index: idx}
}

func (p *Parser) parseArgList(end string) []ast.Expression {
	var args []ast.Expression
	if p.peekIs(end) {
		p.next()
		return args
	}
	p.next()
	args = append(args, p.parseExpression(precLowest))
	for p.peekIs(",") {
		p.next()
		p.next()
		args = append(args, p.parseExpression(precLowest))
	}
	p.expect(end)
	return args
}

func (p *Parser) parseArray() ast.Expression {
	elems := p.parseArgList("]")
	return &ast.ArrayExpr{Elements: elems}
}

func (p *Parser) parseObject() ast.Expression {
	var fields []ast.ObjectField
	if p.peekIs("}") {
		p.next()
		return &ast.ObjectExpr{Fields: fields}
	}
	for {
		p.next()
		if p.cur.Type != lexer.IDENT {
			p.errorf("expected field name, got %q", p.cur.Lexeme)
			return nil
		}
		name := p.cur.Lexeme
		p.expect(":")
		p.next()
		value := p.parseExpression(precLowest)
		fields = append(fields, ast.ObjectField{Name: name, Value: value})
		if p.peekIs(",") {
			p.next()
			continue
		}
		break
	}
	p.expect("}")
	return &ast.ObjectExpr{Fields: fields}
}

func (p *Parser) parseConditional() ast.Expression {
	p.next()
	cond := p.parseExpression(precLowest)
	if !p.expect("then") {
		return nil
	}
	p.next()
	then := p.parseExpression(precLowest)
	if !p.expect("else") {
		return nil
	}
	p.next()
	els := p.parseExpression(precLowest)
	return &ast.CondExpr{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseLet() ast.Expression {
	if p.peek.Type != lexer.IDENT {
		p.errorf("expected a name after 'let', got %q", p.peek.Lexeme)
		return nil
	}
	p.next()
	name := p.cur.Lexeme
	if !p.expect("=") {
		return nil
	}
	p.next()
	value := p.parseExpression(precLowest)
	if !p.expect("in") {
		return nil
	}
	p.next()
	body := p.parseExpression(precLowest)
	return &ast.LetExpr{Pattern: &ast.VarPattern{Name: name}, Value: value, Body: body}
}

func (p *Parser) parseFunc() ast.Expression {
	if !p.expect("(") {
		return nil
	}
	var params []string
	if !p.peekIs(")") {
		p.next()
		params = append(params, p.cur.Lexeme)
		for p.peekIs(",") {
			p.next()
			p.next()
			params = append(params, p.cur.Lexeme)
		}
	}
	if !p.expect(")") {
		return nil
	}
	if !p.expect("=>") {
		return nil
	}
	p.next()
	body := p.parseExpression(precLowest)
	return &ast.FuncExpr{Params: params, Body: body}
}
