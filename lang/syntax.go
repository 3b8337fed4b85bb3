package lang

import (
	"log/slog"
)

// ErrSyntax reports tokens that do not form the expected construct.
var ErrSyntax = NewError("syntax error")

// StmtKind classifies a [Stmt].
type StmtKind int

const (
	StmtEmpty StmtKind = iota // a lone ';'
	StmtLet                   // let binding
	StmtItem                  // fn, struct, use, ...
	StmtExpr                  // expression statement or tail expression
)

// String returns a string representation of the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtEmpty:
		return "Empty"
	case StmtLet:
		return "Let"
	case StmtItem:
		return "Item"
	case StmtExpr:
		return "Expr"
	default:
		return "Unknown"
	}
}

// Stmt is one statement of a block. Tokens includes the terminating ';'
// when Semi is set.
type Stmt struct {
	Kind   StmtKind
	Tokens Tokens
	Semi   bool
}

// ParseExpr reports whether ts is exactly one expression.
func ParseExpr(ts Tokens) error {
	p := newParser(ts, endOf(ts))
	if p.eof() {
		return p.errExpected("expression")
	}

	if err := p.expr(0); err != nil {
		return err
	}

	return p.done("end of expression")
}

// ParseStmts splits ts into statements, validating each one.
func ParseStmts(ts Tokens) ([]Stmt, error) {
	return newParser(ts, endOf(ts)).stmts()
}

// parseType reports whether ts is exactly one type.
func parseType(ts Tokens) error {
	p := newParser(ts, endOf(ts))
	if err := p.typ(true); err != nil {
		return err
	}

	return p.done("end of type")
}

// parsePattern reports whether ts is exactly one pattern.
func parsePattern(ts Tokens) error {
	p := newParser(ts, endOf(ts))
	if err := p.pattern(true); err != nil {
		return err
	}

	return p.done("end of pattern")
}

func endOf(ts Tokens) Position {
	if len(ts) == 0 {
		return Position{}
	}

	return ts[len(ts)-1].End
}

// restrict modifies how an expression is parsed.
type restrict uint8

// noStruct disallows struct literals, as in the scrutinee of if, while,
// match, and for, where a brace group opens the body.
const noStruct restrict = 1

// Binary operator precedence, lowest first.
const (
	precNone = iota
	precAssign
	precRange
	precOr
	precAnd
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precCast
)

// operators lists the multi-character operators, longest first.
var operators = []string{
	"<<=", ">>=", "...", "..=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<", ">>", "..",
}

func binaryPrec(op string) int {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<=", ">>=":
		return precAssign
	case "..", "..=":
		return precRange
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=", "<", ">", "<=", ">=":
		return precCompare
	case "|":
		return precBitOr
	case "^":
		return precBitXor
	case "&":
		return precBitAnd
	case "<<", ">>":
		return precShift
	case "+", "-":
		return precAdd
	case "*", "/", "%":
		return precMul
	default:
		return precNone
	}
}

// keywords that can never begin an expression.
var reserved = map[string]bool{
	"as": true, "else": true, "in": true, "let": true, "fn": true,
	"struct": true, "enum": true, "impl": true, "trait": true, "mod": true,
	"use": true, "pub": true, "static": true, "type": true, "where": true,
	"extern": true, "mut": true, "ref": true, "const": true,
}

// parser validates one level of a token tree. Nested groups are parsed
// with their own parser.
type parser struct {
	ts  Tokens
	pos int
	end Position
}

func newParser(ts Tokens, end Position) *parser {
	return &parser{ts: ts, end: end}
}

func (p *parser) sub(g Token) *parser {
	return newParser(g.Tokens, g.End)
}

// Helper methods

func (p *parser) eof() bool { return p.pos >= len(p.ts) }

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.ts) {
		return Token{Kind: kindEOF}
	}

	return p.ts[p.pos+n]
}

func (p *parser) advance() Token {
	t := p.peek()
	if !p.eof() {
		p.pos++
	}

	return t
}

func (p *parser) atKind(k Kind) bool    { return p.peek().Kind == k }
func (p *parser) atIdent(s string) bool { return p.peek().IsIdent(s) }
func (p *parser) atPunct(s string) bool { return p.peek().IsPunct(s) }

func (p *parser) atGroup(d Delimiter) bool { return p.peek().IsGroup(d) }

func (p *parser) eatPunct(s string) bool {
	if p.atPunct(s) {
		p.pos++

		return true
	}

	return false
}

// atOp reports whether the joint puncts at the current position spell o.
func (p *parser) atOp(o string) bool {
	for i := range len(o) {
		t := p.peekAt(i)
		if t.Kind != KindPunct || t.Text != o[i:i+1] {
			return false
		}

		if i < len(o)-1 && !t.Joint {
			return false
		}
	}

	return true
}

func (p *parser) eatOp(o string) bool {
	if p.atOp(o) {
		p.pos += len(o)

		return true
	}

	return false
}

// eatSingle consumes the single punct s unless it begins a longer
// operator, so '=' never matches the first half of "==".
func (p *parser) eatSingle(s string) bool {
	if p.op() == s {
		p.pos++

		return true
	}

	return false
}

// op returns the longest operator at the current position.
func (p *parser) op() string {
	if !p.atKind(KindPunct) {
		return ""
	}

	for _, o := range operators {
		if p.atOp(o) {
			return o
		}
	}

	return p.peek().Text
}

func (p *parser) done(what string) error {
	if !p.eof() {
		return p.errExpected(what)
	}

	return nil
}

func (p *parser) errExpected(what string) *Error {
	if p.eof() {
		return ErrSyntax.WithPosition(p.end).With(
			slog.String("expected", what),
			slog.String("found", "end of input"),
		)
	}

	t := p.peek()

	return ErrSyntax.WithPosition(t.Pos).With(
		slog.String("expected", what),
		slog.String("found", describe(t)),
	)
}

func describe(t Token) string {
	if t.Kind == KindGroup {
		return t.Delim.Open() + "..." + t.Delim.Close()
	}

	return t.Text
}

// list parses a comma-separated sequence of item, allowing a trailing
// comma, and returns the tokens of each element.
func (p *parser) list(what string, item func() error) ([]Tokens, error) {
	var items []Tokens

	for !p.eof() {
		start := p.pos

		if p.atPunct(",") {
			return nil, p.errExpected(what)
		}

		if err := item(); err != nil {
			return nil, err
		}

		items = append(items, p.ts[start:p.pos])

		if p.eof() {
			break
		}

		if !p.eatPunct(",") {
			return nil, p.errExpected("`,`")
		}
	}

	return items, nil
}

// Statements

func (p *parser) stmts() ([]Stmt, error) {
	var out []Stmt

	for !p.eof() {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

func (p *parser) stmt() (Stmt, error) {
	start := p.pos

	if p.eatPunct(";") {
		return Stmt{Kind: StmtEmpty, Tokens: p.ts[start:p.pos], Semi: true}, nil
	}

	if err := p.attrs(); err != nil {
		return Stmt{}, err
	}

	var (
		kind StmtKind
		semi bool
	)

	switch {
	case p.atIdent("let"):
		kind, semi = StmtLet, true

		if err := p.let(); err != nil {
			return Stmt{}, err
		}

	case p.atItem():
		kind = StmtItem

		var err error
		if semi, err = p.item(); err != nil {
			return Stmt{}, err
		}

	case p.itemMacroPath() >= 0:
		kind = StmtItem

		var err error
		if semi, err = p.itemMacro(); err != nil {
			return Stmt{}, err
		}

	default:
		kind = StmtExpr

		blockLike, err := p.exprOrBlock()
		if err != nil {
			return Stmt{}, err
		}

		switch {
		case p.eatPunct(";"):
			semi = true

		case !blockLike && !p.eof():
			return Stmt{}, p.errExpected("`;`")
		}
	}

	return Stmt{Kind: kind, Tokens: p.ts[start:p.pos], Semi: semi}, nil
}

// attrs consumes outer and inner attributes: #[...] and #![...].
func (p *parser) attrs() error {
	for p.atPunct("#") {
		p.advance()
		p.eatPunct("!")

		if !p.atGroup(DelimBracket) {
			return p.errExpected("attribute")
		}

		p.advance()
	}

	return nil
}

func (p *parser) let() error {
	p.advance() // let

	if err := p.pattern(true); err != nil {
		return err
	}

	if p.eatSingle(":") {
		if err := p.typ(true); err != nil {
			return err
		}
	}

	if p.eatSingle("=") {
		if err := p.expr(0); err != nil {
			return err
		}

		if p.atIdent("else") {
			p.advance()

			if err := p.blockExpr(); err != nil {
				return err
			}
		}
	}

	if !p.eatPunct(";") {
		return p.errExpected("`;`")
	}

	return nil
}

// itemKeyword returns the index of the keyword introducing an item at the
// current position, skipping visibility and qualifiers, or -1.
func (p *parser) itemKeyword() int {
	i := 0

	if p.peekAt(i).IsIdent("pub") {
		i++

		if p.peekAt(i).IsGroup(DelimParen) {
			i++
		}
	}

	for {
		t := p.peekAt(i)

		switch {
		case t.IsIdent("unsafe"), t.IsIdent("async"):
			i++

		case t.IsIdent("extern") && p.peekAt(i+1).Kind == KindLiteral &&
			!p.peekAt(i+2).IsGroup(DelimBrace):
			i += 2

		case t.IsIdent("const") && p.peekAt(i+1).Kind == KindIdent:
			if p.peekAt(i + 1).IsIdent("fn") {
				i++

				continue
			}

			return i

		case t.IsIdent("union") && p.peekAt(i+1).Kind == KindIdent:
			return i

		case t.Kind == KindIdent:
			switch t.Text {
			case "fn", "struct", "enum", "impl", "trait", "mod", "use",
				"static", "type", "extern":
				return i
			}

			return -1

		default:
			return -1
		}
	}
}

func (p *parser) atItem() bool { return p.itemKeyword() >= 0 }

// item consumes an item up to its terminating ';' or body. It reports
// whether the item ended with ';'.
func (p *parser) item() (bool, error) {
	kw := p.peekAt(p.itemKeyword()).Text

	braced := true

	switch kw {
	case "use", "static", "type", "const":
		braced = false

	case "extern":
		braced = !p.peekAt(p.itemKeyword() + 1).IsIdent("crate")
	}

	for !p.eof() {
		t := p.advance()

		if t.IsPunct(";") {
			return true, nil
		}

		if braced && t.IsGroup(DelimBrace) {
			if kw == "fn" {
				if _, err := p.sub(t).stmts(); err != nil {
					return false, err
				}
			}

			return false, nil
		}
	}

	if braced {
		return false, p.errExpected("item body")
	}

	return false, p.errExpected("`;`")
}

// itemMacroPath returns the number of tokens in the macro path of an
// item-like macro invocation such as "macro_rules! name { ... }", or -1.
func (p *parser) itemMacroPath() int {
	i := 0

	if p.peekAt(0).IsPunct(":") && p.peekAt(0).Joint && p.peekAt(1).IsPunct(":") {
		i = 2
	}

	for {
		if p.peekAt(i).Kind != KindIdent {
			return -1
		}

		i++

		if !p.peekAt(i).IsPunct(":") || !p.peekAt(i).Joint ||
			!p.peekAt(i + 1).IsPunct(":") {
			break
		}

		i += 2
	}

	if p.peekAt(i).IsPunct("!") && p.peekAt(i+1).Kind == KindIdent &&
		p.peekAt(i+2).Kind == KindGroup {
		return i
	}

	return -1
}

// itemMacro consumes path ! ident group. A brace group ends the item;
// other delimiters need a ';'. It reports whether the item ended with ';'.
func (p *parser) itemMacro() (bool, error) {
	n := p.itemMacroPath()
	g := p.peekAt(n + 2)

	p.pos += n + 3

	if g.Delim == DelimBrace {
		return false, nil
	}

	if !p.eatPunct(";") {
		return false, p.errExpected("`;`")
	}

	return true, nil
}

// atBlockLike reports whether an expression beginning here ends a
// statement without a ';'.
func (p *parser) atBlockLike() bool {
	t := p.peek()

	switch {
	case t.IsGroup(DelimBrace):
		return true

	case t.Kind == KindLifetime:
		return p.peekAt(1).IsPunct(":")

	case t.Kind != KindIdent:
		return false
	}

	switch t.Text {
	case "if", "match", "loop", "while", "for":
		return true

	case "unsafe", "const":
		return p.peekAt(1).IsGroup(DelimBrace)

	case "async":
		n := 1
		if p.peekAt(n).IsIdent("move") {
			n++
		}

		return p.peekAt(n).IsGroup(DelimBrace)
	}

	return p.peekAt(1).IsPunct("!") && p.peekAt(2).IsGroup(DelimBrace)
}

// exprOrBlock parses an expression in statement position. A block-like
// expression ends the statement unless a method call or '?' continues it.
// It reports whether the expression ended as a block-like statement.
func (p *parser) exprOrBlock() (bool, error) {
	if !p.atBlockLike() {
		return false, p.expr(0)
	}

	if err := p.primary(0); err != nil {
		return false, err
	}

	if !p.atPunct("?") && (!p.atPunct(".") || p.atOp("..")) {
		return true, nil
	}

	if err := p.postfix(); err != nil {
		return false, err
	}

	return false, p.binaryRest(precAssign, 0)
}

// Expressions

func (p *parser) expr(r restrict) error {
	return p.binary(precAssign, r)
}

func (p *parser) binary(lowest int, r restrict) error {
	if err := p.prefix(r); err != nil {
		return err
	}

	return p.binaryRest(lowest, r)
}

// binaryRest continues a binary expression whose left operand has been
// parsed, consuming operators that bind at least as tightly as lowest.
func (p *parser) binaryRest(lowest int, r restrict) error {
	for !p.eof() {
		if p.atIdent("as") {
			if precCast < lowest {
				return nil
			}

			p.advance()

			if err := p.typ(false); err != nil {
				return err
			}

			continue
		}

		o := p.op()

		prec := binaryPrec(o)
		if prec == precNone || prec < lowest {
			return nil
		}

		p.pos += len(o)

		var err error

		switch prec {
		case precAssign:
			err = p.binary(precAssign, r)

		case precRange:
			if p.startsExpr(r) {
				err = p.binary(precRange+1, r)
			}

		default:
			err = p.binary(prec+1, r)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// startsExpr reports whether the current token can begin an operand.
func (p *parser) startsExpr(r restrict) bool {
	t := p.peek()

	switch t.Kind {
	case KindLiteral, KindLifetime:
		return true

	case KindGroup:
		return r&noStruct == 0 || t.Delim != DelimBrace

	case KindIdent:
		return !reserved[t.Text]

	case KindPunct:
		switch p.op() {
		case "-", "!", "*", "&", "&&", "|", "||", "..", "..=", "::", "<":
			return true
		}
	}

	return false
}

func (p *parser) prefix(r restrict) error {
	if p.eof() {
		return p.errExpected("expression")
	}

	switch o := p.op(); o {
	case "-", "!", "*":
		p.advance()

		return p.prefix(r)

	case "&", "&&":
		p.pos += len(o)

		switch {
		case p.atIdent("raw") &&
			(p.peekAt(1).IsIdent("const") || p.peekAt(1).IsIdent("mut")):
			p.pos += 2

		case p.atIdent("mut"):
			p.advance()
		}

		return p.prefix(r)

	case "..", "..=":
		p.pos += len(o)

		if p.startsExpr(r) {
			return p.binary(precRange+1, r)
		}

		return nil

	case "|", "||":
		return p.closure(r)
	}

	if err := p.primary(r); err != nil {
		return err
	}

	return p.postfix()
}

func (p *parser) primary(r restrict) error {
	t := p.peek()

	switch t.Kind {
	case KindLiteral:
		p.advance()

		return nil

	case KindLifetime:
		p.advance()

		if !p.eatPunct(":") {
			return p.errExpected("`:` after label")
		}

		if !p.atIdent("loop") && !p.atIdent("while") && !p.atIdent("for") &&
			!p.atGroup(DelimBrace) {
			return p.errExpected("loop or block after label")
		}

		return p.primary(r)

	case KindGroup:
		switch t.Delim {
		case DelimParen:
			p.advance()

			return p.exprList(t)

		case DelimBracket:
			p.advance()

			return p.array(t)

		default:
			return p.blockExpr()
		}

	case KindPunct:
		if p.atOp("::") || p.atPunct("<") {
			return p.path(r)
		}

		return p.errExpected("expression")

	case KindIdent:
		return p.keywordOrPath(r)
	}

	return p.errExpected("expression")
}

func (p *parser) keywordOrPath(r restrict) error {
	switch p.peek().Text {
	case "if":
		return p.ifExpr()

	case "match":
		return p.matchExpr()

	case "loop", "unsafe":
		p.advance()

		return p.blockExpr()

	case "const":
		if p.peekAt(1).IsGroup(DelimBrace) {
			p.advance()

			return p.blockExpr()
		}

	case "while":
		p.advance()

		if err := p.cond(); err != nil {
			return err
		}

		return p.blockExpr()

	case "for":
		p.advance()

		if err := p.pattern(true); err != nil {
			return err
		}

		if !p.atIdent("in") {
			return p.errExpected("`in`")
		}

		p.advance()

		if err := p.expr(noStruct); err != nil {
			return err
		}

		return p.blockExpr()

	case "async":
		n := p.peekAt(1)
		if n.IsPunct("|") || n.IsIdent("move") && !p.peekAt(2).IsGroup(DelimBrace) {
			return p.closure(r)
		}

		p.advance()

		if p.atIdent("move") {
			p.advance()
		}

		return p.blockExpr()

	case "move":
		return p.closure(r)

	case "return", "yield", "become":
		p.advance()

		if p.startsExpr(r) {
			return p.expr(r)
		}

		return nil

	case "break":
		p.advance()

		if p.atKind(KindLifetime) {
			p.advance()
		}

		if p.startsExpr(r) {
			return p.expr(r)
		}

		return nil

	case "continue":
		p.advance()

		if p.atKind(KindLifetime) {
			p.advance()
		}

		return nil
	}

	if reserved[p.peek().Text] {
		return p.errExpected("expression")
	}

	return p.path(r)
}

// exprList validates the comma-separated expressions of a paren group.
func (p *parser) exprList(g Token) error {
	q := p.sub(g)

	_, err := q.list("expression", func() error { return q.expr(0) })

	return err
}

func (p *parser) array(g Token) error {
	q := p.sub(g)
	if q.eof() {
		return nil
	}

	if err := q.expr(0); err != nil {
		return err
	}

	if q.eatPunct(";") {
		if err := q.expr(0); err != nil {
			return err
		}

		return q.done("`]`")
	}

	if q.eof() {
		return nil
	}

	if !q.eatPunct(",") {
		return q.errExpected("`,` or `;`")
	}

	_, err := q.list("expression", func() error { return q.expr(0) })

	return err
}

func (p *parser) blockExpr() error {
	if !p.atGroup(DelimBrace) {
		return p.errExpected("block")
	}

	_, err := p.sub(p.advance()).stmts()

	return err
}

func (p *parser) ifExpr() error {
	p.advance() // if

	if err := p.cond(); err != nil {
		return err
	}

	if err := p.blockExpr(); err != nil {
		return err
	}

	if !p.atIdent("else") {
		return nil
	}

	p.advance()

	if p.atIdent("if") {
		return p.ifExpr()
	}

	return p.blockExpr()
}

// cond parses the condition of if and while, including let chains.
func (p *parser) cond() error {
	for {
		if p.atIdent("let") {
			p.advance()

			if err := p.pattern(true); err != nil {
				return err
			}

			if !p.eatSingle("=") {
				return p.errExpected("`=`")
			}
		}

		if err := p.binary(precCompare, noStruct); err != nil {
			return err
		}

		if !p.eatOp("&&") && !p.eatOp("||") {
			return nil
		}
	}
}

func (p *parser) matchExpr() error {
	p.advance() // match

	if err := p.expr(noStruct); err != nil {
		return err
	}

	if !p.atGroup(DelimBrace) {
		return p.errExpected("match arms")
	}

	return p.sub(p.advance()).arms()
}

func (p *parser) arms() error {
	for !p.eof() {
		if err := p.attrs(); err != nil {
			return err
		}

		if err := p.pattern(true); err != nil {
			return err
		}

		if p.atIdent("if") {
			p.advance()

			if err := p.expr(0); err != nil {
				return err
			}
		}

		if !p.eatOp("=>") {
			return p.errExpected("`=>`")
		}

		blockLike, err := p.exprOrBlock()
		if err != nil {
			return err
		}

		if !p.eatPunct(",") && !blockLike && !p.eof() {
			return p.errExpected("`,`")
		}
	}

	return nil
}

func (p *parser) closure(r restrict) error {
	if p.atIdent("async") {
		p.advance()
	}

	if p.atIdent("move") {
		p.advance()
	}

	switch {
	case p.eatOp("||"):

	case p.eatPunct("|"):
		for !p.atPunct("|") {
			if err := p.pattern(false); err != nil {
				return err
			}

			if p.eatSingle(":") {
				if err := p.typ(true); err != nil {
					return err
				}
			}

			if !p.eatPunct(",") {
				break
			}
		}

		if !p.eatPunct("|") {
			return p.errExpected("`|`")
		}

	default:
		return p.errExpected("closure parameters")
	}

	if p.eatOp("->") {
		if err := p.typ(false); err != nil {
			return err
		}

		return p.blockExpr()
	}

	return p.binary(precAssign, r)
}

func (p *parser) postfix() error {
	for !p.eof() {
		t := p.peek()

		switch {
		case t.IsPunct("?"):
			p.advance()

		case t.IsPunct(".") && !p.atOp(".."):
			p.advance()

			switch n := p.peek(); n.Kind {
			case KindIdent:
				p.advance()

				if p.atOp("::") {
					p.pos += 2

					if !p.atPunct("<") {
						return p.errExpected("generic arguments")
					}

					if err := p.genericArgs(); err != nil {
						return err
					}
				}

			case KindLiteral:
				p.advance() // tuple index

			default:
				return p.errExpected("field or method name")
			}

		case t.IsGroup(DelimParen):
			p.advance()

			if err := p.exprList(t); err != nil {
				return err
			}

		case t.IsGroup(DelimBracket):
			p.advance()

			q := p.sub(t)
			if err := q.expr(0); err != nil {
				return err
			}

			if err := q.done("`]`"); err != nil {
				return err
			}

		default:
			return nil
		}
	}

	return nil
}

// path parses a path expression with optional turbofish segments, then a
// macro invocation or struct literal that follows it.
func (p *parser) path(r restrict) error {
	if err := p.pathPrefix(); err != nil {
		return err
	}

	for {
		if !p.atKind(KindIdent) {
			return p.errExpected("identifier")
		}

		p.advance()

		if !p.atOp("::") {
			break
		}

		p.pos += 2

		if p.atPunct("<") {
			if err := p.genericArgs(); err != nil {
				return err
			}

			if !p.atOp("::") {
				break
			}

			p.pos += 2
		}
	}

	if p.atPunct("!") && p.peekAt(1).Kind == KindGroup {
		p.pos += 2

		return nil
	}

	if r&noStruct == 0 && p.atGroup(DelimBrace) {
		return p.structLit(p.advance())
	}

	return nil
}

// pathPrefix consumes a qualified self type <T as Trait>:: or a leading ::.
func (p *parser) pathPrefix() error {
	if !p.atPunct("<") {
		p.eatOp("::")

		return nil
	}

	p.advance()

	if err := p.typ(false); err != nil {
		return err
	}

	if p.atIdent("as") {
		p.advance()

		if err := p.typ(false); err != nil {
			return err
		}
	}

	if !p.eatPunct(">") {
		return p.errExpected("`>`")
	}

	if !p.eatOp("::") {
		return p.errExpected("`::`")
	}

	return nil
}

func (p *parser) structLit(g Token) error {
	q := p.sub(g)

	_, err := q.list("field", func() error {
		switch {
		case q.eatOp(".."):
			return q.expr(0)

		case q.atKind(KindIdent), q.atKind(KindLiteral):
			q.advance()

			if q.eatSingle(":") {
				return q.expr(0)
			}

			return nil
		}

		return q.errExpected("field")
	})

	return err
}

func (p *parser) genericArgs() error {
	if !p.eatPunct("<") {
		return p.errExpected("`<`")
	}

	for !p.atPunct(">") {
		t := p.peek()

		switch {
		case p.eof():
			return p.errExpected("`>`")

		case t.Kind == KindLifetime, t.Kind == KindLiteral, t.IsGroup(DelimBrace):
			p.advance()

		case t.Kind == KindIdent && p.peekAt(1).IsPunct("=") && !p.peekAt(1).Joint:
			p.pos += 2

			if err := p.typ(true); err != nil {
				return err
			}

		default:
			if err := p.typ(true); err != nil {
				return err
			}
		}

		if !p.eatPunct(",") {
			break
		}
	}

	if !p.eatPunct(">") {
		return p.errExpected("`>`")
	}

	return nil
}

// Types

// typ parses a type. When plus is set, trait bounds may be joined by '+'.
func (p *parser) typ(plus bool) error {
	if err := p.typeAtom(); err != nil {
		return err
	}

	for plus && p.atPunct("+") && !p.atOp("+=") {
		p.advance()

		if p.atKind(KindLifetime) {
			p.advance()

			continue
		}

		if err := p.typeAtom(); err != nil {
			return err
		}
	}

	return nil
}

func (p *parser) typeAtom() error {
	t := p.peek()

	switch {
	case p.eof():
		return p.errExpected("type")

	case t.Kind == KindGroup && t.Delim != DelimBrace:
		p.advance()

		return nil

	case t.Kind == KindLifetime:
		p.advance()

		return nil

	case p.atOp("&&"), t.IsPunct("&"):
		p.pos += len(p.op())

		if p.atKind(KindLifetime) {
			p.advance()
		}

		if p.atIdent("mut") {
			p.advance()
		}

		return p.typeAtom()

	case t.IsPunct("*"):
		p.advance()

		if !p.atIdent("const") && !p.atIdent("mut") {
			return p.errExpected("`const` or `mut`")
		}

		p.advance()

		return p.typeAtom()

	case t.IsPunct("!"):
		p.advance()

		return nil

	case t.IsPunct("<"), p.atOp("::"):
		return p.typePath()

	case t.Kind != KindIdent:
		return p.errExpected("type")
	}

	switch t.Text {
	case "_":
		p.advance()

		return nil

	case "impl", "dyn":
		p.advance()

		return p.typ(true)

	case "for":
		p.advance()

		if err := p.genericArgs(); err != nil {
			return err
		}

		return p.typeAtom()

	case "unsafe", "extern", "fn":
		return p.fnPointer()
	}

	return p.typePath()
}

func (p *parser) fnPointer() error {
	if p.atIdent("unsafe") {
		p.advance()
	}

	if p.atIdent("extern") {
		p.advance()

		if p.atKind(KindLiteral) {
			p.advance()
		}
	}

	if !p.atIdent("fn") {
		return p.errExpected("`fn`")
	}

	p.advance()

	if !p.atGroup(DelimParen) {
		return p.errExpected("parameter types")
	}

	p.advance()

	if p.eatOp("->") {
		return p.typeAtom()
	}

	return nil
}

// typePath parses a type path whose segments may carry generic arguments
// with or without a leading ::, or Fn(A) -> B sugar.
func (p *parser) typePath() error {
	if err := p.pathPrefix(); err != nil {
		return err
	}

	for {
		if !p.atKind(KindIdent) {
			return p.errExpected("identifier")
		}

		p.advance()

		switch {
		case p.atPunct("<") && !p.atOp("<="):
			if err := p.genericArgs(); err != nil {
				return err
			}

		case p.atOp("::") && p.peekAt(2).IsPunct("<"):
			p.pos += 2

			if err := p.genericArgs(); err != nil {
				return err
			}

		case p.atGroup(DelimParen):
			p.advance()

			if p.eatOp("->") {
				return p.typeAtom()
			}

			return nil
		}

		if !p.eatOp("::") {
			return nil
		}
	}
}

// Patterns

// pattern parses a pattern. When or is set, alternatives may be joined
// by '|'; closure parameters disallow that since '|' closes the list.
func (p *parser) pattern(or bool) error {
	if or {
		p.eatSingle("|")
	}

	for {
		if err := p.patternAtom(); err != nil {
			return err
		}

		if !or || p.op() != "|" {
			return nil
		}

		p.advance()
	}
}

func (p *parser) patternAtom() error {
	t := p.peek()

	switch o := p.op(); {
	case p.eof():
		return p.errExpected("pattern")

	case o == "&" || o == "&&":
		p.pos += len(o)

		if p.atIdent("mut") {
			p.advance()
		}

		return p.patternAtom()

	case o == "..":
		// Rest pattern, or a half-open range ..X.
		p.pos += len(o)

		if p.atKind(KindLiteral) {
			return p.rangeBound()
		}

		return nil

	case o == "..=":
		p.pos += len(o)

		return p.rangeBound()

	case t.Kind == KindLiteral, o == "-":
		if err := p.rangeBound(); err != nil {
			return err
		}

		return p.rangeTail()

	case t.Kind == KindGroup && t.Delim != DelimBrace:
		p.advance()

		q := p.sub(t)

		_, err := q.list("pattern", func() error { return q.pattern(true) })

		return err

	case t.Kind != KindIdent && o != "::" && o != "<":
		return p.errExpected("pattern")
	}

	switch t.Text {
	case "_":
		p.advance()

		return nil

	case "box":
		p.advance()

		return p.patternAtom()

	case "ref", "mut":
		p.advance()

		if p.atIdent("mut") {
			p.advance()
		}

		if !p.atKind(KindIdent) {
			return p.errExpected("binding name")
		}

		p.advance()

		return p.binding()
	}

	if err := p.path(noStruct); err != nil {
		return err
	}

	switch g := p.peek(); {
	case g.IsGroup(DelimParen):
		p.advance()

		q := p.sub(g)

		_, err := q.list("pattern", func() error { return q.pattern(true) })

		return err

	case g.IsGroup(DelimBrace):
		p.advance()

		return p.sub(g).fieldPatterns()

	case p.atPunct("@"):
		return p.binding()
	}

	return p.rangeTail()
}

// binding consumes an optional subpattern binding: name @ pattern.
func (p *parser) binding() error {
	if !p.eatPunct("@") {
		return nil
	}

	return p.patternAtom()
}

func (p *parser) fieldPatterns() error {
	_, err := p.list("field pattern", func() error {
		if p.eatOp("..") {
			return nil
		}

		if p.atIdent("ref") || p.atIdent("mut") || p.atIdent("box") {
			return p.patternAtom()
		}

		if !p.atKind(KindIdent) && !p.atKind(KindLiteral) {
			return p.errExpected("field pattern")
		}

		p.advance()

		if p.eatSingle(":") {
			return p.pattern(true)
		}

		return nil
	})

	return err
}

func (p *parser) rangeBound() error {
	p.eatPunct("-")

	switch {
	case p.atKind(KindLiteral):
		p.advance()

		return nil

	case p.atKind(KindIdent), p.atOp("::"):
		return p.path(noStruct)
	}

	return p.errExpected("range bound")
}

// rangeTail consumes the upper half of a range pattern, if present.
func (p *parser) rangeTail() error {
	switch o := p.op(); o {
	case "..=", "...":
		p.pos += len(o)

		return p.rangeBound()

	case "..":
		p.pos += len(o)

		if p.atKind(KindLiteral) || p.atPunct("-") || p.atKind(KindIdent) {
			return p.rangeBound()
		}
	}

	return nil
}
