package expr

// parser is a recursive-descent parser for the restricted grammar.
// Precedence, loosest to tightest: or, and, not, comparison, additive,
// multiplicative, unary sign, primary.
type parser struct {
	lex *lexer
	tok token
}

// Parse parses a condition string into an AST. Any construct outside the
// whitelist is rejected with a *SyntaxError before evaluation can run.
func Parse(src string) (*Node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.tok.typ != tokEOF {
		return nil, syntaxErrorf(p.tok.pos, "unexpected %s after expression", p.tok)
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.tok.typ == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBool, Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (*Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.tok.typ == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBool, Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (*Node, error) {
	if p.tok.typ == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnary, Op: OpNot, Left: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison parses a comparison chain. Like Python, a chain of
// comparisons (1 < x < 10) is a single node evaluated pairwise.
func (p *parser) parseComparison() (*Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	var ops []Op
	var comparators []*Node
	for {
		op, ok := comparisonOp(p.tok.typ)
		if !ok {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}

	if len(ops) == 0 {
		return left, nil
	}
	return &Node{Kind: KindCompare, Left: left, Ops: ops, Comparators: comparators}, nil
}

func comparisonOp(t tokenType) (Op, bool) {
	switch t {
	case tokEq:
		return OpEq, true
	case tokNeq:
		return OpNeq, true
	case tokLt:
		return OpLt, true
	case tokLte:
		return OpLte, true
	case tokGt:
		return OpGt, true
	case tokGte:
		return OpGte, true
	}
	return "", false
}

func (p *parser) parseAdditive() (*Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.tok.typ == tokPlus || p.tok.typ == tokMinus {
		op := OpAdd
		if p.tok.typ == tokMinus {
			op = OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBinary, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.tok.typ == tokStar || p.tok.typ == tokSlash || p.tok.typ == tokPercent {
		var op Op
		switch p.tok.typ {
		case tokStar:
			op = OpMul
		case tokSlash:
			op = OpDiv
		case tokPercent:
			op = OpMod
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBinary, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (*Node, error) {
	switch p.tok.typ {
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnary, Op: OpNeg, Left: operand}, nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindUnary, Op: OpPos, Left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Node, error) {
	tok := p.tok

	switch tok.typ {
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(&Node{Kind: KindLiteral, Value: tok.num})

	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(&Node{Kind: KindLiteral, Value: tok.lit})

	case tokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(&Node{Kind: KindLiteral, Value: true})

	case tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(&Node{Kind: KindLiteral, Value: false})

	case tokNone:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(&Node{Kind: KindLiteral, Value: nil})

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		// A name followed by an opening paren is a function call, which is
		// outside the whitelist.
		if p.tok.typ == tokLParen {
			return nil, syntaxErrorf(p.tok.pos, "function calls are not allowed")
		}
		return p.checkPostfix(&Node{Kind: KindName, Ident: tok.lit})

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.typ != tokRParen {
			return nil, syntaxErrorf(p.tok.pos, "expected ')', got %s", p.tok)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.checkPostfix(inner)

	case tokDot:
		return nil, syntaxErrorf(tok.pos, "attribute access is not allowed")
	case tokLBrack, tokRBrack:
		return nil, syntaxErrorf(tok.pos, "indexing is not allowed")
	case tokLBrace, tokRBrace:
		return nil, syntaxErrorf(tok.pos, "literal collections are not allowed")
	case tokAssign:
		return nil, syntaxErrorf(tok.pos, "assignment is not allowed")
	case tokEOF:
		return nil, syntaxErrorf(tok.pos, "unexpected end of expression")
	}

	return nil, syntaxErrorf(tok.pos, "unexpected %s", tok)
}

// checkPostfix rejects postfix constructs outside the whitelist (attribute
// access, indexing) with a structural error naming them.
func (p *parser) checkPostfix(node *Node) (*Node, error) {
	switch p.tok.typ {
	case tokDot:
		return nil, syntaxErrorf(p.tok.pos, "attribute access is not allowed")
	case tokLBrack:
		return nil, syntaxErrorf(p.tok.pos, "indexing is not allowed")
	case tokAssign:
		return nil, syntaxErrorf(p.tok.pos, "assignment is not allowed")
	}
	return node, nil
}
