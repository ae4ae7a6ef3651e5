package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// tokenKind discriminates lexer tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokColon
	tokComma
	tokDot
)

// token is a single lexical token.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer scans expression source into tokens.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.input[l.pos]
}

func (l *lexer) skipSpace() {
	for !l.eof() {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipSpace()

	if l.eof() {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.lexNumber(start), nil

	case c == '\'' || c == '"':
		return l.lexString(start, c)

	case isIdentStart(c):
		return l.lexIdent(start), nil
	}

	l.pos++

	switch c {
	case '+':
		return token{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		if l.peek() == '*' {
			l.pos++

			return token{kind: tokPow, text: "**", pos: start}, nil
		}

		return token{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		return token{kind: tokSlash, text: "/", pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case '[':
		return token{kind: tokLBrack, text: "[", pos: start}, nil
	case ']':
		return token{kind: tokRBrack, text: "]", pos: start}, nil
	case ':':
		return token{kind: tokColon, text: ":", pos: start}, nil
	case ',':
		return token{kind: tokComma, text: ",", pos: start}, nil
	case '.':
		return token{kind: tokDot, text: ".", pos: start}, nil
	}

	return token{}, ErrSyntax.With(
		slog.String("character", string(c)),
		slog.Int("position", start),
	)
}

func (l *lexer) lexNumber(start int) token {
	sawDot := false

	for !l.eof() {
		c := l.input[l.pos]

		if isDigit(c) {
			l.pos++

			continue
		}

		if c == '.' && !sawDot &&
			l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			sawDot = true
			l.pos++

			continue
		}

		break
	}

	return token{kind: tokNumber, text: l.input[start:l.pos], pos: start}
}

func (l *lexer) lexString(start int, quote byte) (token, error) {
	l.pos++ // opening quote

	var sb strings.Builder

	for !l.eof() {
		c := l.input[l.pos]

		switch c {
		case quote:
			l.pos++

			return token{kind: tokString, text: sb.String(), pos: start}, nil

		case '\\':
			l.pos++

			if l.eof() {
				break
			}

			switch l.input[l.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(l.input[l.pos])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(l.input[l.pos])
			}

			l.pos++

		default:
			sb.WriteByte(c)
			l.pos++
		}
	}

	return token{}, ErrSyntax.With(
		slog.String("detail", "unterminated string literal"),
		slog.Int("position", start),
	)
}

func (l *lexer) lexIdent(start int) token {
	for !l.eof() && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	name := l.input[start:l.pos]

	// "item" may carry a combination spec qualifier: item:<spec_name>.
	if name == "item" && !l.eof() && l.input[l.pos] == ':' &&
		l.pos+1 < len(l.input) && isIdentStart(l.input[l.pos+1]) {
		l.pos++ // ':'

		qstart := l.pos
		for !l.eof() && isIdentPart(l.input[l.pos]) {
			l.pos++
		}

		name += ":" + l.input[qstart:l.pos]
	}

	return token{kind: tokIdent, text: name, pos: start}
}

// parser is a recursive-descent parser over the token stream.
type parser struct {
	toks []token
	pos  int
	src  string
}

// parse parses a complete expression source string into an AST.
func parse(src string) (node, error) {
	lex := &lexer{input: src}

	var toks []token

	for {
		tok, err := lex.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.kind == tokEOF {
			break
		}
	}

	p := &parser{toks: toks, src: src}

	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if p.cur().kind != tokEOF {
		return nil, ErrSyntax.With(
			slog.String("expression", src),
			slog.String("unexpected", p.cur().text),
			slog.Int("position", p.cur().pos),
		)
	}

	return n, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur().kind != kind {
		return token{}, ErrSyntax.With(
			slog.String("expression", p.src),
			slog.String("expected", what),
			slog.String("got", p.cur().text),
			slog.Int("position", p.cur().pos),
		)
	}

	return p.advance(), nil
}

// parseSum handles + and - (lowest precedence).
func (p *parser) parseSum() (node, error) {
	x, err := p.parseProduct()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur().kind {
		case tokPlus, tokMinus:
			op := p.advance().text

			y, err := p.parseProduct()
			if err != nil {
				return nil, err
			}

			x = &binaryNode{op: op, x: x, y: y}

		default:
			return x, nil
		}
	}
}

// parseProduct handles * and /.
func (p *parser) parseProduct() (node, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur().kind {
		case tokStar, tokSlash:
			op := p.advance().text

			y, err := p.parseUnary()
			if err != nil {
				return nil, err
			}

			x = &binaryNode{op: op, x: x, y: y}

		default:
			return x, nil
		}
	}
}

// parseUnary handles unary negation, which binds looser than ** on its
// left: -2**2 is -(2**2).
func (p *parser) parseUnary() (node, error) {
	if p.cur().kind == tokMinus {
		pos := p.advance().pos

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &unaryNode{x: x, pos: pos}, nil
	}

	return p.parsePower()
}

// parsePower handles ** (right associative, exponent may carry a sign).
func (p *parser) parsePower() (node, error) {
	x, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	if p.cur().kind == tokPow {
		p.advance()

		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &binaryNode{op: "**", x: x, y: y}, nil
	}

	return x, nil
}

// parsePostfix handles calls, method calls, and index/slice suffixes.
func (p *parser) parsePostfix() (node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur().kind {
		case tokLParen:
			ident, ok := x.(*identNode)
			if !ok {
				return nil, ErrDisallowed.With(
					slog.String("expression", p.src),
					slog.String("detail", "only named functions can be called"),
				)
			}

			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			x = &callNode{fn: ident.name, args: args, pos: ident.pos}

		case tokDot:
			p.advance()

			name, err := p.expect(tokIdent, "method name")
			if err != nil {
				return nil, err
			}

			if p.cur().kind != tokLParen {
				return nil, ErrDisallowed.With(
					slog.String("expression", p.src),
					slog.String("attribute", name.text),
					slog.String("detail", "attribute access requires a method call"),
				)
			}

			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			x = &methodNode{recv: x, name: name.text, args: args}

		case tokLBrack:
			x, err = p.parseIndex(x)
			if err != nil {
				return nil, err
			}

		default:
			return x, nil
		}
	}
}

// parseArgs parses a parenthesized, comma-separated argument list.
func (p *parser) parseArgs() ([]node, error) {
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}

	var args []node

	if p.cur().kind == tokRParen {
		p.advance()

		return args, nil
	}

	for {
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.cur().kind == tokComma {
			p.advance()

			continue
		}

		break
	}

	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}

	return args, nil
}

// parseIndex parses x[i], x[lo:hi], x[:hi], x[lo:], or x[:].
func (p *parser) parseIndex(x node) (node, error) {
	p.advance() // '['

	var lo, hi node

	var err error

	if p.cur().kind != tokColon {
		lo, err = p.parseSum()
		if err != nil {
			return nil, err
		}
	}

	if p.cur().kind == tokColon {
		p.advance()

		if p.cur().kind != tokRBrack {
			hi, err = p.parseSum()
			if err != nil {
				return nil, err
			}
		}

		if _, err := p.expect(tokRBrack, "]"); err != nil {
			return nil, err
		}

		return &sliceNode{x: x, lo: lo, hi: hi}, nil
	}

	if _, err := p.expect(tokRBrack, "]"); err != nil {
		return nil, err
	}

	if lo == nil {
		return nil, ErrSyntax.With(
			slog.String("expression", p.src),
			slog.String("detail", "empty index"),
		)
	}

	return &indexNode{x: x, idx: lo}, nil
}

// parsePrimary handles literals, identifiers, and parenthesized groups.
func (p *parser) parsePrimary() (node, error) {
	tok := p.cur()

	switch tok.kind {
	case tokNumber:
		p.advance()

		if strings.Contains(tok.text, ".") {
			f, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return nil, ErrSyntax.Wrap(err).
					With(slog.String("number", tok.text))
			}

			return &litNode{val: f, pos: tok.pos}, nil
		}

		i, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, ErrSyntax.Wrap(err).
				With(slog.String("number", tok.text))
		}

		return &litNode{val: i, pos: tok.pos}, nil

	case tokString:
		p.advance()

		return &litNode{val: tok.text, pos: tok.pos}, nil

	case tokIdent:
		p.advance()

		return &identNode{name: tok.text, pos: tok.pos}, nil

	case tokLParen:
		p.advance()

		x, err := p.parseSum()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}

		return x, nil

	default:
		return nil, ErrSyntax.With(
			slog.String("expression", p.src),
			slog.String("unexpected", tok.text),
			slog.Int("position", tok.pos),
		)
	}
}
