package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ardnew/sx/lang/lexer"
	"github.com/ardnew/sx/lang/token"
	"github.com/ardnew/sx/log"
)

// Option configures parsing or evaluation behavior.
type Option func(*config)

// config holds shared parse/eval configuration.
type config struct {
	logger log.Logger
	binder Binder
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// parser is a recursive-descent parser with one token of lookahead.
//
// Errors are threaded as values: every parse step returns a node, and a step
// that produces or observes a KindError node short-circuits immediately, so
// the first error anywhere in a nested parse becomes the result of the whole
// parse. Nothing is ever thrown.
//
// A single-token hold lets an enclosing rule re-examine the token that
// terminated a sub-parse (such as a closing bracket) without pulling a new
// token from the lexer.
type parser struct {
	lx   *lexer.Lexer
	tok  token.Token
	held bool
	cfg  config
}

// next returns the held token, if any, or pulls the next token from the
// lexer.
func (p *parser) next() token.Token {
	if p.held {
		p.held = false

		return p.tok
	}

	p.tok = p.lx.Next()

	return p.tok
}

// hold pushes the current token back so the next call to next returns it
// again.
func (p *parser) hold() { p.held = true }

// errorNode constructs a terminal parse-failure node anchored at tok.
func errorNode(tok token.Token, msg string) *SExpr {
	return &SExpr{Kind: KindError, Message: msg, Start: tok, End: tok}
}

// numberErrorNode reports a numeric literal the lexer accepted but whose text
// does not convert to the kind's value type, using the [ErrInvalidNumber]
// sentinel message.
func numberErrorNode(tok token.Token, kind string) *SExpr {
	return errorNode(
		tok,
		ErrInvalidNumber.Error()+": "+kind+" literal "+tok.Text,
	)
}

// Parse reads a single expression from the lexer and returns its root node.
// On failure the returned node has KindError; no partial tree is produced
// and no recovery is attempted.
func Parse(ctx context.Context, l *lexer.Lexer, opts ...Option) *SExpr {
	p := &parser{lx: l, cfg: applyOptions(opts...)}

	node := p.parseExpr()

	p.cfg.logger.TraceContext(
		ctx,
		"parse complete",
		slog.String("kind", node.Kind.String()),
	)

	return node
}

// ParseString parses exactly one expression from the input string.
// Trailing input after the expression is an error. On failure the Error node
// is converted to a *ParseError carrying the source position and message.
func ParseString(
	ctx context.Context,
	input string,
	opts ...Option,
) (*SExpr, error) {
	p := &parser{lx: lexer.NewFromString(input), cfg: applyOptions(opts...)}

	p.cfg.logger.TraceContext(
		ctx,
		"parse start",
		slog.Int("source_length", len(input)),
	)

	node := p.parseExpr()
	if node.IsError() {
		return nil, NewParseError(node, input)
	}

	if trailing := p.next(); !trailing.Is(token.EOF) {
		return nil, NewParseError(
			errorNode(trailing, "unexpected input after expression"),
			input,
		)
	}

	return node, nil
}

// ParseProgram parses every top-level expression in the input string.
// The first error anywhere aborts the whole parse.
func ParseProgram(
	ctx context.Context,
	input string,
	opts ...Option,
) ([]*SExpr, error) {
	p := &parser{lx: lexer.NewFromString(input), cfg: applyOptions(opts...)}

	var nodes []*SExpr

	for {
		tok := p.next()
		if tok.Is(token.EOF) {
			p.cfg.logger.TraceContext(
				ctx,
				"program parsed",
				slog.Int("expression_count", len(nodes)),
			)

			return nodes, nil
		}

		p.hold()

		node := p.parseExpr()
		if node.IsError() {
			return nil, NewParseError(node, input)
		}

		nodes = append(nodes, node)
	}
}

// parseExpr parses one expression at the current position.
func (p *parser) parseExpr() *SExpr {
	tok := p.next()

	switch tok.Kind {
	case token.Error:
		return errorNode(tok, tok.Text)

	case token.EOF:
		return errorNode(tok, "unexpected end of input")

	case token.ParenOpen:
		return p.parseInvocation(tok)

	case token.BracketOpen:
		return p.parseList(tok)

	case token.Quote:
		inner := p.parseExpr()
		if inner.IsError() {
			return inner
		}

		return &SExpr{
			Kind:  KindQuote,
			Inner: inner,
			Start: tok,
			End:   inner.End,
		}

	case token.Identifier:
		return &SExpr{Kind: KindScoped, Name: tok.Text, Start: tok, End: tok}

	case token.Boolean:
		return &SExpr{
			Kind:  KindBoolean,
			Bool:  tok.Text == "true",
			Start: tok,
			End:   tok,
		}

	case token.Null:
		return &SExpr{Kind: KindNull, Start: tok, End: tok}

	case token.String:
		return &SExpr{Kind: KindString, Text: tok.Text, Start: tok, End: tok}

	case token.Integer:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return numberErrorNode(tok, "integer")
		}

		return &SExpr{Kind: KindInteger, Int: v, Start: tok, End: tok}

	case token.Decimal:
		// The lexer accepts any number of decimal points; reject them here.
		v, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return numberErrorNode(tok, "decimal")
		}

		return &SExpr{Kind: KindDecimal, Dec: v, Start: tok, End: tok}

	case token.Double:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return numberErrorNode(tok, "double")
		}

		return &SExpr{Kind: KindDouble, Double: v, Start: tok, End: tok}

	case token.Float:
		v, err := strconv.ParseFloat(tok.Text, 32)
		if err != nil {
			return numberErrorNode(tok, "float")
		}

		return &SExpr{
			Kind:  KindFloat,
			Float: float32(v),
			Start: tok,
			End:   tok,
		}

	default:
		return errorNode(tok, "unexpected token "+tok.Kind.String())
	}
}

// parseInvocation parses "(" identForm expr* ")". Zero parameters are valid.
func (p *parser) parseInvocation(open token.Token) *SExpr {
	ident := p.parseIdentForm()
	if ident.IsError() {
		return ident
	}

	var params []*SExpr

	for {
		tok := p.next()

		switch tok.Kind {
		case token.ParenClose:
			return &SExpr{
				Kind:   KindInvocation,
				Ident:  ident,
				Params: params,
				Start:  open,
				End:    tok,
			}

		case token.EOF:
			return errorNode(tok, "unexpected end of input in invocation")

		default:
			p.hold()

			param := p.parseExpr()
			if param.IsError() {
				return param
			}

			params = append(params, param)
		}
	}
}

// parseList parses "[" expr* "]". Elements are parsed eagerly but evaluated
// only when the evaluator walks the list.
func (p *parser) parseList(open token.Token) *SExpr {
	var items []*SExpr

	for {
		tok := p.next()

		switch tok.Kind {
		case token.BracketClose:
			return &SExpr{
				Kind:  KindList,
				Items: items,
				Start: open,
				End:   tok,
			}

		case token.EOF:
			return errorNode(tok, "unexpected end of input in list")

		default:
			p.hold()

			item := p.parseExpr()
			if item.IsError() {
				return item
			}

			items = append(items, item)
		}
	}
}

// parseIdentForm parses the identifier position of an invocation:
//
//	identForm := '.' IDENT                         // instance-member form
//	           | IDENT ('.' IDENT)* ('/' IDENT)?   // scoped or static-member
//
// A single bare name is a scoped identifier. A leading dot names an instance
// member whose receiver is the first invocation parameter. A dotted path
// followed by a slash and a name is a static member on a host type. A dotted
// path without a trailing slash-member is malformed.
func (p *parser) parseIdentForm() *SExpr {
	tok := p.next()

	switch tok.Kind {
	case token.Dot:
		name := p.next()
		if !name.Is(token.Identifier) {
			return errorNode(name, "expected member name after '.'")
		}

		return &SExpr{
			Kind:  KindInstanceMember,
			Name:  name.Text,
			Start: tok,
			End:   name,
		}

	case token.Identifier:
		segments := []string{tok.Text}
		last := tok

		for {
			next := p.next()

			switch next.Kind {
			case token.Dot:
				seg := p.next()
				if !seg.Is(token.Identifier) {
					return errorNode(seg, "expected identifier after '.'")
				}

				segments = append(segments, seg.Text)
				last = seg

			case token.Slash:
				member := p.next()
				if !member.Is(token.Identifier) {
					return errorNode(member, "expected member name after '/'")
				}

				return &SExpr{
					Kind:     KindStaticMember,
					Name:     member.Text,
					TypePath: segments,
					Start:    tok,
					End:      member,
				}

			default:
				p.hold()

				if len(segments) > 1 {
					return errorNode(
						last,
						"scoped identifier must have only one part",
					)
				}

				return &SExpr{
					Kind:  KindScoped,
					Name:  segments[0],
					Start: tok,
					End:   tok,
				}
			}
		}

	case token.Error:
		return errorNode(tok, tok.Text)

	default:
		return errorNode(tok, "expected identifier, got "+tok.Kind.String())
	}
}
