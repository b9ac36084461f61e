package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate evaluates a restricted boolean expression against scenario
// variables. The grammar covers identifiers, boolean/number/quoted-string
// literals, comparisons, logical operators, and parentheses. Characters
// outside that set reject the expression, and any parse or evaluation
// failure yields false; conditions never panic or execute user source.
func Evaluate(expr string, vars map[string]any) bool {
	tokens, err := scanCondition(expr)
	if err != nil || len(tokens) == 0 {
		return false
	}
	p := &condParser{tokens: tokens, vars: vars}
	v, err := p.parseOr()
	if err != nil || p.pos != len(p.tokens) {
		return false
	}
	return truthy(v)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokBool
	tokOp     // == != < <= > >= && || !
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// scanCondition tokenizes the restricted grammar, rejecting any character
// outside it before evaluation begins.
func scanCondition(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(expr) && expr[j] != quote {
				j++
			}
			if j >= len(expr) {
				return nil, fmt.Errorf("unterminated string at %d", i)
			}
			tokens = append(tokens, token{tokString, expr[i+1 : j]})
			i = j + 1
		case c == '&' || c == '|':
			if i+1 >= len(expr) || expr[i+1] != c {
				return nil, fmt.Errorf("invalid operator at %d", i)
			}
			tokens = append(tokens, token{tokOp, string(c) + string(c)})
			i += 2
		case c == '=':
			if i+1 >= len(expr) || expr[i+1] != '=' {
				return nil, fmt.Errorf("assignment is not allowed")
			}
			tokens = append(tokens, token{tokOp, "=="})
			i += 2
		case c == '!':
			if i+1 < len(expr) && expr[i+1] == '=' {
				tokens = append(tokens, token{tokOp, "!="})
				i += 2
			} else {
				tokens = append(tokens, token{tokOp, "!"})
				i++
			}
		case c == '<' || c == '>':
			op := string(c)
			i++
			if i < len(expr) && expr[i] == '=' {
				op += "="
				i++
			}
			tokens = append(tokens, token{tokOp, op})
		case c >= '0' && c <= '9':
			j := i
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokNumber, expr[i:j]})
			i = j
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			j := i
			for j < len(expr) && isIdentChar(expr[j]) {
				j++
			}
			word := expr[i:j]
			switch strings.ToLower(word) {
			case "true", "false":
				tokens = append(tokens, token{tokBool, strings.ToLower(word)})
			case "and":
				tokens = append(tokens, token{tokOp, "&&"})
			case "or":
				tokens = append(tokens, token{tokOp, "||"})
			case "not":
				tokens = append(tokens, token{tokOp, "!"})
			default:
				tokens = append(tokens, token{tokIdent, word})
			}
			i = j
		default:
			return nil, fmt.Errorf("illegal character %q", c)
		}
	}
	return tokens, nil
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// condParser is a recursive-descent parser-evaluator over the token stream.
type condParser struct {
	tokens []token
	pos    int
	vars   map[string]any
}

func (p *condParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *condParser) acceptOp(ops ...string) (string, bool) {
	t, ok := p.peek()
	if !ok || t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *condParser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = truthy(left) || truthy(right)
	}
}

func (p *condParser) parseAnd() (any, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = truthy(left) && truthy(right)
	}
}

func (p *condParser) parseComparison() (any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", "<", "<=", ">", ">=")
	if !ok {
		return left, nil
	}
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return compare(op, left, right)
}

func (p *condParser) parseUnary() (any, error) {
	if _, ok := p.acceptOp("!"); ok {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	}
	return p.parsePrimary()
}

func (p *condParser) parsePrimary() (any, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	switch t.kind {
	case tokLParen:
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.peek(); !ok || p.tokens[p.pos].kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case tokBool:
		p.pos++
		return t.text == "true", nil
	case tokNumber:
		p.pos++
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case tokString:
		p.pos++
		return t.text, nil
	case tokIdent:
		p.pos++
		return p.vars[t.text], nil
	default:
		return nil, fmt.Errorf("unexpected token %q", t.text)
	}
}

// compare applies a comparison operator. Numbers compare numerically when
// both sides coerce; otherwise equality compares printed forms and ordering
// requires two strings.
func compare(op string, left, right any) (any, error) {
	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if lok && rok {
		switch op {
		case "==":
			return ln == rn, nil
		case "!=":
			return ln != rn, nil
		case "<":
			return ln < rn, nil
		case "<=":
			return ln <= rn, nil
		case ">":
			return ln > rn, nil
		case ">=":
			return ln >= rn, nil
		}
	}
	ls, lsok := left.(string)
	rs, rsok := right.(string)
	switch op {
	case "==":
		return fmt.Sprint(left) == fmt.Sprint(right), nil
	case "!=":
		return fmt.Sprint(left) != fmt.Sprint(right), nil
	default:
		if lsok && rsok {
			switch op {
			case "<":
				return ls < rs, nil
			case "<=":
				return ls <= rs, nil
			case ">":
				return ls > rs, nil
			case ">=":
				return ls >= rs, nil
			}
		}
		return nil, fmt.Errorf("ordering requires two numbers or two strings")
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy coerces a value to boolean: booleans pass through, numbers are true
// when nonzero, strings when nonempty, absent variables are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if n, ok := toNumber(v); ok {
			return n != 0
		}
		return false
	}
}
