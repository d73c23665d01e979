package refdist

import (
	"fmt"
	"strconv"
	"strings"
)

// node is one level of a parsed nested mapping: either a leaf number or a
// mapping from numeric keys to child nodes.
type node struct {
	leaf     bool
	value    float64
	children map[float64]*node
}

// parseLiteral parses a serialized nested mapping of numbers such as
//
//	{0.3: {1000: {0: -0.12, 1: -0.1}}, 0.31: {...}}
//
// Keys may be bare numbers or quoted numeric strings, so JSON objects are
// accepted as well.
func parseLiteral(src string) (*node, error) {
	p := &literalParser{src: src}
	n, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return n, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (*node, error) {
	p.skipSpace()
	if p.peek() == '{' {
		return p.mapping()
	}
	v, err := p.number()
	if err != nil {
		return nil, err
	}
	return &node{leaf: true, value: v}, nil
}

func (p *literalParser) mapping() (*node, error) {
	p.pos++ // '{'
	n := &node{children: make(map[float64]*node)}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return n, nil
		}
		key, err := p.number()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		child, err := p.value()
		if err != nil {
			return nil, err
		}
		if _, dup := n.children[key]; dup {
			return nil, p.errorf("duplicate key %v", key)
		}
		n.children[key] = child

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *literalParser) number() (float64, error) {
	p.skipSpace()
	quote := p.peek()
	if quote == '\'' || quote == '"' {
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], quote)
		if end < 0 {
			return 0, p.errorf("unterminated string")
		}
		s := p.src[p.pos : p.pos+end]
		p.pos += end + 1
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, p.errorf("invalid number %q", s)
		}
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	s := p.src[start:p.pos]
	// python 2 long suffix
	if p.pos < len(p.src) && (p.src[p.pos] == 'L' || p.src[p.pos] == 'l') {
		p.pos++
	}
	if s == "" {
		return 0, p.errorf("expected number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, p.errorf("invalid number %q", s)
	}
	return v, nil
}
