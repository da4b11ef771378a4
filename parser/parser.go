// Package parser parses annotations found in Go doc comments.
//
// The grammar is intentionally small. An annotation starts with "@" followed
// by a possibly-qualified type name and an optional value:
//
//	@Marker
//	@pkg.Marker("positional")
//	@pkg.Marker{Name: "value", Retries: 3, Enabled: true}
//
// Values are string, integer, floating point, boolean or nil literals, or
// references to identifiers (which may be qualified).
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/viant/parsly"
)

// ParseError is returned when annotation text is malformed. It records where
// in the input the error was encountered.
type ParseError struct {
	err error
	pos scanner.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Unwrap() error {
	return e.err
}

func (e *ParseError) Pos() scanner.Position {
	return e.pos
}

// ParseAnnotations parses all annotations in the given source. The source must
// contain only annotations, separated by whitespace. The given filename is
// only used to populate positions.
func ParseAnnotations(filename string, src []byte) ([]Annotation, error) {
	p := &annoParser{
		filename: filename,
		src:      src,
		cursor:   parsly.NewCursor(filename, src, 0),
	}
	var res []Annotation
	for {
		m := p.next(atMatcher)
		switch m.Code {
		case atToken:
			a, err := p.parseAnnotation(m.Offset)
			if err != nil {
				return nil, err
			}
			res = append(res, a)
		case parsly.EOF:
			return res, nil
		default:
			if p.atEnd() {
				return res, nil
			}
			return nil, p.unexpected(`"@"`)
		}
	}
}

type annoParser struct {
	filename string
	src      []byte
	cursor   *parsly.Cursor
}

func (p *annoParser) next(candidates ...*parsly.Token) *parsly.TokenMatch {
	return p.cursor.MatchAfterOptional(whitespaceMatcher, candidates...)
}

func (p *annoParser) parseAnnotation(offset int) (Annotation, error) {
	var a Annotation
	a.Pos = p.position(offset)
	id, err := p.parseIdentifier()
	if err != nil {
		return a, err
	}
	a.Type = id

	m := p.next(lparenMatcher, lbraceMatcher)
	switch m.Code {
	case lparenToken:
		v, err := p.parseValue()
		if err != nil {
			return a, err
		}
		if m := p.next(rparenMatcher); m.Code != rparenToken {
			return a, p.unexpected(`")"`)
		}
		a.Value = &v
	case lbraceToken:
		fields, err := p.parseFields()
		if err != nil {
			return a, err
		}
		a.Fields = fields
	}
	return a, nil
}

func (p *annoParser) parseIdentifier() (Identifier, error) {
	m := p.next(identMatcher)
	if m.Code != identToken {
		return Identifier{}, p.unexpected("identifier")
	}
	id := Identifier{Name: m.Text(p.cursor), Pos: p.position(m.Offset)}
	// a qualifier must be immediately followed by the dot
	if p.cursor.Pos < p.cursor.InputSize && p.src[p.cursor.Pos] == '.' {
		p.next(dotMatcher)
		m = p.next(identMatcher)
		if m.Code != identToken {
			return Identifier{}, p.unexpected("identifier")
		}
		id.PackageAlias = id.Name
		id.Name = m.Text(p.cursor)
	}
	return id, nil
}

func (p *annoParser) parseFields() ([]Field, error) {
	var fields []Field
	seen := map[string]struct{}{}
	for {
		m := p.next(rbraceMatcher, identMatcher)
		switch m.Code {
		case rbraceToken:
			return fields, nil
		case identToken:
		default:
			return nil, p.unexpected(`field name or "}"`)
		}
		f := Field{Name: m.Text(p.cursor), Pos: p.position(m.Offset)}
		if _, ok := seen[f.Name]; ok {
			return nil, p.errorf(m.Offset, "duplicate field %s", f.Name)
		}
		seen[f.Name] = struct{}{}
		if m := p.next(colonMatcher); m.Code != colonToken {
			return nil, p.unexpected(`":"`)
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		f.Value = v
		fields = append(fields, f)

		m = p.next(commaMatcher, rbraceMatcher)
		switch m.Code {
		case commaToken:
		case rbraceToken:
			return fields, nil
		default:
			return nil, p.unexpected(`"," or "}"`)
		}
	}
}

func (p *annoParser) parseValue() (Value, error) {
	m := p.next(stringMatcher, numberMatcher, minusMatcher, identMatcher)
	offset := m.Offset
	switch m.Code {
	case stringToken:
		raw := m.Text(p.cursor)
		s, err := strconv.Unquote(raw)
		if err != nil {
			return Value{}, p.errorf(offset, "invalid string literal %s", raw)
		}
		return Value{Kind: KindString, Str: s, Raw: raw, Pos: p.position(offset)}, nil
	case minusToken:
		n := p.next(numberMatcher)
		if n.Code != numberToken {
			return Value{}, p.unexpected("number")
		}
		return p.numberValue("-"+n.Text(p.cursor), offset)
	case numberToken:
		return p.numberValue(m.Text(p.cursor), offset)
	case identToken:
		text := m.Text(p.cursor)
		pos := p.position(offset)
		switch text {
		case "true", "false":
			return Value{Kind: KindBool, Bool: text == "true", Raw: text, Pos: pos}, nil
		case "nil":
			return Value{Kind: KindNil, Raw: text, Pos: pos}, nil
		}
		id := Identifier{Name: text, Pos: pos}
		if p.cursor.Pos < p.cursor.InputSize && p.src[p.cursor.Pos] == '.' {
			p.next(dotMatcher)
			n := p.next(identMatcher)
			if n.Code != identToken {
				return Value{}, p.unexpected("identifier")
			}
			id.PackageAlias = id.Name
			id.Name = n.Text(p.cursor)
		}
		return Value{Kind: KindIdent, Ident: id, Raw: id.String(), Pos: pos}, nil
	default:
		return Value{}, p.unexpected("value")
	}
}

func (p *annoParser) numberValue(text string, offset int) (Value, error) {
	pos := p.position(offset)
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return Value{Kind: KindInt, Int: i, Raw: text, Pos: pos}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, p.errorf(offset, "invalid number %s", text)
	}
	return Value{Kind: KindFloat, Float: f, Raw: text, Pos: pos}, nil
}

// atEnd reports whether only whitespace remains.
func (p *annoParser) atEnd() bool {
	return p.skipSpace() >= len(p.src)
}

func (p *annoParser) skipSpace() int {
	offset := p.cursor.Pos
	for offset < len(p.src) && isSpace(p.src[offset]) {
		offset++
	}
	return offset
}

func (p *annoParser) unexpected(expecting string) error {
	offset := p.skipSpace()
	found := "end of input"
	if offset < len(p.src) {
		end := offset + 1
		for end < len(p.src) && isIdentifierPart(p.src[end]) && isIdentifierPart(p.src[offset]) {
			end++
		}
		found = strconv.Quote(string(p.src[offset:end]))
	}
	return p.errorf(offset, "syntax error: unexpected %s, expecting %s", found, expecting)
}

func (p *annoParser) errorf(offset int, format string, args ...interface{}) error {
	return &ParseError{err: fmt.Errorf(format, args...), pos: p.position(offset)}
}

// position converts a byte offset into a line and column, both 1-based.
func (p *annoParser) position(offset int) scanner.Position {
	if offset > len(p.src) {
		offset = len(p.src)
	}
	prefix := p.src[:offset]
	line := 1 + strings.Count(string(prefix), "\n")
	col := offset + 1
	if nl := strings.LastIndexByte(string(prefix), '\n'); nl >= 0 {
		col = offset - nl
	}
	return scanner.Position{Filename: p.filename, Offset: offset, Line: line, Column: col}
}
