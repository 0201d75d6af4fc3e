// Package setlist decodes the textual setlist column into an ordered list of
// song titles.
//
// Two encodings are accepted: a JSON array of strings, and the bracketed list of
// quoted literals produced by the original CSV export, e.g.
//
//	['Start Me Up', "It's Only Rock 'n' Roll", 'Satisfaction']
//
// The second form is tokenized, never evaluated.
package setlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is returned when the text is neither encoding.
var ErrMalformed = errors.New("malformed setlist")

// Decode parses raw into song titles. An empty field or an empty list decodes to
// nil with no error.
func Decode(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var songs []string
	if err := json.Unmarshal([]byte(trimmed), &songs); err != nil {
		songs, err = parseLiteralList(trimmed)
		if err != nil {
			return nil, err
		}
	}

	// json.Unmarshal turns null elements into "", so blank titles are caught here.
	for i, song := range songs {
		if strings.TrimSpace(song) == "" {
			return nil, fmt.Errorf("%w: blank song title at index %d", ErrMalformed, i)
		}
	}
	return nonEmpty(songs), nil
}

// Encode renders songs in the canonical JSON encoding.
func Encode(songs []string) (string, error) {
	if len(songs) == 0 {
		return "", nil
	}
	b, err := json.Marshal(songs)
	if err != nil {
		return "", fmt.Errorf("encode setlist: %w", err)
	}
	return string(b), nil
}

func nonEmpty(songs []string) []string {
	if len(songs) == 0 {
		return nil
	}
	return songs
}

func parseLiteralList(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: expected bracketed list", ErrMalformed)
	}

	p := &literalParser{src: s[1 : len(s)-1], offset: 1}
	var songs []string
	p.skipSpace()
	if p.done() {
		return nil, nil
	}

	for {
		song, err := p.quoted()
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)

		p.skipSpace()
		if p.done() {
			return songs, nil
		}
		if p.src[p.pos] != ',' {
			return nil, p.errorf("expected ',' got %q", p.src[p.pos])
		}
		p.pos++
		p.skipSpace()
		// trailing comma
		if p.done() {
			return songs, nil
		}
	}
}

type literalParser struct {
	src    string
	pos    int
	offset int
}

func (p *literalParser) done() bool {
	return p.pos >= len(p.src)
}

func (p *literalParser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, p.pos+p.offset, fmt.Sprintf(format, args...))
}

func (p *literalParser) quoted() (string, error) {
	if p.done() {
		return "", p.errorf("expected string literal")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", p.errorf("expected quote got %q", quote)
	}
	p.pos++

	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("dangling escape")
			}
			next := p.src[p.pos+1]
			switch next {
			case '\\', '\'', '"':
				b.WriteByte(next)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			p.pos += 2
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			if r == utf8.RuneError && size == 1 {
				return "", p.errorf("invalid utf-8")
			}
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string literal")
}
