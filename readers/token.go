// Package readers contains the mesh input file parsers and the
// format dispatcher tying them together.
package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tokenReader reads whitespace separated tokens from a text stream,
// with a small pushback stack and line oriented access for the
// formats that are sensitive to line structure.
type tokenReader struct {
	r       *bufio.Reader
	putback []string
}

func newTokenReader(r io.Reader) *tokenReader {
	return &tokenReader{r: bufio.NewReader(r)}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// Token returns the next whitespace separated token. io.EOF is
// returned once the stream is exhausted.
func (t *tokenReader) Token() (string, error) {
	if n := len(t.putback); n > 0 {
		tok := t.putback[n-1]
		t.putback = t.putback[:n-1]
		return tok, nil
	}
	var b byte
	var err error
	for {
		b, err = t.r.ReadByte()
		if err != nil {
			return "", err
		}
		if !isSpace(b) {
			break
		}
	}
	var sb strings.Builder
	sb.WriteByte(b)
	for {
		b, err = t.r.ReadByte()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if isSpace(b) {
			t.r.UnreadByte()
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// Unread pushes a token back so the next Token call returns it again.
func (t *tokenReader) Unread(tok string) {
	t.putback = append(t.putback, tok)
}

// Int reads the next token and converts it to an integer.
func (t *tokenReader) Int() (int, error) {
	tok, err := t.Token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("expected integer, found <%s>", tok)
	}
	return n, nil
}

// Float reads the next token and converts it to a float.
func (t *tokenReader) Float() (float64, error) {
	tok, err := t.Token()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("expected floating point number, found <%s>", tok)
	}
	return f, nil
}

// Line reads the remainder of the current line, without the trailing
// newline and carriage return.
func (t *tokenReader) Line() (string, error) {
	if len(t.putback) > 0 {
		// Pushed back tokens have lost their line context.
		panic("Line called with tokens pushed back")
	}
	line, err := t.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// restOfLine discards everything up to and including the next newline.
func (t *tokenReader) restOfLine() error {
	_, err := t.Line()
	if err == io.EOF {
		return nil
	}
	return err
}

// skipEmptyLines consumes whitespace, including blank lines, so the
// reader is positioned at the first byte of the next content.
func (t *tokenReader) skipEmptyLines() error {
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !isSpace(b) {
			return t.r.UnreadByte()
		}
	}
}

// skipCommentLines drops leading blank lines and lines starting with
// the given comment byte.
func (t *tokenReader) skipCommentLines(comment byte) error {
	for {
		if err := t.skipEmptyLines(); err != nil {
			return err
		}
		b, err := t.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if b != comment {
			return t.r.UnreadByte()
		}
		if err := t.restOfLine(); err != nil {
			return err
		}
	}
}
