package xmltok

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind identifies the type of a Token.
type Kind int

const (
	// StartTag is an element opening tag (<name ...> or <name .../>)
	StartTag Kind = iota
	// Attr is one attribute of the most recent start tag
	Attr
	// Text is character data between tags (raw, entities not decoded)
	Text
	// EndTag is an element closing tag (</name>)
	EndTag
)

// String returns the name of the token kind
func (k Kind) String() string {
	switch k {
	case StartTag:
		return "START_TAG"
	case Attr:
		return "ATTR"
	case Text:
		return "TEXT"
	case EndTag:
		return "END_TAG"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexical event.
type Token struct {
	Kind   Kind
	Prefix string // Namespace prefix (e.g. "u" in "u:PlayResponse"), empty if none
	Name   string // Local name of the tag or attribute
	Value  string // Attribute value or text content
}

// Is reports whether t is of kind k with local name name. The namespace
// prefix is ignored.
func (t Token) Is(k Kind, name string) bool {
	return t.Kind == k && t.Name == name
}

// QName returns the prefixed name (prefix:name) as it appeared in the input
func (t Token) QName() string {
	if t.Prefix == "" {
		return t.Name
	}
	return t.Prefix + ":" + t.Name
}

func (t Token) String() string {
	switch t.Kind {
	case Attr:
		return fmt.Sprintf("%s(%s=%q)", t.Kind, t.QName(), t.Value)
	case Text:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.QName())
	}
}

// SyntaxError reports malformed markup.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Tokenizer is a pull-based XML lexer. It is not safe for concurrent use.
type Tokenizer struct {
	r      *bufio.Reader
	offset int64
	inTag  bool // true while the attribute run of a start tag is being read
	err    error
}

// NewTokenizer creates a tokenizer reading from r
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r)}
}

// NewStringTokenizer creates a tokenizer over an in-memory document
func NewStringTokenizer(s string) *Tokenizer {
	return NewTokenizer(strings.NewReader(s))
}

// Next returns the next token. It returns io.EOF once the input is exhausted
// between tokens and io.ErrUnexpectedEOF if the input ends inside markup.
// After an error every subsequent call returns the same error.
func (t *Tokenizer) Next() (Token, error) {
	if t.err != nil {
		return Token{}, t.err
	}
	tok, err := t.next()
	if err != nil {
		t.err = err
	}
	return tok, err
}

func (t *Tokenizer) next() (Token, error) {
	for {
		if t.inTag {
			tok, ok, err := t.readAttr()
			if err != nil {
				return Token{}, err
			}
			if ok {
				return tok, nil
			}
			continue
		}

		c, err := t.readByte()
		if err == io.EOF {
			return Token{}, io.EOF
		}
		if err != nil {
			return Token{}, err
		}

		if c != '<' {
			t.unreadByte()
			text, err := t.readUntil('<')
			if err != nil && err != io.EOF {
				return Token{}, err
			}
			if isSpace(text) {
				if err == io.EOF {
					return Token{}, io.EOF
				}
				continue
			}
			return Token{Kind: Text, Value: text}, nil
		}

		tok, ok, err := t.readMarkup()
		if err != nil {
			return Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
}

// readMarkup is called just after '<'. ok is false for skipped constructs.
func (t *Tokenizer) readMarkup() (Token, bool, error) {
	c, err := t.mustReadByte()
	if err != nil {
		return Token{}, false, err
	}

	switch c {
	case '?':
		return Token{}, false, t.skipPast("?>")
	case '!':
		return t.readBang()
	case '/':
		name, err := t.readName()
		if err != nil {
			return Token{}, false, err
		}
		t.skipSpace()
		if err := t.expect('>'); err != nil {
			return Token{}, false, err
		}
		prefix, local := splitName(name)
		return Token{Kind: EndTag, Prefix: prefix, Name: local}, true, nil
	default:
		t.unreadByte()
		name, err := t.readName()
		if err != nil {
			return Token{}, false, err
		}
		t.inTag = true
		prefix, local := splitName(name)
		return Token{Kind: StartTag, Prefix: prefix, Name: local}, true, nil
	}
}

// readBang handles <!-- -->, <![CDATA[ ]]> and <!DOCTYPE ...>
func (t *Tokenizer) readBang() (Token, bool, error) {
	peek, err := t.r.Peek(2)
	if err == nil && string(peek) == "--" {
		t.discard(2)
		return Token{}, false, t.skipPast("-->")
	}
	peek, err = t.r.Peek(7)
	if err == nil && string(peek) == "[CDATA[" {
		t.discard(7)
		data, err := t.readPast("]]>")
		if err != nil {
			return Token{}, false, err
		}
		if data == "" {
			return Token{}, false, nil
		}
		return Token{Kind: Text, Value: data}, true, nil
	}
	return Token{}, false, t.skipPast(">")
}

// readAttr reads the next attribute of the current start tag. ok is false
// when the tag was closed instead.
func (t *Tokenizer) readAttr() (Token, bool, error) {
	t.skipSpace()
	c, err := t.mustReadByte()
	if err != nil {
		return Token{}, false, err
	}
	switch c {
	case '>':
		t.inTag = false
		return Token{}, false, nil
	case '/':
		if err := t.expect('>'); err != nil {
			return Token{}, false, err
		}
		t.inTag = false
		return Token{}, false, nil
	}

	t.unreadByte()
	name, err := t.readName()
	if err != nil {
		return Token{}, false, err
	}
	t.skipSpace()
	if err := t.expect('='); err != nil {
		return Token{}, false, err
	}
	t.skipSpace()
	quote, err := t.mustReadByte()
	if err != nil {
		return Token{}, false, err
	}
	if quote != '"' && quote != '\'' {
		return Token{}, false, t.syntaxError(fmt.Sprintf("unquoted value for attribute %q", name))
	}
	value, err := t.readUntil(quote)
	if err != nil {
		return Token{}, false, unexpected(err)
	}
	t.discard(1)

	prefix, local := splitName(name)
	return Token{Kind: Attr, Prefix: prefix, Name: local, Value: value}, true, nil
}

func (t *Tokenizer) readName() (string, error) {
	var b strings.Builder
	for {
		c, err := t.readByte()
		if err == io.EOF && b.Len() > 0 {
			break
		}
		if err != nil {
			return "", unexpected(err)
		}
		if isNameByte(c) {
			b.WriteByte(c)
			continue
		}
		t.unreadByte()
		break
	}
	if b.Len() == 0 {
		return "", t.syntaxError("expected name")
	}
	return b.String(), nil
}

// readUntil returns everything up to (not including) delim and leaves delim
// unread. Returns io.EOF with the partial data if delim never appears.
func (t *Tokenizer) readUntil(delim byte) (string, error) {
	var b strings.Builder
	for {
		c, err := t.readByte()
		if err != nil {
			return b.String(), err
		}
		if c == delim {
			t.unreadByte()
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

// readPast returns everything before terminator and consumes terminator.
func (t *Tokenizer) readPast(terminator string) (string, error) {
	var buf bytes.Buffer
	for {
		c, err := t.readByte()
		if err != nil {
			return "", unexpected(err)
		}
		buf.WriteByte(c)
		if bytes.HasSuffix(buf.Bytes(), []byte(terminator)) {
			return string(buf.Bytes()[:buf.Len()-len(terminator)]), nil
		}
	}
}

func (t *Tokenizer) skipPast(terminator string) error {
	_, err := t.readPast(terminator)
	return err
}

func (t *Tokenizer) skipSpace() {
	for {
		c, err := t.readByte()
		if err != nil {
			return
		}
		if !isSpaceByte(c) {
			t.unreadByte()
			return
		}
	}
}

func (t *Tokenizer) expect(want byte) error {
	c, err := t.mustReadByte()
	if err != nil {
		return err
	}
	if c != want {
		return t.syntaxError(fmt.Sprintf("expected %q, got %q", want, c))
	}
	return nil
}

func (t *Tokenizer) readByte() (byte, error) {
	c, err := t.r.ReadByte()
	if err == nil {
		t.offset++
	}
	return c, err
}

// mustReadByte is readByte inside markup, where EOF is never clean
func (t *Tokenizer) mustReadByte() (byte, error) {
	c, err := t.readByte()
	return c, unexpected(err)
}

func (t *Tokenizer) unreadByte() {
	if t.r.UnreadByte() == nil {
		t.offset--
	}
}

func (t *Tokenizer) discard(n int) {
	d, _ := t.r.Discard(n)
	t.offset += int64(d)
}

func (t *Tokenizer) syntaxError(msg string) error {
	return &SyntaxError{Offset: t.offset, Msg: msg}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func splitName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ':' || c == '_' || c == '-' || c == '.':
		return true
	case c >= 0x80:
		return true
	}
	return false
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpaceByte(s[i]) {
			return false
		}
	}
	return true
}
