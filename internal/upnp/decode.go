package upnp

import (
	"io"

	"github.com/muurk/sonoslink/internal/xmltok"
)

// TokenSource is a forward-only stream of XML tokens. Next returns io.EOF
// once the stream is exhausted.
type TokenSource interface {
	Next() (xmltok.Token, error)
}

// DecodeReader tokenizes r and decodes the response arguments for action
func DecodeReader(action string, r io.Reader) (Arguments, error) {
	return Decode(action, xmltok.NewTokenizer(r))
}

// Decode extracts the argument map from a SOAP response.
//
// It scans for the <{action}Response> wrapper (namespace prefix ignored) and
// records each child element's text under the element's local name. A child
// with no text before the next tag is dropped. Running out of tokens before
// the wrapper is opened or closed is a malformed response.
func Decode(action string, tokens TokenSource) (Arguments, error) {
	wrapper := action + "Response"

	for {
		tok, err := tokens.Next()
		if err != nil {
			return nil, malformed(wrapper, "before response wrapper", err)
		}
		if tok.Is(xmltok.StartTag, wrapper) {
			break
		}
	}

	arguments := Arguments{}
	pending := ""
	for {
		tok, err := tokens.Next()
		if err != nil {
			return nil, malformed(wrapper, "inside response wrapper", err)
		}

		switch tok.Kind {
		case xmltok.StartTag:
			pending = tok.Name
		case xmltok.Text:
			if pending != "" {
				arguments[pending] = tok.Value
				pending = ""
			}
		case xmltok.EndTag:
			if tok.Name == wrapper {
				return arguments, nil
			}
			pending = ""
		}
	}
}

func malformed(wrapper, where string, err error) error {
	if err == io.EOF {
		return NewMalformedResponseError("stream ended "+where+" <"+wrapper+">", nil)
	}
	return NewMalformedResponseError("unreadable response "+where+" <"+wrapper+">", err)
}
