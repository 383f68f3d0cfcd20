// Package xmltok is a forward-only XML token source.
//
// The lexer turns a byte stream into a flat sequence of structural events
// (start tag, attribute, text, end tag) without building a tree. It is the
// event source consumed by the SOAP codec and the zone topology extractor,
// both of which are written as explicit "consume next token, branch on it"
// state machines.
//
// # Event Model
//
//	<u:PlayResponse xmlns:u="urn:...">     StartTag{Prefix: "u", Name: "PlayResponse"}
//	                                       Attr{Prefix: "xmlns", Name: "u", Value: "urn:..."}
//	  <Track>3</Track>                     StartTag{Name: "Track"}, Text{"3"}, EndTag{Name: "Track"}
//	  <Member UUID="x"/>                   StartTag{Name: "Member"}, Attr{Name: "UUID", Value: "x"}
//	</u:PlayResponse>                      EndTag{Prefix: "u", Name: "PlayResponse"}
//
// A few rules differ from encoding/xml on purpose:
//   - Entity references are never decoded. Text and attribute values are
//     returned exactly as they appear on the wire.
//   - Self-closing elements produce a start tag and attributes only; no end
//     tag is emitted for them.
//   - Whitespace-only text is dropped.
//   - Comments, processing instructions and DOCTYPE declarations are skipped.
//     CDATA sections are returned as Text.
//
// # Usage Example
//
//	tok := xmltok.NewTokenizer(resp.Body)
//	for {
//	    t, err := tok.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(t)
//	}
package xmltok
