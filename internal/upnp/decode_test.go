package upnp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/muurk/sonoslink/internal/xmltok"
)

const responseTemplate = `<?xml version="1.0"?>` +
	`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" ` +
	`s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
	`<s:Body>` +
	`<u:%sResponse xmlns:u="urn:schemas-upnp-org:service:serviceType:v">` +
	`%s` +
	`</u:%sResponse>` +
	`</s:Body>` +
	`</s:Envelope>`

func soapResponse(action, argsXML string) string {
	return fmt.Sprintf(responseTemplate, action, argsXML, action)
}

func decodeString(action, doc string) (Arguments, error) {
	return Decode(action, xmltok.NewStringTokenizer(doc))
}

func TestDecode_NoArguments(t *testing.T) {
	args, err := decodeString("Pause", soapResponse("Pause", ""))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(args) != 0 {
		t.Errorf("Decode() = %v, want empty map", args)
	}
}

func TestDecode_WithArguments(t *testing.T) {
	doc := soapResponse("GetPositionInfo",
		"<Track>3</Track><TrackDuration>0:04:21</TrackDuration><RelTime>0:00:42</RelTime>")

	args, err := decodeString("GetPositionInfo", doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := Arguments{"Track": "3", "TrackDuration": "0:04:21", "RelTime": "0:00:42"}
	if len(args) != len(want) {
		t.Fatalf("Decode() = %v, want %v", args, want)
	}
	for k, v := range want {
		if args[k] != v {
			t.Errorf("args[%q] = %q, want %q", k, args[k], v)
		}
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	sent := []Arg{
		{Name: "InstanceID", Value: "0"},
		{Name: "Channel", Value: "Master"},
		{Name: "DesiredVolume", Value: "25"},
	}

	// Encoding under "{action}Response" produces the same shape a player replies with
	body, _ := Encode("RenderingControl", 1, "SetVolumeResponse", sent)

	args, err := decodeString("SetVolume", string(body))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(args) != len(sent) {
		t.Fatalf("Decode() = %v, want %d entries", args, len(sent))
	}
	for _, arg := range sent {
		if args[arg.Name] != arg.Value {
			t.Errorf("args[%q] = %q, want %q", arg.Name, args[arg.Name], arg.Value)
		}
	}
}

func TestDecode_EmptyElementsDropped(t *testing.T) {
	tests := []struct {
		name    string
		argsXML string
		want    Arguments
	}{
		{
			name:    "self-closing element followed by element",
			argsXML: "<TrackMetaData/><Track>1</Track>",
			want:    Arguments{"Track": "1"},
		},
		{
			name:    "open/close pair with no text",
			argsXML: "<TrackMetaData></TrackMetaData><Track>1</Track>",
			want:    Arguments{"Track": "1"},
		},
		{
			name:    "empty element right before wrapper close",
			argsXML: "<Track>1</Track><TrackURI></TrackURI>",
			want:    Arguments{"Track": "1"},
		},
		{
			name:    "duplicate names last write wins",
			argsXML: "<A>1</A><A>2</A>",
			want:    Arguments{"A": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeString("Get", soapResponse("Get", tt.argsXML))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Decode() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestDecode_RawValues(t *testing.T) {
	doc := soapResponse("GetZoneGroupState",
		"<ZoneGroupState>&lt;ZoneGroups&gt;&lt;/ZoneGroups&gt;</ZoneGroupState>")

	args, err := decodeString("GetZoneGroupState", doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := args["ZoneGroupState"]; got != "&lt;ZoneGroups&gt;&lt;/ZoneGroups&gt;" {
		t.Errorf("ZoneGroupState = %q, want entity-escaped text", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "truncated document", doc: "<a>"},
		{name: "empty document", doc: ""},
		{name: "wrong action", doc: soapResponse("Play", "")},
		{name: "wrapper never closed", doc: `<u:PauseResponse xmlns:u="x"><A>1</A>`},
		{name: "eof inside markup", doc: `<u:PauseResponse><A>1</A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeString("Pause", tt.doc)
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if !IsMalformedResponse(err) {
				t.Errorf("Decode() error = %v, want malformed response", err)
			}
		})
	}
}

func TestDecodeReader(t *testing.T) {
	args, err := DecodeReader("GetVolume", strings.NewReader(soapResponse("GetVolume", "<CurrentVolume>12</CurrentVolume>")))
	if err != nil {
		t.Fatalf("DecodeReader() error = %v", err)
	}
	if args["CurrentVolume"] != "12" {
		t.Errorf("CurrentVolume = %q, want 12", args["CurrentVolume"])
	}
}
