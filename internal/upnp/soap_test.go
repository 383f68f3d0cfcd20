package upnp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/sonoslink/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEncode(t *testing.T) {
	body, action := Encode("AVTransport", 1, "Pause", []Arg{
		{Name: "InstanceID", Value: "0"},
		{Name: "Speed", Value: "1"},
	})

	if action != "urn:schemas-upnp-org:service:AVTransport:1#Pause" {
		t.Errorf("SOAPACTION = %q", action)
	}

	want := `<?xml version="1.0"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"` +
		` s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
		`<s:Body>` +
		`<u:Pause xmlns:u="urn:schemas-upnp-org:service:AVTransport:1">` +
		`<InstanceID>0</InstanceID><Speed>1</Speed>` +
		`</u:Pause>` +
		`</s:Body></s:Envelope>`
	if string(body) != want {
		t.Errorf("Encode() body =\n%s\nwant\n%s", body, want)
	}
}

func TestEncode_ValuesNotEscaped(t *testing.T) {
	body, _ := Encode("AVTransport", 1, "SetAVTransportURI", []Arg{{Name: "CurrentURI", Value: "a&b"}})
	if !strings.Contains(string(body), "<CurrentURI>a&b</CurrentURI>") {
		t.Errorf("Encode() should insert values verbatim, got %s", body)
	}
}

func TestSend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != ContentType {
			t.Errorf("Content-Type = %q, want %q", got, ContentType)
		}
		if got := r.Header.Get("Soapaction"); got != "urn:schemas-upnp-org:service:RenderingControl:1#GetVolume" {
			t.Errorf("SOAPACTION = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<Channel>Master</Channel>") {
			t.Errorf("request body missing argument: %s", body)
		}
		_, _ = w.Write([]byte(soapResponse("GetVolume", "<CurrentVolume>30</CurrentVolume>")))
	}))
	defer server.Close()

	client := NewClient()
	args, err := client.Send(server.URL+"/MediaRenderer/RenderingControl/Control",
		"RenderingControl", 1, "GetVolume",
		[]Arg{{Name: "InstanceID", Value: "0"}, {Name: "Channel", Value: "Master"}})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if args["CurrentVolume"] != "30" {
		t.Errorf("CurrentVolume = %q, want 30", args["CurrentVolume"])
	}
}

func TestSend_HTTPError(t *testing.T) {
	fault := `<s:Envelope><s:Body><s:Fault><faultcode>s:Client</faultcode></s:Fault></s:Body></s:Envelope>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fault))
	}))
	defer server.Close()

	_, err := NewClient().Send(server.URL, "AVTransport", 1, "Play", nil)
	if err == nil {
		t.Fatal("Send() should fail on HTTP 500")
	}
	if !IsTransportError(err) {
		t.Fatalf("Send() error = %v, want transport error", err)
	}

	e := err.(*Error)
	if e.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", e.StatusCode)
	}
	if e.Body != fault {
		t.Errorf("Body = %q, want fault body", e.Body)
	}
	if want := strings.TrimPrefix(server.URL, "http://"); e.Addr != want {
		t.Errorf("Addr = %q, want %q", e.Addr, want)
	}
}

func TestSend_HTTPErrorLogsFaultBody(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<s:Fault/>", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewClient().Send(server.URL, "AVTransport", 1, "Pause", nil); err == nil {
		t.Fatal("Send() should fail on HTTP 500")
	}

	entries := logs.FilterMessage("Pause fault body").All()
	if len(entries) != 1 {
		t.Fatalf("got %d fault body log entries, want 1", len(entries))
	}
	if ascii, _ := entries[0].ContextMap()["ascii"].(string); !strings.Contains(ascii, "<s:Fault/>") {
		t.Errorf("ascii = %q, want the fault body", ascii)
	}
}

func TestSend_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<a>"))
	}))
	defer server.Close()

	_, err := NewClient().Send(server.URL, "AVTransport", 1, "Pause", nil)
	if !IsMalformedResponse(err) {
		t.Errorf("Send() error = %v, want malformed response", err)
	}
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient().Send(url, "AVTransport", 1, "Pause", nil)
	if !IsTransportError(err) {
		t.Fatalf("Send() error = %v, want transport error", err)
	}
	if msg := ShortMessage(err); !strings.Contains(msg, strings.TrimPrefix(url, "http://")) {
		t.Errorf("ShortMessage() = %q, want the player address", msg)
	}
}

func TestSend_Observe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(soapResponse("Next", "")))
	}))
	defer server.Close()

	var gotAction string
	var gotStatus int
	client := NewClient()
	client.Observe = func(action string, status int, elapsed time.Duration) {
		gotAction, gotStatus = action, status
	}

	if _, err := client.Send(server.URL, "AVTransport", 1, "Next", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAction != "Next" || gotStatus != http.StatusOK {
		t.Errorf("Observe got (%q, %d), want (Next, 200)", gotAction, gotStatus)
	}
}

func TestSend_UserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(soapResponse("Play", "")))
	}))
	defer server.Close()

	client := NewClient()
	client.UserAgent = "sonoslink/test"
	if _, err := client.Send(server.URL, "AVTransport", 1, "Play", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != "sonoslink/test" {
		t.Errorf("User-Agent = %q, want sonoslink/test", got)
	}
}
