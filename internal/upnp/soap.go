package upnp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/sonoslink/internal/logging"
	"go.uber.org/zap"
)

const (
	// ContentType is the Content-Type header sent with every SOAP request
	ContentType = `text/xml; charset="utf-8"`

	// SOAPActionHeader is sent verbatim (not canonicalized) because some
	// players match it case-sensitively
	SOAPActionHeader = "SOAPACTION"

	soapActionTemplate = "urn:schemas-upnp-org:service:%s:%d#%s"

	envelopeHead = `<?xml version="1.0"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"` +
		` s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
		`<s:Body>`
	envelopeTail = `</s:Body></s:Envelope>`

	// maxErrorBody caps how much of a failed response is kept on the error
	maxErrorBody = 64 * 1024
)

// Arg is one named SOAP argument. Arguments are sent in slice order.
type Arg struct {
	Name  string
	Value string
}

// Arguments maps response argument names to their raw (still entity-escaped)
// text values.
type Arguments map[string]string

// SOAPAction returns the SOAPACTION header value for an action
func SOAPAction(serviceType string, version int, action string) string {
	return fmt.Sprintf(soapActionTemplate, serviceType, version, action)
}

// Encode builds the request envelope and SOAPACTION header value.
//
// Argument values are inserted verbatim. Callers must escape any value that
// may contain markup characters.
func Encode(serviceType string, version int, action string, args []Arg) ([]byte, string) {
	var b strings.Builder
	b.WriteString(envelopeHead)
	fmt.Fprintf(&b, `<u:%s xmlns:u="urn:schemas-upnp-org:service:%s:%d">`, action, serviceType, version)
	for _, arg := range args {
		fmt.Fprintf(&b, "<%s>%s</%s>", arg.Name, arg.Value, arg.Name)
	}
	fmt.Fprintf(&b, "</u:%s>", action)
	b.WriteString(envelopeTail)

	return []byte(b.String()), SOAPAction(serviceType, version, action)
}

// Client sends SOAP commands to UPnP devices.
//
// Requests block for the full round trip. The default HTTP client has no
// timeout, matching the players' own behaviour of answering or resetting the
// connection.
type Client struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent, if set, is sent as the User-Agent header
	UserAgent string

	// Observe, if set, is called after every request that produced an HTTP
	// response (status is 0 when the request failed at the network level)
	Observe func(action string, status int, elapsed time.Duration)
}

// NewClient creates a SOAP client using a dedicated http.Client
func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{}}
}

// DefaultClient is used by package-level helpers
var DefaultClient = NewClient()

// Send issues one SOAP action and decodes the response arguments.
func (c *Client) Send(url, serviceType string, version int, action string, args []Arg) (Arguments, error) {
	body, soapAction := Encode(serviceType, version, action, args)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError("failed to create request", err)
	}
	addr := req.URL.Host
	req.Header.Set("Content-Type", ContentType)
	req.Header[SOAPActionHeader] = []string{soapAction}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	logging.LogSOAPRequest(url, soapAction, body)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.observe(action, 0, time.Since(start))
		return nil, NewTransportError(fmt.Sprintf("%s request failed", action), err).WithAddr(addr)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(action, resp.StatusCode, time.Since(start))
	logging.LogSOAPResponse(url, action, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logging.LogRawBytes(action+" fault body", data)
		return nil, NewStatusError(resp.StatusCode, string(data)).WithAddr(addr)
	}

	arguments, err := DecodeReader(action, resp.Body)
	if err != nil {
		return nil, err
	}

	logging.Debug("SOAP arguments decoded",
		zap.String("action", action),
		zap.Int("count", len(arguments)),
	)
	return arguments, nil
}

// Send issues a SOAP action using DefaultClient
func Send(url, serviceType string, version int, action string, args []Arg) (Arguments, error) {
	return DefaultClient.Send(url, serviceType, version, action, args)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) observe(action string, status int, elapsed time.Duration) {
	if c.Observe != nil {
		c.Observe(action, status, elapsed)
	}
}
