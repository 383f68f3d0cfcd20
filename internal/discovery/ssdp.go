package discovery

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/upnp"
	"go.uber.org/zap"
)

const (
	// DefaultSearchTimeout bounds a search when the caller passes no timeout
	DefaultSearchTimeout = 2 * time.Second

	// DefaultSends is how many copies of the search datagram are sent.
	// UDP is lossy and players answer the first copy they see.
	DefaultSends = 3

	// DefaultMarker must appear in a response for it to count as a player
	DefaultMarker = "Sonos"

	// SearchTarget is the ST header players answer to
	SearchTarget = "urn:schemas-upnp-org:device:ZonePlayer:1"

	// maxDatagram is large enough for any SSDP response
	maxDatagram = 2048
)

// MulticastAddr is the SSDP group address
var MulticastAddr = &net.UDPAddr{
	IP:   net.IPv4(239, 255, 255, 250),
	Port: 1900,
}

// SearchRequest is the M-SEARCH datagram sent to MulticastAddr
var SearchRequest = []byte("M-SEARCH * HTTP/1.1\r\n" +
	"HOST: 239.255.255.250:1900\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"MX: 1\r\n" +
	"ST: " + SearchTarget + "\r\n" +
	"\r\n")

// ErrSearchDone is returned by Search.Next once the timeout has elapsed
var ErrSearchDone = errors.New("ssdp search finished")

// Searcher sends SSDP searches. The zero value is not usable; use NewSearcher.
type Searcher struct {
	// Listen opens the socket used for one search
	Listen func() (net.PacketConn, error)

	// Target is where the search datagram is sent
	Target net.Addr

	// Marker is the substring that identifies a player's response
	Marker string

	// Sends is the number of copies of the search datagram
	Sends int
}

// NewSearcher creates a searcher for the SSDP multicast group
func NewSearcher() *Searcher {
	return &Searcher{
		Listen: func() (net.PacketConn, error) {
			return net.ListenPacket("udp4", ":0")
		},
		Target: MulticastAddr,
		Marker: DefaultMarker,
		Sends:  DefaultSends,
	}
}

// Search is one in-progress discovery. It owns its socket and its set of
// addresses already produced. A Search cannot be restarted.
type Search struct {
	conn     net.PacketConn
	deadline time.Time
	marker   []byte
	seen     map[string]bool
	buf      []byte
	done     bool
}

// Start opens a socket, sends the search datagram and returns the search.
// A timeout of zero or less uses DefaultSearchTimeout.
func (s *Searcher) Start(timeout time.Duration) (*Search, error) {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}

	conn, err := s.Listen()
	if err != nil {
		return nil, upnp.NewTransportError("failed to open discovery socket", err)
	}

	sends := s.Sends
	if sends <= 0 {
		sends = 1
	}
	for i := 0; i < sends; i++ {
		if _, err := conn.WriteTo(SearchRequest, s.Target); err != nil {
			_ = conn.Close()
			return nil, upnp.NewTransportError("failed to send search datagram", err).WithAddr(s.Target.String())
		}
	}

	logging.Debug("SSDP search started",
		zap.String("target", s.Target.String()),
		zap.Int("sends", sends),
		zap.Duration("timeout", timeout),
	)

	return &Search{
		conn:     conn,
		deadline: time.Now().Add(timeout),
		marker:   []byte(s.Marker),
		seen:     make(map[string]bool),
		buf:      make([]byte, maxDatagram),
	}, nil
}

// Next blocks until a new player address arrives or the search times out.
// It returns ErrSearchDone when the timeout elapses and a transport error on
// any other socket failure. Each address is returned at most once.
func (q *Search) Next() (string, error) {
	for {
		if q.done {
			return "", ErrSearchDone
		}

		// A read deadline replaces polling: the read blocks for at most the
		// time left in the search.
		if err := q.conn.SetReadDeadline(q.deadline); err != nil {
			q.finish()
			return "", upnp.NewTransportError("failed to set read deadline", err)
		}

		n, addr, err := q.conn.ReadFrom(q.buf)
		if err != nil {
			q.finish()
			if isTimeout(err) {
				return "", ErrSearchDone
			}
			return "", upnp.NewTransportError("failed to receive discovery response", err)
		}

		data := q.buf[:n]
		accepted := bytes.Contains(data, q.marker)
		logging.LogDatagram(addr.String(), accepted, data)
		if !accepted {
			continue
		}

		ip := hostOf(addr)
		if q.seen[ip] {
			continue
		}
		q.seen[ip] = true
		return ip, nil
	}
}

// Close releases the search socket. It is safe to call more than once.
func (q *Search) Close() error {
	if q.conn == nil {
		return nil
	}
	err := q.conn.Close()
	q.conn = nil
	q.done = true
	return err
}

func (q *Search) finish() {
	_ = q.Close()
}

// watch closes the search socket when ctx is cancelled, which unblocks a
// pending Next. The returned function stops watching.
func (q *Search) watch(ctx context.Context) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	conn := q.conn
	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-finished:
		}
	}()
	return func() { close(finished) }
}

// First returns the first player to answer within timeout. Cancelling ctx
// ends the search early with ctx's error.
func (s *Searcher) First(ctx context.Context, timeout time.Duration) (string, error) {
	search, err := s.Start(timeout)
	if err != nil {
		return "", err
	}
	defer search.Close()
	defer search.watch(ctx)()

	ip, err := search.Next()
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(err, ErrSearchDone) {
		return "", upnp.NewNoDeviceFoundError("no player answered the SSDP search")
	}
	return ip, err
}

// Collect returns every distinct player address seen before the timeout.
// On a fatal socket error the addresses gathered so far are returned along
// with the error; cancelling ctx does the same with ctx's error.
func (s *Searcher) Collect(ctx context.Context, timeout time.Duration) ([]string, error) {
	search, err := s.Start(timeout)
	if err != nil {
		return nil, err
	}
	defer search.Close()
	defer search.watch(ctx)()

	var addrs []string
	for {
		ip, err := search.Next()
		if err != nil && ctx.Err() != nil {
			return addrs, ctx.Err()
		}
		if errors.Is(err, ErrSearchDone) {
			return addrs, nil
		}
		if err != nil {
			return addrs, err
		}
		addrs = append(addrs, ip)
	}
}

// Responders collects every answering player as a Responder
func (s *Searcher) Responders(ctx context.Context, timeout time.Duration) ([]*Responder, error) {
	addrs, err := s.Collect(ctx, timeout)
	responders := make([]*Responder, 0, len(addrs))
	for _, ip := range addrs {
		responders = append(responders, &Responder{
			IP:           ip,
			Port:         DefaultPort,
			Source:       SourceSSDP,
			DiscoveredAt: time.Now(),
		})
	}
	return responders, err
}

// SSDPLocator finds the first player with a default Searcher
func SSDPLocator(ctx context.Context, timeout time.Duration) (string, error) {
	return NewSearcher().First(ctx, timeout)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func hostOf(addr net.Addr) string {
	if udp, ok := addr.(*net.UDPAddr); ok {
		return udp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
