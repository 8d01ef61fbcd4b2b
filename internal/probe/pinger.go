// Package probe implements the status-query client: one TCP connection
// lifecycle per target, with a hard time budget and uniform failure
// classification.
package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/protocol"
)

const (
	// DefaultTimeout bounds connect plus time-to-first-response-byte.
	DefaultTimeout = 5 * time.Second
	// DefaultGrace is the extra budget to finish reading a response whose
	// first byte arrived in time.
	DefaultGrace = 1 * time.Second

	readChunkSize = 4096
)

// StatusPinger probes one target per call: resolve, connect, send the
// handshake and status request back-to-back, assemble the single
// response, parse it. Zero-value fields fall back to defaults.
type StatusPinger struct {
	Timeout  time.Duration
	Grace    time.Duration
	Protocol int32
	Resolver *SRVResolver // optional; nil disables SRV lookup
	Logger   *zap.Logger

	dialer net.Dialer
}

var _ Pinger = (*StatusPinger)(nil)

func NewStatusPinger(timeout, grace time.Duration, logger *zap.Logger) *StatusPinger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &StatusPinger{
		Timeout:  timeout,
		Grace:    grace,
		Protocol: protocol.DefaultProtocolVersion,
		Logger:   logger,
	}
}

// Probe runs the full state machine for one target and always returns a
// result: failures are classified into the result's Error, never
// propagated.
func (p *StatusPinger) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	start := time.Now()
	timeout, grace := p.Timeout, p.Grace
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	deadline := start.Add(timeout + grace)

	res := domain.ProbeResult{
		TargetID:    t.ID,
		Name:        t.Name,
		Address:     t.Address,
		Port:        t.Port,
		Fingerprint: Fingerprint(t.Address, t.Port),
		ObservedAt:  start.UTC(),
	}
	fail := func(reason string) domain.ProbeResult {
		res.Online = false
		res.Error = &reason
		if p.Logger != nil {
			p.Logger.Debug("probe_failed",
				zap.String("address", t.Address),
				zap.Uint16("port", t.Port),
				zap.String("reason", reason),
			)
		}
		return res
	}

	// Resolving: SRV lookup may redirect host and port. Failure is
	// non-fatal and falls back to the configured address.
	dialHost, dialPort := t.Address, t.Port
	if h, prt, ok := p.Resolver.Lookup(ctx, t.Address); ok {
		dialHost, dialPort = h, prt
	}

	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(dialHost, strconv.Itoa(int(dialPort))))
	if err != nil {
		return fail(classifyDial(err))
	}
	defer conn.Close()

	ping := millisSince(start)
	res.PingMS = &ping

	// Handshaking: both packets go out without waiting for a reply in
	// between. The handshake carries the configured address so virtual
	// hosts resolve correctly even after SRV redirection.
	proto := p.Protocol
	if proto == 0 {
		proto = protocol.DefaultProtocolVersion
	}
	out := protocol.Frame(protocol.HandshakeID, protocol.Handshake(t.Address, t.Port, proto))
	out = append(out, protocol.Frame(protocol.StatusRequestID, protocol.StatusRequest())...)
	_ = conn.SetWriteDeadline(deadline)
	if _, err := conn.Write(out); err != nil {
		return fail(classifyDial(err))
	}

	// AwaitingResponse: first byte must land within Timeout, everything
	// else within Timeout+Grace.
	_ = conn.SetReadDeadline(start.Add(timeout))
	asm := protocol.NewResponseAssembler()
	chunk := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			done, ferr := asm.Feed(chunk[:n])
			if ferr != nil {
				return fail(ReasonParseError)
			}
			if done {
				break
			}
			_ = conn.SetReadDeadline(deadline)
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF) && asm.Len() == 0:
				return fail(ReasonPrematureClose)
			case errors.Is(err, io.EOF):
				return fail(ReasonParseError)
			default:
				return fail(classifyDial(err))
			}
		}
	}

	st, err := protocol.ParseStatus(asm.Envelope())
	if err != nil {
		return fail(ReasonParseError)
	}
	if st.Players == nil {
		// A status body without a players object is not a live server.
		return fail(ReasonParseError)
	}

	latency := millisSince(start)
	res.Online = true
	res.LatencyMS = &latency
	res.PlayersOnline = st.Players.Online
	res.PlayersMax = st.Players.Max
	res.Sample = make([]domain.PlayerInfo, 0, len(st.Players.Sample))
	for _, s := range st.Players.Sample {
		res.Sample = append(res.Sample, domain.PlayerInfo{Name: s.Name, ID: s.ID})
	}
	res.MOTD = string(st.Description)
	if st.Version.Name != "" {
		v := st.Version.Name
		res.Version = &v
	}
	if st.Version.Protocol != 0 {
		pn := st.Version.Protocol
		res.Protocol = &pn
	}
	if st.Favicon != "" {
		f := st.Favicon
		res.Favicon = &f
	}

	if p.Logger != nil {
		p.Logger.Debug("probe_ok",
			zap.String("address", t.Address),
			zap.Uint16("port", t.Port),
			zap.Int("players", res.PlayersOnline),
			zap.Int64("latency_ms", latency),
		)
	}
	return res
}

// classifyDial separates a blown deadline from a socket-level failure.
func classifyDial(err error) string {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return ReasonTimeout
	}
	return ReasonConnectError
}

func millisSince(t0 time.Time) int64 {
	d := time.Since(t0)
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
