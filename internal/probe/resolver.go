package probe

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// srvService is the SRV label game clients use to discover the real
// host/port behind a bare hostname.
const srvService = "_minecraft._tcp."

var srvTimeout = 3 * time.Second

// SRVResolver looks up the SRV record for a hostname before connecting.
// Resolution is strictly best-effort: any failure falls back to the
// original hostname and never aborts a probe.
type SRVResolver struct {
	Server string // upstream DNS "host:port"
	client *dns.Client
}

func NewSRVResolver(server string) *SRVResolver {
	if server == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &SRVResolver{
		Server: server,
		client: &dns.Client{Timeout: srvTimeout},
	}
}

// Lookup returns the SRV target host and port for the given hostname.
// ok=false means "use what you had": IP literals, lookup errors, and
// empty answers all land there.
func (r *SRVResolver) Lookup(ctx context.Context, host string) (string, uint16, bool) {
	if r == nil || host == "" || net.ParseIP(host) != nil {
		return "", 0, false
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(srvService+host), dns.TypeSRV)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.Server)
	if err != nil || resp == nil || resp.Rcode != dns.RcodeSuccess {
		return "", 0, false
	}
	for _, rr := range resp.Answer {
		if srv, ok := rr.(*dns.SRV); ok && srv.Target != "." {
			return strings.TrimSuffix(srv.Target, "."), srv.Port, true
		}
	}
	return "", 0, false
}
