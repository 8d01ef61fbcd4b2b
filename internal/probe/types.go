package probe

import (
	"context"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// Failure reasons carried in ProbeResult.Error. Exactly one of these per
// failed probe.
const (
	ReasonTimeout        = "timeout"
	ReasonConnectError   = "connect-error"
	ReasonParseError     = "parse-error"
	ReasonPrematureClose = "closed-prematurely"
)

// Pinger is implemented by anything that can probe a single target.
type Pinger interface {
	Probe(ctx context.Context, t domain.Target) domain.ProbeResult
}
