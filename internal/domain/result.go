package domain

import "time"

// ProbeResult is the outcome of a single status probe. Optional fields are
// pointers so an absent value serializes as omitted rather than zero.
// Online=true implies the response carried a players object; every failure
// path leaves Online=false with a non-nil Error.
type ProbeResult struct {
	TargetID      TargetID     `json:"target_id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Port          uint16       `json:"port"`
	Fingerprint   string       `json:"fingerprint"`
	Online        bool         `json:"online"`
	Error         *string      `json:"error,omitempty"`
	PingMS        *int64       `json:"ping_ms,omitempty"`    // time to connect
	LatencyMS     *int64       `json:"latency_ms,omitempty"` // time to full response
	Version       *string      `json:"version,omitempty"`
	Protocol      *int         `json:"protocol,omitempty"`
	PlayersOnline int          `json:"players_online"`
	PlayersMax    int          `json:"players_max"`
	Sample        []PlayerInfo `json:"sample,omitempty"`
	MOTD          string       `json:"motd"`
	Favicon       *string      `json:"favicon,omitempty"`
	ObservedAt    time.Time    `json:"observed_at"`
}

// FleetSnapshot is the aggregated view of one probe pass over every target.
// Counts are always derived from its own Results.
type FleetSnapshot struct {
	Results      []ProbeResult `json:"results"`
	Total        int           `json:"total"`
	OnlineCount  int           `json:"online_count"`
	TotalPlayers int           `json:"total_players"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
