package domain

import "time"

type TargetID string

// Target is one configured game server. It is immutable during a probe;
// edits go through the target store and invalidate the snapshot cache.
type Target struct {
	ID          TargetID  `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Port        uint16    `json:"port"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerInfo is one entry of the player sample a server volunteers.
type PlayerInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
