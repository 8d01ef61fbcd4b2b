package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrStatusJSON marks a response whose framing was fine but whose JSON
// body did not decode. Distinct from framing errors so callers can tell
// a broken server from a broken stream.
var ErrStatusJSON = errors.New("status: malformed json body")

// Status is the decoded status response body.
type Status struct {
	Version     StatusVersion  `json:"version"`
	Players     *StatusPlayers `json:"players"`
	Description Description    `json:"description"`
	Favicon     string         `json:"favicon,omitempty"`
}

type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type StatusPlayers struct {
	Online int           `json:"online"`
	Max    int           `json:"max"`
	Sample []PlayerEntry `json:"sample"`
}

type PlayerEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Description accepts the two shapes servers send for the message of the
// day: a plain JSON string, or a rich-text object with "text" and nested
// "extra" segments. Either way it flattens to the concatenated text.
type Description string

func (d *Description) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*d = Description(plain)
		return nil
	}
	var rich struct {
		Text  string            `json:"text"`
		Extra []json.RawMessage `json:"extra"`
	}
	if err := json.Unmarshal(data, &rich); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(rich.Text)
	for _, raw := range rich.Extra {
		var part Description
		if err := json.Unmarshal(raw, &part); err != nil {
			return err
		}
		sb.WriteString(string(part))
	}
	*d = Description(sb.String())
	return nil
}

// ParseStatus decodes a complete wire packet into a Status. The packet id
// must be the status response id; the payload is VarInt(jsonLength)
// followed by exactly that many bytes of UTF-8 JSON. Missing optional
// subfields get defaults: nil sample becomes an empty slice, a missing
// description stays empty.
func ParseStatus(envelope []byte) (*Status, error) {
	id, payload, err := ParseEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	if id != StatusResponseID {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadPacket, id, StatusResponseID)
	}
	jsonLen, n, err := ReadVarint(payload)
	if err != nil {
		return nil, fmt.Errorf("json length: %w", err)
	}
	body := payload[n:]
	if jsonLen < 0 || int(jsonLen) > len(body) {
		return nil, ErrTrailingGap
	}
	var st Status
	if err := json.Unmarshal(body[:jsonLen], &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatusJSON, err)
	}
	if st.Players != nil && st.Players.Sample == nil {
		st.Players.Sample = []PlayerEntry{}
	}
	return &st, nil
}
