package realtime

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mcoot/idlecoins/internal/model"
)

// Envelope is the frame of every message on the channel
type Envelope struct {
	Type model.EventType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

//go:embed schema/inbound.schema.json
var inboundSchemaJSON string

const inboundSchemaURL = "https://idlecoins.local/schema/inbound.schema.json"

var inboundSchema = jsonschema.MustCompileString(inboundSchemaURL, inboundSchemaJSON)

// Encode frames an outbound event
func Encode(event model.EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Type: event, Data: raw})
}

// Decode parses and validates an inbound frame. On a validation failure the
// returned envelope still carries the type when one could be read, so callers
// can tailor the error.
func Decode(msg []byte) (Envelope, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Envelope{}, fmt.Errorf("%w: malformed json", model.ErrInvalidInput)
	}

	var env Envelope
	// Best effort; a wrongly typed field fails validation below
	_ = json.Unmarshal(msg, &env)

	if err := inboundSchema.Validate(doc); err != nil {
		return env, fmt.Errorf("%w: %s", model.ErrInvalidInput, err.Error())
	}
	return env, nil
}

// UpgradeID extracts the payload of a buyUpgrade message
func (e Envelope) UpgradeID() (string, error) {
	var id string
	if err := json.Unmarshal(e.Data, &id); err != nil {
		return "", fmt.Errorf("%w: upgrade id", model.ErrInvalidInput)
	}
	return id, nil
}

// TimeFilter extracts the filter of a getLeaderboard message, defaulting to all
func (e Envelope) TimeFilter() model.TimeFilter {
	var req model.LeaderboardRequest
	if len(e.Data) > 0 {
		_ = json.Unmarshal(e.Data, &req)
	}
	return model.ParseTimeFilter(string(req.Time))
}
