package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vsa-campus/vsa-site/internal/model"
)

// PayloadVersion is written with every save. Bump it when the stored
// layout changes and teach decodePayload the previous one.
const PayloadVersion = 1

type payload struct {
	Version int           `json:"version"`
	Events  []model.Event `json:"events"`
}

func encodePayload(events []model.Event) ([]byte, error) {
	if events == nil {
		events = []model.Event{}
	}
	return json.Marshal(payload{Version: PayloadVersion, Events: events})
}

// decodePayload accepts the versioned envelope and the bare array the
// browser build stored before versioning existed.
func decodePayload(data []byte) ([]model.Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var events []model.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("decode legacy event array: %w", err)
		}
		return events, nil
	}

	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("decode catalog payload: %w", err)
	}
	if p.Version != PayloadVersion {
		return nil, fmt.Errorf("unsupported catalog payload version %d", p.Version)
	}
	return p.Events, nil
}
