package provider

import (
	"encoding/json"

	"github.com/kvprovider/kvprovider/lib/backend"
)

// Database pairs a backend instance with the identity and supported-mode
// metadata a provider needs to route requests to it: its UUID, its
// caller-facing name, and the backend it wraps.
type Database struct {
	ID      string
	Name    string
	Backend backend.Backend
}

// databaseConfig is the JSON shape of one entry in a provider's
// "databases" array.
type databaseConfig struct {
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// withID re-serializes cfg with the given UUID injected as __id__, so
// GetConfig can hand back exactly what was stored, defaults included.
func withID(rawConfig []byte, id string) ([]byte, error) {
	var fields map[string]interface{}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["__id__"] = id
	return json.Marshal(fields)
}
