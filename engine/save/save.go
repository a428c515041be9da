// Package save implements JSON serialization and deserialization of arena
// sessions.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Format is the current save layout. Older layouts load; newer ones do not.
const Format = 1

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format  int             `json:"format"`
	Arena   string          `json:"arena"`
	Version string          `json:"version"`
	Session json.RawMessage `json:"session"`
	Log     []string        `json:"log"`
}

// Save serializes a session and its announcement feed to JSON bytes.
func Save(s *types.Session, defs *state.Defs, log []string) ([]byte, error) {
	session, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	data := SaveData{
		Format:  Format,
		Arena:   defs.Arena.Title,
		Version: defs.Arena.Version,
		Session: session,
		Log:     log,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format > Format {
		return nil, fmt.Errorf("save format %d is newer than supported format %d", sd.Format, Format)
	}
	// Ensure the log is never nil after load.
	if sd.Log == nil {
		sd.Log = []string{}
	}
	return &sd, nil
}

// ApplySave decodes the saved session over s. Fields missing from the save
// keep the values s already holds, so callers pass a freshly initialized
// session and normalize afterwards.
func ApplySave(s *types.Session, sd *SaveData) error {
	if len(sd.Session) == 0 || string(sd.Session) == "null" {
		return nil
	}
	if err := json.Unmarshal(sd.Session, s); err != nil {
		return fmt.Errorf("decoding session: %w", err)
	}
	return nil
}
