package save

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSlot is used when a save or load names no slot.
const DefaultSlot = "quicksave"

// DefaultDir is $HOME/.arenacore/saves.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".arenacore", "saves")
}

// SlotPath maps a slot name to its file under dir. Names may not leave dir.
func SlotPath(dir, name string) (string, error) {
	if name == "" {
		name = DefaultSlot
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid slot name %q", name)
	}
	return filepath.Join(dir, name+".json"), nil
}

// WriteSlot stores data in the named slot, creating dir as needed.
func WriteSlot(dir, name string, data []byte) error {
	path, err := SlotPath(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating save directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSlot returns the raw contents of the named slot.
func ReadSlot(dir, name string) ([]byte, error) {
	path, err := SlotPath(dir, name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
