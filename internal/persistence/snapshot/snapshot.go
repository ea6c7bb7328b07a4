// Package snapshot writes and restores point-in-time saves as
// zstd-compressed JSON. Saves are tied to the content set that produced
// them; loading against different content is refused.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/world"
)

const Version = 1

type fileV1 struct {
	Version int         `json:"version"`
	Save    *world.Save `json:"save"`
}

// Write saves the world state to path.
func Write(path string, w *world.World) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("create snapshot: %w", err)
	}
	enc := json.NewEncoder(zw)
	if err := enc.Encode(fileV1{Version: Version, Save: w.Export()}); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}

// Read restores a world from path against the given content set.
func Read(path string, set *content.Set) (*world.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer zr.Close()

	var file fileV1
	if err := json.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if file.Version != Version {
		return nil, fmt.Errorf("snapshot version %d not supported (want %d)", file.Version, Version)
	}
	if file.Save == nil {
		return nil, fmt.Errorf("snapshot has no save payload")
	}
	w, err := world.Import(file.Save, set)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return w, nil
}
