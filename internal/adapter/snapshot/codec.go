package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"cmdref/internal/domain"
	"cmdref/internal/port"
)

// Decode reads one JSON snapshot. Shape errors wrap domain.ErrInvalidSnapshot;
// record-level validation is left to the engine.
func Decode(r io.Reader) (*domain.IndexSnapshot, error) {
	var snap domain.IndexSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrInvalidSnapshot, err)
	}
	if snap.Commands == nil {
		return nil, fmt.Errorf("%w: missing commands", domain.ErrInvalidSnapshot)
	}
	if snap.InvertedIndex == nil {
		snap.InvertedIndex = map[string][]string{}
	}
	if snap.CategoryIndex == nil {
		snap.CategoryIndex = map[string][]string{}
	}
	if snap.ComplexityIndex == nil {
		snap.ComplexityIndex = map[string][]string{}
	}
	return &snap, nil
}

// DecodeFile reads the snapshot at path and returns it with the fingerprint
// of the raw file contents.
func DecodeFile(path string) (*domain.IndexSnapshot, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return snap, Fingerprint(data), nil
}

func Encode(w io.Writer, snap *domain.IndexSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Fingerprint identifies snapshot contents; equal bytes give equal prints.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Latest picks the most recently modified file, breaking ties by path.
func Latest(files []port.FileInfo) (port.FileInfo, bool) {
	if len(files) == 0 {
		return port.FileInfo{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if f.ModTime > best.ModTime || (f.ModTime == best.ModTime && f.Path < best.Path) {
			best = f
		}
	}
	return best, true
}
