// Package handlog writes the summary of each finished hand to disk as TOML.
package handlog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/fileutil"
)

// Recorder persists LastHandLog entries under a base directory, one file per
// hand: <dir>/table-<id>/hand-<ref>.toml. A later hand with the same
// reference replaces the file.
type Recorder struct {
	dir    string
	logger zerolog.Logger
}

// NewRecorder returns a recorder writing under dir. An empty dir disables
// file output; entries are still logged.
func NewRecorder(dir string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		dir:    dir,
		logger: logger.With().Str("component", "handlog").Logger(),
	}
}

// Path returns where the entry for table/hand is written.
func (r *Recorder) Path(tableID, handRef uint32) string {
	return filepath.Join(r.dir, fmt.Sprintf("table-%d", tableID), fmt.Sprintf("hand-%d.toml", handRef))
}

// Record logs a summary of entry and writes it to disk.
func (r *Recorder) Record(entry *dealer.LastHandLog) error {
	if entry == nil {
		return fmt.Errorf("handlog: nil entry")
	}

	r.logger.Info().
		Uint32("table_id", entry.TableID).
		Uint32("hand_ref", entry.HandRef).
		Int("showdown_players", len(entry.ShowdownPlayers)).
		Bool("showdown", entry.ShowdownAt != nil).
		Msg("hand finished")

	if r.dir == "" {
		return nil
	}

	data, err := Encode(entry)
	if err != nil {
		return err
	}
	path := r.Path(entry.TableID, entry.HandRef)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("handlog: create dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("handlog: %w", err)
	}
	r.logger.Debug().Str("path", path).Msg("hand log written")
	return nil
}

// Encode renders entry as TOML.
func Encode(entry *dealer.LastHandLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "\t"
	if err := enc.Encode(entry); err != nil {
		return nil, fmt.Errorf("handlog: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads an entry written by Record.
func Load(path string) (*dealer.LastHandLog, error) {
	var entry dealer.LastHandLog
	if _, err := toml.DecodeFile(path, &entry); err != nil {
		return nil, fmt.Errorf("handlog: decode %s: %w", path, err)
	}
	return &entry, nil
}
