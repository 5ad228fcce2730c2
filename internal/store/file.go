package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/fileutil"
)

// File is a Memory store that rewrites a JSON snapshot on every commit.
type File struct {
	*Memory
	path string
}

// OpenFile loads path if it exists and returns a store that persists to it.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("store: file backend needs a path")
	}
	state := newSnapshot()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, state); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrSerialization, path, err)
		}
		if state.Tables == nil {
			state.Tables = make(map[uint32]*dealer.Table)
		}
	}

	f := &File{Memory: &Memory{state: state}, path: path}
	f.commit = f.write
	return f, nil
}

// Path returns the snapshot location.
func (f *File) Path() string {
	return f.path
}

func (f *File) write(s *snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrSerialization, err)
	}
	return fileutil.WriteFileAtomic(f.path, data, 0o600)
}
