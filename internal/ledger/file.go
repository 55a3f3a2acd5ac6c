package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

var _ core.ArchiveStore = (*FileArchive)(nil)

// FileArchive appends evicted ledger entries to a JSONL file. Entries
// keep their signatures, so verification works across the file boundary.
type FileArchive struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *json.Encoder
}

func NewFileArchive(path string) (*FileArchive, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit archive file: %w", err)
	}
	return &FileArchive{
		path:    path,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileArchive) Append(_ context.Context, entries []core.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range entries {
		if err := f.encoder.Encode(e); err != nil {
			return fmt.Errorf("writing audit archive entry: %w", err)
		}
	}
	return nil
}

func (f *FileArchive) All(_ context.Context) ([]core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit archive for reading: %w", err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	var entries []core.AuditEntry
	dec := json.NewDecoder(file)
	for {
		var e core.AuditEntry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding audit archive entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (f *FileArchive) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
