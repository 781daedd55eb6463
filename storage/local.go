package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs on the local filesystem, one directory per
// clipboard. A small JSON sidecar next to each data file carries the
// original name and MIME type.
type LocalStore struct {
	basePath string
}

type sidecar struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage.local_path can't be empty")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s, %w", basePath, err)
	}

	return &LocalStore{basePath: basePath}, nil
}

func (l *LocalStore) Put(_ context.Context, b *Blob) (string, error) {
	handle := handleFor(b.ClipboardID, b.Filename)
	dataPath := filepath.Join(l.basePath, b.ClipboardID, b.Filename)

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create clipboard directory, %w", err)
	}

	if err := os.WriteFile(dataPath, b.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob, %w", err)
	}

	meta, err := json.Marshal(sidecar{
		OriginalName: b.OriginalName,
		MimeType:     b.MimeType,
	})
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dataPath+".meta", meta, 0o644); err != nil {
		// Half-written blobs are worse than no blob
		os.Remove(dataPath)
		return "", fmt.Errorf("failed to write blob sidecar, %w", err)
	}

	return handle, nil
}

func (l *LocalStore) Get(_ context.Context, handle string) (*Blob, error) {
	dataPath, err := l.pathFor(handle)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob, %w", err)
	}

	b := &Blob{Data: data}

	raw, err := os.ReadFile(dataPath + ".meta")
	if err == nil {
		var meta sidecar
		if err := json.Unmarshal(raw, &meta); err == nil {
			b.OriginalName = meta.OriginalName
			b.MimeType = meta.MimeType
		}
	}

	return b, nil
}

func (l *LocalStore) Delete(_ context.Context, handle string) error {
	dataPath, err := l.pathFor(handle)
	if err != nil {
		return err
	}

	if err := os.Remove(dataPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob, %w", err)
	}
	os.Remove(dataPath + ".meta")

	return nil
}

func (l *LocalStore) DeleteAllForClipboard(_ context.Context, clipboardID string) (int, error) {
	dir := filepath.Join(l.basePath, clipboardID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list clipboard directory, %w", err)
	}

	deleted := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".meta") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			deleted++
		}
		os.Remove(filepath.Join(dir, e.Name()+".meta"))
	}

	os.Remove(dir)

	return deleted, nil
}

// pathFor resolves a handle below basePath, rejecting anything that tries
// to escape it.
func (l *LocalStore) pathFor(handle string) (string, error) {
	p := filepath.Join(l.basePath, filepath.FromSlash(handle))
	if !strings.HasPrefix(p, filepath.Clean(l.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob handle %q", handle)
	}
	return p, nil
}
