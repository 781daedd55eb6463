// Package storage abstracts where raw file bytes live. Clipboard rows only
// hold opaque handles into a BlobStore, so swapping S3 for the local disk
// is a config change.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

var ErrBlobNotFound = errors.New("blob not found")

// Blob is one stored file together with the display metadata a plain
// handle lookup would otherwise lose.
type Blob struct {
	ClipboardID  string
	Filename     string
	OriginalName string
	MimeType     string
	Data         []byte
}

// BlobStore persists raw file bytes keyed by an opaque handle. Handles are
// generated by Put and never exposed to clients. Files are buffered whole,
// the upload cap keeps that bounded.
type BlobStore interface {
	// Put stores the blob and returns its handle.
	Put(ctx context.Context, b *Blob) (string, error)
	// Get returns the blob for a handle, or ErrBlobNotFound.
	Get(ctx context.Context, handle string) (*Blob, error)
	// Delete removes a single blob. Deleting an absent handle is not an error.
	Delete(ctx context.Context, handle string) error
	// DeleteAllForClipboard removes every blob belonging to a clipboard
	// and returns how many were deleted.
	DeleteAllForClipboard(ctx context.Context, clipboardID string) (int, error)
}

// New picks a blob store implementation based on storage.type.
func New() (BlobStore, error) {
	switch t := viper.GetString("storage.type"); t {
	case "s3":
		return NewS3Store()
	case "local":
		return NewLocalStore(viper.GetString("storage.local_path"))
	default:
		return nil, fmt.Errorf("invalid storage type %q", t)
	}
}

// handleFor builds the store key for a clipboard's file. Keeping the
// clipboard ID as the key prefix is what makes per-clipboard deletion a
// prefix operation.
func handleFor(clipboardID, filename string) string {
	return clipboardID + "/" + filename
}
