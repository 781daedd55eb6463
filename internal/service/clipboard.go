package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path"
	"time"

	"clipsync/model"
	"clipsync/storage"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Clipboards live for exactly 24 hours from creation. Mutations
	// refresh lastAccessed but never push the expiry out.
	expiryWindow = 24 * time.Hour

	// The ID space is only 10k wide, so collisions are expected and the
	// generator retries instead of failing on the first hit.
	idAttempts = 100
)

// ClipboardStore owns the clipboard lifecycle: creation with a fresh short
// ID, reads that refresh lastAccessed, file appends backed by the blob
// store, cascade deletes and the expiry sweep.
type ClipboardStore struct {
	DB    *gorm.DB
	Blobs storage.BlobStore

	now   func() time.Time
	newID func() string
}

func NewClipboardStore(db *gorm.DB, blobs storage.BlobStore) *ClipboardStore {
	return &ClipboardStore{
		DB:    db,
		Blobs: blobs,
		now:   time.Now,
		newID: randomID,
	}
}

// randomID draws a 4-digit zero-padded numeric ID. Short enough to type
// by hand from another device.
func randomID() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

// Create allocates a unique ID and persists a new clipboard. The
// existence pre-check is only an optimization; the unique-key insert is
// what actually guarantees uniqueness under concurrent creates.
func (s *ClipboardStore) Create(ctx context.Context, content string, isPublic bool, sentToReceiveCode string) (*model.Clipboard, error) {
	for range idAttempts {
		id := s.newID()

		var taken bool
		err := s.DB.WithContext(ctx).
			Model(model.Clipboard{}).
			Select("count(*) > 0").
			Where("id = ?", id).
			Find(&taken).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to check if ID is taken, %w", err)
		}
		if taken {
			continue
		}

		now := s.now()
		clip := &model.Clipboard{
			ID:                id,
			Content:           content,
			IsPublic:          isPublic,
			SentToReceiveCode: sentToReceiveCode,
			Files:             []model.ClipboardFile{},
			CreatedAt:         now,
			LastAccessed:      now,
			ExpiresAt:         now.Add(expiryWindow),
		}

		err = s.DB.WithContext(ctx).Create(clip).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race for this ID, draw another
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create clipboard, %w", err)
		}

		return clip, nil
	}

	return nil, ErrIDsExhausted
}

// Fetch returns a live clipboard and refreshes its lastAccessed. Expired
// clipboards are indistinguishable from ones that never existed; touching
// one cascades its deletion right away instead of waiting for the sweep.
func (s *ClipboardStore) Fetch(ctx context.Context, id string) (*model.Clipboard, error) {
	var clip model.Clipboard

	err := s.DB.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_id")
		}).
		Where("id = ?", id).
		First(&clip).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clipboard, %w", err)
	}

	if !clip.ExpiresAt.After(s.now()) {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			zap.L().Warn("Failed to delete expired clipboard on access", zap.String("id", id), zap.Error(err))
		}
		return nil, ErrNotFound
	}

	clip.LastAccessed = s.now()

	err = s.DB.WithContext(ctx).
		Model(model.Clipboard{}).
		Where("id = ?", id).
		UpdateColumn("last_accessed", clip.LastAccessed).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to refresh last accessed, %w", err)
	}

	return &clip, nil
}

// UpdateContent overwrites the text payload in place. No history is kept.
func (s *ClipboardStore) UpdateContent(ctx context.Context, id, content string) error {
	res := s.DB.WithContext(ctx).
		Model(model.Clipboard{}).
		Where("id = ? AND expires_at > ?", id, s.now()).
		UpdateColumns(map[string]any{
			"content":       content,
			"last_accessed": s.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update clipboard content, %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendFile stores the bytes in the blob store first and only then
// appends the metadata row, so a failed blob write never leaves metadata
// pointing at nothing. The row insert is a single statement, which keeps
// concurrent appends against the same clipboard from losing each other.
func (s *ClipboardStore) AppendFile(ctx context.Context, id, originalName, mimeType string, data []byte) (*model.ClipboardFile, error) {
	var exists bool
	err := s.DB.WithContext(ctx).
		Model(model.Clipboard{}).
		Select("count(*) > 0").
		Where("id = ? AND expires_at > ?", id, s.now()).
		Find(&exists).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to check if clipboard exists, %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	suffix, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file name, %w", err)
	}
	storeName := suffix + path.Ext(originalName)

	handle, err := s.Blobs.Put(ctx, &storage.Blob{
		ClipboardID:  id,
		Filename:     storeName,
		OriginalName: originalName,
		MimeType:     mimeType,
		Data:         data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store file bytes, %w", err)
	}

	file := &model.ClipboardFile{
		ClipboardID:  id,
		Filename:     storeName,
		OriginalName: originalName,
		Size:         int64(len(data)),
		UploadTime:   s.now(),
		MimeType:     mimeType,
		BlobKey:      handle,
	}

	if err := s.DB.WithContext(ctx).Create(file).Error; err != nil {
		// Don't leave the blob orphaned
		if derr := s.Blobs.Delete(ctx, handle); derr != nil {
			zap.L().Warn("Failed to clean up blob after failed append", zap.String("handle", handle), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to append file metadata, %w", err)
	}

	err = s.DB.WithContext(ctx).
		Model(model.Clipboard{}).
		Where("id = ?", id).
		UpdateColumn("last_accessed", s.now()).
		Error
	if err != nil {
		zap.L().Warn("Failed to refresh last accessed after file append", zap.String("id", id), zap.Error(err))
	}

	return file, nil
}

// GetFile returns the stored bytes plus display metadata for a download.
func (s *ClipboardStore) GetFile(ctx context.Context, id, filename string) (*storage.Blob, error) {
	var file model.ClipboardFile

	err := s.DB.WithContext(ctx).
		Where("clipboard_id = ? AND filename = ?", id, filename).
		First(&file).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up file, %w", err)
	}

	blob, err := s.Blobs.Get(ctx, file.BlobKey)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file bytes, %w", err)
	}

	// The metadata row is authoritative for display fields even if the
	// blob backend lost its copy of them
	blob.ClipboardID = id
	blob.Filename = filename
	if blob.OriginalName == "" {
		blob.OriginalName = file.OriginalName
	}
	if blob.MimeType == "" {
		blob.MimeType = file.MimeType
	}

	return blob, nil
}

// Delete removes the clipboard's blobs first (best-effort) and then the
// record itself. Deleting an absent ID reports ErrNotFound, not a failure.
func (s *ClipboardStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Blobs.DeleteAllForClipboard(ctx, id); err != nil {
		// Keep going, a stranded blob is better than a stranded record
		zap.L().Warn("Failed to delete clipboard blobs", zap.String("id", id), zap.Error(err))
	}

	err := s.DB.WithContext(ctx).
		Where("clipboard_id = ?", id).
		Delete(model.ClipboardFile{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete file metadata, %w", err)
	}

	res := s.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(model.Clipboard{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete clipboard, %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListRecent returns live clipboards newest-first. With publicOnly set it
// is the shared "recent" feed and only isPublic rows are included.
func (s *ClipboardStore) ListRecent(ctx context.Context, limit int, publicOnly bool) ([]model.Clipboard, error) {
	q := s.DB.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_id")
		}).
		Where("expires_at > ?", s.now())

	if publicOnly {
		q = q.Where("is_public = ?", true)
	}

	var clips []model.Clipboard
	err := q.Order("created_at DESC").
		Limit(limit).
		Find(&clips).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clipboards, %w", err)
	}

	return clips, nil
}

// ListInbox returns live clipboards sent to a receive code, newest-first.
// The match is case-insensitive since codes are typed by hand.
func (s *ClipboardStore) ListInbox(ctx context.Context, code string, limit int) ([]model.Clipboard, error) {
	var clips []model.Clipboard

	err := s.DB.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_id")
		}).
		Where("LOWER(sent_to_receive_code) = LOWER(?) AND expires_at > ?", code, s.now()).
		Order("created_at DESC").
		Limit(limit).
		Find(&clips).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox, %w", err)
	}

	return clips, nil
}

// SweepExpired cascade-deletes every clipboard past its expiry and
// returns how many went. Callers run it at the top of request handling,
// there is no background scheduler.
func (s *ClipboardStore) SweepExpired(ctx context.Context) (int, error) {
	var ids []string

	err := s.DB.WithContext(ctx).
		Model(model.Clipboard{}).
		Where("expires_at < ?", s.now()).
		Pluck("id", &ids).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to query expired clipboards, %w", err)
	}

	deleted := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				zap.L().Error("Failed to delete expired clipboard", zap.String("id", id), zap.Error(err))
			}
			continue
		}
		deleted++
	}

	return deleted, nil
}
