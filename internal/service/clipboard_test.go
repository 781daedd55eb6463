package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"clipsync/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^\d{4}$`)

func TestCreateGeneratesShortNumericIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 20 {
		clip, err := s.Create(ctx, "", false, "")
		require.NoError(t, err)

		assert.Regexp(t, idPattern, clip.ID)
		assert.False(t, seen[clip.ID], "ID %q handed out twice", clip.ID)
		seen[clip.ID] = true
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ids := []string{"0042", "0042", "0042", "0777"}
	s.newID = func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}

	first, err := s.Create(ctx, "a", false, "")
	require.NoError(t, err)
	require.Equal(t, "0042", first.ID)

	// The generator keeps drawing 0042 twice more before offering a free ID
	second, err := s.Create(ctx, "b", false, "")
	require.NoError(t, err)
	assert.Equal(t, "0777", second.ID)
}

func TestCreateFailsWhenIDsExhausted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.newID = func() string { return "1111" }

	_, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	_, err = s.Create(ctx, "", false, "")
	assert.ErrorIs(t, err, ErrIDsExhausted)
}

func TestContentRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "X", false, "")
	require.NoError(t, err)

	got, err := s.Fetch(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Content)

	require.NoError(t, s.UpdateContent(ctx, clip.ID, "Y"))

	got, err = s.Fetch(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", got.Content)
}

func TestIsPublicRoundTripsAsBoolean(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	pub, err := s.Create(ctx, "", true, "")
	require.NoError(t, err)
	priv, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	got, err := s.Fetch(ctx, pub.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	got, err = s.Fetch(ctx, priv.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
}

func TestFetchRefreshesLastAccessed(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)
	created := clip.LastAccessed

	clock.Advance(2 * time.Hour)

	got, err := s.Fetch(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Add(2*time.Hour), got.LastAccessed)
	// Expiry stays pinned to creation
	assert.Equal(t, clip.ExpiresAt, got.ExpiresAt)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, clip.ID))
	assert.ErrorIs(t, s.Delete(ctx, clip.ID), ErrNotFound)
}

func TestExpiredClipboardInvisibleAndSwept(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	old, err := s.Create(ctx, "old", false, "")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	fresh, err := s.Create(ctx, "fresh", false, "")
	require.NoError(t, err)

	_, err = s.Fetch(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Accessing the expired clipboard already cascaded its deletion, so
	// the sweep has nothing left to do for it
	n, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clips, err := s.ListRecent(ctx, 50, false)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, fresh.ID, clips[0].ID)
}

func TestSweepCountsAndCascades(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "a", false, "")
	require.NoError(t, err)
	second, err := s.Create(ctx, "b", false, "")
	require.NoError(t, err)

	file, err := s.AppendFile(ctx, first.ID, "notes.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	n, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Fetch(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Fetch(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The blobs went with the records
	_, err = s.GetFile(ctx, first.ID, file.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Blobs.Get(ctx, file.BlobKey)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestListRecentPublicFilter(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	var publicIDs []string
	for i := range 4 {
		isPublic := i%2 == 0
		clip, err := s.Create(ctx, "", isPublic, "")
		require.NoError(t, err)
		if isPublic {
			publicIDs = append(publicIDs, clip.ID)
		}
		clock.Advance(time.Minute)
	}

	clips, err := s.ListRecent(ctx, 50, true)
	require.NoError(t, err)
	require.Len(t, clips, len(publicIDs))

	// Newest first
	for i, clip := range clips {
		assert.True(t, clip.IsPublic)
		assert.Equal(t, publicIDs[len(publicIDs)-1-i], clip.ID)
	}

	all, err := s.ListRecent(ctx, 50, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListInboxMatchesCaseInsensitively(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	sent, err := s.Create(ctx, "for alice", false, "Alice-Phone")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	_, err = s.Create(ctx, "for nobody", false, "")
	require.NoError(t, err)

	clips, err := s.ListInbox(ctx, "ALICE-PHONE", 50)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, sent.ID, clips[0].ID)

	// Stored verbatim, matched loosely
	assert.Equal(t, "Alice-Phone", clips[0].SentToReceiveCode)
}

func TestFileRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	data := bytes.Repeat([]byte("x"), 1024)

	file, err := s.AppendFile(ctx, clip.ID, "report.pdf", "application/pdf", data)
	require.NoError(t, err)
	assert.NotEqual(t, "report.pdf", file.Filename, "store name must not be the user's name")
	assert.Equal(t, "report.pdf", file.OriginalName)
	assert.Equal(t, int64(1024), file.Size)

	blob, err := s.GetFile(ctx, clip.ID, file.Filename)
	require.NoError(t, err)
	assert.Equal(t, data, blob.Data)
	assert.Equal(t, "report.pdf", blob.OriginalName)
	assert.Equal(t, "application/pdf", blob.MimeType)

	got, err := s.Fetch(ctx, clip.ID)
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, file.Filename, got.Files[0].Filename)
}

func TestAppendFileToMissingClipboard(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AppendFile(context.Background(), "0000", "a.txt", "text/plain", []byte("a"))
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingBlobs struct {
	storage.BlobStore
}

func (failingBlobs) Put(_ context.Context, _ *storage.Blob) (string, error) {
	return "", errors.New("blob backend down")
}

func TestAppendFileBlobFailureLeavesNoMetadata(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	s.Blobs = failingBlobs{BlobStore: s.Blobs}

	_, err = s.AppendFile(ctx, clip.ID, "a.txt", "text/plain", []byte("a"))
	require.Error(t, err)

	got, err := s.Fetch(ctx, clip.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Files)
}

func TestDeleteRemovesBlobs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clip, err := s.Create(ctx, "", false, "")
	require.NoError(t, err)

	file, err := s.AppendFile(ctx, clip.ID, "a.txt", "text/plain", []byte("abc"))
	require.NoError(t, err)
	handle := file.BlobKey

	require.NoError(t, s.Delete(ctx, clip.ID))

	_, err = s.Blobs.Get(ctx, handle)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestScenarioMockedGenerator(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.newID = func() string { return "0042" }

	_, err := s.Create(ctx, "hello", true, "")
	require.NoError(t, err)

	got, err := s.Fetch(ctx, "0042")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.True(t, got.IsPublic)
	assert.Empty(t, got.Files)

	require.NoError(t, s.Delete(ctx, "0042"))

	_, err = s.Fetch(ctx, "0042")
	assert.ErrorIs(t, err, ErrNotFound)
}
