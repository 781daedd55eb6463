package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"clipsync/model"
	"clipsync/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeClock lets tests move time around without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache in-memory database keeps gorm's connection
	// pool pointed at the same data while staying private to this test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.Clipboard{}, model.ClipboardFile{}, model.Device{}))

	return db
}

func newTestStore(t *testing.T) (*ClipboardStore, *fakeClock) {
	t.Helper()

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	clock := newFakeClock()
	s := NewClipboardStore(newTestDB(t), blobs)
	s.now = clock.Now

	return s, clock
}

func newTestRegistry(t *testing.T) (*DeviceRegistry, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	r := NewDeviceRegistry(newTestDB(t))
	r.now = clock.Now

	return r, clock
}
