// Package db contains things related to SQlite
package db

import (
	"fmt"
	"os"
	"sync"

	"clipsync/model"
	"clipsync/pkg/util"

	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	once sync.Once
	conn *gorm.DB
	err  error
)

// New opens the SQLite database and migrates the schema. The connection
// and migration run exactly once per process no matter how often New is
// called.
func New() (*gorm.DB, error) {
	once.Do(func() {
		conn, err = open()
	})

	return conn, err
}

func open() (*gorm.DB, error) {
	path := viper.GetString("db.path")

	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if util.IsRunningInDocker() {
		if _, statErr := os.Stat(path); statErr != nil {
			if os.IsNotExist(statErr) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", path)
			}
		}
	}

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey, which the ID generator and device registry
	// rely on
	db, openErr := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if openErr != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", openErr)
	}

	migErr := db.AutoMigrate(model.Clipboard{}, model.ClipboardFile{}, model.Device{})
	if migErr != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", migErr)
	}

	return db, nil
}
