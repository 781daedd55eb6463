// Package model defines database models
package model

import "time"

// Clipboard is a shared paste. The ID is a short numeric string typed by
// hand on another device, so it stays 4 digits and unique among live rows.
type Clipboard struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Content string `json:"content"`

	// Whether the clipboard shows up in the public "recent" listing.
	// Persisted as a native boolean, no coercion anywhere.
	IsPublic bool `gorm:"not null;default:false" json:"isPublic"`

	// Set when the clipboard was pushed directly to a device's receive
	// code. Stored verbatim, matched case-insensitively.
	SentToReceiveCode string `gorm:"index" json:"sentToReceiveCode,omitempty"`

	Files []ClipboardFile `gorm:"foreignKey:ClipboardID;constraint:OnDelete:CASCADE" json:"files"`

	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	LastAccessed time.Time `gorm:"not null" json:"lastAccessed"`
	// Fixed at creation time + 24h, never extended
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
}

// ClipboardFile is one uploaded file attached to a clipboard. The blob
// itself lives in the blob store under BlobKey, which never leaves the
// server.
type ClipboardFile struct {
	RowID       uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ClipboardID string `gorm:"index;not null" json:"-"`

	// Store-internal name, collision-resistant, independent of whatever
	// the user called the file
	Filename     string    `gorm:"not null;uniqueIndex" json:"filename"`
	OriginalName string    `gorm:"not null" json:"originalName"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadTime   time.Time `gorm:"not null" json:"uploadTime"`
	MimeType     string    `gorm:"not null" json:"mimeType"`

	BlobKey string `gorm:"not null" json:"-"`
}
