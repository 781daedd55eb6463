package model

import "time"

// Device maps a human-chosen receive code to a registered device. Codes
// are stored lowercase so the primary key doubles as the case-insensitive
// uniqueness constraint.
type Device struct {
	ReceiveCode string `gorm:"primaryKey" json:"receiveCode"`
	DeviceName  string `gorm:"not null" json:"deviceName"`

	// Web Push subscription, empty when the device never opted in
	PushEndpoint string `json:"-"`
	PushP256dh   string `json:"-"`
	PushAuth     string `json:"-"`

	LastSeen  time.Time `gorm:"not null" json:"lastSeen"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// HasPush reports whether the device can receive push notifications.
func (d *Device) HasPush() bool {
	return d.PushEndpoint != ""
}
