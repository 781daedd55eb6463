package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipsync/model"
	"clipsync/validators"

	"gorm.io/gorm"
)

const defaultDeviceName = "My Device"

// PushSubscription mirrors the browser's PushSubscription.toJSON() shape.
type PushSubscription struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// DeviceRegistry maps receive codes to devices, at most one device per
// case-insensitive code. Codes are normalized to lowercase before they
// hit the table, so the primary key enforces the uniqueness.
type DeviceRegistry struct {
	DB *gorm.DB

	now func() time.Time
}

func NewDeviceRegistry(db *gorm.DB) *DeviceRegistry {
	return &DeviceRegistry{
		DB:  db,
		now: time.Now,
	}
}

// Register claims a receive code for a new device. Taken codes report
// ErrCodeTaken so the client can prompt for another one.
func (r *DeviceRegistry) Register(ctx context.Context, code, name string, sub *PushSubscription) (*model.Device, error) {
	clean, err := validators.NormalizeReceiveCode(code)
	if err != nil {
		return nil, err
	}

	var taken bool
	err = r.DB.WithContext(ctx).
		Model(model.Device{}).
		Select("count(*) > 0").
		Where("receive_code = ?", clean).
		Find(&taken).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to check if code is taken, %w", err)
	}
	if taken {
		return nil, ErrCodeTaken
	}

	if name == "" {
		name = defaultDeviceName
	}

	now := r.now()
	device := &model.Device{
		ReceiveCode: clean,
		DeviceName:  name,
		LastSeen:    now,
		CreatedAt:   now,
	}
	applySubscription(device, sub)

	err = r.DB.WithContext(ctx).Create(device).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Someone grabbed the code between the check and the insert
		return nil, ErrCodeTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register device, %w", err)
	}

	return device, nil
}

// Lookup finds the device for a code and refreshes its lastSeen.
func (r *DeviceRegistry) Lookup(ctx context.Context, code string) (*model.Device, error) {
	clean, err := validators.NormalizeReceiveCode(code)
	if err != nil {
		return nil, ErrNotFound
	}

	var device model.Device
	err = r.DB.WithContext(ctx).
		Where("receive_code = ?", clean).
		First(&device).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up device, %w", err)
	}

	device.LastSeen = r.now()
	err = r.DB.WithContext(ctx).
		Model(model.Device{}).
		Where("receive_code = ?", clean).
		UpdateColumn("last_seen", device.LastSeen).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to refresh last seen, %w", err)
	}

	return &device, nil
}

// Update changes only the fields that were provided. An empty name keeps
// the current one, a nil subscription keeps the current one.
func (r *DeviceRegistry) Update(ctx context.Context, code, name string, sub *PushSubscription) (*model.Device, error) {
	clean, err := validators.NormalizeReceiveCode(code)
	if err != nil {
		return nil, ErrNotFound
	}

	updates := map[string]any{
		"last_seen": r.now(),
	}
	if name != "" {
		updates["device_name"] = name
	}
	if sub != nil {
		updates["push_endpoint"] = sub.Endpoint
		updates["push_p256dh"] = sub.Keys.P256dh
		updates["push_auth"] = sub.Keys.Auth
	}

	res := r.DB.WithContext(ctx).
		Model(model.Device{}).
		Where("receive_code = ?", clean).
		UpdateColumns(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update device, %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var device model.Device
	err = r.DB.WithContext(ctx).
		Where("receive_code = ?", clean).
		First(&device).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated device, %w", err)
	}

	return &device, nil
}

// ClearSubscription drops a device's push subscription, used when the
// push service reports the endpoint gone.
func (r *DeviceRegistry) ClearSubscription(ctx context.Context, code string) error {
	err := r.DB.WithContext(ctx).
		Model(model.Device{}).
		Where("receive_code = ?", code).
		UpdateColumns(map[string]any{
			"push_endpoint": "",
			"push_p256dh":   "",
			"push_auth":     "",
		}).
		Error
	if err != nil {
		return fmt.Errorf("failed to clear push subscription, %w", err)
	}

	return nil
}

// Unregister removes the device for a code. Removing an absent code is
// fine; the return value just reports whether anything was there.
func (r *DeviceRegistry) Unregister(ctx context.Context, code string) (bool, error) {
	clean, err := validators.NormalizeReceiveCode(code)
	if err != nil {
		return false, nil
	}

	res := r.DB.WithContext(ctx).
		Where("receive_code = ?", clean).
		Delete(model.Device{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to unregister device, %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func applySubscription(d *model.Device, sub *PushSubscription) {
	if sub == nil {
		return
	}

	d.PushEndpoint = sub.Endpoint
	d.PushP256dh = sub.Keys.P256dh
	d.PushAuth = sub.Keys.Auth
}

// Subscription rebuilds the PushSubscription stored on a device, or nil
// when the device never opted in.
func Subscription(d *model.Device) *PushSubscription {
	if !d.HasPush() {
		return nil
	}

	return &PushSubscription{
		Endpoint: d.PushEndpoint,
		Keys: PushKeys{
			P256dh: d.PushP256dh,
			Auth:   d.PushAuth,
		},
	}
}
