// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	sweepOnStart      = pflag.Bool("sweep-on-start", true, "Runs an expiry sweep once at startup")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
)

// SweepOnStart reports whether the startup expiry sweep was requested.
func SweepOnStart() bool {
	return *sweepOnStart
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("db.path", "db_path")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_path", "storage_local_path")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
	v.BindEnv("cloudflare.access_key_id", "cloudflare_access_key_id")
	v.BindEnv("cloudflare.secret_access_key", "cloudflare_secret_access_key")
	v.BindEnv("cloudflare.bucket", "cloudflare_bucket")

	v.BindEnv("push.vapid_public_key", "push_vapid_public_key")
	v.BindEnv("push.vapid_private_key", "push_vapid_private_key")
	v.BindEnv("push.subscriber", "push_subscriber")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.path", "clipsync.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./data/blobs")

	// MiB, converted to bytes below
	v.SetDefault("upload.max_size", 50)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
		// No config file is fine, the defaults cover a local setup
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("cloudflare.account_id") == "" {
				return errors.New("account id can't be empty")
			}
			if v.GetString("cloudflare.access_key_id") == "" {
				return errors.New("account access id can't be empty")
			}
			if v.GetString("cloudflare.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("cloudflare.bucket") == "" {
				return errors.New("bucket can't be empty")
			}
		}
	case "local":
		{
			if v.GetString("storage.local_path") == "" {
				return errors.New("storage.local_path can't be empty")
			}
		}
	default:
		return errors.New("invalid storage type provided")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	pub := v.GetString("push.vapid_public_key")
	priv := v.GetString("push.vapid_private_key")
	if (pub == "") != (priv == "") {
		return errors.New("both VAPID keys must be set, or neither")
	}
	if pub == "" {
		fmt.Println("[WARNING]: VAPID keys are not configured. Push notifications will be skipped, clipboards stay reachable in-app")
	} else if v.GetString("push.subscriber") == "" {
		return errors.New("push.subscriber is required when VAPID keys are set")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
