// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"clipsync/db"
	"clipsync/internal/service"
	"clipsync/pkg/middleware"
	"clipsync/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB         *gorm.DB
	Router     *gin.Engine
	Blobs      storage.BlobStore
	Clipboards *service.ClipboardStore
	Devices    *service.DeviceRegistry
	Notifier   *service.Notifier
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
	}
	a.DB = db

	makeLogger()

	blobs, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store, %w", err)
	}
	a.Blobs = blobs

	a.Clipboards = service.NewClipboardStore(db, blobs)
	a.Devices = service.NewDeviceRegistry(db)

	push, err := service.NewWebPushSender()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize push sender, %w", err)
	}
	// Keep the interface nil when push isn't configured, a typed nil
	// would sneak past the notifier's skip check
	var sender service.PushSender
	if push != nil {
		sender = push
	}
	a.Notifier = service.NewNotifier(a.Devices, a.Clipboards, sender)

	a.setupRoutes()

	return a, nil
}

func (a *API) setupRoutes() {
	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	clips := main.Group("/clipboards")
	{
		// POST /api/clipboards			-> Creates a new clipboard
		clips.POST("", middleware.BodySizeLimiter(1<<20), a.ClipCreate)

		// GET /api/clipboards			-> Lists recent clipboards
		clips.GET("", a.ClipList)

		// GET /api/clipboards/:id		-> Fetches a clipboard by ID
		clips.GET("/:id", a.ClipFetch)

		// PUT /api/clipboards/:id		-> Overwrites a clipboard's content
		clips.PUT("/:id", middleware.BodySizeLimiter(1<<20), a.ClipUpdate)

		// DELETE /api/clipboards/:id		-> Deletes a clipboard and its files
		clips.DELETE("/:id", a.ClipDelete)

		// POST /api/clipboards/:id/files	-> Uploads a file to a clipboard
		clips.POST("/:id/files", middleware.BodySizeLimiter(maxUploadSize+1<<20), a.ClipUpload)

		// GET /api/clipboards/:id/files/:filename -> Downloads a stored file
		clips.GET("/:id/files/:filename", a.ClipDownload)
	}

	devices := main.Group("/devices", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/devices			-> Registers a device under a receive code
		devices.POST("", a.DeviceRegister)

		// GET /api/devices/:code		-> Looks up a device
		devices.GET("/:code", a.DeviceFetch)

		// PUT /api/devices/:code		-> Updates name and/or push subscription
		devices.PUT("/:code", a.DeviceUpdate)

		// DELETE /api/devices/:code		-> Unregisters a device
		devices.DELETE("/:code", a.DeviceUnregister)

		// GET /api/devices/:code/inbox		-> Clipboards sent to the code
		devices.GET("/:code/inbox", a.DeviceInbox)
	}

	// POST /api/notifications			-> Pushes a clipboard to a device
	main.POST("/notifications", middleware.BodySizeLimiter(1<<20), a.NotifySend)
}

// sweepExpired runs the opportunistic expiry sweep. Called at the top of
// the read/write handlers instead of from a timer, so cleanup always
// happens before a client-visible response.
func (a *API) sweepExpired(c *gin.Context) {
	n, err := a.Clipboards.SweepExpired(c.Request.Context())
	if err != nil {
		zap.L().Warn("Expiry sweep failed", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Swept expired clipboards", zap.Int("count", n))
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
