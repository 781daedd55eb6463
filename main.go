package main

import (
	"context"
	"fmt"

	"clipsync/api"
	"clipsync/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	if config.SweepOnStart() {
		n, err := a.Clipboards.SweepExpired(context.Background())
		if err != nil {
			zap.L().Warn("Startup expiry sweep failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("Startup expiry sweep finished", zap.Int("deleted", n))
		}
	}

	zap.L().Info("Server starting", zap.Int("port", viper.GetInt("host.port")))

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
