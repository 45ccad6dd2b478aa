package main

import (
	"context"
	"errors"
	"fitmask/internal/adapters/events"
	"fitmask/internal/adapters/handler"
	"fitmask/internal/adapters/preview"
	"fitmask/internal/adapters/resampler"
	"fitmask/internal/core/domain"
	"fitmask/internal/core/domain/nodes"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const version = "1.1.0"

func main() {
	log.Info().Str("version", version).Msg("starting fitmask node plugin...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("server.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	defaultPolicy := domain.DefaultMissingMaskPolicy
	if s := viper.GetString("node.default_missing_mask"); s != "" {
		defaultPolicy, err = domain.ParseMissingMaskPolicy(s)
		if err != nil {
			log.Panic().Err(err).Msg("invalid default missing_mask policy in config")
		}
	}

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	nodeRegistry := &domain.NodeRegistry{}
	nodeRegistry.Register(nodes.NewFitMask(resampler.NewNearest()))

	hub := events.NewHub()

	nodeHandler := handler.NewNode(nodeRegistry, preview.NewPNGEncoder(), hub, handlerTimeout, defaultPolicy)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/object_info", nodeHandler.ObjectInfo)
	r.GET("/nodes", nodeHandler.ListNodes)
	r.POST("/nodes/:type/execute", nodeHandler.Execute)
	r.GET("/ws", hub.Handle)

	srv := &http.Server{
		Addr:              viper.GetString("server.address"),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	log.Info().Str("address", srv.Addr).Msg("node plugin listening")

	<-ctx.Done()

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
