package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/config"
	"github.com/Zeeyeah/subsurfempire/realtime"
	"github.com/Zeeyeah/subsurfempire/session"
	"github.com/Zeeyeah/subsurfempire/storage"
)

func createServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.String(200, "healthy") })

	corsCfg := cors.Config{
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	r.Use(cors.New(corsCfg))
	return r
}

func setupLogger(debug bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func main() {
	cfg := config.Load()
	setupLogger(cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Store
	if cfg.PostgresURL != "" {
		pg, err := storage.NewPostgres(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		store = pg
		log.Info().Msg("using postgres store")
	} else {
		store = storage.NewMemory()
		log.Info().Msg("POSTGRES_URL not set, using in-memory store")
	}

	hub := realtime.NewHub()
	svc := session.NewService(store, hub)
	handler := session.NewHandler(svc)

	r := createServer(cfg.AllowedOrigins)
	r.GET("/ws/game", hub.HandleWS)

	api := r.Group("/api")
	handler.Register(api)
	if cfg.Debug {
		handler.RegisterDebug(api)
	}

	log.Info().Str("addr", cfg.Addr).Msg("server starting")
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
