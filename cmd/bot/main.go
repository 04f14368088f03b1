// Command bot runs one headless player against a server. Run two of them to
// fill a session and watch a full match play out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/client"
)

func main() {
	var (
		baseURL  = flag.String("server", "http://localhost:3000", "server base URL")
		username = flag.String("username", "", "player username (default bot-<pid>)")
		debug    = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	name := *username
	if name == "" {
		name = fmt.Sprintf("bot-%d", os.Getpid())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*baseURL)
	engine, err := client.NewEngine(ctx, api, *baseURL, name, rand.Float64)
	if err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}
	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("bot finished")
}
