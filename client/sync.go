package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/realtime"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	wsReconnectDelay    = 2 * time.Second
	wsMaxRetries        = 10
	updateBufferSize    = 64
)

// Source merges the two sync channels into one update stream: periodic
// polling of the state endpoint, which is authoritative, and the websocket
// push feed, which is best effort and only lowers latency. Either channel
// alone keeps a client playable.
type Source struct {
	api          *Client
	wsURL        string
	gameID       string
	pollInterval time.Duration
	updates      chan realtime.Envelope
}

// NewSource builds a source for one game. baseURL is the HTTP base of the
// server; the websocket URL is derived from it.
func NewSource(api *Client, baseURL, gameID string) *Source {
	wsURL := strings.Replace(strings.TrimRight(baseURL, "/"), "http", "ws", 1) + "/ws/game"
	return &Source{
		api:          api,
		wsURL:        wsURL,
		gameID:       gameID,
		pollInterval: defaultPollInterval,
		updates:      make(chan realtime.Envelope, updateBufferSize),
	}
}

// Updates is the merged event stream. Events may be stale or duplicated
// across the two channels; consumers reconcile by timestamp.
func (s *Source) Updates() <-chan realtime.Envelope {
	return s.updates
}

// Run drives both channels until ctx is done.
func (s *Source) Run(ctx context.Context) {
	go s.listenPush(ctx)
	s.poll(ctx)
}

func (s *Source) poll(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, err := s.api.State(ctx, s.gameID)
			if err != nil {
				log.Debug().Err(err).Msg("state poll failed")
				continue
			}
			s.emit(realtime.Envelope{
				Type:      realtime.TypeGameState,
				GameID:    s.gameID,
				GameState: state,
			})
		}
	}
}

func (s *Source) listenPush(ctx context.Context) {
	retries := 0
	for retries < wsMaxRetries {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
		if err != nil {
			retries++
			log.Debug().Err(err).Int("retries", retries).Msg("websocket dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(wsReconnectDelay):
			}
			continue
		}
		retries = 0
		s.readLoop(ctx, conn)
	}
	log.Warn().Msg("push channel given up, polling only")
}

func (s *Source) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("push connection closed")
			return
		}
		var env realtime.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Debug().Err(err).Msg("bad push message")
			continue
		}
		if env.GameID != "" && env.GameID != s.gameID {
			continue
		}
		s.emit(env)
	}
}

// emit drops the event when the consumer is behind. Push is best effort and
// the next poll carries the full state anyway.
func (s *Source) emit(env realtime.Envelope) {
	select {
	case s.updates <- env:
	default:
	}
}
