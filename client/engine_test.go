package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeeyeah/subsurfempire/domain"
)

func TestEngineJoinsAndLeaves(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	api := New(srv.URL)

	engine, err := NewEngine(context.Background(), api, srv.URL, "bot-1", func() float64 { return 0.5 })
	require.NoError(t, err)

	state, err := svc.State(context.Background(), engine.gameID)
	require.NoError(t, err)
	require.Len(t, state.Players, 1)

	// A short run: the engine ticks, syncs, and leaves on cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = engine.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The engine was the only player, so leaving deleted the session.
	_, err = svc.State(context.Background(), engine.gameID)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestEngineTracksOpponent(t *testing.T) {
	srv, _, _ := newTestServer(t)
	api := New(srv.URL)

	engine, err := NewEngine(context.Background(), api, srv.URL, "bot-1", func() float64 { return 0.5 })
	require.NoError(t, err)
	assert.Equal(t, 0, engine.pred.Len())

	other := New(srv.URL)
	joined, err := other.Join(context.Background(), "bot-2", "")
	require.NoError(t, err)

	// The joined snapshot includes both players; folding it into the
	// predictor yields exactly one opponent shadow.
	engine.pred.Sync(joined.GameState.Players, engine.playerID)
	assert.Equal(t, 1, engine.pred.Len())
	_, ok := engine.pred.Position(joined.PlayerID)
	assert.True(t, ok)
}
