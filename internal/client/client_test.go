package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/piblackjack/internal/driver"
	"github.com/lox/piblackjack/internal/game"
	"github.com/lox/piblackjack/internal/server"
)

type fixture struct {
	ctx    context.Context
	mock   *quartz.Mock
	driver *driver.Driver
	server *server.Server
	url    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := log.NewWithOptions(io.Discard, log.Options{})
	mock := quartz.NewMock(t)
	session := game.NewSession(game.WithSeed(11), game.WithClock(mock))
	d := driver.New(session, driver.WithClock(mock), driver.WithFPS(20))
	d.Start(ctx)

	srv := server.NewServer(d, logger, server.WithClock(mock))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Stop()
		ts.Close()
	})

	return &fixture{ctx: ctx, mock: mock, driver: d, server: srv, url: ts.URL}
}

func (f *fixture) dial(t *testing.T) *Client {
	t.Helper()
	c, err := Dial(f.ctx, f.url, "", log.NewWithOptions(io.Discard, log.Options{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// wait runs frames until result yields a value
func (f *fixture) wait(t *testing.T, result <-chan error) error {
	t.Helper()
	for range 200 {
		select {
		case err := <-result:
			return err
		case <-time.After(10 * time.Millisecond):
			f.mock.Advance(f.driver.Interval()).MustWait(f.ctx)
		}
	}
	t.Fatal("timed out waiting for command result")
	return nil
}

func nextSnapshot(t *testing.T, c *Client) game.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-c.Snapshots():
		require.True(t, ok, "snapshot channel closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return game.Snapshot{}
	}
}

func TestDialReceivesInitialSnapshot(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	snap := nextSnapshot(t, c)
	assert.Equal(t, game.PhaseBetting, snap.Phase)
	assert.Equal(t, 100, snap.Balance)
}

func TestEnqueueResolvesOnAck(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	nextSnapshot(t, c)

	require.NoError(t, f.wait(t, c.Enqueue(game.Command{Kind: game.CommandConfirmBet, Amount: 25})))

	assert.Eventually(t, func() bool {
		select {
		case snap := <-c.Snapshots():
			return snap.BetConfirmed && snap.Balance == 75
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnqueueReportsRemoteError(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	err := f.wait(t, c.Enqueue(game.Command{Kind: game.CommandStand}))
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, server.ErrorCodeCommandRejected, remote.Code)
	assert.Contains(t, remote.Error(), "not accepted")
}

func TestDisconnectFailsCommands(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	nextSnapshot(t, c)

	require.NoError(t, c.Close())
	<-c.Done()

	assert.Eventually(t, func() bool {
		_, ok := <-c.Snapshots()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	err := <-c.Enqueue(game.Command{Kind: game.CommandHit})
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestServerStopClosesClient(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	nextSnapshot(t, c)

	require.NoError(t, f.server.Stop())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the server stopping")
	}
}

func TestDialRejectsBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "://nope", "", log.NewWithOptions(io.Discard, log.Options{}))
	assert.Error(t, err)
}
