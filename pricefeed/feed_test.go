package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tickerServer(t *testing.T, msgs ...string) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFeedRun(t *testing.T) {
	t.Parallel()

	url := tickerServer(t,
		`{"e":"24hrTicker","E":1726000000000,"s":"BTCUSDT","c":"60000.50"}`,
		`not json`,
		`{"e":"24hrTicker","s":"BTCUSDT","c":"abc"}`,
		`{"e":"24hrTicker","s":"BTCUSDT"}`,
		`{"e":"24hrTicker","E":1726000001000,"s":"BTCUSDT","c":"59990"}`,
		`{"e":"24hrTicker","E":1726000002000,"s":"BTCUSDT","c":"60010.25"}`,
	)

	f := New(url, zap.NewNop())
	ticks, unsubscribe := f.Subscribe()
	defer unsubscribe()

	_, ok := f.Latest()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	var got []Tick
	for len(got) < 3 {
		select {
		case tk := <-ticks:
			got = append(got, tk)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d ticks", len(got))
		}
	}

	assert.Equal(t, 60000.50, got[0].Price)
	assert.Equal(t, Flat, got[0].Direction)
	assert.Equal(t, time.UnixMilli(1726000000000), got[0].Time)
	assert.Equal(t, 59990.0, got[1].Price)
	assert.Equal(t, Down, got[1].Direction)
	assert.Equal(t, 60010.25, got[2].Price)
	assert.Equal(t, Up, got[2].Direction)

	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, got[2], latest)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFeedDialError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := New("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	err := f.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricefeed: dial")
}

func TestHandle(t *testing.T) {
	t.Parallel()

	f := New("", nil)
	assert.Equal(t, DefaultURL, f.URL)

	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	tk, err := f.handle([]byte(`{"c":"100"}`), now)
	require.NoError(t, err)
	assert.Equal(t, Tick{Price: 100, Time: now, Direction: Flat}, tk)

	f.publish(tk)
	tk, err = f.handle([]byte(`{"c":"100"}`), now)
	require.NoError(t, err)
	assert.Equal(t, Flat, tk.Direction)

	for _, bad := range []string{`{}`, `{"c":""}`, `{"c":"x"}`, `[`} {
		_, err := f.handle([]byte(bad), now)
		assert.Error(t, err, bad)
	}
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	f := New("", nil)
	ch, unsubscribe := f.Subscribe()

	f.publish(Tick{Price: 1})
	assert.Equal(t, Tick{Price: 1}, <-ch)

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	// publishing with no subscribers still records the tick
	f.publish(Tick{Price: 2})
	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, 2.0, latest.Price)
}

func TestDirectionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "flat", Flat.String())
}
