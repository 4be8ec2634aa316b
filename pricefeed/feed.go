// Package pricefeed follows the live BTC/USDT ticker so the journal can show
// a reference price next to the trades.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultURL is the Binance 24h ticker stream for BTCUSDT.
const DefaultURL = "wss://stream.binance.com:9443/ws/btcusdt@ticker"

type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

type Tick struct {
	Price     float64
	Time      time.Time
	Direction Direction
}

// tickerMsg is the subset of the Binance ticker event we read.
type tickerMsg struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Last      string `json:"c"`
}

type Feed struct {
	URL    string
	Dialer *websocket.Dialer

	log *zap.Logger

	mu     sync.RWMutex
	latest Tick
	have   bool
	subs   map[int]chan Tick
	next   int
}

func New(url string, log *zap.Logger) *Feed {
	if url == "" {
		url = DefaultURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{URL: url, log: log, subs: make(map[int]chan Tick)}
}

// Run reads ticks until ctx is done or the connection fails. A cancelled
// context is reported as ctx.Err().
func (f *Feed) Run(ctx context.Context) error {
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("pricefeed: dial %s: %w", f.URL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	f.log.Info("price feed connected", zap.String("url", f.URL))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("pricefeed: read: %w", err)
		}

		tick, err := f.handle(data, time.Now())
		if err != nil {
			f.log.Warn("skipping price message", zap.Error(err), zap.String("msg", trimForErr(string(data))))
			continue
		}
		f.publish(tick)
	}
}

// handle decodes one message and derives the direction from the previous
// price. It does not record the tick.
func (f *Feed) handle(data []byte, now time.Time) (Tick, error) {
	var msg tickerMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return Tick{}, fmt.Errorf("bad json: %w", err)
	}
	if strings.TrimSpace(msg.Last) == "" {
		return Tick{}, errors.New("no last price")
	}
	price, err := strconv.ParseFloat(msg.Last, 64)
	if err != nil {
		return Tick{}, fmt.Errorf("bad price %q: %w", msg.Last, err)
	}

	t := now
	if msg.EventTime > 0 {
		t = time.UnixMilli(msg.EventTime)
	}

	tick := Tick{Price: price, Time: t}
	if prev, ok := f.Latest(); ok {
		switch {
		case price > prev.Price:
			tick.Direction = Up
		case price < prev.Price:
			tick.Direction = Down
		}
	}
	return tick, nil
}

func (f *Feed) publish(t Tick) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = t
	f.have = true
	for _, ch := range f.subs {
		// slow subscribers miss ticks
		select {
		case ch <- t:
		default:
		}
	}
}

// Latest returns the most recent tick, if any arrived.
func (f *Feed) Latest() (Tick, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.have
}

// Subscribe returns a channel receiving every tick published after the call
// and a func that unsubscribes and closes the channel.
func (f *Feed) Subscribe() (<-chan Tick, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Tick, 16)
	n := f.next
	f.next++
	f.subs[n] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, n)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func trimForErr(s string) string {
	const n = 200
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
