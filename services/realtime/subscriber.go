package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/websocket"

	"github.com/astravon/portal/core"
)

// Subscriber keeps a WebSocket connection to a Hub open, reconnecting with exponential
// backoff, and dispatches received events to the registered handlers.
// Connection errors are logged, never returned.
type Subscriber struct {
	url    string
	origin string
	logger core.Logger

	mu        sync.Mutex
	handlers  map[string][]func()
	onConnect []func()
	conn      *websocket.Conn
	cancel    context.CancelFunc
	done      chan struct{}

	newBackOff func() *backoff.ExponentialBackOff // mockable
}

func NewSubscriber(url, origin string, logger core.Logger) *Subscriber {
	return &Subscriber{
		url:        url,
		origin:     origin,
		logger:     logger,
		handlers:   make(map[string][]func()),
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	return b
}

// On registers handler for event. Handlers run on the receive goroutine.
func (s *Subscriber) On(event string, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

// OnConnect registers fn to run after every successful (re)connection.
func (s *Subscriber) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, fn)
}

// Start connects in the background until ctx is cancelled or Close is called.
func (s *Subscriber) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Close releases the connection and waits for the receive loop to stop.
func (s *Subscriber) Close() {
	s.mu.Lock()
	cancel, done, conn := s.cancel, s.done, s.conn
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		if err := conn.Close(); err != nil {
			s.logger.Debug(fmt.Sprintf("realtime: closing connection: %v", err))
		}
	}
	<-done
}

func (s *Subscriber) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	b := s.newBackOff()

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := b.NextBackOff()
			s.logger.Warn(fmt.Sprintf("realtime: connecting to %s: %v (retrying in %s)", s.url, err, wait))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		b.Reset()

		s.receive(ctx, conn)
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	cfg, err := websocket.NewConfig(s.url, s.origin)
	if err != nil {
		return nil, err
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return nil, ctx.Err()
	}
	s.conn = conn
	hooks := append([]func(){}, s.onConnect...)
	s.mu.Unlock()

	s.logger.Debug(fmt.Sprintf("realtime: connected to %s", s.url))
	for _, fn := range hooks {
		fn()
	}
	return conn, nil
}

func (s *Subscriber) receive(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		var frame Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if ctx.Err() == nil {
				s.logger.Warn(fmt.Sprintf("realtime: connection lost: %v", err))
			}
			return
		}
		s.dispatch(frame.Type)
	}
}

func (s *Subscriber) dispatch(event string) {
	s.mu.Lock()
	handlers := append([]func(){}, s.handlers[event]...)
	s.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}
