package wcf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ferrygo/wcfhttp/internal/metrics"
)

// queueDepth bounds the inbound message buffer. The sidecar keeps pushing
// while the forwarder drains; a full buffer drops the newest message.
const queueDepth = 1024

// frame is the wire unit exchanged with the sidecar over the websocket.
// "call" frames carry an operation request, "reply" frames its response
// (correlated by id), and "message" frames push one inbound Message.
type frame struct {
	Kind  string          `json:"kind"`
	Id    string          `json:"id,omitempty"`
	Op    string          `json:"op,omitempty"`
	Args  any             `json:"args,omitempty"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is a websocket connection to the engine sidecar. It implements both
// Client (request/response operations) and Source (the pushed message queue).
type Conn struct {
	ws  *websocket.Conn
	log *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan frame

	queue     chan *Message
	receiving atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to the sidecar at url (ws:// or wss://) and starts the
// read loop.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial wcf sidecar %s: %w", url, err)
	}
	c := &Conn{
		ws:      ws,
		log:     logger,
		pending: make(map[string]chan frame),
		queue:   make(chan *Message, queueDepth),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close tears down the connection. In-flight calls fail, Receiving flips
// to false and the forwarder loop winds down on its next iteration.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.receiving.Store(false)
		close(c.closed)
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer c.Close()
	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			select {
			case <-c.closed:
			default:
				c.log.Error("wcf connection lost", "err", err)
			}
			return
		}
		switch f.Kind {
		case "reply":
			c.mu.Lock()
			ch := c.pending[f.Id]
			delete(c.pending, f.Id)
			c.mu.Unlock()
			if ch != nil {
				ch <- f
			}
		case "message":
			var m Message
			if err := json.Unmarshal(f.Data, &m); err != nil {
				c.log.Error("undecodable message frame", "err", err)
				continue
			}
			select {
			case c.queue <- &m:
				metrics.SourceQueueUtilization.Set(float64(len(c.queue)) / float64(cap(c.queue)))
			default:
				metrics.SourceQueueDropped.Inc()
				c.log.Warn("message queue full, dropping", "id", m.Id)
			}
		default:
			c.log.Warn("unknown frame kind", "kind", f.Kind)
		}
	}
}

// call performs one request/response round trip.
func (c *Conn) call(ctx context.Context, op string, args, out any) error {
	id := uuid.NewString()
	ch := make(chan frame, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.ws.WriteJSON(frame{Kind: "call", Id: id, Op: op, Args: args})
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	select {
	case f := <-ch:
		if f.Error != "" {
			return fmt.Errorf("%s: %s", op, f.Error)
		}
		if out != nil && len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, out); err != nil {
				return fmt.Errorf("%s: decode reply: %w", op, err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return errors.New("wcf: connection closed")
	}
}

// Receiving implements Source.
func (c *Conn) Receiving() bool {
	select {
	case <-c.closed:
		return false
	default:
		return c.receiving.Load()
	}
}

// Next implements Source. A closed connection reads as an empty poll; the
// caller observes the shutdown through Receiving on its next iteration.
func (c *Conn) Next(timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case m := <-c.queue:
		metrics.SourceQueueUtilization.Set(float64(len(c.queue)) / float64(cap(c.queue)))
		return m, nil
	case <-timer.C:
		return nil, ErrNoMessage
	case <-c.closed:
		return nil, ErrNoMessage
	}
}

// EnableReceiving implements Source. One-time activation handshake.
func (c *Conn) EnableReceiving(pyq bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	args := struct {
		Pyq bool `json:"pyq"`
	}{pyq}
	if err := c.call(ctx, "enable_receiving", args, nil); err != nil {
		return err
	}
	c.receiving.Store(true)
	return nil
}
