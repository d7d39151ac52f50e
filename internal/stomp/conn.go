package stomp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by operations on a connection that already shut down.
var ErrClosed = errors.New("stomp: connection closed")

// MessageHandler receives the body of a MESSAGE frame for a destination.
type MessageHandler func(body []byte)

// Options tunes a single connection.
type Options struct {
	// HeartBeat is the interval offered for both directions of the
	// STOMP heart-beat negotiation. Zero disables heart-beats.
	HeartBeat time.Duration
	// ConnectTimeout bounds the dial plus CONNECT/CONNECTED handshake.
	ConnectTimeout time.Duration
	// OnError is invoked for broker ERROR frames before the connection
	// is torn down.
	OnError func(message string, body []byte)
	Logger  *zerolog.Logger
}

// Conn is one established STOMP session over a websocket.
type Conn struct {
	ws  *websocket.Conn
	log *zerolog.Logger

	sendEvery  time.Duration
	readWithin time.Duration
	onError    func(message string, body []byte)

	mu       sync.Mutex
	subs     map[string]subscription
	lastRecv time.Time
	closed   bool
}

type subscription struct {
	id      string
	handler MessageHandler
}

// Dial opens the websocket, performs the CONNECT handshake and returns
// a connection ready for Run.
func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("stomp dial: %w", err)
	}
	// Snapshot frames can carry every hand in the room.
	ws.SetReadLimit(1 << 20)

	c := &Conn{
		ws:       ws,
		log:      opts.Logger,
		onError:  opts.OnError,
		subs:     make(map[string]subscription),
		lastRecv: time.Now(),
	}

	beat := "0,0"
	if opts.HeartBeat > 0 {
		ms := strconv.FormatInt(opts.HeartBeat.Milliseconds(), 10)
		beat = ms + "," + ms
	}
	connect := NewFrame(CmdConnect,
		HdrAcceptVersion, "1.2",
		HdrHeartBeat, beat,
	)
	if err := c.writeFrame(ctx, connect); err != nil {
		ws.Close(websocket.StatusInternalError, "connect failed")
		return nil, err
	}

	var connected *Frame
	for connected == nil {
		connected, err = c.readFrame(ctx)
		if err != nil {
			ws.Close(websocket.StatusInternalError, "connect failed")
			return nil, fmt.Errorf("stomp handshake: %w", err)
		}
	}
	switch connected.Command {
	case CmdConnected:
	case CmdError:
		ws.Close(websocket.StatusNormalClosure, "broker error")
		return nil, fmt.Errorf("stomp handshake: broker error: %s", connected.Header(HdrMessage))
	default:
		ws.Close(websocket.StatusProtocolError, "unexpected frame")
		return nil, fmt.Errorf("stomp handshake: unexpected frame %s", connected.Command)
	}

	c.negotiateHeartBeat(opts.HeartBeat, connected.Header(HdrHeartBeat))
	return c, nil
}

// negotiateHeartBeat combines our offer with the server's "sx,sy" reply.
// Either side advertising 0 disables that direction.
func (c *Conn) negotiateHeartBeat(offer time.Duration, server string) {
	sx, sy := parseHeartBeat(server)
	if offer <= 0 {
		return
	}
	if sy > 0 {
		c.sendEvery = maxDuration(offer, sy)
	}
	if sx > 0 {
		// Allow the server a grace factor before declaring it dead.
		c.readWithin = 2 * maxDuration(offer, sx)
	}
}

func parseHeartBeat(v string) (sx, sy time.Duration) {
	a, b, ok := strings.Cut(v, ",")
	if !ok {
		return 0, 0
	}
	x, _ := strconv.Atoi(strings.TrimSpace(a))
	y, _ := strconv.Atoi(strings.TrimSpace(b))
	return time.Duration(x) * time.Millisecond, time.Duration(y) * time.Millisecond
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// Subscribe registers a handler for a destination and tells the broker.
// Re-subscribing to the same destination replaces the handler and sends
// a fresh SUBSCRIBE frame; the broker is trusted to deduplicate.
func (c *Conn) Subscribe(ctx context.Context, destination string, h MessageHandler) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	sub, exists := c.subs[destination]
	if !exists {
		sub = subscription{id: uuid.NewString()}
	}
	sub.handler = h
	c.subs[destination] = sub
	c.mu.Unlock()

	frame := NewFrame(CmdSubscribe,
		HdrID, sub.id,
		HdrDestination, destination,
	)
	return c.writeFrame(ctx, frame)
}

// Send publishes a body to a destination.
func (c *Conn) Send(ctx context.Context, destination, contentType string, body []byte) error {
	frame := NewFrame(CmdSend,
		HdrDestination, destination,
		HdrContentType, contentType,
	)
	frame.Body = body
	return c.writeFrame(ctx, frame)
}

// Run drives the read loop and outgoing heart-beats until the
// connection fails or ctx is cancelled. It always returns a non-nil
// error describing why the session ended.
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- c.readLoop(ctx)
	}()
	go func() {
		errCh <- c.beatLoop(ctx)
	}()

	err := <-errCh
	cancel()
	<-errCh
	c.Close()
	return err
}

func (c *Conn) readLoop(ctx context.Context) error {
	for {
		frame, err := c.readFrame(ctx)
		if err != nil {
			return err
		}
		if frame == nil {
			continue // heart-beat
		}
		switch frame.Command {
		case CmdMessage:
			c.dispatch(frame)
		case CmdError:
			msg := frame.Header(HdrMessage)
			if c.log != nil {
				c.log.Error().Str("message", msg).Msg("broker error frame")
			}
			if c.onError != nil {
				c.onError(msg, frame.Body)
			}
			return fmt.Errorf("stomp: broker error: %s", msg)
		default:
			if c.log != nil {
				c.log.Warn().Str("command", frame.Command).Msg("unexpected stomp frame")
			}
		}
	}
}

func (c *Conn) dispatch(frame *Frame) {
	dest := frame.Header(HdrDestination)
	c.mu.Lock()
	sub, ok := c.subs[dest]
	c.mu.Unlock()
	if !ok || sub.handler == nil {
		if c.log != nil {
			c.log.Debug().Str("destination", dest).Msg("message for unknown subscription")
		}
		return
	}
	sub.handler(frame.Body)
}

func (c *Conn) beatLoop(ctx context.Context) error {
	if c.sendEvery <= 0 && c.readWithin <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	interval := c.sendEvery
	if interval <= 0 {
		interval = c.readWithin / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.readWithin > 0 {
				c.mu.Lock()
				stale := time.Since(c.lastRecv) > c.readWithin
				c.mu.Unlock()
				if stale {
					return errors.New("stomp: heart-beat timeout")
				}
			}
			if c.sendEvery > 0 {
				if err := c.writeRaw(ctx, heartbeat); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Conn) readFrame(ctx context.Context) (*Frame, error) {
	_, raw, err := c.ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.lastRecv = time.Now()
	c.mu.Unlock()

	if IsHeartbeat(raw) {
		return nil, nil
	}
	return Parse(raw)
}

func (c *Conn) writeFrame(ctx context.Context, frame *Frame) error {
	return c.writeRaw(ctx, frame.Marshal())
}

func (c *Conn) writeRaw(ctx context.Context, raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.ws.Write(ctx, websocket.MessageText, raw)
}

// Close sends DISCONNECT best-effort and closes the websocket. Safe to
// call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws := c.ws
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = ws.Write(ctx, websocket.MessageText, NewFrame(CmdDisconnect).Marshal())
	return ws.Close(websocket.StatusNormalClosure, "bye")
}
