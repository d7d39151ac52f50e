// Package client owns the realtime connection to the game broker: the
// connect/reconnect lifecycle, the fixed private subscriptions, the
// per-room subscription, and serialization of outbound intents. All
// inbound traffic is decoded and folded into the shared state store.
package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardi-game/cardi-client/internal/protocol"
	"github.com/cardi-game/cardi-client/internal/session"
	"github.com/cardi-game/cardi-client/internal/state"
	"github.com/cardi-game/cardi-client/internal/stomp"
)

const contentTypeJSON = "application/json"

// transport is the broker session surface the manager drives. Satisfied
// by *stomp.Conn; tests substitute a fake.
type transport interface {
	Subscribe(ctx context.Context, destination string, h stomp.MessageHandler) error
	Send(ctx context.Context, destination, contentType string, body []byte) error
	Run(ctx context.Context) error
	Close() error
}

// Dialer opens one broker session. onError receives broker ERROR frames.
type Dialer func(ctx context.Context, onError func(message string, body []byte)) (transport, error)

// Notice surfaces a user-visible message outside the game state, for
// example broker errors. Fatal notices indicate the session is unusable.
type Notice func(fatal bool, message string)

// Config tunes the connection lifecycle.
type Config struct {
	ServerURL      string
	ReconnectDelay time.Duration
	HeartBeat      time.Duration
	ConnectTimeout time.Duration
}

// Manager is the connection session manager. It holds at most one live
// broker session and reconnects on a fixed delay after unexpected
// drops. Reconnecting retries the connection only; intents lost while
// offline are never replayed.
type Manager struct {
	cfg      Config
	log      *zerolog.Logger
	store    *state.Store
	sessions session.Store
	dial     Dialer
	notify   Notice

	mu          sync.Mutex
	conn        transport
	onConnected func()
	cancel      context.CancelFunc
	running     bool
}

// NewManager wires a manager over the real STOMP transport. notify and
// sessions may be nil.
func NewManager(cfg Config, logger *zerolog.Logger, store *state.Store, sessions session.Store, notify Notice) *Manager {
	m := &Manager{
		cfg:      cfg,
		log:      logger,
		store:    store,
		sessions: sessions,
		notify:   notify,
	}
	m.dial = func(ctx context.Context, onError func(string, []byte)) (transport, error) {
		return stomp.Dial(ctx, cfg.ServerURL, stomp.Options{
			HeartBeat:      cfg.HeartBeat,
			ConnectTimeout: cfg.ConnectTimeout,
			OnError:        onError,
			Logger:         logger,
		})
	}
	return m
}

// Connect establishes the broker session. Idempotent: when already
// connected the callback runs immediately; otherwise it is stored and
// fired exactly once on the next successful connection. A nil callback
// is allowed.
func (m *Manager) Connect(onConnected func()) {
	m.mu.Lock()
	if m.store.Status() == state.StatusConnected {
		m.mu.Unlock()
		if onConnected != nil {
			onConnected()
		}
		return
	}
	if onConnected != nil {
		m.onConnected = onConnected
	}
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	m.store.SetStatus(state.StatusConnecting)
	go m.run(ctx)
}

// Disconnect deactivates the transport and stops reconnecting.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel := m.cancel
	conn := m.conn
	m.cancel = nil
	m.conn = nil
	m.running = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	m.store.SetStatus(state.StatusDisconnected)
}

// run dials, serves one session until it drops, then retries after the
// fixed delay. No backoff, no retry cap.
func (m *Manager) run(ctx context.Context) {
	for {
		conn, err := m.dial(ctx, m.onBrokerError)
		if err != nil {
			m.log.Warn().Err(err).Msg("broker connect failed")
			m.store.SetStatus(state.StatusDisconnected)
			if !m.sleep(ctx) {
				return
			}
			m.store.SetStatus(state.StatusConnecting)
			continue
		}

		m.mu.Lock()
		m.conn = conn
		m.mu.Unlock()
		m.handleConnected(ctx)

		err = conn.Run(ctx)
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if m.store.Status() != state.StatusError {
			m.store.SetStatus(state.StatusDisconnected)
		}
		m.log.Warn().Err(err).Msg("broker session ended, reconnecting")
		if !m.sleep(ctx) {
			return
		}
		m.store.SetStatus(state.StatusConnecting)
	}
}

func (m *Manager) sleep(ctx context.Context) bool {
	delay := m.cfg.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// handleConnected re-establishes the fixed private subscriptions, fires
// the stored one-shot callback, and re-announces presence when a known
// room is being rejoined.
func (m *Manager) handleConnected(ctx context.Context) {
	m.store.SetStatus(state.StatusConnected)
	m.log.Info().Msg("broker connected")

	m.subscribe(ctx, protocol.DestUserErrors, m.onErrorQueue)
	m.subscribe(ctx, protocol.DestUserRoomUpdates, m.onRoomUpdate)

	m.mu.Lock()
	cb := m.onConnected
	m.onConnected = nil
	m.mu.Unlock()
	if cb != nil {
		cb()
	}

	// Restore presence in a room this session already belongs to.
	roomCode := m.store.RoomCode()
	playerID := m.store.PlayerID()
	if roomCode != "" && playerID != "" {
		m.Send(protocol.DestRoomRejoin, protocol.RejoinRoomIntent{
			RoomCode: roomCode,
			PlayerID: playerID,
		})
		m.SubscribeToRoom(roomCode)
	}
}

func (m *Manager) subscribe(ctx context.Context, destination string, h stomp.MessageHandler) {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Subscribe(ctx, destination, h); err != nil {
		m.log.Warn().Err(err).Str("destination", destination).Msg("subscribe failed")
	}
}

// SubscribeToRoom attaches the handler for a room's broadcast channel.
// Must be called after every successful (re)connect since subscriptions
// do not survive a transport disconnect. Repeat calls send a fresh
// SUBSCRIBE; the broker is trusted to keep one subscription per client.
func (m *Manager) SubscribeToRoom(roomCode string) {
	if roomCode == "" {
		return
	}
	m.subscribe(context.Background(), protocol.RoomTopic(roomCode), m.onRoomMessage)
	m.log.Debug().Str("room", roomCode).Msg("subscribed to room")
}

// Send serializes body and publishes it. When not connected the intent
// is dropped with a diagnostic: there is no queueing or retry, and a
// lost intent surfaces through the next snapshot not reflecting it.
func (m *Manager) Send(destination string, body any) {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil || m.store.Status() != state.StatusConnected {
		m.log.Debug().Str("destination", destination).Msg("not connected, dropping intent")
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		m.log.Error().Err(err).Str("destination", destination).Msg("marshal intent")
		return
	}
	if err := conn.Send(context.Background(), destination, contentTypeJSON, raw); err != nil {
		m.log.Warn().Err(err).Str("destination", destination).Msg("send intent")
	}
}

// onBrokerError handles protocol-level ERROR frames: the session is
// considered dead and the message is surfaced as fatal.
func (m *Manager) onBrokerError(message string, body []byte) {
	m.log.Error().Str("message", message).Bytes("body", body).Msg("broker reported error")
	m.store.SetStatus(state.StatusError)
	if m.notify != nil {
		m.notify(true, message)
	}
}

// onErrorQueue surfaces application errors from the private queue.
// They are never swallowed and never retried.
func (m *Manager) onErrorQueue(body []byte) {
	message := string(body)
	if msg, err := protocol.Decode(body); err == nil && msg.Err != nil {
		message = msg.Err.Message
	}
	m.log.Warn().Str("message", message).Msg("server error")
	if m.notify != nil {
		m.notify(false, message)
	}
}

// onRoomUpdate handles the private room-update queue. This is how the
// create and join flows learn the assigned room and player identifier:
// the snapshot is stored, the caller's player entry is resolved by
// username, and the room's broadcast channel is subscribed.
func (m *Manager) onRoomUpdate(body []byte) {
	msg, err := protocol.Decode(body)
	if err != nil {
		m.log.Warn().Err(err).Msg("decode room update")
		return
	}
	if msg.Snapshot == nil {
		m.log.Debug().Str("type", string(msg.Type)).Msg("room update without snapshot")
		return
	}

	m.store.ApplySnapshot(msg.Snapshot)
	if me := msg.Snapshot.PlayerByUsername(m.store.Username()); me != nil {
		m.store.SetPlayerID(me.ID)
	}
	m.persistSession()
	m.SubscribeToRoom(msg.Snapshot.RoomCode)
}

// onRoomMessage handles the room broadcast channel: snapshots replace
// state wholesale, events only narrate.
func (m *Manager) onRoomMessage(body []byte) {
	msg, err := protocol.Decode(body)
	if err != nil {
		m.log.Warn().Err(err).Msg("decode room message")
		return
	}
	if msg.Snapshot != nil {
		m.store.ApplySnapshot(msg.Snapshot)
		return
	}
	m.store.ApplyEvent(msg)
}

func (m *Manager) persistSession() {
	if m.sessions == nil {
		return
	}
	id := session.Identity{
		Username: m.store.Username(),
		PlayerID: m.store.PlayerID(),
		RoomCode: m.store.RoomCode(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.sessions.Save(ctx, id); err != nil {
		m.log.Warn().Err(err).Msg("persist session identity")
	}
}
