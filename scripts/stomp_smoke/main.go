// Command stomp_smoke connects to a Cardi broker, creates a room, and
// prints everything pushed back. Useful for checking a server deploy
// without the full client.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardi-game/cardi-client/internal/protocol"
	"github.com/cardi-game/cardi-client/internal/stomp"
)

func main() {
	if err := run(); err != nil {
		log.Printf("stomp_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "broker websocket address")
	user := flag.String("user", "smoke-test", "username to create the room with")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := stomp.Dial(ctx, *addr, stomp.Options{
		HeartBeat:      4 * time.Second,
		ConnectTimeout: 10 * time.Second,
		OnError: func(message string, body []byte) {
			log.Printf("broker error: %s %s", message, body)
		},
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	dump := func(label string) stomp.MessageHandler {
		return func(body []byte) {
			fmt.Printf("[%s] %s\n", label, body)
		}
	}
	if err := conn.Subscribe(ctx, protocol.DestUserErrors, dump("error")); err != nil {
		return err
	}
	if err := conn.Subscribe(ctx, protocol.DestUserRoomUpdates, func(body []byte) {
		fmt.Printf("[room-update] %s\n", body)
		msg, err := protocol.Decode(body)
		if err != nil || msg.Snapshot == nil {
			return
		}
		if err := conn.Subscribe(ctx, protocol.RoomTopic(msg.Snapshot.RoomCode), dump("broadcast")); err != nil {
			log.Printf("subscribe room: %v", err)
		}
	}); err != nil {
		return err
	}

	body, err := json.Marshal(protocol.CreateRoomIntent{Username: *user})
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, protocol.DestRoomCreate, "application/json", body); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s, waiting for updates. Ctrl+C to exit.\n", *addr, *user)
	return conn.Run(ctx)
}
