package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardi-game/cardi-client/internal/client"
	"github.com/cardi-game/cardi-client/internal/game"
	"github.com/cardi-game/cardi-client/internal/log"
	"github.com/cardi-game/cardi-client/internal/session"
	"github.com/cardi-game/cardi-client/internal/state"
)

func newPlayCmd() *cobra.Command {
	var username string
	var joinCode string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect and play interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(cfg.LogLevel)

			sessions, err := session.NewSQLite(cfg.SessionDBPath)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer sessions.Close()

			store := state.NewStore(logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			saved, err := sessions.Load(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("load saved session")
			}
			if username == "" {
				username = saved.Username
			}
			if username == "" {
				username = prompt("Username: ")
			}
			if username == "" {
				return errors.New("a username is required")
			}
			store.SetUsername(username)
			if saved.PlayerID != "" {
				store.SetPlayerID(saved.PlayerID)
			}

			notify := func(fatal bool, message string) {
				if fatal {
					fmt.Printf("\n!! connection error: %s\n> ", message)
					return
				}
				fmt.Printf("\n!! server: %s\n> ", message)
			}

			mgr := client.NewManager(client.Config{
				ServerURL:      cfg.ServerURL,
				ReconnectDelay: cfg.ReconnectDelay,
				HeartBeat:      cfg.HeartBeat,
				ConnectTimeout: cfg.ConnectTimeout,
			}, logger, store, sessions, notify)
			defer mgr.Disconnect()

			mgr.Connect(func() {
				switch {
				case saved.RoomCode != "" && saved.PlayerID != "":
					fmt.Printf("Rejoining room %s...\n", saved.RoomCode)
					mgr.RejoinRoom(saved.RoomCode, saved.PlayerID)
					mgr.SubscribeToRoom(saved.RoomCode)
				case joinCode != "":
					fmt.Printf("Joining room %s...\n", joinCode)
					mgr.JoinRoom(joinCode)
				default:
					fmt.Println("Creating a new room...")
					mgr.CreateRoom()
				}
			})

			render := newRenderer(store, cfg.MessageWindow)
			go render.watch(ctx)

			repl(ctx, mgr, store, render)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "display name (defaults to the saved session)")
	cmd.Flags().StringVarP(&joinCode, "join", "j", "", "room code to join instead of creating a room")
	return cmd
}

func prompt(label string) string {
	fmt.Print(label)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

// repl reads user commands until quit or ctx cancellation.
func repl(ctx context.Context, mgr *client.Manager, store *state.Store, render *renderer) {
	fmt.Println(`Commands: table, hand, select <n>, play, suit <name>, draw, pass, cardi, start, leave, quit`)
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "table", "t":
			render.table()
		case "hand", "h":
			render.hand()
		case "select", "s":
			if len(args) != 1 {
				fmt.Println("usage: select <card number>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Println("usage: select <card number>")
				continue
			}
			selectCard(store, n)
			render.hand()
			if store.SuitPromptOpen() {
				fmt.Printf("You selected an Ace. Choose a suit with: suit <%s>\n", strings.Join(game.Suits, "|"))
			}
		case "play", "p":
			submit(mgr, "")
		case "suit":
			if len(args) != 1 {
				fmt.Println("usage: suit <Hearts|Diamonds|Clubs|Spades>")
				continue
			}
			submit(mgr, normalizeSuit(args[0]))
		case "draw", "d":
			mgr.Draw()
		case "pass":
			mgr.Pass()
		case "cardi":
			mgr.CallCardi()
		case "start":
			mgr.StartGame()
		case "leave":
			mgr.Leave()
			fmt.Println("Left the room.")
			return
		case "quit", "q", "exit":
			return
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func selectCard(store *state.Store, n int) {
	me := store.MyPlayer()
	if me == nil {
		fmt.Println("No hand yet.")
		return
	}
	if n < 1 || n > len(me.Hand) {
		fmt.Printf("card number must be 1..%d\n", len(me.Hand))
		return
	}
	store.ToggleCard(me.Hand[n-1])
}

func submit(mgr *client.Manager, suit string) {
	err := mgr.SubmitPlay(suit)
	switch {
	case err == nil:
		fmt.Println("Play sent.")
	case errors.Is(err, state.ErrSuitRequired):
		fmt.Println("Choose a suit first: suit <Hearts|Diamonds|Clubs|Spades>")
	case errors.Is(err, state.ErrNothingSelected):
		fmt.Println("Select cards first: select <n>")
	default:
		fmt.Printf("Cannot play yet: %v\n", err)
	}
}

func normalizeSuit(s string) string {
	switch strings.ToLower(s) {
	case "hearts", "h":
		return "Hearts"
	case "diamonds", "d":
		return "Diamonds"
	case "clubs", "c":
		return "Clubs"
	case "spades", "s":
		return "Spades"
	}
	return s
}
