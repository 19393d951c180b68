package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// Event is one message received on the realtime channel
type Event struct {
	Time time.Time       `json:"time"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type watchOptions struct {
	clickEvery time.Duration
	buy        []string
	skip       []string
	count      int
	duration   time.Duration
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Attach to the realtime channel as a player",
		Long: `Connect to the server's websocket as the remembered player (or a new one)
and print events as they arrive.

A server-assigned id is saved to the id file so later runs resume the same
player. Optionally click on an interval and buy upgrades once connected.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if opts.duration > 0 {
				var stop context.CancelFunc
				ctx, stop = context.WithTimeout(ctx, opts.duration)
				defer stop()
			}
			return watch(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.clickEvery, "click-every", 0, "Send a click on this interval (0 disables)")
	cmd.Flags().StringSliceVar(&opts.buy, "buy", nil, "Upgrade ids to buy once connected")
	cmd.Flags().StringSliceVar(&opts.skip, "skip", []string{"updateAll"}, "Event types not to print")
	cmd.Flags().IntVar(&opts.count, "count", 0, "Exit after printing this many events (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Exit after this long (0 runs until interrupted)")

	return cmd
}

func watch(ctx context.Context, w io.Writer, opts watchOptions) error {
	u, err := client.WebsocketURL(cfg.PlayerID)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output, w)
	if cfg.Verbose {
		out.PrintMessage("Connected to " + u)
	}

	events := make(chan Event)
	readErr := make(chan error, 1)
	go func() {
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				readErr <- err
				return
			}
			ev.Time = time.Now()
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var clicks <-chan time.Time
	if opts.clickEvery > 0 {
		ticker := time.NewTicker(opts.clickEvery)
		defer ticker.Stop()
		clicks = ticker.C
	}

	printed := 0
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case <-clicks:
			if err := send(conn, "click", nil); err != nil {
				return err
			}

		case ev := <-events:
			switch ev.Type {
			case "assignId":
				var id string
				if err := json.Unmarshal(ev.Data, &id); err == nil {
					if err := cfg.SavePlayerID(id); err != nil {
						out.PrintError(fmt.Errorf("failed to save player id: %w", err))
					}
				}
			case "init":
				for _, upgrade := range opts.buy {
					if err := send(conn, "buyUpgrade", upgrade); err != nil {
						return err
					}
				}
			}

			if slices.Contains(opts.skip, ev.Type) {
				continue
			}
			out.Print(ev)
			printed++
			if opts.count > 0 && printed >= opts.count {
				return nil
			}
		}
	}
}

func send(conn *websocket.Conn, event string, data any) error {
	msg := map[string]any{"type": event}
	if data != nil {
		msg["data"] = data
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}
