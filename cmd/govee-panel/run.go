package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/credential"
	"github.com/muurk/govee-panel/internal/feed"
	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/panel"
	"github.com/muurk/govee-panel/internal/relay"
	"github.com/muurk/govee-panel/internal/tui"
	"github.com/muurk/govee-panel/internal/ui"
	"github.com/muurk/govee-panel/internal/urls"
	"github.com/muurk/govee-panel/internal/version"
)

var (
	feedAddr       string
	allowedOrigins []string
)

func init() {
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(doctorCmd)

	serveCmd.Flags().StringVar(&feedAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8765)")
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "allow-origin", nil, "Origins allowed on /ws, e.g. chrome-extension://<id> (\"*\" for any)")
}

// panelCmd is the explicit form of running with no subcommand
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive panel",
	Args:  cobra.NoArgs,
	RunE:  runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	return tui.Run(cmd.Context(), newSession())
}

// watchCmd prints panel events without the TUI
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print device state changes as they are polled",
	Long: `Load the panel without the interactive UI and print one line per event.

In oneshot mode the command exits once every device has reported its state
or failed. In interval mode it runs until interrupted.`,
	Example: `  govee-panel watch --mode oneshot
  govee-panel watch --interval 10s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := ui.NewPrinter(cmd.OutOrStdout())

	session := newSession()
	defer session.Close()

	events, unsubscribe := session.Store.Subscribe(256)
	defer unsubscribe()

	p.PrintHeader("Watch", "govee-panel watch", []ui.Detail{
		{Key: "Relay", Value: env.cfg.BaseURL},
		{Key: "Mode", Value: session.Poller.Mode.String()},
		{Key: "Interval", Value: session.Poller.Interval.String()},
	})

	if err := session.Load(ctx); err != nil {
		return fail(p, "Device list", err)
	}
	if len(session.Store.IDs()) == 0 {
		p.Println("  No lights or sockets to watch.")
		return nil
	}

	oneShot := session.Poller.Mode == panel.ModeOneShot
	check := time.NewTicker(500 * time.Millisecond)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if line := formatEvent(session, ev); line != "" {
				p.Println(line)
			}
		case <-check.C:
		}

		if oneShot && allReported(session.Store) {
			return nil
		}
	}
}

// allReported is true once every record has a state or a poll failure
func allReported(store *panel.Store) bool {
	for _, rec := range store.Records() {
		if rec.LastPoll.IsZero() && rec.LastError == nil {
			return false
		}
	}
	return true
}

func formatEvent(session *panel.Session, ev panel.Event) string {
	name := ev.DeviceID
	if b, ok := session.Renderer.Block(ev.DeviceID); ok {
		name = b.Name
	}
	ts := ev.Time.Format("15:04:05")

	switch ev.Type {
	case panel.EventStateUpdated, panel.EventCommandSent:
		st := ev.Record.State
		if st == nil {
			return ""
		}
		colorText := ""
		if st.Color != nil {
			colorText = st.Color.Hex()
		}
		return fmt.Sprintf("%s  %-13s %-24s %-3s %s", ts, ev.Type, name, relay.PowerSegment(st.IsOn), colorText)

	case panel.EventPollFailed, panel.EventCommandFailed:
		return fmt.Sprintf("%s  %-13s %-24s %s", ts, ev.Type, name, relay.ShortMessage(ev.Err))

	case panel.EventRendered:
		return fmt.Sprintf("%s  %-13s %d devices", ts, ev.Type, len(session.Store.IDs()))

	default:
		return ""
	}
}

// serveCmd runs the local feed
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the panel over WebSocket for browser front-ends",
	Long: `Load the panel and serve it on a local address.

  GET /ws        WebSocket: snapshot on connect, then every panel event;
                 accepts power, color and poll actions
  GET /devices   JSON snapshot of the panel
  GET /healthz   liveness probe

A registry failure does not stop the server; it is reported in the snapshot.`,
	Example: `  govee-panel serve
  govee-panel serve --addr 127.0.0.1:9000 --allow-origin chrome-extension://abcdef`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := ui.NewPrinter(cmd.OutOrStdout())

	addr := env.cfg.Feed.Addr
	if feedAddr != "" {
		addr = feedAddr
	}

	session := newSession()
	defer session.Close()

	if err := session.Load(ctx); err != nil {
		logging.Warn("Starting feed without devices", zap.Error(err))
		p.PrintError("Device list", errors.New(relay.ShortMessage(err)), troubleshooting(err))
	}

	p.PrintHeader("Feed", "govee-panel serve", []ui.Detail{
		{Key: "Listen", Value: addr},
		{Key: "Relay", Value: env.cfg.BaseURL},
		{Key: "Devices", Value: fmt.Sprint(len(session.Store.IDs()))},
	})

	server := feed.New(session, feed.Config{Addr: addr, AllowedOrigins: allowedOrigins})
	return server.Run(ctx)
}

// doctorCmd checks configuration, storage and relay access
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, key storage and relay access",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := ui.NewPrinter(cmd.OutOrStdout())

	p.PrintHeader("Doctor", "govee-panel doctor", []ui.Detail{
		{Key: "Version", Value: version.Full()},
		{Key: "Config", Value: env.configPath},
		{Key: "Storage", Value: env.storePath},
		{Key: "Relay", Value: env.cfg.BaseURL},
	})
	p.Newline()

	var checks []ui.Check

	if env.configFound {
		checks = append(checks, ui.Check{Name: "Config file", Status: ui.CheckPass})
	} else {
		checks = append(checks, ui.Check{Name: "Config file", Status: ui.CheckSkip, Message: "using defaults"})
	}

	key, err := env.creds.Read()
	switch {
	case err == nil && key != "":
		checks = append(checks, ui.Check{Name: "API key stored", Status: ui.CheckPass, Message: maskKey(key)})
	case err == nil, errors.Is(err, credential.ErrNotFound):
		checks = append(checks, ui.Check{Name: "API key stored", Status: ui.CheckWarn, Message: "not set"})
	default:
		checks = append(checks, ui.Check{Name: "API key stored", Status: ui.CheckFail, Message: err.Error()})
	}

	pingErr := env.client.Ping(ctx)
	switch {
	case pingErr == nil:
		checks = append(checks, ui.Check{Name: "Relay accepts key", Status: ui.CheckPass})
	default:
		checks = append(checks, ui.Check{Name: "Relay accepts key", Status: ui.CheckFail, Message: relay.ShortMessage(pingErr)})
	}

	if pingErr != nil {
		checks = append(checks, ui.Check{Name: "Device registry", Status: ui.CheckSkip})
	} else if devices, err := env.client.ListDevices(ctx); err != nil {
		checks = append(checks, ui.Check{Name: "Device registry", Status: ui.CheckFail, Message: relay.ShortMessage(err)})
	} else {
		shown := 0
		for _, d := range devices {
			if d.Type != relay.TypeOther {
				shown++
			}
		}
		checks = append(checks, ui.Check{
			Name:    "Device registry",
			Status:  ui.CheckPass,
			Message: fmt.Sprintf("%d devices, %d with controls", len(devices), shown),
		})
	}

	p.PrintChecklist(checks)
	p.Newline()

	if ui.Failed(checks) {
		if pingErr != nil {
			for _, tip := range troubleshooting(pingErr) {
				p.Println("  • " + tip)
			}
		}
		p.Println("  If the checks keep failing, report it at " + urls.Issues)
		return errReported
	}
	return nil
}
