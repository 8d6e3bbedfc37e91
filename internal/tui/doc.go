// Package tui is the terminal front-end of the device panel.
//
// It renders the cards held by a panel.Session and turns key presses into
// the same control edits a browser panel would make. The model never talks
// to the relay itself: power and color edits go through Session.Toggle and
// Session.SetColor inside tea.Cmds, and state changes come back as
// panel.Events that simply trigger a redraw.
//
// # Screen
//
//	┌ GOVEE PANEL v0.3.0 ──────────────────── github.com/muurk/govee-panel ┐
//	│ API key  ••••••••••••                                                │
//	│ ╭──────────────────────────────────────────────────────╮            │
//	│ │ 💡 Desk lamp  H6008                                  │            │
//	│ │ [● ON ]  ████ #FF0000                                │            │
//	│ ╰──────────────────────────────────────────────────────╯            │
//	│ space power • c color • r refresh state • k api key • ? help • q quit │
//	└──────────────────────────────────────────────────────────────────────┘
//
// A registry failure replaces the cards with an error box and a
// troubleshooting hint. Saving a new key from that state reloads the list.
//
// # Usage
//
//	session := panel.NewSession(creds, client, panel.Options{Mode: panel.ModeInterval})
//	if err := tui.Run(ctx, session); err != nil {
//	    return err
//	}
package tui
