// Package ui renders the one-shot output of govee-panel subcommands.
//
// The interactive panel lives in package tui. Everything here prints once
// and returns: a command header, a success or failure box, a device table
// and the doctor checklist. Output goes through a Printer so commands can
// be pointed at a buffer in tests.
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Devices", "govee-panel devices", []ui.Detail{{Key: "Relay", Value: baseURL}})
//	p.PrintTable([]string{"ID", "NAME"}, rows)
//
// Logging is silent unless GOVEE_PANEL_LOG_LEVEL is set, so these boxes
// are the only output by default.
package ui
