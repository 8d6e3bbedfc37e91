package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/govee-panel/internal/color"
	"github.com/muurk/govee-panel/internal/relay"
	"github.com/muurk/govee-panel/internal/ui"
)

// Output format flag shared by devices and state
var outputFormat string

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(colorCmd)

	devicesCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	stateCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
}

// devicesCmd lists the registry
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices registered with the relay",
	Long: `List every device the relay knows about, in registry order.

Lights and sockets get a control block in the panel; other device types
are listed here but not shown in the panel.`,
	Example: `  # Table output
  govee-panel devices

  # JSON output for scripting
  govee-panel devices --format json`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	devices, err := env.client.ListDevices(cmd.Context())
	if err != nil {
		return fail(p, "Device list", err)
	}

	switch outputFormat {
	case "json":
		return writeJSON(cmd, devices)
	case "table":
	default:
		return fmt.Errorf("unknown format %q (expected table or json)", outputFormat)
	}

	p.PrintHeader("Devices", "govee-panel devices", []ui.Detail{{Key: "Relay", Value: env.cfg.BaseURL}})
	if len(devices) == 0 {
		p.Println("  No devices registered.")
		return nil
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.ID, d.Name, d.SKU, string(d.Type)})
	}
	p.Newline()
	p.PrintTable([]string{"ID", "NAME", "SKU", "TYPE"}, rows)
	p.Newline()
	return nil
}

// stateCmd fetches one device's state
var stateCmd = &cobra.Command{
	Use:   "state <device-id>",
	Short: "Show the current state of a device",
	Example: `  govee-panel state 9C:A1:D4:AD:FC:B4:65:7A
  govee-panel state 9C:A1:D4:AD:FC:B4:65:7A --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	id := args[0]

	state, err := env.client.GetState(cmd.Context(), id)
	if err != nil {
		return fail(p, "State of "+id, err)
	}

	switch outputFormat {
	case "json":
		return writeJSON(cmd, state)
	case "table":
	default:
		return fmt.Errorf("unknown format %q (expected table or json)", outputFormat)
	}

	p.PrintSuccess("State of "+id, []ui.Detail{
		{Key: "MAC", Value: state.MACAddress},
		{Key: "Power", Value: relay.PowerSegment(state.On)},
		{Key: "Color", Value: describeColor(state.Color)},
	})
	return nil
}

func describeColor(s string) string {
	rgb, err := color.ParseRGBString(s)
	switch {
	case errors.Is(err, color.ErrNoColor):
		return "-"
	case err != nil:
		return "unreadable (" + s + ")"
	default:
		return rgb.Hex() + "  " + rgb.String()
	}
}

// powerCmd switches a device on or off
var powerCmd = &cobra.Command{
	Use:   "power <mac> <on|off>",
	Short: "Switch a device on or off",
	Long: `Send one power command through the relay.

Commands address devices by MAC address, as reported by 'govee-panel state'.`,
	Example: `  govee-panel power 9C:A1:D4:AD:FC:B4:65:7A on`,
	Args:    cobra.ExactArgs(2),
	RunE:    runPower,
}

func runPower(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	mac := args[0]

	on, err := parseOnOff(args[1])
	if err != nil {
		return err
	}

	if err := env.client.SetPower(cmd.Context(), mac, on); err != nil {
		return fail(p, "Power "+relay.PowerSegment(on), err)
	}

	p.PrintSuccess("Power command sent", []ui.Detail{
		{Key: "Device", Value: mac},
		{Key: "Power", Value: relay.PowerSegment(on)},
	})
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid power state %q (expected on or off)", s)
	}
}

// colorCmd sets a light's color
var colorCmd = &cobra.Command{
	Use:   "color <mac> <hex>",
	Short: "Set the color of a light",
	Long: `Send one color command through the relay.

The color is a hex string: #RRGGBB or the #RGB shorthand, with or without
the leading '#'.`,
	Example: `  govee-panel color 9C:A1:D4:AD:FC:B4:65:7A '#ff8800'
  govee-panel color 9C:A1:D4:AD:FC:B4:65:7A 0f0`,
	Args: cobra.ExactArgs(2),
	RunE: runColor,
}

func runColor(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	mac := args[0]

	rgb, err := color.ParseHex(args[1])
	if err != nil {
		return err
	}

	if err := env.client.SetColor(cmd.Context(), mac, rgb); err != nil {
		return fail(p, "Color "+rgb.Hex(), err)
	}

	p.PrintSuccess("Color command sent", []ui.Detail{
		{Key: "Device", Value: mac},
		{Key: "Color", Value: rgb.Hex() + "  " + rgb.String()},
	})
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
