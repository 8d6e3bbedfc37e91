package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestClampWidth(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinTerminalWidth},
		{40, MinTerminalWidth},
		{80, 80},
		{200, MaxContentWidth},
	}
	for _, tt := range tests {
		if got := clampWidth(tt.in); got != tt.want {
			t.Errorf("clampWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader("devices", "govee-panel devices", []Detail{{Key: "Relay", Value: "https://relay"}}, 80)

	for _, want := range []string{"DEVICES", "govee-panel devices", "Relay:", "https://relay"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderSuccessBox_KeepsDetailOrder(t *testing.T) {
	out := RenderSuccessBox("Power", []Detail{{Key: "Device", Value: "A"}, {Key: "State", Value: "on"}}, 80)

	if !strings.Contains(out, "SUCCESS") {
		t.Error("success box missing title")
	}
	if strings.Index(out, "Device:") > strings.Index(out, "State:") {
		t.Error("details rendered out of order")
	}
}

func TestRenderErrorBox(t *testing.T) {
	out := RenderErrorBox("Devices", errors.New("relay offline"), []string{"Check your network"}, 80)

	for _, want := range []string{"FAILED", "relay offline", "Troubleshooting:", "Check your network"} {
		if !strings.Contains(out, want) {
			t.Errorf("error box missing %q", want)
		}
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"ID", "NAME"}, [][]string{
		{"A", "Desk lamp"},
		{"LONGER-ID", "Heater"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	col := strings.Index(lines[0], "NAME")
	if strings.Index(lines[1], "Desk lamp") != col || strings.Index(lines[2], "Heater") != col {
		t.Errorf("columns not aligned:\n%s", out)
	}
}

func TestRenderChecklist(t *testing.T) {
	checks := []Check{
		{Name: "Config file", Status: CheckPass},
		{Name: "Relay reachable", Status: CheckFail, Message: "timeout"},
	}
	out := RenderChecklist(checks)

	for _, want := range []string{"[1/2] ", "[2/2] ", PassMarker, FailMarker, "(timeout)"} {
		if !strings.Contains(out, want) {
			t.Errorf("checklist missing %q", want)
		}
	}
	if !Failed(checks) {
		t.Error("Failed() = false, want true")
	}
	if Failed(checks[:1]) {
		t.Error("Failed() = true for passing checks")
	}
}

func TestCheckStatus_String(t *testing.T) {
	if CheckWarn.String() != "warn" || CheckStatus(99).String() != "unknown" {
		t.Error("unexpected CheckStatus names")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "CLEAR KEY", []string{"The stored key will be removed"}, "yes")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "CLEAR KEY") {
			t.Error("warning box not printed")
		}
	}
}

func TestPrinter_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintSuccess("Saved", nil)
	if !strings.Contains(buf.String(), "Saved") {
		t.Error("printer did not write to buffer")
	}
	if p.Width() != 80 {
		t.Errorf("Width() = %d, want 80", p.Width())
	}
}
