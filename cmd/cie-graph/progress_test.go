// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import "testing"

func TestNewProgressConfig(t *testing.T) {
	tests := []struct {
		name            string
		globals         GlobalFlags
		expectedNoColor bool
	}{
		{name: "default flags", globals: GlobalFlags{}, expectedNoColor: false},
		{name: "quiet mode", globals: GlobalFlags{Quiet: true}, expectedNoColor: false},
		{name: "json mode implies quiet upstream, progress config only tracks NoColor/Enabled", globals: GlobalFlags{JSON: true, Quiet: true}, expectedNoColor: false},
		{name: "noColor flag propagates to config", globals: GlobalFlags{NoColor: true}, expectedNoColor: true},
		{name: "all flags combined", globals: GlobalFlags{JSON: true, Quiet: true, NoColor: true, Verbose: 2}, expectedNoColor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProgressConfig(tt.globals)
			// stderr is never a TTY under `go test`, so Enabled is always
			// false here regardless of globals — this exercises the
			// Quiet short-circuit, not the TTY check.
			if cfg.Enabled {
				t.Errorf("NewProgressConfig().Enabled = true in a non-TTY test process, want false")
			}
			if cfg.NoColor != tt.expectedNoColor {
				t.Errorf("NewProgressConfig().NoColor = %v, want %v", cfg.NoColor, tt.expectedNoColor)
			}
		})
	}
}

func TestNewProgressBarDisabledReturnsNil(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	if bar := NewProgressBar(cfg, 100, "parsing"); bar != nil {
		t.Errorf("NewProgressBar() with Enabled=false = %v, want nil", bar)
	}
}

func TestNewSpinnerDisabledReturnsNil(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	if spinner := NewSpinner(cfg, "scanning"); spinner != nil {
		t.Errorf("NewSpinner() with Enabled=false = %v, want nil", spinner)
	}
}
