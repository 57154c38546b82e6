package keymap

import (
	"slices"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(Default)

	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"enter", ActionSelect},
		{"right", ActionSeekForward},
		{"f", ActionToggleFavorite},
		{"x", ""},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.key); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestResolver_LaterBindingWins(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionStop, []string{"s"}, "Stop"},
		{ActionToggleShuffle, []string{"s"}, "Shuffle"},
	})
	if got := r.Resolve("s"); got != ActionToggleShuffle {
		t.Errorf("Resolve(s) = %q, want %q", got, ActionToggleShuffle)
	}
}

func TestResolver_KeysForDeduplicates(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},
		{ActionQuit, []string{"q"}, "Quit"},
	})
	if got := r.KeysFor(ActionQuit); !slices.Equal(got, []string{"q", "ctrl+c"}) {
		t.Errorf("KeysFor(quit) = %v", got)
	}
	if got := r.KeysFor(ActionHelp); got != nil {
		t.Errorf("KeysFor(unbound) = %v, want nil", got)
	}
}

func TestResolver_Help(t *testing.T) {
	r := NewResolver(Default)
	got := r.Help(ActionPlayPause, ActionQuit, Action("missing"))
	if got != "space play/pause · q quit" {
		t.Errorf("Help = %q", got)
	}
}

func TestDefault_NoDuplicateKeys(t *testing.T) {
	seen := make(map[string]Action)
	for _, b := range Default {
		for _, k := range b.Keys {
			if prev, ok := seen[k]; ok {
				t.Errorf("key %q bound to both %q and %q", k, prev, b.Action)
			}
			seen[k] = b.Action
		}
	}
}
