// Package shortcuts resolves global key chords to workspace actions.
package shortcuts

import (
	"fmt"
	"strings"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/workspace"
)

// Chord is a key with an optional platform modifier (Cmd on macOS, Ctrl
// elsewhere).
type Chord struct {
	Mod bool
	Key string
}

// String renders the chord the way ParseChord reads it.
func (c Chord) String() string {
	if c.Mod {
		return "Mod+" + c.Key
	}
	return c.Key
}

// ParseChord reads "Mod+K", "ctrl+1", "Escape" and similar. Keys are
// lower-cased except named keys.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	var c Chord
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		switch {
		case last:
			c.Key = normalizeKey(p)
		default:
			switch strings.ToLower(p) {
			case "mod", "cmd", "meta", "ctrl", "control":
				c.Mod = true
			default:
				return Chord{}, fmt.Errorf("shortcuts: unknown modifier %q: %w", p, apperr.ErrInvalidInput)
			}
		}
	}
	if c.Key == "" {
		return Chord{}, fmt.Errorf("shortcuts: empty chord: %w", apperr.ErrInvalidInput)
	}
	return c, nil
}

func normalizeKey(k string) string {
	switch strings.ToLower(k) {
	case "esc", "escape":
		return "Escape"
	}
	return strings.ToLower(k)
}

// ActionKind identifies what a shortcut does.
type ActionKind string

const (
	ActionTogglePalette ActionKind = "togglePalette"
	ActionClosePalette  ActionKind = "closePalette"
	ActionToggleSidebar ActionKind = "toggleSidebar"
	ActionNavigate      ActionKind = "navigate"
)

// Action is a resolved shortcut. View is set for navigation.
type Action struct {
	Kind ActionKind  `json:"kind"`
	View models.View `json:"view,omitempty"`
}

// Binding maps a chord to an action. Always bindings fire even while a text
// field has focus.
type Binding struct {
	Chord  Chord  `json:"-"`
	Keys   string `json:"keys"`
	Action Action `json:"action"`
	Always bool   `json:"always"`
}

func bind(keys string, a Action, always bool) Binding {
	c, err := ParseChord(keys)
	if err != nil {
		panic(err)
	}
	return Binding{Chord: c, Keys: c.String(), Action: a, Always: always}
}

func navigate(v models.View) Action {
	return Action{Kind: ActionNavigate, View: v}
}

// Bindings is the global keyboard surface.
var Bindings = []Binding{
	bind("Mod+K", Action{Kind: ActionTogglePalette}, true),
	bind("Escape", Action{Kind: ActionClosePalette}, true),
	bind("Mod+/", Action{Kind: ActionToggleSidebar}, false),
	bind("Mod+H", navigate(models.ViewToday), false),
	bind("Mod+1", navigate(models.ViewNotes), false),
	bind("Mod+2", navigate(models.ViewTasks), false),
	bind("Mod+3", navigate(models.ViewLinks), false),
	bind("Mod+4", navigate(models.ViewDocs), false),
	bind("Mod+5", navigate(models.ViewPrompts), false),
}

// Focus describes where input is going when a key is pressed.
type Focus struct {
	Typing      bool
	PaletteOpen bool
}

// Resolve finds the action for c. While typing, only Always bindings fire,
// unless the command palette is open.
func Resolve(c Chord, f Focus) (Action, bool) {
	for _, b := range Bindings {
		if b.Chord != c {
			continue
		}
		if f.Typing && !f.PaletteOpen && !b.Always {
			return Action{}, false
		}
		if b.Action.Kind == ActionClosePalette && !f.PaletteOpen {
			return Action{}, false
		}
		return b.Action, true
	}
	return Action{}, false
}

// Target is the state a shortcut acts on.
type Target interface {
	UI() workspace.UIState
	ToggleSidebar()
	SetCommandPaletteOpen(open bool)
	SetCurrentView(v models.View) error
}

// Dispatch resolves keys against the current UI state and applies the
// action. It reports whether a binding fired.
func Dispatch(t Target, keys string, typing bool) (Action, bool, error) {
	c, err := ParseChord(keys)
	if err != nil {
		return Action{}, false, err
	}
	ui := t.UI()
	a, ok := Resolve(c, Focus{Typing: typing, PaletteOpen: ui.CommandPaletteOpen})
	if !ok {
		return Action{}, false, nil
	}
	switch a.Kind {
	case ActionTogglePalette:
		t.SetCommandPaletteOpen(!ui.CommandPaletteOpen)
	case ActionClosePalette:
		t.SetCommandPaletteOpen(false)
	case ActionToggleSidebar:
		t.ToggleSidebar()
	case ActionNavigate:
		if err := t.SetCurrentView(a.View); err != nil {
			return Action{}, false, err
		}
		if ui.CommandPaletteOpen {
			t.SetCommandPaletteOpen(false)
		}
	}
	return a, true, nil
}
