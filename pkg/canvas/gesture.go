// Package canvas turns pointer input on a spatial canvas into camera moves
// and model mutations. Classification of a gesture is a pure function;
// the Controller executes the classified gesture against an explicit
// per-canvas Canvas state.
package canvas

import (
	"fmt"
	"strings"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonPrimary   Button = iota // left
	ButtonSecondary               // right
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// ParseButton parses a button name as printed by String.
func ParseButton(s string) (Button, error) {
	for _, b := range []Button{ButtonPrimary, ButtonSecondary, ButtonMiddle} {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("canvas: unknown button %q", s)
}

// Modifiers is a bit set of held keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta

	ModNone Modifiers = 0
)

// Has reports whether all bits of m are set.
func (mods Modifiers) Has(m Modifiers) bool {
	return m != 0 && mods&m == m
}

var modifierNames = []struct {
	name string
	mod  Modifiers
}{
	{"shift", ModShift},
	{"ctrl", ModCtrl},
	{"alt", ModAlt},
	{"meta", ModMeta},
}

func (mods Modifiers) String() string {
	var parts []string
	for _, m := range modifierNames {
		if mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseModifiers parses names such as "shift" or "ctrl+alt".
func ParseModifiers(s string) (Modifiers, error) {
	var mods Modifiers
	for _, part := range strings.Split(s, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "none" || part == "" {
			continue
		}
		found := false
		for _, m := range modifierNames {
			if m.name == part {
				mods |= m.mod
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("canvas: unknown modifier %q", part)
		}
	}
	return mods, nil
}

// GestureKind is the classification of a pointer-down.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GesturePan
	GestureDrag
	GestureLink
	GestureCreate
)

func (k GestureKind) String() string {
	switch k {
	case GestureNone:
		return "none"
	case GesturePan:
		return "pan"
	case GestureDrag:
		return "drag"
	case GestureLink:
		return "link"
	case GestureCreate:
		return "create"
	}
	return "unknown"
}

// Bindings selects which inputs trigger the non-default gestures.
type Bindings struct {
	LinkModifier Modifiers // held on a node: link instead of drag
	CreateButton Button    // pressed on empty canvas: create instead of pan
}

// DefaultBindings links with Shift and creates with the secondary button.
func DefaultBindings() Bindings {
	return Bindings{
		LinkModifier: ModShift,
		CreateButton: ButtonSecondary,
	}
}

// Classify decides what a pointer-down does. target is the node under the
// pointer, empty for the bare canvas. Rules, in order:
//
//  1. node + link modifier  -> link
//  2. node                  -> drag
//  3. canvas + create button -> create
//  4. canvas                -> pan
func Classify(target string, button Button, mods Modifiers, b Bindings) GestureKind {
	if target != "" {
		if mods.Has(b.LinkModifier) {
			return GestureLink
		}
		return GestureDrag
	}
	if button == b.CreateButton {
		return GestureCreate
	}
	return GesturePan
}

// PointerEvent is one pointer sample delivered by the host surface.
// Position is in screen space. Target is the id of the node under the
// pointer as resolved by the host, or empty.
type PointerEvent struct {
	Position  geom.Point
	Button    Button
	Modifiers Modifiers
	Target    string
}
