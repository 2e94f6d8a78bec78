package canvas

import "testing"

func TestClassify(t *testing.T) {
	b := DefaultBindings()
	tests := []struct {
		name   string
		target string
		button Button
		mods   Modifiers
		want   GestureKind
	}{
		{"node with shift links", "n-1", ButtonPrimary, ModShift, GestureLink},
		{"node with shift and ctrl links", "n-1", ButtonPrimary, ModShift | ModCtrl, GestureLink},
		{"node drags", "n-1", ButtonPrimary, ModNone, GestureDrag},
		{"node with ctrl drags", "n-1", ButtonPrimary, ModCtrl, GestureDrag},
		{"right button on node still drags", "n-1", ButtonSecondary, ModNone, GestureDrag},
		{"empty canvas pans", "", ButtonPrimary, ModNone, GesturePan},
		{"shift on empty canvas pans", "", ButtonPrimary, ModShift, GesturePan},
		{"middle button pans", "", ButtonMiddle, ModNone, GesturePan},
		{"right button on empty canvas creates", "", ButtonSecondary, ModNone, GestureCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.target, tt.button, tt.mods, b)
			if got != tt.want {
				t.Errorf("Classify(%q, %v, %b) = %v, want %v", tt.target, tt.button, tt.mods, got, tt.want)
			}
		})
	}
}

func TestClassifyCustomBindings(t *testing.T) {
	b := Bindings{LinkModifier: ModAlt, CreateButton: ButtonMiddle}

	if got := Classify("n", ButtonPrimary, ModShift, b); got != GestureDrag {
		t.Errorf("shift with alt binding: got %v, want drag", got)
	}
	if got := Classify("n", ButtonPrimary, ModAlt, b); got != GestureLink {
		t.Errorf("alt: got %v, want link", got)
	}
	if got := Classify("", ButtonMiddle, ModNone, b); got != GestureCreate {
		t.Errorf("middle: got %v, want create", got)
	}
	if got := Classify("", ButtonSecondary, ModNone, b); got != GesturePan {
		t.Errorf("secondary: got %v, want pan", got)
	}
}

func TestModifiersHas(t *testing.T) {
	m := ModShift | ModAlt
	if !m.Has(ModShift) || !m.Has(ModAlt) || !m.Has(ModShift|ModAlt) {
		t.Errorf("%b should contain shift and alt", m)
	}
	if m.Has(ModCtrl) {
		t.Errorf("%b should not contain ctrl", m)
	}
	if m.Has(ModNone) {
		t.Errorf("no modifier binding never matches")
	}
}

func TestParseBindings(t *testing.T) {
	tests := []struct {
		in   string
		want Modifiers
	}{
		{"shift", ModShift},
		{"Ctrl", ModCtrl},
		{"ctrl+alt", ModCtrl | ModAlt},
		{"none", ModNone},
	}
	for _, tt := range tests {
		got, err := ParseModifiers(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseModifiers(%q) = %b, %v; want %b", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseModifiers("hyper"); err == nil {
		t.Error("expected error for unknown modifier")
	}
	if got := (ModCtrl | ModAlt).String(); got != "ctrl+alt" {
		t.Errorf("String() = %q, want ctrl+alt", got)
	}

	for _, b := range []Button{ButtonPrimary, ButtonSecondary, ButtonMiddle} {
		got, err := ParseButton(b.String())
		if err != nil || got != b {
			t.Errorf("ParseButton(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseButton("fourth"); err == nil {
		t.Error("expected error for unknown button")
	}
}
