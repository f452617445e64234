package theme

import "testing"

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)

	if !SetActive("tokyo-night") {
		t.Fatal("SetActive(tokyo-night) = false")
	}
	if Active.Name != "tokyo-night" {
		t.Errorf("Active = %s, want tokyo-night", Active.Name)
	}

	if SetActive("nope") {
		t.Error("SetActive(nope) = true")
	}
	if Active.Name != FlexokiDark.Name {
		t.Errorf("Active = %s after unknown name, want %s", Active.Name, FlexokiDark.Name)
	}
}

func TestNamesMatchAll(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("len(Names) = %d, want %d", len(names), len(All))
	}
	for _, n := range names {
		if _, ok := Lookup(n); !ok {
			t.Errorf("Lookup(%q) failed", n)
		}
	}
}

func TestDeltaColor(t *testing.T) {
	th := FlexokiDark
	if th.DeltaColor(5) != th.Increase {
		t.Error("positive delta should use Increase")
	}
	if th.DeltaColor(-5) != th.Decrease {
		t.Error("negative delta should use Decrease")
	}
	if th.DeltaColor(0) != th.TextPrimary {
		t.Error("zero delta should use TextPrimary")
	}
}
