package terrain

import "testing"

func TestTextureUnitTracker(t *testing.T) {
	tr := newTextureUnitTracker(4)
	tr.SetOffLimits(0)

	unit, err := tr.Reserve("color")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if unit != 1 {
		t.Fatalf("unit = %d, want 1 (lowest free, 0 is off limits)", unit)
	}
	if got := tr.Owner(unit); got != "color" {
		t.Fatalf("owner = %q, want %q", got, "color")
	}

	second, err := tr.Reserve("elevation")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if second != 2 {
		t.Fatalf("second unit = %d, want 2", second)
	}

	tr.Release(unit)
	if got := tr.Owner(unit); got != "" {
		t.Fatalf("released unit still owned by %q", got)
	}

	// The freed unit is handed out again before higher ones.
	third, err := tr.Reserve("normals")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if third != 1 {
		t.Fatalf("third unit = %d, want recycled 1", third)
	}
}

func TestTextureUnitTrackerExhaustion(t *testing.T) {
	tr := newTextureUnitTracker(2)
	if _, err := tr.Reserve("a"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := tr.Reserve("b"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := tr.Reserve("c"); err == nil {
		t.Fatal("expected exhaustion error")
	}

	// Releasing an unreserved unit does nothing and does not free space.
	tr.Release(7)
	if _, err := tr.Reserve("c"); err == nil {
		t.Fatal("expected exhaustion error after bogus release")
	}
}

func TestRegistryOffLimitsUnits(t *testing.T) {
	reg := DefaultRegistry()
	reg.AddOffLimitsTextureUnit(5)
	reg.AddOffLimitsTextureUnit(3)
	reg.AddOffLimitsTextureUnit(5) // duplicate

	units := reg.OffLimitsTextureUnits()
	for i := 1; i < len(units); i++ {
		if units[i-1] >= units[i] {
			t.Fatalf("units not strictly sorted: %v", units)
		}
	}
	has := func(u int) bool {
		for _, v := range units {
			if v == u {
				return true
			}
		}
		return false
	}
	if !has(3) || !has(5) {
		t.Fatalf("units = %v, want 3 and 5 present", units)
	}
}

func TestCreateEngineUnknownDriver(t *testing.T) {
	if _, err := CreateEngine(Options{Driver: "no-such-driver"}); err == nil {
		t.Fatal("expected error for unregistered driver")
	}
}

func TestCreateEngineRegisteredDriver(t *testing.T) {
	reg := DefaultRegistry()
	reg.RegisterDriver("test-driver", func(opts Options) (*Engine, error) {
		return New(), nil
	})

	e, err := CreateEngine(Options{Driver: "test-driver"})
	if err != nil {
		t.Fatalf("CreateEngine: %v", err)
	}
	if e == nil {
		t.Fatal("nil engine from registered driver")
	}
}
