package flyby_test

import (
	"testing"

	"github.com/soypat/flyby"
)

func TestPower2InOut(t *testing.T) {
	ease := flyby.Power2InOut
	for _, test := range []struct {
		p, want float32
	}{
		{p: 0, want: 0},
		{p: 0.25, want: 0.125},
		{p: 0.5, want: 0.5},
		{p: 0.75, want: 0.875},
		{p: 1, want: 1},
	} {
		got := ease(test.p)
		if got != test.want {
			t.Errorf("ease(%g)=%g, want %g", test.p, got, test.want)
		}
	}
}

func TestEasingsMonotonic(t *testing.T) {
	const samples = 1000
	for _, name := range flyby.EasingNames() {
		ease, err := flyby.EasingByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if ease(0) != 0 || ease(1) != 1 {
			t.Errorf("%s: bad endpoints ease(0)=%g ease(1)=%g", name, ease(0), ease(1))
		}
		prev := ease(0)
		for i := 1; i <= samples; i++ {
			p := float32(i) / samples
			got := ease(p)
			if got < prev {
				t.Errorf("%s: not monotonic at p=%g: %g < %g", name, p, got, prev)
				break
			}
			prev = got
		}
	}
}

func TestEasingByNameUnknown(t *testing.T) {
	_, err := flyby.EasingByName("elastic.out")
	if err == nil {
		t.Error("expected error for unknown easing")
	}
	ease, err := flyby.EasingByName("power2.inOut")
	if err != nil {
		t.Fatal(err)
	}
	if ease(0.25) != flyby.Power2InOut(0.25) {
		t.Error("power2.inOut does not map to Power2InOut")
	}
}
