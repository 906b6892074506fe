package phosphor

import "testing"

// Scenario 2 from spec.md §8: P1 decay term classification.
func TestClassifyP1AllSlowExponential(t *testing.T) {
	terms := []DecayTerm{
		NewExponential(6.72, 2.88e-3),
		NewExponential(1.0, 15.1e-3),
	}
	c := Classify(terms, TauCutoff)
	if c.InstantExpCount != 0 || c.SlowExpCount != 2 || c.HasPowerLaw {
		t.Fatalf("got %+v, want instant=0 slow=2 pl=false", c)
	}
	if got := c.AccumLayers(); got != 2 {
		t.Fatalf("AccumLayers() = %d, want 2", got)
	}
}

// Scenario 3 from spec.md §8: P31 classification (power-law + 3 instant
// exponentials, 0 slow).
func TestClassifyP31PowerLawPlusInstant(t *testing.T) {
	terms := []DecayTerm{
		NewPowerLaw(2.1e-4, 5.5e-6, 1.1),
		NewExponential(90, 31.8e-9),
		NewExponential(100, 227e-9),
		NewExponential(37, 1.06e-6),
	}
	c := Classify(terms, TauCutoff)
	if c.InstantExpCount != 3 || c.SlowExpCount != 0 || !c.HasPowerLaw {
		t.Fatalf("got %+v, want instant=3 slow=0 pl=true", c)
	}
	// has_power_law -> +2 layers; instant terms hold no persistent state
	// and never add a layer, regardless of InstantExpCount.
	if got := c.AccumLayers(); got != 2 {
		t.Fatalf("AccumLayers() = %d, want 2", got)
	}
}

func TestClassificationTotalsMatchTermCount(t *testing.T) {
	terms := []DecayTerm{
		NewExponential(1, 1e-6),
		NewExponential(1, 1e-2),
		NewPowerLaw(1, 1e-5, 1.2),
	}
	c := Classify(terms, TauCutoff)
	total := c.InstantExpCount + c.SlowExpCount
	if c.HasPowerLaw {
		total++
	}
	if total != len(terms) {
		t.Fatalf("instant+slow+pl = %d, want %d", total, len(terms))
	}
}

func TestInstantEnergyTotal(t *testing.T) {
	terms := []DecayTerm{
		NewExponential(90, 31.8e-9),
		NewExponential(100, 227e-9),
	}
	got := InstantEnergyTotal(terms, TauCutoff)
	want := 90*31.8e-9 + 100*227e-9
	if diff := float32(want) - got; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("InstantEnergyTotal = %v, want %v", got, want)
	}
}
