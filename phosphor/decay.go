package phosphor

// TauCutoff is the fixed boundary (seconds) between an exponential decay
// term that is cheap enough to integrate as an instantaneous one-frame
// pulse (tier 1) and one that needs persistent per-pixel state (tier 2).
const TauCutoff = 1e-4

// DecayKind tags which closed-form emission-rate law a DecayTerm follows.
type DecayKind int

const (
	// Exponential emits at rate A*exp(-t/tau).
	Exponential DecayKind = iota
	// PowerLaw emits at rate A*(alpha/(t+alpha))^beta, finite at t=0.
	PowerLaw
)

// DecayTerm is one immutable summand of a phosphor layer's emission decay
// law. Exactly one of the Exponential or PowerLaw parameter sets is
// meaningful, selected by Kind.
type DecayTerm struct {
	Kind DecayKind

	// Exponential parameters.
	Amplitude float32
	Tau       float32

	// PowerLaw parameters (Amplitude reused above).
	Alpha float32
	Beta  float32
}

// NewExponential constructs an exponential decay term.
func NewExponential(amplitude, tau float32) DecayTerm {
	return DecayTerm{Kind: Exponential, Amplitude: amplitude, Tau: tau}
}

// NewPowerLaw constructs a power-law decay term.
func NewPowerLaw(amplitude, alpha, beta float32) DecayTerm {
	return DecayTerm{Kind: PowerLaw, Amplitude: amplitude, Alpha: alpha, Beta: beta}
}

// InstantEnergy returns the closed-form integral Int_0^inf A*exp(-t/tau)dt
// for an exponential term, the total energy a tier-1 term contributes to
// the single frame it is deposited in. Only meaningful for Exponential
// terms with Tau < TauCutoff; callers gate on classification.
func (t DecayTerm) InstantEnergy() float32 {
	return t.Amplitude * t.Tau
}

// Classification is the (instant_exp_count, slow_exp_count, has_power_law)
// triple derived from a decay-term list and a cutoff, determining the
// per-pixel accumulation-buffer layer layout for a phosphor layer.
type Classification struct {
	InstantExpCount int
	SlowExpCount    int
	HasPowerLaw     bool
}

// AccumLayers returns the number of per-pixel persistent accumulation-buffer
// layers this classification requires: one scalar per slow exponential, two
// for power-law (peak energy + elapsed time). Tier-1 terms hold no
// persistent state across frames (their contribution is computed, used, and
// cleared within the same frame) and so never add a layer here, regardless
// of InstantExpCount.
func (c Classification) AccumLayers() int {
	n := c.SlowExpCount
	if c.HasPowerLaw {
		n += 2
	}
	return n
}

// HasInstant reports whether this classification has any tier-1 terms.
func (c Classification) HasInstant() bool { return c.InstantExpCount > 0 }

// Classify partitions terms into the three tiers using tauCutoff as the
// instant/slow boundary for exponential terms.
func Classify(terms []DecayTerm, tauCutoff float32) Classification {
	var c Classification
	for _, term := range terms {
		switch term.Kind {
		case Exponential:
			if term.Tau < tauCutoff {
				c.InstantExpCount++
			} else {
				c.SlowExpCount++
			}
		case PowerLaw:
			c.HasPowerLaw = true
		}
	}
	return c
}

// InstantEnergyTotal sums InstantEnergy over every tier-1 (fast
// exponential) term in terms, under tauCutoff. A deposit scales this
// total by its energy and adds it to the emission group's per-pixel
// instant scalar, which is kept outside the accumulation layers.
func InstantEnergyTotal(terms []DecayTerm, tauCutoff float32) float32 {
	var total float32
	for _, term := range terms {
		if term.Kind == Exponential && term.Tau < tauCutoff {
			total += term.InstantEnergy()
		}
	}
	return total
}
