package risk

import "fmt"

const (
	mediumThreshold = 0.3
	highThreshold   = 0.7
)

// Tier is the risk band a dropout probability falls into.
type Tier struct {
	value string
}

var (
	TierLow    = Tier{value: "LOW"}
	TierMedium = Tier{value: "MEDIUM"}
	TierHigh   = Tier{value: "HIGH"}
)

// Classify buckets a dropout probability: [0, 0.3) low, [0.3, 0.7) medium,
// [0.7, 1] high. Values outside [0, 1] are clamped.
func Classify(p float64) Tier {
	switch {
	case p >= highThreshold:
		return TierHigh
	case p >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// TierFromString reconstructs a Tier from its string representation.
func TierFromString(s string) (Tier, error) {
	switch s {
	case "LOW":
		return TierLow, nil
	case "MEDIUM":
		return TierMedium, nil
	case "HIGH":
		return TierHigh, nil
	default:
		return Tier{}, fmt.Errorf("invalid risk tier: %s", s)
	}
}

func (t Tier) String() string {
	return t.value
}

// Label is the human readable tier name.
func (t Tier) Label() string {
	switch t {
	case TierLow:
		return "Low Risk"
	case TierMedium:
		return "Medium Risk"
	case TierHigh:
		return "High Risk"
	default:
		return ""
	}
}

// Indicator is the colour the dashboard uses for the tier.
func (t Tier) Indicator() string {
	switch t {
	case TierLow:
		return "green"
	case TierMedium:
		return "orange"
	case TierHigh:
		return "red"
	default:
		return "grey"
	}
}

func (t Tier) IsZero() bool {
	return t.value == ""
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := TierFromString(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Recommendations is the fixed advisory block shown for a tier.
type Recommendations struct {
	Headline string   `json:"headline" yaml:"headline"`
	Items    []string `json:"items" yaml:"items"`
}

var advice = map[Tier]Recommendations{
	TierLow: {
		Headline: "Low Risk: This student shows good academic progress.",
		Items: []string{
			"Regular check-ins should be sufficient.",
			"Encourage continued academic performance.",
		},
	},
	TierMedium: {
		Headline: "Medium Risk: Consider implementing preventive measures.",
		Items: []string{
			"Schedule academic counseling sessions.",
			"Review course load and performance.",
			"Consider additional tutoring support.",
		},
	},
	TierHigh: {
		Headline: "High Risk: Immediate intervention recommended.",
		Items: []string{
			"Schedule urgent academic counseling.",
			"Explore financial aid options if applicable.",
			"Consider course load reduction if appropriate.",
			"Provide mental health and wellbeing resources.",
			"Develop a detailed academic improvement plan.",
		},
	},
}

// Advice returns a copy of the advisory block for t.
func Advice(t Tier) Recommendations {
	a, ok := advice[t]
	if !ok {
		return Recommendations{Items: []string{}}
	}
	items := make([]string, len(a.Items))
	copy(items, a.Items)
	return Recommendations{Headline: a.Headline, Items: items}
}
