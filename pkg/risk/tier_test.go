package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want Tier
	}{
		{"zero", 0, TierLow},
		{"just below medium", 0.29, TierLow},
		{"medium boundary", 0.30, TierMedium},
		{"middle", 0.5, TierMedium},
		{"just below high", 0.69, TierMedium},
		{"high boundary", 0.70, TierHigh},
		{"one", 1.0, TierHigh},
		{"negative clamps low", -0.1, TierLow},
		{"above one clamps high", 1.2, TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.p))
		})
	}
}

func TestTier_Strings(t *testing.T) {
	assert.Equal(t, "LOW", TierLow.String())
	assert.Equal(t, "Medium Risk", TierMedium.Label())
	assert.Equal(t, "red", TierHigh.Indicator())
	assert.True(t, Tier{}.IsZero())
	assert.False(t, TierLow.IsZero())
	assert.Equal(t, "grey", Tier{}.Indicator())
}

func TestTierFromString(t *testing.T) {
	for _, tier := range []Tier{TierLow, TierMedium, TierHigh} {
		got, err := TierFromString(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := TierFromString("CRITICAL")
	assert.Error(t, err)
}

func TestTier_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Tier Tier `json:"tier"`
	}{TierHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"HIGH"}`, string(b))

	var v struct {
		Tier Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"MEDIUM"}`), &v))
	assert.Equal(t, TierMedium, v.Tier)
	assert.Error(t, json.Unmarshal([]byte(`{"tier":"nope"}`), &v))
}

func TestAdvice(t *testing.T) {
	assert.Len(t, Advice(TierLow).Items, 2)
	assert.Len(t, Advice(TierMedium).Items, 3)
	assert.Len(t, Advice(TierHigh).Items, 5)
	assert.Contains(t, Advice(TierHigh).Headline, "Immediate intervention")

	a := Advice(TierLow)
	a.Items[0] = "changed"
	assert.Equal(t, "Regular check-ins should be sufficient.", Advice(TierLow).Items[0])

	assert.Empty(t, Advice(Tier{}).Items)
}
