package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_SplitsOnHyphens(t *testing.T) {
	got := Format("Remove affected leaves - Apply fungicide - Monitor daily")

	assert.True(t, got.IsList())
	assert.Equal(t, []string{"Remove affected leaves", "Apply fungicide", "Monitor daily"}, got.Points)
	assert.Equal(t, "Remove affected leaves - Apply fungicide - Monitor daily", got.Text)
}

func TestFormat_GeneratorBulletLayout(t *testing.T) {
	got := Format("- Neem oil spray\n- Baking soda solution\n- Compost tea")
	assert.Equal(t, []string{"Neem oil spray", "Baking soda solution", "Compost tea"}, got.Points)
}

func TestFormat_DropsShortFragments(t *testing.T) {
	got := Format("- Use copper - - ok - a - Rotate crops yearly")
	assert.Equal(t, []string{"Use copper", "Rotate crops yearly"}, got.Points)
}

func TestFormat_PassThrough(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"sentinel", Sentinel},
		{"data unavailable", "Data unavailable - retry later please"},
		{"information not available inside text", "Sorry - Information not available - yet"},
		{"no hyphens", "Water early in the day"},
		{"only short fragments", "a - b - c"},
		{"only dashes", "---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.text)
			assert.False(t, got.IsList())
			assert.Nil(t, got.Points)
			assert.Equal(t, tt.text, got.Text)
		})
	}
}

func TestFormat_SingleHyphenLedPoint(t *testing.T) {
	got := Format("- Water early in the day")
	assert.Equal(t, []string{"Water early in the day"}, got.Points)
}

func TestFormat_Idempotent(t *testing.T) {
	for _, text := range []string{"", Sentinel, "Data unavailable", "x - y", "Prune - Spray copper"} {
		once := Format(text)
		assert.Equal(t, once, Format(once.Text), "text %q", text)
	}
}

func TestFormat_CountsRunesNotBytes(t *testing.T) {
	got := Format("éèà - Spray neem")
	assert.Equal(t, []string{"Spray neem"}, got.Points)
}
