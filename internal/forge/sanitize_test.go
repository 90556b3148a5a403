package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		isFolder bool
		want     string
	}{
		{"colon becomes dash", "Circle of Protection: Red", false, "Circle of Protection- Red"},
		{"reserved chars become underscores", `A:B*C?D<E>F`, false, "A-B_C_D_E_F"},
		{"slashes and pipes", `Fire/Ice|Test\Path`, false, "Fire_Ice_Test_Path"},
		{"control bytes", "Bad\x01Name", false, "Bad_Name"},
		{"trailing dots stripped", "Who... ", false, "Who"},
		{"whitespace trimmed", "  Llanowar Elves  ", false, "Llanowar Elves"},
		{"empty input", "", false, FallbackName},
		{"sanitizes to empty", " ..", false, FallbackName},
		{"reserved device name as file", "CON", false, "CON"},
		{"reserved device name as folder", "CON", true, "_CON"},
		{"reserved device lowercase folder", "aux", true, "_aux"},
		{"com port folder", "COM3", true, "_COM3"},
		{"non-reserved folder untouched", "ELD", true, "ELD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.isFolder))
		})
	}
}

func TestSanitizeIsDeterministic(t *testing.T) {
	in := `Weird: Name*With"Everything?`
	first := Sanitize(in, false)
	assert.Equal(t, first, Sanitize(in, false))
	// Already-clean output passes through unchanged.
	assert.Equal(t, first, Sanitize(first, false))
}

func TestSetFolder(t *testing.T) {
	assert.Equal(t, "ELD", SetFolder("eld"))
	assert.Equal(t, "ELD", SetFolder("  Eld "))
	assert.Equal(t, "_CON", SetFolder("con"))
	assert.Equal(t, "UNK", SetFolder(""))
}

func TestInferExt(t *testing.T) {
	assert.Equal(t, ".png", InferExt("https://cards.scryfall.io/png/front/a/b.png?123"))
	assert.Equal(t, ".jpg", InferExt("https://cards.scryfall.io/large/front/a/b.jpg?123"))
	assert.Equal(t, ".jpg", InferExt(""))
}
