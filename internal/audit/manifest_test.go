package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectLine(t *testing.T) {
	tests := []struct {
		line string
		want Format
	}{
		{"bear_cub|ELD|042|front", FormatToken},
		{"goblin|M19", FormatToken},
		{"c_1_1_a_insect_flying|MH1|5", FormatToken},
		{"Throne of Eldraine (ELD)", FormatReport},
		{"ELD/Bear_Cub.full", FormatReport},
		{"ELD/Giant_Growth2.full", FormatReport},
		{"some prose about missing cards", FormatReport},
		{"", FormatUnknown},
		{"# comment", FormatUnknown},
		{"---", FormatUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLine(tt.line), "line %q", tt.line)
	}
}

func TestDetectFormatMajorityWins(t *testing.T) {
	token := []string{"a|ELD|1", "b|ELD|2", "Throne of Eldraine (ELD)"}
	assert.Equal(t, FormatToken, DetectFormat(token))

	report := []string{"Throne of Eldraine (ELD)", "ELD/Bear.full", "ELD/Cub.full"}
	assert.Equal(t, FormatReport, DetectFormat(report))

	assert.Equal(t, FormatUnknown, DetectFormat([]string{"", "# only comments"}))
}

func TestParseManifestRejectsWrongFormat(t *testing.T) {
	// A token manifest handed to the card-audit workflow fails fast with a
	// diagnostic naming the right workflow; no lookups happen first.
	path := writeManifest(t, "bear_cub|ELD|042|front\ngoblin|M19|10\n")
	_, err := ParseManifest(path, FormatReport)
	require.ErrorIs(t, err, ErrWrongManifest)
	assert.Contains(t, err.Error(), "token-audit")

	path = writeManifest(t, "Throne of Eldraine (ELD)\nELD/Bear_Cub.full\n")
	_, err = ParseManifest(path, FormatToken)
	require.ErrorIs(t, err, ErrWrongManifest)
	assert.Contains(t, err.Error(), "card-audit")
}

func TestParseManifestTokenForm(t *testing.T) {
	path := writeManifest(t, `
# missing tokens
bear_cub|ELD|042|front
goblin|m19
wrenn|MH1|5|back
`)
	entries, err := ParseManifest(path, FormatToken)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Format: FormatToken, Slug: "bear_cub", Set: "ELD", Collector: "042", FaceIndex: 1}, entries[0])
	assert.Equal(t, Entry{Format: FormatToken, Slug: "goblin", Set: "M19", FaceIndex: 1}, entries[1])
	assert.Equal(t, Entry{Format: FormatToken, Slug: "wrenn", Set: "MH1", Collector: "5", FaceIndex: 2}, entries[2])
}

func TestParseManifestReportForm(t *testing.T) {
	path := writeManifest(t, `
Audit Card and Image Data

Throne of Eldraine (ELD)
ELD/Bear_Cub.full
ELD/Giant_Growth2.full

Core Set 2019 (M19)
M19/Shock.full
`)
	entries, err := ParseManifest(path, FormatReport)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "ELD", entries[0].Set)
	assert.Equal(t, "Bear_Cub", entries[0].Name)
	assert.Zero(t, entries[0].PrintIndex)

	assert.Equal(t, "Giant_Growth", entries[1].Name)
	assert.Equal(t, 2, entries[1].PrintIndex)

	assert.Equal(t, "M19", entries[2].Set)
	assert.Equal(t, "Shock", entries[2].Name)
}

func TestParseManifestEmptyFile(t *testing.T) {
	path := writeManifest(t, "\n# nothing here\n")
	_, err := ParseManifest(path, FormatToken)
	assert.ErrorIs(t, err, ErrWrongManifest)
}

func TestCheckLocation(t *testing.T) {
	base := t.TempDir()

	assert.NoError(t, CheckLocation(base, filepath.Join(base, "manifest.txt")))

	err := CheckLocation(base, filepath.Join(base, "Tokens", "manifest.txt"))
	require.ErrorIs(t, err, ErrMisplacedManifest)

	err = CheckLocation(base, filepath.Join(base, "Cards", "ELD", "manifest.txt"))
	require.ErrorIs(t, err, ErrMisplacedManifest)

	// Other subfolders are fine.
	assert.NoError(t, CheckLocation(base, filepath.Join(base, "backups", "manifest.txt")))
}

func TestSplitTrailingIndex(t *testing.T) {
	name, idx := splitTrailingIndex("Giant_Growth2")
	assert.Equal(t, "Giant_Growth", name)
	assert.Equal(t, 2, idx)

	name, idx = splitTrailingIndex("Shock")
	assert.Equal(t, "Shock", name)
	assert.Zero(t, idx)

	// Digits inside a name survive; only the trailing run is an index.
	name, idx = splitTrailingIndex("Borderland_Marauder12")
	assert.Equal(t, "Borderland_Marauder", name)
	assert.Equal(t, 12, idx)
}

func TestTokenSetFor(t *testing.T) {
	assert.Equal(t, "teld", TokenSetFor("ELD"))
	assert.Equal(t, "tm19", TokenSetFor("m19"))
}
