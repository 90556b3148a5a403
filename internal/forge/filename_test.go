package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgefetch/internal/scryfall"
)

func TestBuildBaseNameSpacesBecomeUnderscores(t *testing.T) {
	card := scryfall.Card{Name: "Giant Growth", Set: "lea"}
	face := Face{Role: RoleSingle, Name: "Giant Growth"}
	assert.Equal(t, "Giant_Growth", BuildBaseName(card, face, 1, OracleFirst))
}

func TestBuildBaseNameRoleSuffixMandatoryForMultiface(t *testing.T) {
	card := scryfall.Card{Name: "Delver of Secrets // Insectile Aberration"}
	front := Face{Role: RoleFront, Name: "Delver of Secrets"}
	back := Face{Role: RoleBack, Name: "Insectile Aberration"}

	a := BuildBaseName(card, front, 2, OracleFirst)
	b := BuildBaseName(card, back, 2, OracleFirst)
	assert.Equal(t, "Delver_of_Secrets_A", a)
	assert.Equal(t, "Insectile_Aberration_B", b)
	assert.NotEqual(t, a, b)
}

func TestBuildBaseNameSingleFaceGetsNoSuffix(t *testing.T) {
	card := scryfall.Card{Name: "Lightning Bolt"}
	face := Face{Role: RoleSingle, Name: "Lightning Bolt"}
	assert.Equal(t, "Lightning_Bolt", BuildBaseName(card, face, 1, OracleFirst))
}

func TestRankedNamePolicies(t *testing.T) {
	// A crossover print: oracle name, printed name and a flavor name.
	card := scryfall.Card{
		Name:        "Greymond, Avacyn's Stalwart",
		PrintedName: "Greymond, Avacyn's Stalwart",
		FlavorName:  "Gandalf the White",
	}
	face := Face{
		Role:        RoleSingle,
		Name:        card.Name,
		PrintedName: card.PrintedName,
		FlavorName:  card.FlavorName,
	}

	t.Run("printed-first prefers flavor", func(t *testing.T) {
		got := BuildBaseName(card, face, 1, PrintedFirst)
		assert.Equal(t, "Gandalf_the_White", got)
	})

	t.Run("oracle-first files flavor prints under printed identity", func(t *testing.T) {
		got := BuildBaseName(card, face, 1, OracleFirst)
		assert.Equal(t, "Greymond,_Avacyn's_Stalwart", got)
	})

	t.Run("oracle-first without flavor uses oracle", func(t *testing.T) {
		plain := card
		plain.FlavorName = ""
		pf := face
		pf.FlavorName = ""
		got := BuildBaseName(plain, pf, 1, OracleFirst)
		assert.Equal(t, "Greymond,_Avacyn's_Stalwart", got)
	})

	t.Run("printed-first falls back printed then oracle", func(t *testing.T) {
		pf := Face{Role: RoleSingle, Name: "Oracle Name", PrintedName: "Printed Name"}
		got := BuildBaseName(scryfall.Card{Name: "Oracle Name"}, pf, 1, PrintedFirst)
		assert.Equal(t, "Printed_Name", got)

		pf.PrintedName = ""
		got = BuildBaseName(scryfall.Card{Name: "Oracle Name"}, pf, 1, PrintedFirst)
		assert.Equal(t, "Oracle_Name", got)
	})
}

func TestBuildBaseNameNeverEmpty(t *testing.T) {
	got := BuildBaseName(scryfall.Card{}, Face{Role: RoleSingle}, 1, OracleFirst)
	require.NotEmpty(t, got)
	assert.Equal(t, FallbackName, got)
}

func TestSingleStem(t *testing.T) {
	card := scryfall.Card{Name: "Giant Growth", Set: "lea"}
	face := Face{Role: RoleSingle, Name: "Giant Growth"}
	assert.Equal(t, "LEA_Giant_Growth", SingleStem(card, face, 1, OracleFirst))
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PrintedFirst, ParsePolicy("printed"))
	assert.Equal(t, PrintedFirst, ParsePolicy(" Printed "))
	assert.Equal(t, OracleFirst, ParsePolicy("oracle"))
	assert.Equal(t, OracleFirst, ParsePolicy("anything else"))
}
