package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathFor(dir, base string) ResolvedPath {
	return ResolvedPath{Dir: dir, Base: base, StemSuffix: ".fullborder", Ext: ".jpg"}
}

func TestEnumerateSuffixesDuplicates(t *testing.T) {
	in := []ResolvedPath{
		pathFor("Cards/LEA", "Giant_Growth"),
		pathFor("Cards/LEA", "Giant_Growth"),
		pathFor("Cards/LEA", "Giant_Growth"),
	}
	out := Enumerate(in)
	require.Len(t, out, 3)
	assert.Equal(t, "Giant_Growth.fullborder.jpg", out[0].FileName())
	assert.Equal(t, "Giant_Growth_2.fullborder.jpg", out[1].FileName())
	assert.Equal(t, "Giant_Growth_3.fullborder.jpg", out[2].FileName())
}

func TestEnumerateIsCaseInsensitive(t *testing.T) {
	out := Enumerate([]ResolvedPath{
		pathFor("Cards/LEA", "Shock"),
		pathFor("Cards/LEA", "SHOCK"),
	})
	assert.Equal(t, "Shock", out[0].Base)
	assert.Equal(t, "SHOCK_2", out[1].Base)
}

func TestEnumerateScopedPerDirectory(t *testing.T) {
	out := Enumerate([]ResolvedPath{
		pathFor("Cards/LEA", "Shock"),
		pathFor("Cards/M19", "Shock"),
	})
	assert.Equal(t, "Shock", out[0].Base)
	assert.Equal(t, "Shock", out[1].Base)
}

func TestEnumeratePreservesInputOrder(t *testing.T) {
	in := []ResolvedPath{
		pathFor("d", "b"),
		pathFor("d", "a"),
		pathFor("d", "b"),
	}
	out := Enumerate(in)
	assert.Equal(t, []string{"b", "a", "b_2"}, []string{out[0].Base, out[1].Base, out[2].Base})
}

func TestEnumerateIdempotentOnOwnOutput(t *testing.T) {
	first := Enumerate([]ResolvedPath{
		pathFor("Cards/LEA", "Giant_Growth"),
		pathFor("Cards/LEA", "Giant_Growth"),
		pathFor("Cards/LEA", "Llanowar_Elves"),
	})
	second := Enumerate(first)
	assert.Equal(t, first, second)
}

func TestEnumerateSetsRelPath(t *testing.T) {
	out := Enumerate([]ResolvedPath{pathFor("Cards/LEA", "Shock")})
	assert.Contains(t, out[0].RelPath, "Shock.fullborder.jpg")
	assert.Contains(t, out[0].RelPath, "LEA")
}
