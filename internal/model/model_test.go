package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGender(t *testing.T) {
	cases := map[string]Gender{
		"Masculino": GenderMasculine,
		"femenino":  GenderFeminine,
		" Unisex ":  GenderUnisex,
		"":          GenderUnisex,
		"other":     GenderUnisex,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseGender(in), in)
	}
}

func TestNormalize(t *testing.T) {
	p := Product{Stock: -2, IsAvailable: true, Gender: "Femenino"}
	p.Normalize()

	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.IsAvailable)
	assert.Equal(t, GenderFeminine, p.Gender)
	assert.Equal(t, DefaultCategory, p.Category)

	hidden := Product{Stock: 4, IsAvailable: false, Gender: GenderUnisex, Category: "Frescos"}
	hidden.Normalize()
	assert.False(t, hidden.IsAvailable)
	assert.Equal(t, "Frescos", hidden.Category)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("  Ana María  López ")
	assert.Equal(t, "Ana", first)
	assert.Equal(t, "María López", last)

	first, last = SplitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
