package notes

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim and lower", input: "  Bergamotto FCF ", want: "bergamotto fcf"},
		{name: "diacritics", input: "Burro di Karité", want: "burro di karite"},
		{name: "curly apostrophe", input: "Fiori d’Arancio", want: "fiori d'arancio"},
		{name: "backtick apostrophe", input: "Fiori d`Arancio", want: "fiori d'arancio"},
		{name: "collapse whitespace", input: "Ylang \t  Ylang\n", want: "ylang ylang"},
		{name: "decomposed input", input: "Karité", want: "karite"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"ÉTANOLO 96°",
		"Crème Brûlée ’Accord’",
		"Ylang Ylang",
		"Çà  ÖÜ ñ",
		"Fiori d‘Arancio",
	}
	faker := gofakeit.New(20240601)
	for i := 0; i < 200; i++ {
		inputs = append(inputs, faker.Sentence(4), faker.Name(), faker.City()+"  "+faker.Color())
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestCanonicalLevel(t *testing.T) {
	assert.Equal(t, LevelTop, CanonicalLevel("Top"))
	assert.Equal(t, LevelHeart, CanonicalLevel("heart"))
	assert.Equal(t, LevelBase, CanonicalLevel("Base"))
	assert.Equal(t, LevelBase, CanonicalLevel("Fondo"))
	assert.Equal(t, "Scia", CanonicalLevel("Scia"))
}

func TestIsNeutralFamily(t *testing.T) {
	assert.True(t, IsNeutralFamily("Neutral"))
	assert.True(t, IsNeutralFamily("Neutra"))
	assert.True(t, IsNeutralFamily("custom"))
	assert.False(t, IsNeutralFamily("Fiorita"))
}
