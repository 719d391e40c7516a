package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRejectsNonObjects(t *testing.T) {
	for _, payload := range []string{`[1,2]`, `"formula"`, `42`, `not json`, ``} {
		_, err := ImportFormula([]byte(payload), defaultResolver())
		assert.ErrorIs(t, err, ErrNotObject, payload)
	}
}

func TestImportEmptyObjectUsesDefaults(t *testing.T) {
	f, err := ImportFormula([]byte(`{}`), defaultResolver())
	require.NoError(t, err)

	assert.Equal(t, DefaultName, f.Name)
	assert.Equal(t, TypeEDP, f.Type)
	assert.Equal(t, DefaultBatchWeight, f.BatchWeight)
	assert.Equal(t, DefaultDensity, f.Density)
	assert.NotNil(t, f.Materials)
	assert.Empty(t, f.Materials)
	assert.True(t, f.UpdatedAt.IsZero())
}

func TestImportCoercesMalformedFields(t *testing.T) {
	payload := `{
		"id": "formula-1",
		"name": "   ",
		"type": "edt",
		"batchWeight": "200",
		"density": 0,
		"updatedAt": "2024-06-01T10:00:00Z",
		"materials": [
			{"note": "bergamotto fcf", "grams": "10"},
			{"percent": 5},
			{"note": "Rosa", "grams": null, "dilution": "abc"},
			{"note": "Iris", "grams": -3, "dilution": 0},
			{"note": "Vetiver", "grams": 1, "dilution": 250},
			"junk"
		]
	}`

	f, err := ImportFormula([]byte(payload), defaultResolver())
	require.NoError(t, err)

	assert.Equal(t, "formula-1", f.ID)
	assert.Equal(t, DefaultName, f.Name)
	assert.Equal(t, TypeEDT, f.Type)
	assert.Equal(t, 200.0, f.BatchWeight)
	assert.Equal(t, DefaultDensity, f.Density)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), f.UpdatedAt.UTC())
	require.Len(t, f.Materials, 6)

	m := f.Materials[0]
	assert.Equal(t, "Bergamotto FCF", m.Note)
	assert.Equal(t, 10.0, m.Grams)
	assert.InDelta(t, 10/DefaultDensity, m.ML, tolerance)
	assert.InDelta(t, 5, m.Percent, tolerance)
	assert.Equal(t, 100.0, m.Dilution)
	assert.NotEmpty(t, m.ID)

	m = f.Materials[1]
	assert.Equal(t, "Nota 2", m.Note)
	assert.InDelta(t, 10, m.Grams, tolerance)
	assert.InDelta(t, 5, m.Percent, tolerance)

	assert.Equal(t, "Rosa", f.Materials[2].Note)
	assert.Zero(t, f.Materials[2].Grams)
	assert.Equal(t, 100.0, f.Materials[2].Dilution)

	assert.Zero(t, f.Materials[3].Grams)
	assert.Equal(t, 0.0, f.Materials[3].Dilution)
	assert.Equal(t, 100.0, f.Materials[4].Dilution)
	assert.Equal(t, "Nota 6", f.Materials[5].Note)

	assert.NotEqual(t, f.Materials[0].ID, f.Materials[1].ID)
}

func TestImportMaterialsNotArray(t *testing.T) {
	f, err := ImportFormula([]byte(`{"name":"Solo nome","materials":{"note":"Rosa"}}`), defaultResolver())
	require.NoError(t, err)
	assert.Equal(t, "Solo nome", f.Name)
	assert.Empty(t, f.Materials)
}

func TestExportImportRoundTrip(t *testing.T) {
	original := RecomputeFormula(Formula{
		ID:          "formula-42",
		Name:        "Notte d'Estate",
		Type:        TypeExtrait,
		BatchWeight: 50,
		Density:     0.9,
		UpdatedAt:   time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC),
		Materials: []Material{
			{Note: "Gelsomino", Grams: 4, Dilution: 100},
			{Note: "Sandalo", Grams: 6, Dilution: 50},
		},
	})

	data, err := ExportFormula(original)
	require.NoError(t, err)

	imported, err := ImportFormula(data, defaultResolver())
	require.NoError(t, err)

	assert.Equal(t, original.ID, imported.ID)
	assert.Equal(t, original.Name, imported.Name)
	assert.Equal(t, original.Type, imported.Type)
	assert.True(t, original.UpdatedAt.Equal(imported.UpdatedAt))
	require.Len(t, imported.Materials, 2)
	for i := range original.Materials {
		assert.Equal(t, original.Materials[i].Note, imported.Materials[i].Note)
		assert.InDelta(t, original.Materials[i].Grams, imported.Materials[i].Grams, tolerance)
		assert.InDelta(t, original.Materials[i].ML, imported.Materials[i].ML, tolerance)
		assert.Equal(t, original.Materials[i].Dilution, imported.Materials[i].Dilution)
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"Notte d'Estate", "json", "notte-d-estate.json"},
		{"  Été / Fougère: n°1  ", ".json", "ete-fougere-n-1.json"},
		{"", "pdf", "formula.pdf"},
		{"***", "json", "formula.json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFileName(tt.name, tt.ext))
		})
	}
}
