package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/pkg/common"
)

func TestBuildWithEmbeddedDataOnly(t *testing.T) {
	loader := NewLoader(config.CatalogConfig{})

	c, err := loader.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, notes.DefaultCatalog(nil).Names(), c.Names())
}

func TestBuildMergesFileAndRemoteLibraries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Osmanthus Assoluta", "group": "Assoluta", "families": ["Fiorita", "Fruttata"], "pyramid": ["Heart"]}
	]`), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"name": "Ambrettolide", "group": "Molecola", "families": ["Muschiata"], "pyramid": ["Base"], "aliases": ["Ambrette musk"]}
		]}`))
	}))
	defer srv.Close()

	loader := NewLoader(config.CatalogConfig{
		MasterLibraryPath: path,
		MasterLibraryURL:  srv.URL,
		FetchTimeout:      5 * time.Second,
	})
	c, err := loader.Build(context.Background(), []notes.Alias{{Alias: "osmanto", Canonical: "osmanthus assoluta"}})
	require.NoError(t, err)

	r := notes.NewResolver(c, nil)

	res := r.Resolve("Osmanthus Assoluta")
	require.NotNil(t, res.Profile)
	assert.Equal(t, []string{notes.LevelHeart}, res.Profile.Pyramid)

	res = r.Resolve("ambrette musk")
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Ambrettolide", res.Profile.Name)
	assert.Equal(t, notes.TierAlias, res.Tier)

	res = r.Resolve("Osmanto")
	assert.Equal(t, "Osmanthus Assoluta", res.Profile.Name)
}

func TestMasterLibraryErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  config.CatalogConfig
	}{
		{"missing file", config.CatalogConfig{MasterLibraryPath: filepath.Join(t.TempDir(), "absent.json")}},
		{"bad status", config.CatalogConfig{MasterLibraryURL: srv.URL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.cfg).MasterLibrary(context.Background())
			require.Error(t, err)

			var custom *common.CustomError
			require.True(t, errors.As(err, &custom))
			assert.Equal(t, common.ErrCodeCatalogLoad, custom.Code)
		})
	}
}
