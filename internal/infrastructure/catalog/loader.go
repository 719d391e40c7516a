package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"parfum-formulator/internal/core/notes"
	"parfum-formulator/internal/infrastructure/config"
	"parfum-formulator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Loader 載入內建資料與設定的額外原料庫
type Loader struct {
	config config.CatalogConfig
	client *resty.Client
}

// NewLoader 建立原料庫載入器
func NewLoader(cfg config.CatalogConfig) *Loader {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "parfum-formulator")
	if cfg.FetchTimeout > 0 {
		client.SetTimeout(cfg.FetchTimeout)
	}

	return &Loader{
		config: cfg,
		client: client,
	}
}

// MasterLibrary 回傳內建原料庫，接著是本機檔案，最後是遠端來源
func (l *Loader) MasterLibrary(ctx context.Context) ([]notes.MasterNote, error) {
	library := notes.DefaultMasterLibrary()

	if path := strings.TrimSpace(l.config.MasterLibraryPath); path != "" {
		extra, err := l.readFile(path)
		if err != nil {
			return nil, err
		}
		common.LogInfo("已載入本機原料庫", zap.String("path", path), zap.Int("count", len(extra)))
		library = append(library, extra...)
	}

	if url := strings.TrimSpace(l.config.MasterLibraryURL); url != "" {
		extra, err := l.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		common.LogInfo("已下載遠端原料庫", zap.String("url", url), zap.Int("count", len(extra)))
		library = append(library, extra...)
	}

	return library, nil
}

// Build 建立目錄，userAliases 疊加在資料集別名之後
func (l *Loader) Build(ctx context.Context, userAliases []notes.Alias) (*notes.Catalog, error) {
	master, err := l.MasterLibrary(ctx)
	if err != nil {
		return nil, err
	}
	c := notes.BuildCatalog(notes.DefaultBaseNotes(), master, userAliases)
	common.LogInfo("原料目錄已建立",
		zap.Int("entries", c.Len()),
		zap.Int("aliases", c.AliasCount()),
	)
	return c, nil
}

func (l *Loader) readFile(path string) ([]notes.MasterNote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ErrCatalogLoad.Wrap(fmt.Errorf("read master library %s: %w", path, err))
	}
	items, err := notes.ParseMasterLibrary(data)
	if err != nil {
		return nil, common.ErrCatalogLoad.Wrap(fmt.Errorf("parse master library %s: %w", path, err))
	}
	return items, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]notes.MasterNote, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, common.ErrCatalogLoad.Wrap(fmt.Errorf("failed to fetch master library: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrCatalogLoad.Wrap(fmt.Errorf("master library returned status %d", resp.StatusCode()))
	}

	items, err := notes.ParseMasterLibrary(resp.Body())
	if err != nil {
		return nil, common.ErrCatalogLoad.Wrap(fmt.Errorf("parse remote master library: %w", err))
	}
	return items, nil
}
