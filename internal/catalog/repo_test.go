package catalog

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/db"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

func TestLoadRows(t *testing.T) {
	dsn := os.Getenv(config.EnvCatalogDSN)
	if dsn == "" {
		t.Skipf("%s not set; skipping catalog db test", config.EnvCatalogDSN)
	}

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := db.New(ctx, config.CatalogDBConfig{DSN: dsn}, logg)
	if err != nil {
		t.Fatalf("connect catalog db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	repo, err := NewRepository(client)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	first, err := repo.LoadRows(ctx)
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}

	// Load order drives match precedence; two loads must agree.
	second, err := repo.LoadRows(ctx)
	if err != nil {
		t.Fatalf("reload rows: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("row count changed between loads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("row order changed at %d: %d vs %d", i, first[i].ID, second[i].ID)
		}
	}
}
