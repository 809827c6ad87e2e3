package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kingsofalchemy/ordertracker-backend/pkg/db"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
)

// Repository reads the piece-cost catalog. The table is maintained by an
// external pipeline; this side never writes.
type Repository struct {
	conn *gorm.DB
}

func NewRepository(client *db.Client) (*Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &Repository{conn: client.DB()}, nil
}

// LoadRows returns every catalog row in stable insertion order. Match
// precedence depends on that order, so it must not vary between loads.
func (r *Repository) LoadRows(ctx context.Context) ([]CatalogRow, error) {
	var rows []CatalogRow
	if err := r.conn.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load piece cost catalog")
	}
	return rows, nil
}
