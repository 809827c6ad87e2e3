// Package catalog resolves order items against the piece-cost catalog to
// attach per-item material cost and weight.
package catalog

import "github.com/lib/pq"

// CatalogRow is one row of the piece_costs table. Per-metal cost and
// weight columns are nullable; a missing metal column reads as zero.
type CatalogRow struct {
	ID        int64    `gorm:"column:id;primaryKey"`
	DesignKey string   `gorm:"column:design_key"`
	RingSize  *string  `gorm:"column:ring_size"`
	VolumeCm3 *float64 `gorm:"column:volume_cm3"`

	SilverG   *float64 `gorm:"column:silver_g"`
	SilverUSD *float64 `gorm:"column:silver_usd"`
	GoldG     *float64 `gorm:"column:gold_g"`
	GoldUSD   *float64 `gorm:"column:gold_usd"`
	BronzeG   *float64 `gorm:"column:bronze_g"`
	BronzeUSD *float64 `gorm:"column:bronze_usd"`
	WaxUSD    *float64 `gorm:"column:wax_usd"`

	// Marketplace listing titles that map onto this design.
	ProductKeys pq.StringArray `gorm:"column:product_keys;type:text[]"`
}

func (CatalogRow) TableName() string {
	return "piece_costs"
}
