package catalog

import (
	"strings"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
)

// CostWeight is the resolved material cost and weight for one item.
type CostWeight struct {
	CostUSD float64 `json:"cost_usd"`
	WeightG float64 `json:"weight_g"`
}

// Match resolves an item against the catalog. Alias matches (product_keys)
// take precedence over design-key matches; within a tier the first
// qualifying row in load order wins. Returns nil when nothing matches or
// the matched row carries no cost and no weight for the item's metal.
func Match(item orders.OrderItem, rows []CatalogRow) *CostWeight {
	nameLower := strings.ToLower(item.Name)
	nameNormalized := strings.TrimSpace(nameLower)

	var itemRing *string
	if item.RingSize != nil {
		trimmed := strings.TrimSpace(*item.RingSize)
		itemRing = &trimmed
	}

	for i := range rows {
		row := &rows[i]
		if len(row.ProductKeys) == 0 {
			continue
		}
		for _, key := range row.ProductKeys {
			alias := strings.ToLower(strings.TrimSpace(key))
			if alias == nameNormalized || strings.Contains(nameLower, alias) {
				if ringMatches(row.RingSize, itemRing) {
					return pickCostWeight(row, item.MetalType)
				}
				break
			}
		}
	}

	for i := range rows {
		row := &rows[i]
		design := strings.ToLower(row.DesignKey)
		if design == nameNormalized ||
			strings.Contains(nameNormalized, design) ||
			strings.Contains(design, nameNormalized) {
			if ringMatches(row.RingSize, itemRing) {
				return pickCostWeight(row, item.MetalType)
			}
		}
	}

	return nil
}

// ringMatches applies the size constraint: a row without a concrete size
// fits any item, a row with one requires the item to state the same size.
func ringMatches(rowRing, itemRing *string) bool {
	if rowRing == nil {
		return true
	}
	if *rowRing == "" || *rowRing == "N/A" {
		return true
	}
	if itemRing == nil {
		return false
	}
	return strings.TrimSpace(*rowRing) == strings.TrimSpace(*itemRing)
}

func pickCostWeight(row *CatalogRow, metal enums.MetalType) *CostWeight {
	var cost, weight float64
	switch metal {
	case enums.MetalSilver:
		cost, weight = orZero(row.SilverUSD), orZero(row.SilverG)
	case enums.MetalGold:
		cost, weight = orZero(row.GoldUSD), orZero(row.GoldG)
	case enums.MetalBronze:
		cost, weight = orZero(row.BronzeUSD), orZero(row.BronzeG)
	default:
		// Metal could not be inferred from the listing; estimate with the
		// combined footprint across all metals.
		cost = orZero(row.SilverUSD) + orZero(row.GoldUSD) + orZero(row.BronzeUSD)
		weight = orZero(row.SilverG) + orZero(row.GoldG) + orZero(row.BronzeG)
	}
	if cost > 0 || weight > 0 {
		return &CostWeight{CostUSD: cost, WeightG: weight}
	}
	return nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
