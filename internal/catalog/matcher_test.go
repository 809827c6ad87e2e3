package catalog

import (
	"testing"

	"github.com/lib/pq"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
)

func f64Ptr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func testRows() []CatalogRow {
	return []CatalogRow{
		{
			ID:          1,
			DesignKey:   "wolf ring",
			RingSize:    strPtr("7"),
			SilverUSD:   f64Ptr(12.5),
			SilverG:     f64Ptr(8),
			GoldUSD:     f64Ptr(95),
			GoldG:       f64Ptr(7.5),
			ProductKeys: pq.StringArray{"Wolf Head Ring", "Lobo Ring"},
		},
		{
			ID:        2,
			DesignKey: "wolf ring",
			RingSize:  strPtr("9"),
			SilverUSD: f64Ptr(14),
			SilverG:   f64Ptr(9),
		},
		{
			ID:        3,
			DesignKey: "raven pendant",
			RingSize:  nil,
			SilverUSD: f64Ptr(10),
			SilverG:   f64Ptr(6),
			BronzeUSD: f64Ptr(4),
			BronzeG:   f64Ptr(7),
		},
		{
			ID:        4,
			DesignKey: "empty piece",
			RingSize:  strPtr("N/A"),
		},
	}
}

func item(name string, metal enums.MetalType, ringSize *string) orders.OrderItem {
	return orders.OrderItem{Name: name, Quantity: 1, MetalType: metal, RingSize: ringSize}
}

func TestMatchAliasBeatsDesignKey(t *testing.T) {
	got := Match(item("Wolf Head Ring", enums.MetalSilver, strPtr("7")), testRows())
	if got == nil {
		t.Fatal("expected alias match")
	}
	if got.CostUSD != 12.5 || got.WeightG != 8 {
		t.Fatalf("expected row 1 silver columns, got %+v", got)
	}
}

func TestMatchAliasContains(t *testing.T) {
	got := Match(item("Sterling Lobo Ring size 7", enums.MetalSilver, strPtr("7")), testRows())
	if got == nil || got.CostUSD != 12.5 {
		t.Fatalf("expected contains-alias match, got %+v", got)
	}
}

func TestMatchDesignKeySubstringBothWays(t *testing.T) {
	// Item name inside design key.
	got := Match(item("raven", enums.MetalSilver, nil), testRows())
	if got == nil || got.CostUSD != 10 {
		t.Fatalf("expected design-key match, got %+v", got)
	}

	// Design key inside item name.
	got = Match(item("large raven pendant on chain", enums.MetalBronze, nil), testRows())
	if got == nil || got.CostUSD != 4 || got.WeightG != 7 {
		t.Fatalf("expected bronze columns, got %+v", got)
	}
}

func TestMatchRingSizeConstraint(t *testing.T) {
	rows := testRows()

	// Concrete row size requires the item to state the same size.
	if got := Match(item("wolf ring", enums.MetalSilver, nil), rows); got != nil {
		t.Fatalf("sized rows must not match a sizeless item, got %+v", got)
	}

	// Size 9 item skips the size-7 row and lands on row 2.
	got := Match(item("wolf ring", enums.MetalSilver, strPtr(" 9 ")), rows)
	if got == nil || got.CostUSD != 14 {
		t.Fatalf("expected size 9 row, got %+v", got)
	}
}

func TestMatchRingSizeWildcards(t *testing.T) {
	rows := []CatalogRow{
		{ID: 1, DesignKey: "cuff", RingSize: strPtr(""), SilverUSD: f64Ptr(5)},
		{ID: 2, DesignKey: "band", RingSize: strPtr("N/A"), SilverUSD: f64Ptr(6)},
	}

	if got := Match(item("cuff", enums.MetalSilver, nil), rows); got == nil || got.CostUSD != 5 {
		t.Fatalf("empty row size must match anything, got %+v", got)
	}
	if got := Match(item("band", enums.MetalSilver, strPtr("7")), rows); got == nil || got.CostUSD != 6 {
		t.Fatalf("N/A row size must match anything, got %+v", got)
	}
}

func TestMatchUnknownMetalSumsAll(t *testing.T) {
	got := Match(item("raven pendant", enums.MetalUnknown, nil), testRows())
	if got == nil {
		t.Fatal("expected match")
	}
	if got.CostUSD != 14 || got.WeightG != 13 {
		t.Fatalf("expected summed metals, got %+v", got)
	}
}

func TestMatchAllZeroRowReturnsNil(t *testing.T) {
	if got := Match(item("empty piece", enums.MetalGold, nil), testRows()); got != nil {
		t.Fatalf("row without cost or weight must resolve to nil, got %+v", got)
	}
}

func TestMatchNoCandidate(t *testing.T) {
	if got := Match(item("mystery object", enums.MetalSilver, nil), testRows()); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	rows := testRows()
	first := Match(item("wolf ring", enums.MetalSilver, strPtr("7")), rows)
	for i := 0; i < 5; i++ {
		again := Match(item("wolf ring", enums.MetalSilver, strPtr("7")), rows)
		if first == nil || again == nil || *first != *again {
			t.Fatalf("match result changed between runs: %+v vs %+v", first, again)
		}
	}
}
