package market

import (
	"testing"

	"coinsniper/internal/model"
)

func testSeries(closes ...float64) model.Series {
	s := make(model.Series, len(closes))
	for i, c := range closes {
		s[i] = model.Candle{Close: c, High: c, Low: c, Open: c}
	}
	return s
}

func TestBook_ReplaceAndSnapshot(t *testing.T) {
	b := NewBook()
	if snap := b.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty book, got %d entries", len(snap))
	}

	b.Replace(model.SeriesMap{"BTC": testSeries(100)})
	if got := b.Snapshot()["BTC"][0].Close; got != 100 {
		t.Fatalf("expected replaced series visible, got %.0f", got)
	}

	b.Replace(nil)
	if snap := b.Snapshot(); snap == nil || len(snap) != 0 {
		t.Fatal("nil replacement must leave an empty, non-nil map")
	}
}

func TestBook_ApplyTickPatchesHead(t *testing.T) {
	b := NewBook()
	b.Replace(model.SeriesMap{"ETH": testSeries(3000, 2900)})

	if !b.ApplyTick("ETH", 3100) {
		t.Fatal("expected tick applied")
	}
	head := b.Snapshot()["ETH"][0]
	if head.Close != 3100 {
		t.Errorf("expected close patched to 3100, got %.0f", head.Close)
	}
	if head.High != 3100 {
		t.Errorf("expected high widened to 3100, got %.0f", head.High)
	}

	// A lower price widens the low but not the high.
	b.ApplyTick("ETH", 2800)
	head = b.Snapshot()["ETH"][0]
	if head.Low != 2800 || head.High != 3100 {
		t.Errorf("expected low=2800 high=3100, got low=%.0f high=%.0f", head.Low, head.High)
	}
}

func TestBook_ApplyTickIsCopyOnWrite(t *testing.T) {
	b := NewBook()
	b.Replace(model.SeriesMap{"BTC": testSeries(100, 90)})

	before := b.Snapshot()
	b.ApplyTick("BTC", 120)

	if before["BTC"][0].Close != 100 {
		t.Errorf("earlier snapshot mutated: close=%.0f", before["BTC"][0].Close)
	}
	if b.Snapshot()["BTC"][0].Close != 120 {
		t.Errorf("new snapshot missing the patch")
	}
	// Untouched symbols keep their identity across the swap.
	if before["BTC"][1] != b.Snapshot()["BTC"][1] {
		t.Errorf("non-head candles should be value-identical after patch")
	}
}

func TestBook_ApplyTickUnknownSymbol(t *testing.T) {
	b := NewBook()
	b.Replace(model.SeriesMap{"BTC": testSeries(100)})

	if b.ApplyTick("DOGE", 0.1) {
		t.Error("tick for absent symbol must be a no-op")
	}
	if b.ApplyTick("EMPTY", 1) {
		t.Error("tick for empty series must be a no-op")
	}
}
