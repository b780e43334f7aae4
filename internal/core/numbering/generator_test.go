package numbering

import (
	"testing"
	"time"

	"fleetstock/internal/core/id"
)

func TestConfig_Format(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.Format("abc:2026-08", 7)
	if got != "MV-abc:2026-08-000007" {
		t.Errorf("expected MV-abc:2026-08-000007, got %s", got)
	}

	// Counter overflowing the pad width keeps growing, never truncates.
	got = cfg.Format("abc:2026-08", 1234567)
	if got != "MV-abc:2026-08-1234567" {
		t.Errorf("expected MV-abc:2026-08-1234567, got %s", got)
	}
}

func TestScopeKey_PerWarehousePerMonth(t *testing.T) {
	warehouseID := id.MustParse("0194e7a0-0000-7000-8000-000000000001")

	occurred := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	got := ScopeKey(warehouseID, occurred)
	want := "0194e7a0-0000-7000-8000-000000000001:2026-08"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Same warehouse, different month: different scope.
	nextMonth := ScopeKey(warehouseID, occurred.AddDate(0, 1, 0))
	if nextMonth == got {
		t.Error("expected different scope for different month")
	}

	// Scope is computed in UTC regardless of the input location.
	local := time.FixedZone("UTC+14", 14*3600)
	lateEvening := time.Date(2026, 9, 1, 10, 0, 0, 0, local) // still August in UTC
	if ScopeKey(warehouseID, lateEvening) != got {
		t.Error("expected scope to normalize to UTC")
	}
}
