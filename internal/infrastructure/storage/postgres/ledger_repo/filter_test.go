package ledger_repo

import (
	"testing"
	"time"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/ledger"
)

func TestBuildListQuery_Filters(t *testing.T) {
	repo := NewMovementRepo(nil)

	sparePartID := id.MustParse("0194e7a0-0000-7000-8000-000000000001")
	warehouseID := id.MustParse("0194e7a0-0000-7000-8000-000000000002")
	kind := entity.KindTransferOut
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   ledger.MovementFilter
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "no filters",
			filter:   ledger.MovementFilter{},
			wantSQL:  "SELECT id, sequence_number, occurred_at, spare_part_id, warehouse_id, kind, quantity, counterpart_warehouse_id, correlation_id, remark, created_at FROM stock_movements ORDER BY sequence_number",
			wantArgs: 0,
		},
		{
			name:     "pair filter",
			filter:   ledger.MovementFilter{SparePartID: &sparePartID, WarehouseID: &warehouseID},
			wantSQL:  "SELECT id, sequence_number, occurred_at, spare_part_id, warehouse_id, kind, quantity, counterpart_warehouse_id, correlation_id, remark, created_at FROM stock_movements WHERE spare_part_id = $1 AND warehouse_id = $2 ORDER BY sequence_number",
			wantArgs: 2,
		},
		{
			name:     "kind filter",
			filter:   ledger.MovementFilter{Kind: &kind},
			wantSQL:  "SELECT id, sequence_number, occurred_at, spare_part_id, warehouse_id, kind, quantity, counterpart_warehouse_id, correlation_id, remark, created_at FROM stock_movements WHERE kind = $1 ORDER BY sequence_number",
			wantArgs: 1,
		},
		{
			name:     "date range inclusive from exclusive to",
			filter:   ledger.MovementFilter{From: &from, To: &to},
			wantSQL:  "SELECT id, sequence_number, occurred_at, spare_part_id, warehouse_id, kind, quantity, counterpart_warehouse_id, correlation_id, remark, created_at FROM stock_movements WHERE occurred_at >= $1 AND occurred_at < $2 ORDER BY sequence_number",
			wantArgs: 2,
		},
		{
			name:     "paging",
			filter:   ledger.MovementFilter{Limit: 50, Offset: 100},
			wantSQL:  "SELECT id, sequence_number, occurred_at, spare_part_id, warehouse_id, kind, quantity, counterpart_warehouse_id, correlation_id, remark, created_at FROM stock_movements ORDER BY sequence_number LIMIT 50 OFFSET 100",
			wantArgs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.buildListQuery(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("Args count mismatch\nwant: %d\ngot:  %d", tt.wantArgs, len(args))
			}
		})
	}
}
