package ledger

import (
	"context"
	"fmt"
	"time"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/core/numbering"
	"fleetstock/internal/core/tx"
	"fleetstock/internal/domain/projection"
	"fleetstock/pkg/logger"
)

// Service is the transaction ledger: the single source of truth for stock
// history. Append validates, numbers, persists and projects a movement in
// one atomic unit; there is no observable state where a ledger entry exists
// without its balance update.
type Service struct {
	repo      Repository
	projector *projection.Projector
	sequencer numbering.Generator
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, projector *projection.Projector, sequencer numbering.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		projector: projector,
		sequencer: sequencer,
		txManager: txManager,
	}
}

// Append validates and persists a movement draft, folding it into the stock
// projection within the same transaction. On success the returned movement
// carries its assigned id and sequence number.
//
// The sequence number is issued before the transaction opens; an allocation
// wasted by a later rollback leaves a gap, never a duplicate. A collision at
// persist time surfaces as DuplicateSequence and is safe to retry with a
// fresh number.
func (s *Service) Append(ctx context.Context, draft entity.StockMovement) (entity.StockMovement, error) {
	if err := draft.Validate(); err != nil {
		return entity.StockMovement{}, err
	}

	scopeKey := numbering.ScopeKey(draft.WarehouseID, draft.OccurredAt)
	sequenceNumber, err := s.sequencer.Next(ctx, scopeKey)
	if err != nil {
		return entity.StockMovement{}, fmt.Errorf("issue sequence number: %w", err)
	}

	movement := draft
	movement.ID = id.New()
	movement.SequenceNumber = sequenceNumber
	movement.CreatedAt = time.Now().UTC()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, &movement); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		if _, err := s.projector.Apply(ctx, movement); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return entity.StockMovement{}, err
	}

	logger.Info(ctx, "movement appended",
		"movement_id", movement.ID,
		"sequence_number", movement.SequenceNumber,
		"kind", movement.Kind,
		"spare_part_id", movement.SparePartID,
		"warehouse_id", movement.WarehouseID,
		"quantity", movement.Quantity,
	)

	return movement, nil
}

// ListMovements returns ledger entries matching the filter in sequence
// number order, for reconciliation and audit consumers.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.List(ctx, filter)
}

// GetMovement returns a single ledger entry.
func (s *Service) GetMovement(ctx context.Context, movementID id.ID) (entity.StockMovement, error) {
	return s.repo.GetByID(ctx, movementID)
}
