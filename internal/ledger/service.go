package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bullion-backend/internal/models"
	"bullion-backend/internal/store"
)

// Service is the ledger core: it aggregates a nominee's transactions and keeps
// the cached nominee balance in line with them.
type Service struct {
	gw    *store.Gateway
	locks *Locker
	log   *slog.Logger
}

func NewService(gw *store.Gateway, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{gw: gw, locks: NewLocker(), log: log}
}

func (s *Service) Gateway() *store.Gateway { return s.gw }

// Nominee loads a nominee or fails with store.ErrNotFound.
func (s *Service) Nominee(ctx context.Context, id uint) (*models.Nominee, error) {
	n, err := store.FindByID[models.Nominee](ctx, s.gw, id)
	if err != nil {
		return nil, fmt.Errorf("nominee %d: %w", id, err)
	}
	return n, nil
}

func requireNominee(ctx context.Context, g *store.Gateway, id uint) error {
	if _, err := store.FindByID[models.Nominee](ctx, g, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("nominee %d: %w", id, store.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) Material(ctx context.Context, id uint) (*models.MaterialTransaction, error) {
	return findTransaction[models.MaterialTransaction](ctx, s.gw, KindMaterial, id)
}

func (s *Service) ProductGive(ctx context.Context, id uint) (*models.ProductGiveTransaction, error) {
	return findTransaction[models.ProductGiveTransaction](ctx, s.gw, KindProductGive, id)
}

func (s *Service) ProductTake(ctx context.Context, id uint) (*models.ProductTakeTransaction, error) {
	return findTransaction[models.ProductTakeTransaction](ctx, s.gw, KindProductTake, id)
}

func findTransaction[M any](ctx context.Context, g *store.Gateway, kind Kind, id uint) (*M, error) {
	t, err := store.FindByID[M](ctx, g, id)
	if err != nil {
		return nil, fmt.Errorf("%s transaction %d: %w", kind, id, err)
	}
	return t, nil
}
