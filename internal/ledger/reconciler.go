package ledger

import (
	"context"
	"errors"
	"fmt"

	"bullion-backend/internal/metrics"
	"bullion-backend/internal/models"
	"bullion-backend/internal/store"
)

// errOwnerMoved signals that a record changed nominee between the unlocked
// read and the locked write; the caller retries.
var errOwnerMoved = errors.New("transaction moved to another nominee")

const maxOwnerRetries = 3

// kindOps adapts one transaction model M and its input I to the generic
// mutation flow below.
type kindOps[M any, I any] struct {
	kind    Kind
	owner   func(*M) uint
	input   func(*M) I
	build   func(I) (*M, error)
	restamp func(next, prev *M)
}

var materialOps = kindOps[models.MaterialTransaction, MaterialInput]{
	kind:  KindMaterial,
	owner: func(m *models.MaterialTransaction) uint { return m.NomineeID },
	input: materialInputOf,
	build: MaterialInput.build,
	restamp: func(next, prev *models.MaterialTransaction) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
	},
}

var productGiveOps = kindOps[models.ProductGiveTransaction, ProductGiveInput]{
	kind:  KindProductGive,
	owner: func(m *models.ProductGiveTransaction) uint { return m.NomineeID },
	input: productGiveInputOf,
	build: ProductGiveInput.build,
	restamp: func(next, prev *models.ProductGiveTransaction) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
	},
}

var productTakeOps = kindOps[models.ProductTakeTransaction, ProductTakeInput]{
	kind:  KindProductTake,
	owner: func(m *models.ProductTakeTransaction) uint { return m.NomineeID },
	input: productTakeInputOf,
	build: ProductTakeInput.build,
	restamp: func(next, prev *models.ProductTakeTransaction) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
	},
}

func (s *Service) CreateMaterial(ctx context.Context, in MaterialInput) (*models.MaterialTransaction, error) {
	return createRecord(ctx, s, materialOps, in)
}

func (s *Service) UpdateMaterial(ctx context.Context, id uint, patch func(*MaterialInput) error) (*models.MaterialTransaction, error) {
	return updateRecord(ctx, s, materialOps, id, patch)
}

func (s *Service) DeleteMaterial(ctx context.Context, id uint) (*models.MaterialTransaction, error) {
	return deleteRecord(ctx, s, materialOps, id)
}

func (s *Service) CreateProductGive(ctx context.Context, in ProductGiveInput) (*models.ProductGiveTransaction, error) {
	return createRecord(ctx, s, productGiveOps, in)
}

func (s *Service) UpdateProductGive(ctx context.Context, id uint, patch func(*ProductGiveInput) error) (*models.ProductGiveTransaction, error) {
	return updateRecord(ctx, s, productGiveOps, id, patch)
}

func (s *Service) DeleteProductGive(ctx context.Context, id uint) (*models.ProductGiveTransaction, error) {
	return deleteRecord(ctx, s, productGiveOps, id)
}

func (s *Service) CreateProductTake(ctx context.Context, in ProductTakeInput) (*models.ProductTakeTransaction, error) {
	return createRecord(ctx, s, productTakeOps, in)
}

func (s *Service) UpdateProductTake(ctx context.Context, id uint, patch func(*ProductTakeInput) error) (*models.ProductTakeTransaction, error) {
	return updateRecord(ctx, s, productTakeOps, id, patch)
}

func (s *Service) DeleteProductTake(ctx context.Context, id uint) (*models.ProductTakeTransaction, error) {
	return deleteRecord(ctx, s, productTakeOps, id)
}

// DeleteByKind deletes a transaction of the given kind and returns its entry.
func (s *Service) DeleteByKind(ctx context.Context, kind Kind, id uint) (Entry, error) {
	switch kind {
	case KindMaterial:
		t, err := s.DeleteMaterial(ctx, id)
		if err != nil {
			return Entry{}, err
		}
		return materialEntry(t), nil
	case KindProductGive:
		t, err := s.DeleteProductGive(ctx, id)
		if err != nil {
			return Entry{}, err
		}
		return productGiveEntry(t), nil
	case KindProductTake:
		t, err := s.DeleteProductTake(ctx, id)
		if err != nil {
			return Entry{}, err
		}
		return productTakeEntry(t), nil
	}
	return Entry{}, fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, kind)
}

func createRecord[M any, I any](ctx context.Context, s *Service, ops kindOps[M, I], in I) (*M, error) {
	rec, err := ops.build(in)
	if err != nil {
		return nil, err
	}
	owner := ops.owner(rec)

	unlock := s.locks.Lock(owner)
	defer unlock()

	err = s.gw.Transaction(ctx, func(tx *store.Gateway) error {
		if err := requireNominee(ctx, tx, owner); err != nil {
			return err
		}
		if err := store.Insert(ctx, tx, rec); err != nil {
			return err
		}
		return s.reconcile(ctx, tx, owner)
	})
	if err != nil {
		s.failed(ops.kind, "create", owner, err)
		return nil, err
	}

	metrics.LedgerMutation(string(ops.kind), "create")
	s.log.Info("ledger transaction created", "kind", ops.kind, "nominee_id", owner)
	return rec, nil
}

func updateRecord[M any, I any](ctx context.Context, s *Service, ops kindOps[M, I], id uint, patch func(*I) error) (*M, error) {
	for attempt := 0; attempt < maxOwnerRetries; attempt++ {
		cur, err := store.FindByID[M](ctx, s.gw, id)
		if err != nil {
			return nil, fmt.Errorf("%s transaction %d: %w", ops.kind, id, err)
		}
		next, err := applyPatch(ops, cur, patch)
		if err != nil {
			return nil, err
		}
		oldOwner, newOwner := ops.owner(cur), ops.owner(next)

		out, err := updateLocked(ctx, s, ops, id, patch, oldOwner, newOwner)
		if errors.Is(err, errOwnerMoved) {
			continue
		}
		if err != nil {
			s.failed(ops.kind, "update", oldOwner, err)
			return nil, err
		}

		metrics.LedgerMutation(string(ops.kind), "update")
		s.log.Info("ledger transaction updated", "kind", ops.kind, "id", id, "nominee_id", newOwner)
		return out, nil
	}
	return nil, fmt.Errorf("%s transaction %d: %w", ops.kind, id, errOwnerMoved)
}

func updateLocked[M any, I any](ctx context.Context, s *Service, ops kindOps[M, I], id uint, patch func(*I) error, oldOwner, newOwner uint) (*M, error) {
	unlock := s.locks.Lock(oldOwner, newOwner)
	defer unlock()

	var out *M
	err := s.gw.Transaction(ctx, func(tx *store.Gateway) error {
		fresh, err := store.FindByID[M](ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%s transaction %d: %w", ops.kind, id, err)
		}
		next, err := applyPatch(ops, fresh, patch)
		if err != nil {
			return err
		}
		if ops.owner(fresh) != oldOwner || ops.owner(next) != newOwner {
			return errOwnerMoved
		}
		if newOwner != oldOwner {
			if err := requireNominee(ctx, tx, newOwner); err != nil {
				return err
			}
		}
		if err := store.Replace(ctx, tx, id, next); err != nil {
			return err
		}
		if err := s.reconcile(ctx, tx, oldOwner); err != nil {
			return err
		}
		if newOwner != oldOwner {
			if err := s.reconcile(ctx, tx, newOwner); err != nil {
				return err
			}
		}
		out, err = store.FindByID[M](ctx, tx, id)
		return err
	})
	return out, err
}

func deleteRecord[M any, I any](ctx context.Context, s *Service, ops kindOps[M, I], id uint) (*M, error) {
	for attempt := 0; attempt < maxOwnerRetries; attempt++ {
		cur, err := store.FindByID[M](ctx, s.gw, id)
		if err != nil {
			return nil, fmt.Errorf("%s transaction %d: %w", ops.kind, id, err)
		}
		owner := ops.owner(cur)

		out, err := deleteLocked(ctx, s, ops, id, owner)
		if errors.Is(err, errOwnerMoved) {
			continue
		}
		if err != nil {
			s.failed(ops.kind, "delete", owner, err)
			return nil, err
		}

		metrics.LedgerMutation(string(ops.kind), "delete")
		s.log.Info("ledger transaction deleted", "kind", ops.kind, "id", id, "nominee_id", owner)
		return out, nil
	}
	return nil, fmt.Errorf("%s transaction %d: %w", ops.kind, id, errOwnerMoved)
}

func deleteLocked[M any, I any](ctx context.Context, s *Service, ops kindOps[M, I], id, owner uint) (*M, error) {
	unlock := s.locks.Lock(owner)
	defer unlock()

	var out *M
	err := s.gw.Transaction(ctx, func(tx *store.Gateway) error {
		deleted, err := store.DeleteByID[M](ctx, tx, id)
		if err != nil {
			return fmt.Errorf("%s transaction %d: %w", ops.kind, id, err)
		}
		if ops.owner(deleted) != owner {
			return errOwnerMoved
		}
		out = deleted
		return s.reconcile(ctx, tx, owner)
	})
	return out, err
}

// applyPatch runs patch over the input form of cur and builds the resulting
// record, keeping cur's identity.
func applyPatch[M any, I any](ops kindOps[M, I], cur *M, patch func(*I) error) (*M, error) {
	in := ops.input(cur)
	if err := patch(&in); err != nil {
		return nil, err
	}
	next, err := ops.build(in)
	if err != nil {
		return nil, err
	}
	ops.restamp(next, cur)
	return next, nil
}

// reconcile recomputes the nominee balance from its full ledger inside tx.
func (s *Service) reconcile(ctx context.Context, tx *store.Gateway, nomineeID uint) error {
	total, err := LedgerTotal(ctx, tx, nomineeID)
	if err != nil {
		return &ReconciliationError{NomineeID: nomineeID, Err: err}
	}
	if err := writeBalance(ctx, tx, nomineeID, total); err != nil {
		return &ReconciliationError{NomineeID: nomineeID, Err: err}
	}
	return nil
}

func writeBalance(ctx context.Context, tx *store.Gateway, nomineeID uint, b models.Balance) error {
	_, err := store.UpdateByID[models.Nominee](ctx, tx, nomineeID, map[string]any{
		"current_fine":   b.Fine,
		"current_amount": b.Amount,
	})
	return err
}

func (s *Service) failed(kind Kind, op string, nomineeID uint, err error) {
	var rerr *ReconciliationError
	if errors.As(err, &rerr) {
		metrics.ReconciliationFailure()
		s.log.Error("balance reconciliation failed",
			"kind", kind, "op", op, "nominee_id", rerr.NomineeID, "err", rerr.Err)
		return
	}
	s.log.Warn("ledger mutation failed", "kind", kind, "op", op, "nominee_id", nomineeID, "err", err)
}

// BalanceCheck compares the cached nominee balance with its ledger.
type BalanceCheck struct {
	NomineeID uint           `json:"nomineeId"`
	Cached    models.Balance `json:"cached"`
	Ledger    models.Balance `json:"ledger"`
	Drift     models.Balance `json:"drift"`
	InSync    bool           `json:"inSync"`
}

func newBalanceCheck(id uint, cached, ledger models.Balance) BalanceCheck {
	return BalanceCheck{
		NomineeID: id,
		Cached:    cached,
		Ledger:    ledger,
		Drift:     cached.Sub(ledger),
		InSync:    cached.Equal(ledger),
	}
}

// Verify reports whether the cached balance matches the ledger. Read only.
func (s *Service) Verify(ctx context.Context, nomineeID uint) (BalanceCheck, error) {
	n, err := s.Nominee(ctx, nomineeID)
	if err != nil {
		return BalanceCheck{}, err
	}
	total, err := LedgerTotal(ctx, s.gw, nomineeID)
	if err != nil {
		return BalanceCheck{}, err
	}
	return newBalanceCheck(nomineeID, n.CurrentBalance, total), nil
}

// Recompute rebuilds the cached balance from the ledger. It is idempotent and
// is the repair path after a reconciliation failure or an out-of-band edit.
// The returned check holds the balance as it was before the repair.
func (s *Service) Recompute(ctx context.Context, nomineeID uint) (BalanceCheck, error) {
	unlock := s.locks.Lock(nomineeID)
	defer unlock()

	var check BalanceCheck
	err := s.gw.Transaction(ctx, func(tx *store.Gateway) error {
		n, err := store.FindByID[models.Nominee](ctx, tx, nomineeID)
		if err != nil {
			return fmt.Errorf("nominee %d: %w", nomineeID, err)
		}
		total, err := LedgerTotal(ctx, tx, nomineeID)
		if err != nil {
			return &ReconciliationError{NomineeID: nomineeID, Err: err}
		}
		check = newBalanceCheck(nomineeID, n.CurrentBalance, total)
		if check.InSync {
			return nil
		}
		if err := writeBalance(ctx, tx, nomineeID, total); err != nil {
			return &ReconciliationError{NomineeID: nomineeID, Err: err}
		}
		return nil
	})
	if err != nil {
		s.failed("", "recompute", nomineeID, err)
		return BalanceCheck{}, err
	}
	if !check.InSync {
		metrics.BalanceRepaired()
		s.log.Warn("nominee balance repaired",
			"nominee_id", nomineeID,
			"cached_fine", check.Cached.Fine.String(), "ledger_fine", check.Ledger.Fine.String(),
			"cached_amount", check.Cached.Amount.String(), "ledger_amount", check.Ledger.Amount.String())
	}
	return check, nil
}
