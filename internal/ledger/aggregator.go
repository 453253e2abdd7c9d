package ledger

import (
	"context"
	"sort"
	"time"

	"bullion-backend/internal/metrics"
	"bullion-backend/internal/models"
	"bullion-backend/internal/store"
)

// NomineeLedger is the statement of one nominee over a date range.
type NomineeLedger struct {
	Transactions   []Entry            `json:"transactions"`
	NomineeID      uint               `json:"nomineeId"`
	NomineeName    string             `json:"nomineeName"`
	NomineeType    models.NomineeType `json:"nomineeType"`
	Range          DateRange          `json:"-"`
	OpeningBalance models.Balance     `json:"openingBalance"`
	PeriodTotals   models.Balance     `json:"totals"`
	ClosingBalance models.Balance     `json:"closingBalance"`
	CurrentBalance models.Balance     `json:"currentBalance"`
}

// ListTransactions returns every transaction of the nominee whose date falls
// in r, newest first, each carrying the running balance after it.
func (s *Service) ListTransactions(ctx context.Context, nomineeID uint, r DateRange) (*NomineeLedger, error) {
	defer metrics.ObserveLedgerRead("nominee", time.Now())

	n, err := s.Nominee(ctx, nomineeID)
	if err != nil {
		return nil, err
	}

	owner := store.Where("nominee_id = ?", nomineeID)
	entries, err := collect(ctx, s.gw, append([]store.Filter{owner}, r.filters("date")...))
	if err != nil {
		return nil, err
	}
	SortByDate(entries)

	opening := models.Balance{}
	if r.Start != nil {
		earlier, err := collect(ctx, s.gw, []store.Filter{owner, store.Where("date < ?", *r.Start)})
		if err != nil {
			return nil, err
		}
		opening = Sum(earlier)
	}

	running := opening
	for i := len(entries) - 1; i >= 0; i-- {
		running = running.Add(entries[i].Contribution)
		b := running
		entries[i].Running = &b
		entries[i].NomineeName = n.Name
	}

	return &NomineeLedger{
		Transactions:   entries,
		NomineeID:      n.ID,
		NomineeName:    n.Name,
		NomineeType:    n.Type,
		Range:          r,
		OpeningBalance: opening,
		PeriodTotals:   Sum(entries),
		ClosingBalance: running,
		CurrentBalance: n.CurrentBalance,
	}, nil
}

// ListAllTransactions returns transactions of every nominee last modified in
// r, most recently modified first.
func (s *Service) ListAllTransactions(ctx context.Context, r DateRange) ([]Entry, error) {
	defer metrics.ObserveLedgerRead("all", time.Now())

	entries, err := collect(ctx, s.gw, r.filters("updated_at"))
	if err != nil {
		return nil, err
	}
	SortByUpdated(entries)

	if len(entries) == 0 {
		return entries, nil
	}
	ids := make([]uint, 0, len(entries))
	seen := make(map[uint]bool)
	for _, e := range entries {
		if !seen[e.NomineeID] {
			seen[e.NomineeID] = true
			ids = append(ids, e.NomineeID)
		}
	}
	nominees, err := store.Find[models.Nominee](ctx, s.gw, store.Query{
		Filters: []store.Filter{store.Where("id IN ?", ids)},
	})
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(nominees))
	for _, n := range nominees {
		names[n.ID] = n.Name
	}
	for i := range entries {
		entries[i].NomineeName = names[entries[i].NomineeID]
	}
	return entries, nil
}

// LedgerTotal sums every transaction of the nominee straight from the
// transaction tables.
func LedgerTotal(ctx context.Context, g *store.Gateway, nomineeID uint) (models.Balance, error) {
	entries, err := collect(ctx, g, []store.Filter{store.Where("nominee_id = ?", nomineeID)})
	if err != nil {
		return models.Balance{}, err
	}
	return Sum(entries), nil
}

func (r DateRange) filters(column string) []store.Filter {
	var out []store.Filter
	if r.Start != nil {
		out = append(out, store.Where(column+" >= ?", *r.Start))
	}
	if r.End != nil {
		out = append(out, store.Where(column+" <= ?", *r.End))
	}
	return out
}

func collect(ctx context.Context, g *store.Gateway, filters []store.Filter) ([]Entry, error) {
	q := store.Query{Filters: filters, Order: []string{"id asc"}}

	materials, err := store.Find[models.MaterialTransaction](ctx, g, q)
	if err != nil {
		return nil, err
	}
	gives, err := store.Find[models.ProductGiveTransaction](ctx, g, q)
	if err != nil {
		return nil, err
	}
	takes, err := store.Find[models.ProductTakeTransaction](ctx, g, q)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(materials)+len(gives)+len(takes))
	for i := range materials {
		entries = append(entries, materialEntry(&materials[i]))
	}
	for i := range gives {
		entries = append(entries, productGiveEntry(&gives[i]))
	}
	for i := range takes {
		entries = append(entries, productTakeEntry(&takes[i]))
	}
	return entries, nil
}

// SortByDate orders by transaction date, newest first. Ties go to the most
// recently created record, then kind, then id.
func SortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return tieBreak(a, b)
	})
}

// SortByUpdated orders by last modification, newest first.
func SortByUpdated(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return tieBreak(a, b)
	})
}

func tieBreak(a, b Entry) bool {
	if a.Kind != b.Kind {
		return a.Kind.rank() < b.Kind.rank()
	}
	return a.ID > b.ID
}
