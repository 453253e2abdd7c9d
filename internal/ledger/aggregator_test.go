package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"bullion-backend/internal/store"
)

func TestListTransactionsRangeIsInclusive(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Ravi")

	for _, in := range []MaterialInput{
		material(n.ID, "Jama", "1", "10", "2024-01-09T23:59:59Z"),
		material(n.ID, "Jama", "2", "20", "2024-01-10"),
		material(n.ID, "Jama", "3", "30", "2024-01-10T23:59:59Z"),
		material(n.ID, "Jama", "4", "40", "2024-01-11"),
	} {
		if _, err := svc.CreateMaterial(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	r, err := ParseDateRange("2024-01-10", "2024-01-10")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	l, err := svc.ListTransactions(ctx, n.ID, r)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(l.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(l.Transactions))
	}
	for _, e := range l.Transactions {
		if !r.Contains(e.Date) {
			t.Fatalf("entry dated %s outside range", e.Date)
		}
	}
	if !l.OpeningBalance.Fine.Equal(dec("1")) {
		t.Fatalf("opening fine = %s, want 1", l.OpeningBalance.Fine)
	}
	if !l.PeriodTotals.Fine.Equal(dec("5")) || !l.PeriodTotals.Amount.Equal(dec("50")) {
		t.Fatalf("period totals = %+v", l.PeriodTotals)
	}
	if !l.ClosingBalance.Fine.Equal(dec("6")) {
		t.Fatalf("closing fine = %s, want 6", l.ClosingBalance.Fine)
	}
	if !l.CurrentBalance.Fine.Equal(dec("10")) {
		t.Fatalf("current fine = %s, want 10", l.CurrentBalance.Fine)
	}
}

func TestListTransactionsMergesKindsNewestFirst(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Meena")

	if _, err := svc.CreateMaterial(ctx, material(n.ID, "Jama", "10", "0", "2024-02-01")); err != nil {
		t.Fatalf("material: %v", err)
	}
	if _, err := svc.CreateProductGive(ctx, ProductGiveInput{
		NomineeID: n.ID, Date: "2024-02-03", TotalFine: ptr(dec("4")),
	}); err != nil {
		t.Fatalf("give: %v", err)
	}
	if _, err := svc.CreateProductTake(ctx, ProductTakeInput{
		NomineeID: n.ID, Date: "2024-02-02", Amount: dec("100"),
	}); err != nil {
		t.Fatalf("take: %v", err)
	}

	l, err := svc.ListTransactions(ctx, n.ID, DateRange{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []Kind{KindProductGive, KindProductTake, KindMaterial}
	if len(l.Transactions) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(l.Transactions), len(want))
	}
	for i, k := range want {
		e := l.Transactions[i]
		if e.Kind != k {
			t.Fatalf("entry %d kind = %s, want %s", i, e.Kind, k)
		}
		if e.NomineeName != "Meena" {
			t.Fatalf("entry %d nominee name = %q", i, e.NomineeName)
		}
	}

	// newest entry carries the closing balance
	top := l.Transactions[0].Running
	if top == nil || !top.Fine.Equal(dec("6")) || !top.Amount.Equal(dec("100")) {
		t.Fatalf("running balance on newest = %+v, want {6 100}", top)
	}
	if !l.ClosingBalance.Equal(l.CurrentBalance) {
		t.Fatalf("closing %+v != current %+v for unbounded range", l.ClosingBalance, l.CurrentBalance)
	}
}

func TestListTransactionsUnknownNominee(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ListTransactions(context.Background(), 7, DateRange{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListAllTransactionsOrderedByLastModified(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	a := seedNominee(t, db, "Anil")
	b := seedNominee(t, db, "Bina")

	first, err := svc.CreateMaterial(ctx, material(a.ID, "Jama", "1", "0", "2024-01-01"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateProductTake(ctx, ProductTakeInput{NomineeID: b.ID, Amount: dec("5")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateMaterial(ctx, material(b.ID, "Naam", "2", "0", "2024-01-03")); err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := svc.UpdateMaterial(ctx, first.ID, func(in *MaterialInput) error {
		in.Description = "corrected"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.ListAllTransactions(ctx, DateRange{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Kind != KindMaterial || got[0].ID != first.ID || got[0].NomineeName != "Anil" {
		t.Fatalf("most recently modified first, got %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].UpdatedAt.After(got[i-1].UpdatedAt) {
			t.Fatalf("entry %d modified after entry %d", i, i-1)
		}
		if got[i].NomineeName == "" {
			t.Fatalf("entry %d has no nominee name", i)
		}
	}

	again, err := svc.ListAllTransactions(ctx, DateRange{})
	if err != nil {
		t.Fatalf("list again: %v", err)
	}
	for i := range got {
		if got[i].Kind != again[i].Kind || got[i].ID != again[i].ID {
			t.Fatalf("order changed between calls at %d", i)
		}
	}
}

func TestSortByDateTieBreak(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	created := day.Add(time.Hour)
	entries := []Entry{
		{Kind: KindProductTake, ID: 1, Date: day, CreatedAt: created},
		{Kind: KindMaterial, ID: 1, Date: day, CreatedAt: created},
		{Kind: KindMaterial, ID: 2, Date: day, CreatedAt: created},
		{Kind: KindProductGive, ID: 9, Date: day, CreatedAt: created.Add(time.Minute)},
		{Kind: KindMaterial, ID: 3, Date: day.AddDate(0, 0, -1), CreatedAt: created},
	}
	SortByDate(entries)

	want := []struct {
		kind Kind
		id   uint
	}{
		{KindProductGive, 9},
		{KindMaterial, 2},
		{KindMaterial, 1},
		{KindProductTake, 1},
		{KindMaterial, 3},
	}
	for i, w := range want {
		if entries[i].Kind != w.kind || entries[i].ID != w.id {
			t.Fatalf("position %d = %s/%d, want %s/%d", i, entries[i].Kind, entries[i].ID, w.kind, w.id)
		}
	}
}
