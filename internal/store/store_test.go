package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bullion-backend/internal/models"
	"bullion-backend/internal/store"
	"bullion-backend/internal/testdb"

	"github.com/shopspring/decimal"
)

func TestGatewayCRUD(t *testing.T) {
	gw := store.New(testdb.Open(t), 0)
	ctx := context.Background()

	b := models.Buyer{Name: "Shah Jewellers", Contact: "98200"}
	if err := store.Insert(ctx, gw, &b); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	got, err := store.FindByID[models.Buyer](ctx, gw, b.ID)
	if err != nil || got.Name != "Shah Jewellers" {
		t.Fatalf("find = %+v, %v", got, err)
	}

	updated, err := store.UpdateByID[models.Buyer](ctx, gw, b.ID, map[string]any{"contact": "98211"})
	if err != nil || updated.Contact != "98211" || updated.Name != "Shah Jewellers" {
		t.Fatalf("update = %+v, %v", updated, err)
	}

	deleted, err := store.DeleteByID[models.Buyer](ctx, gw, b.ID)
	if err != nil || deleted.ID != b.ID {
		t.Fatalf("delete = %+v, %v", deleted, err)
	}
	if _, err := store.FindByID[models.Buyer](ctx, gw, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("find after delete err = %v, want not found", err)
	}
}

func TestGatewayMissingRows(t *testing.T) {
	gw := store.New(testdb.Open(t), 0)
	ctx := context.Background()

	if _, err := store.UpdateByID[models.Buyer](ctx, gw, 99, map[string]any{"name": "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update err = %v", err)
	}
	if err := store.Replace(ctx, gw, 99, &models.Buyer{Name: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("replace err = %v", err)
	}
	if _, err := store.DeleteByID[models.Buyer](ctx, gw, 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
}

func TestFindFiltersOrderAndLimit(t *testing.T) {
	gw := store.New(testdb.Open(t), 0)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		e := models.LendenEntry{
			Name:      fmt.Sprintf("entry %d", i),
			TransType: models.LendenCredit,
			Amount:    decimal.NewFromInt(int64(i * 100)),
		}
		if i%2 == 0 {
			e.TransType = models.LendenDebit
		}
		if err := store.Insert(ctx, gw, &e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.Find[models.LendenEntry](ctx, gw, store.Query{
		Filters: []store.Filter{store.Where("trans_type = ?", models.LendenDebit)},
		Order:   []string{"id desc"},
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Name != "entry 4" {
		t.Fatalf("find = %+v", got)
	}

	none, err := store.Find[models.LendenEntry](ctx, gw, store.Query{
		Filters: []store.Filter{store.Where("name = ?", "missing")},
	})
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty find should return an empty slice, got %v, %v", none, err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	gw := store.New(testdb.Open(t), 0)
	ctx := context.Background()
	boom := errors.New("boom")

	err := gw.Transaction(ctx, func(tx *store.Gateway) error {
		if err := store.Insert(ctx, tx, &models.Buyer{Name: "temp"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	all, err := store.Find[models.Buyer](ctx, gw, store.Query{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rolled back insert is visible: %+v", all)
	}
}

func TestCanceledContextIsNotNotFound(t *testing.T) {
	gw := store.New(testdb.Open(t), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByID[models.Buyer](ctx, gw, 1)
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want a context failure", err)
	}
	if store.IsRetryable(err) {
		t.Fatalf("caller cancellation should not be retryable: %v", err)
	}
}
