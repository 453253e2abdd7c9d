package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"bullion-backend/internal/models"
	"bullion-backend/internal/store"
	"bullion-backend/internal/testdb"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store.New(db, 0), log), db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedNominee(t *testing.T, db *gorm.DB, name string) models.Nominee {
	t.Helper()
	n := models.Nominee{Name: name, Type: models.NomineeTypeMaterial}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("create nominee: %v", err)
	}
	return n
}

func material(nomineeID uint, transType, fine, amount, date string) MaterialInput {
	return MaterialInput{
		NomineeID: nomineeID,
		Date:      date,
		Product:   "Fine gold",
		Fine:      dec(fine),
		Amount:    dec(amount),
		TransType: transType,
		Mode:      "metal",
	}
}

func assertBalance(t *testing.T, svc *Service, id uint, fine, amount string) {
	t.Helper()
	n, err := svc.Nominee(context.Background(), id)
	if err != nil {
		t.Fatalf("load nominee: %v", err)
	}
	if !n.CurrentBalance.Fine.Equal(dec(fine)) || !n.CurrentBalance.Amount.Equal(dec(amount)) {
		t.Fatalf("balance = {fine:%s amount:%s}, want {fine:%s amount:%s}",
			n.CurrentBalance.Fine, n.CurrentBalance.Amount, fine, amount)
	}
}

func TestMaterialLifecycleKeepsBalance(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	ravi := seedNominee(t, db, "Ravi")
	assertBalance(t, svc, ravi.ID, "0", "0")

	txn, err := svc.CreateMaterial(ctx, material(ravi.ID, "Jama", "10", "500", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertBalance(t, svc, ravi.ID, "10", "500")

	if _, err := svc.UpdateMaterial(ctx, txn.ID, func(in *MaterialInput) error {
		in.Fine = dec("15")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertBalance(t, svc, ravi.ID, "15", "500")

	if _, err := svc.DeleteMaterial(ctx, txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBalance(t, svc, ravi.ID, "0", "0")
}

func TestDeleteAndRecreateRestoresBalance(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Mohan")

	if _, err := svc.CreateMaterial(ctx, material(n.ID, "Naam", "3.25", "120", "2024-03-01")); err != nil {
		t.Fatalf("create material: %v", err)
	}
	take := ProductTakeInput{
		NomineeID: n.ID,
		Date:      "2024-03-02",
		Amount:    dec("250"),
		Metal:     true,
		Metals:    []MetalInput{{Weight: dec("10"), Tunch: dec("91.6"), Fine: dec("9.16")}},
	}
	created, err := svc.CreateProductTake(ctx, take)
	if err != nil {
		t.Fatalf("create take: %v", err)
	}
	assertBalance(t, svc, n.ID, "5.91", "130")

	if _, err := svc.DeleteProductTake(ctx, created.ID); err != nil {
		t.Fatalf("delete take: %v", err)
	}
	assertBalance(t, svc, n.ID, "-3.25", "-120")

	if _, err := svc.CreateProductTake(ctx, take); err != nil {
		t.Fatalf("recreate take: %v", err)
	}
	assertBalance(t, svc, n.ID, "5.91", "130")
}

func TestProductTakeWithoutAmountOrMetalIsRejected(t *testing.T) {
	svc, db := newTestService(t)
	n := seedNominee(t, db, "Suresh")

	_, err := svc.CreateProductTake(context.Background(), ProductTakeInput{NomineeID: n.ID})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["amount"] == "" {
		t.Fatalf("expected a field error on amount, got %v", err)
	}

	var count int64
	db.Model(&models.ProductTakeTransaction{}).Count(&count)
	if count != 0 {
		t.Fatalf("rows written = %d, want 0", count)
	}
	assertBalance(t, svc, n.ID, "0", "0")
}

func TestProductGiveTotalFineMustMatchLines(t *testing.T) {
	svc, db := newTestService(t)
	n := seedNominee(t, db, "Kiran")

	line := ProductLineInput{
		Name:        "Chain",
		GrossWeight: ptr(dec("20")),
		Tunch:       ptr(dec("92")),
		Wastage:     ptr(dec("0.5")),
		Fine:        ptr(dec("18.5")),
	}
	_, err := svc.CreateProductGive(context.Background(), ProductGiveInput{
		NomineeID: n.ID,
		Products:  []ProductLineInput{line},
		TotalFine: ptr(dec("19")),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	give, err := svc.CreateProductGive(context.Background(), ProductGiveInput{
		NomineeID: n.ID,
		Products:  []ProductLineInput{line},
		TotalFine: ptr(dec("18.5")),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(give.Products) != 1 || give.Products[0].Name != "Chain" {
		t.Fatalf("products not stored: %+v", give.Products)
	}
	assertBalance(t, svc, n.ID, "-18.5", "0")
}

func TestCreateForUnknownNomineeWritesNothing(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.CreateMaterial(context.Background(), material(42, "Jama", "1", "1", ""))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	var count int64
	db.Model(&models.MaterialTransaction{}).Count(&count)
	if count != 0 {
		t.Fatalf("rows written = %d, want 0", count)
	}
}

func TestConcurrentCreatesDoNotLoseUpdates(t *testing.T) {
	svc, db := newTestService(t)
	n := seedNominee(t, db, "Asha")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateMaterial(context.Background(), material(n.ID, "Jama", "5", "0", ""))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	assertBalance(t, svc, n.ID, "40", "0")
}

func TestUpdateMovingTransactionReconcilesBothNominees(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	a := seedNominee(t, db, "A")
	b := seedNominee(t, db, "B")

	txn, err := svc.CreateMaterial(ctx, material(a.ID, "Jama", "7", "100", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateMaterial(ctx, txn.ID, func(in *MaterialInput) error {
		in.NomineeID = b.ID
		return nil
	}); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertBalance(t, svc, a.ID, "0", "0")
	assertBalance(t, svc, b.ID, "7", "100")
}

func TestUpdateRejectsInvalidPatchAndKeepsRecord(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Gopal")

	txn, err := svc.CreateMaterial(ctx, material(n.ID, "Jama", "2", "10", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.UpdateMaterial(ctx, txn.ID, func(in *MaterialInput) error {
		in.TransType = "Both"
		return nil
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	got, err := svc.Material(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TransType != models.TransTypeJama {
		t.Fatalf("transType = %s, want Jama", got.TransType)
	}
	assertBalance(t, svc, n.ID, "2", "10")
}

func TestRecomputeRepairsDrift(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Veer")

	if _, err := svc.CreateMaterial(ctx, material(n.ID, "Jama", "4", "40", "")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&models.Nominee{}).Where("id = ?", n.ID).
		Updates(map[string]any{"current_fine": dec("99"), "current_amount": dec("1")}).Error; err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	check, err := svc.Verify(ctx, n.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if check.InSync || !check.Drift.Fine.Equal(dec("95")) {
		t.Fatalf("verify = %+v, want drift of 95 fine", check)
	}

	repaired, err := svc.Recompute(ctx, n.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if repaired.InSync {
		t.Fatal("recompute should report the drift it repaired")
	}
	assertBalance(t, svc, n.ID, "4", "40")

	again, err := svc.Recompute(ctx, n.ID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if !again.InSync {
		t.Fatalf("second recompute = %+v, want in sync", again)
	}
}

func TestDeleteByKind(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNominee(t, db, "Lata")

	take, err := svc.CreateProductTake(ctx, ProductTakeInput{NomineeID: n.ID, Amount: dec("75")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.DeleteByKind(ctx, KindMaterial, take.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("wrong kind: err = %v, want not found", err)
	}
	e, err := svc.DeleteByKind(ctx, KindProductTake, take.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if e.Kind != KindProductTake || e.ID != take.ID {
		t.Fatalf("deleted entry = %+v", e)
	}
	assertBalance(t, svc, n.ID, "0", "0")

	if _, err := svc.DeleteByKind(ctx, Kind("Gift"), 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown kind: err = %v", err)
	}
}
