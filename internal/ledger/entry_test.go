package ledger

import (
	"testing"

	"bullion-backend/internal/models"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"material", KindMaterial, true},
		{"Material", KindMaterial, true},
		{"Product Give", KindProductGive, true},
		{"productgive", KindProductGive, true},
		{"product-take", KindProductTake, true},
		{" PRODUCT_TAKE ", KindProductTake, true},
		{"", "", false},
		{"gift", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestContributionSigns(t *testing.T) {
	jama := &models.MaterialTransaction{TransType: models.TransTypeJama, Fine: dec("10"), Amount: dec("500")}
	naam := &models.MaterialTransaction{TransType: models.TransTypeNaam, Fine: dec("10"), Amount: dec("500")}
	give := &models.ProductGiveTransaction{TotalFine: dec("3.5")}
	take := &models.ProductTakeTransaction{
		Amount: dec("200"),
		Metal:  true,
		Metals: []models.MetalEntry{{Fine: dec("1.25")}, {Fine: dec("0.75")}},
	}

	tests := []struct {
		name         string
		got          models.Balance
		fine, amount string
	}{
		{"jama", MaterialContribution(jama), "10", "500"},
		{"naam", MaterialContribution(naam), "-10", "-500"},
		{"product give", ProductGiveContribution(give), "-3.5", "0"},
		{"product take", ProductTakeContribution(take), "2", "200"},
	}
	for _, tt := range tests {
		if !tt.got.Fine.Equal(dec(tt.fine)) || !tt.got.Amount.Equal(dec(tt.amount)) {
			t.Errorf("%s: got {%s %s}, want {%s %s}", tt.name, tt.got.Fine, tt.got.Amount, tt.fine, tt.amount)
		}
	}
}

func TestSumOfEmptyLedgerIsZero(t *testing.T) {
	if b := Sum(nil); !b.IsZero() {
		t.Fatalf("Sum(nil) = %+v", b)
	}
}
