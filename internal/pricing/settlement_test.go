package pricing

import "testing"

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name       string
		grandTotal float64
		payments   []float64
		apps       []CreditApplication
		wantPaid   bool
		wantDue    float64
		wantStatus SettlementStatus
	}{
		{
			name:       "credited and paid",
			grandTotal: 100,
			payments:   []float64{70},
			apps:       []CreditApplication{{CreditNoteID: "cn1", InvoiceID: "inv", Amount: 30}},
			wantPaid:   true,
			wantDue:    0,
			wantStatus: StatusPaid,
		},
		{
			name:       "overpaid",
			grandTotal: 100,
			payments:   []float64{120},
			wantPaid:   true,
			wantDue:    -20,
			wantStatus: StatusOverpaid,
		},
		{
			name:       "nothing yet",
			grandTotal: 80,
			wantPaid:   false,
			wantDue:    80,
			wantStatus: StatusUnpaid,
		},
		{
			name:       "partial across payments",
			grandTotal: 100,
			payments:   []float64{25, 25},
			wantPaid:   false,
			wantDue:    50,
			wantStatus: StatusPartial,
		},
		{
			name:       "applications for other invoices ignored",
			grandTotal: 60,
			payments:   []float64{60},
			apps:       []CreditApplication{{CreditNoteID: "cn1", InvoiceID: "other", Amount: 40}},
			wantPaid:   true,
			wantDue:    0,
			wantStatus: StatusPaid,
		},
		{
			name:       "float drift within tolerance",
			grandTotal: 0.3,
			payments:   []float64{0.1, 0.1, 0.0995},
			wantPaid:   true,
			wantDue:    0.0005,
			wantStatus: StatusPaid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := InvoiceSettlement{ID: "inv", GrandTotal: tt.grandTotal}
			for _, amt := range tt.payments {
				inv.Payments = append(inv.Payments, Payment{Amount: amt})
			}
			b := ComputeBalance(inv, tt.apps)
			if b.IsFullyPaid != tt.wantPaid {
				t.Errorf("IsFullyPaid = %v, want %v", b.IsFullyPaid, tt.wantPaid)
			}
			if diff := b.AmountDue - tt.wantDue; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("AmountDue = %f, want %f", b.AmountDue, tt.wantDue)
			}
			if got := b.Status(); got != tt.wantStatus {
				t.Errorf("Status() = %s, want %s", got, tt.wantStatus)
			}
		})
	}
}

func TestComputeBalance_Totals(t *testing.T) {
	inv := InvoiceSettlement{ID: "inv", GrandTotal: 100, Payments: []Payment{{Amount: 70}}}
	b := ComputeBalance(inv, []CreditApplication{{InvoiceID: "inv", Amount: 30}})
	if b.TotalPaid != 70 || b.TotalCredited != 30 {
		t.Errorf("TotalPaid/TotalCredited = %f/%f, want 70/30", b.TotalPaid, b.TotalCredited)
	}
}

func TestCreditRemaining(t *testing.T) {
	apps := []CreditApplication{
		{CreditNoteID: "cn1", InvoiceID: "a", Amount: 20},
		{CreditNoteID: "cn2", InvoiceID: "a", Amount: 99},
		{CreditNoteID: "cn1", InvoiceID: "b", Amount: 5.5},
	}
	if got := CreditRemaining(50, apps, "cn1"); !almostEqual(got, 24.5) {
		t.Errorf("CreditRemaining() = %f, want 24.5", got)
	}
}
