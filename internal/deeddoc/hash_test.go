package deeddoc

import (
	"encoding/json"
	"testing"

	"github.com/mishmeshmosh/backend/internal/models"
)

func sampleNeedDoc() NeedDeedDoc {
	return NeedDeedDoc{
		Deed: DeedRef{
			Status:   "signed",
			Version:  1,
			SignedAt: "2026-08-01T12:00:00Z",
		},
		Campaign: CampaignRef{ID: "c1", Title: "Office Chairs", Description: "Bulk chairs"},
		Backer:   PersonRef{ID: "u1", FullName: "Dana Backer", Email: "dana@example.com"},
		Platform: PlatformRef{LegalName: "MishMeshMosh Ltd", CompanyNumber: "123", Address: "1 Market St"},
		Items: []ItemLine{
			{ID: "i1", Title: "Chair", Unit: "pcs", Quantity: 10, UnitPrice: 50, RowTotal: 500},
		},
		Totals:    Totals{Currency: "USD", TotalValue: "500.00"},
		Delivery:  json.RawMessage(`{"mode":"pickup"}`),
		Payment:   json.RawMessage(`{"terms":"net30"}`),
		Signature: SignatureRef{Method: "platform_click", RecordRef: "p1"},
	}
}

func TestHashDeterministic(t *testing.T) {
	doc := sampleNeedDoc()
	h1, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	h2, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected deterministic hash, got %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected hex sha256 digest, got %q", h1)
	}
}

func TestBackfillDoesNotChangeContentHash(t *testing.T) {
	doc := sampleNeedDoc()
	before, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}

	// Post-insert backfill of self-referential metadata.
	doc.Deed.ID = "d-123"
	doc.Deed.VerifyURL = "https://mishmeshmosh.example/deeds/d-123/verify"
	doc.Deed.DocHash = before

	after, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if before != after {
		t.Fatalf("backfill changed content hash: %s vs %s", before, after)
	}
}

func TestCommercialChangeChangesHash(t *testing.T) {
	doc := sampleNeedDoc()
	h1, _ := doc.ContentHash()
	doc.Items[0].Quantity = 11
	doc.Items[0].RowTotal = 550
	h2, _ := doc.ContentHash()
	if h1 == h2 {
		t.Fatal("expected hash to change when items change")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	doc := sampleNeedDoc()
	h, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	doc.Deed.ID = "d-123"
	doc.Deed.VerifyURL = "https://mishmeshmosh.example/deeds/d-123/verify"
	doc.Deed.DocHash = h

	stored, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	ok, computed, err := Verify(models.DeedKindNeed, stored, h)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored doc to verify, computed %s want %s", computed, h)
	}

	// Tamper with commercial content.
	var tampered NeedDeedDoc
	_ = json.Unmarshal(stored, &tampered)
	tampered.Items[0].UnitPrice = 1
	tb, _ := json.Marshal(tampered)
	ok, _, err = Verify(models.DeedKindNeed, tb, h)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if ok {
		t.Fatal("expected tampered doc to fail verification")
	}
}

func TestVerifyAssignmentDoc(t *testing.T) {
	doc := AssignmentDeedDoc{
		Title:     "Assignment Deed",
		Type:      models.DeedKindAssignment,
		CreatedAt: "2026-08-02T09:00:00Z",
		Parties: Parties{
			Initiator: PersonRef{ID: "u1", FullName: "Ini Tiator", Email: "ini@example.com"},
			Supplier:  SupplierParty{PersonRef: PersonRef{ID: "u2", FullName: "Sup Plier", Email: "sup@example.com"}, OfferID: "o1"},
			Backers: []BackerParty{
				{PersonRef: PersonRef{ID: "u3", FullName: "Backer One", Email: "b1@example.com"}, NeedDeedID: "d1"},
			},
		},
		FinancialSummary: FinancialSummary{TotalOrderValue: 5000, WeedFee: 150, FeePercent: 3, Currency: "USD"},
		Items: []OfferItemLine{
			{ID: "i1", Title: "Chair", Unit: "pcs", UnitPrice: 50, MinQty: 100, RowTotal: 5000},
		},
		LinkedDeeds: LinkedDeeds{CampaignNeedID: "cn", CampaignFeedID: "cf", NeedDeedIDs: []string{"d1"}},
	}
	h, err := doc.ContentHash()
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	b, _ := json.Marshal(doc)
	ok, _, err := Verify(models.DeedKindAssignment, b, h)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if !ok {
		t.Fatal("expected assignment doc to verify")
	}
}

func TestVerifyUnsupportedKind(t *testing.T) {
	if _, _, err := Verify("feed_deed", []byte(`{}`), "x"); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}
