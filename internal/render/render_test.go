package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/mishmeshmosh/backend/internal/deeddoc"
	"github.com/mishmeshmosh/backend/internal/models"
)

func needDocJSON(t *testing.T) []byte {
	t.Helper()
	doc := deeddoc.NeedDeedDoc{
		Deed: deeddoc.DeedRef{
			ID:        "6f1c2d3e-0000-0000-0000-000000000001",
			Status:    "signed",
			Version:   1,
			SignedAt:  "2026-08-01T10:00:00Z",
			DocHash:   "abc123",
			VerifyURL: "https://example.com/api/v1/deeds/6f1c2d3e/verify",
		},
		Campaign: deeddoc.CampaignRef{ID: "c1", Title: "Office chairs bulk buy", Description: "50 chairs"},
		Backer:   deeddoc.PersonRef{ID: "u1", FullName: "Anna Petrova", Email: "anna@example.com"},
		Platform: deeddoc.PlatformRef{LegalName: "MishMeshMosh Platform LLC", CompanyNumber: "7701234567"},
		Items: []deeddoc.ItemLine{
			{ID: "i1", Title: "Chair", Unit: "pcs", Quantity: 2, UnitPrice: 100.5, RowTotal: 201},
			{ID: "i2", Title: "Desk", Unit: "pcs", Quantity: 1, UnitPrice: 300, RowTotal: 300},
		},
		Totals:    deeddoc.Totals{Currency: "RUB", TotalValue: "501.00"},
		Signature: deeddoc.SignatureRef{Method: "platform_click", RecordRef: "p1"},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return b
}

func TestDeedHTML_NeedDeedStructure(t *testing.T) {
	html, err := DeedHTML(models.DeedKindNeed, needDocJSON(t))
	if err != nil {
		t.Fatalf("render err: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if got := doc.Find("h1").First().Text(); got != "Need Deed" {
		t.Errorf("expected h1 'Need Deed', got %q", got)
	}
	if got := doc.Find(".deed-hash code").Text(); got != "abc123" {
		t.Errorf("expected doc hash abc123, got %q", got)
	}
	if got := doc.Find(".items tbody tr").Length(); got != 2 {
		t.Errorf("expected 2 item rows, got %d", got)
	}
	if got := doc.Find(".total strong").Text(); got != "501.00 RUB" {
		t.Errorf("expected total '501.00 RUB', got %q", got)
	}
	href, _ := doc.Find(".deed-verify a").Attr("href")
	if href != "https://example.com/api/v1/deeds/6f1c2d3e/verify" {
		t.Errorf("unexpected verify href %q", href)
	}
	if !strings.Contains(doc.Find(".backer").Text(), "Anna Petrova") {
		t.Errorf("backer name missing: %q", doc.Find(".backer").Text())
	}
}

func TestDeedHTML_Deterministic(t *testing.T) {
	raw := needDocJSON(t)
	h1, err := DeedHTML(models.DeedKindNeed, raw)
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	h2, err := DeedHTML(models.DeedKindNeed, raw)
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if h1 != h2 {
		t.Fatal("expected identical output for identical input")
	}
}

func TestDeedHTML_EscapesContent(t *testing.T) {
	doc := deeddoc.NeedDeedDoc{
		Deed:     deeddoc.DeedRef{ID: "d1", Status: "signed", Version: 1},
		Campaign: deeddoc.CampaignRef{ID: "c1", Title: `<script>alert("x")</script>`},
		Backer:   deeddoc.PersonRef{ID: "u1", FullName: "B", Email: "b@example.com"},
		Totals:   deeddoc.Totals{Currency: "RUB", TotalValue: "0.00"},
	}
	b, _ := json.Marshal(doc)

	html, err := DeedHTML(models.DeedKindNeed, b)
	if err != nil {
		t.Fatalf("render err: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatal("escaped script tag expected")
	}
}

func TestDeedHTML_AssignmentDeedStructure(t *testing.T) {
	doc := deeddoc.AssignmentDeedDoc{
		Title:     "Assignment Deed — Chairs supply",
		Type:      models.DeedKindAssignment,
		CreatedAt: "2026-08-02T12:00:00Z",
		Parties: deeddoc.Parties{
			Initiator: deeddoc.PersonRef{ID: "u1", FullName: "Anna Petrova", Email: "anna@example.com"},
			Supplier: deeddoc.SupplierParty{
				PersonRef: deeddoc.PersonRef{ID: "u2", FullName: "Supply Co", Email: "sales@supply.example"},
				OfferID:   "o1",
			},
			Backers: []deeddoc.BackerParty{
				{PersonRef: deeddoc.PersonRef{ID: "u3", FullName: "Boris Ivanov", Email: "boris@example.com"}, NeedDeedID: "nd1"},
				{PersonRef: deeddoc.PersonRef{ID: "u4", FullName: "Clara Lee", Email: "clara@example.com"}, NeedDeedID: "nd2"},
			},
		},
		FinancialSummary: deeddoc.FinancialSummary{
			TotalOrderValue: 5000,
			WeedFee:         150,
			FeePercent:      3,
			Currency:        "RUB",
		},
		Items: []deeddoc.OfferItemLine{
			{ID: "i1", Title: "Chair", Unit: "pcs", UnitPrice: 100, MinQty: 50, RowTotal: 5000},
		},
		LinkedDeeds: deeddoc.LinkedDeeds{
			CampaignNeedID: "cn1",
			CampaignFeedID: "cf1",
			NeedDeedIDs:    []string{"nd1", "nd2"},
		},
	}
	b, _ := json.Marshal(doc)

	html, err := DeedHTML(models.DeedKindAssignment, b)
	if err != nil {
		t.Fatalf("render err: %v", err)
	}

	q, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got := q.Find(".backers li").Length(); got != 2 {
		t.Errorf("expected 2 backers, got %d", got)
	}
	if !strings.Contains(q.Find(".weed-fee").Text(), "150.00") {
		t.Errorf("fee missing: %q", q.Find(".weed-fee").Text())
	}
	if got := q.Find(".need-deed-id").Length(); got != 2 {
		t.Errorf("expected 2 linked need deeds, got %d", got)
	}
}

func TestDeedHTML_UnsupportedKind(t *testing.T) {
	if _, err := DeedHTML(models.DeedKindFeed, []byte(`{}`)); err == nil {
		t.Fatal("expected error for feed deed kind")
	}
}
