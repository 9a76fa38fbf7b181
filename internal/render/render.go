// Package render produces the printable HTML projection of a deed's
// doc_json. Output is deterministic for a given document: same input bytes,
// same HTML.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/mishmeshmosh/backend/internal/deeddoc"
	"github.com/mishmeshmosh/backend/internal/models"
)

var needTmpl = template.Must(template.New("need_deed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Need Deed {{.Deed.ID}}</title>
</head>
<body class="deed need-deed">
<h1>Need Deed</h1>
<section class="deed-meta">
<p class="deed-id">Deed ID: <span>{{.Deed.ID}}</span></p>
<p class="deed-status">Status: <span>{{.Deed.Status}}</span> (v{{.Deed.Version}})</p>
<p class="deed-signed-at">Signed at: <span>{{.Deed.SignedAt}}</span></p>
<p class="deed-hash">Document hash: <code>{{.Deed.DocHash}}</code></p>
<p class="deed-verify">Verify: <a href="{{.Deed.VerifyURL}}">{{.Deed.VerifyURL}}</a></p>
</section>
<section class="campaign">
<h2>{{.Campaign.Title}}</h2>
{{if .Campaign.Description}}<p>{{.Campaign.Description}}</p>{{end}}
</section>
<section class="parties">
<h2>Parties</h2>
<p class="backer">Backer: {{.Backer.FullName}} &lt;{{.Backer.Email}}&gt;{{if .Backer.Phone}}, {{.Backer.Phone}}{{end}}</p>
<p class="platform">Platform: {{.Platform.LegalName}}{{if .Platform.CompanyNumber}} ({{.Platform.CompanyNumber}}){{end}}</p>
</section>
<section class="items">
<h2>Items</h2>
<table>
<thead><tr><th>Item</th><th>Unit</th><th>Quantity</th><th>Unit price</th><th>Row total</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Title}}</td><td>{{.Unit}}</td><td>{{.Quantity}}</td><td>{{printf "%.2f" .UnitPrice}}</td><td>{{printf "%.2f" .RowTotal}}</td></tr>
{{end}}</tbody>
</table>
<p class="total">Total: <strong>{{.Totals.TotalValue}} {{.Totals.Currency}}</strong></p>
</section>
<section class="signature">
<p>Signed via {{.Signature.Method}}, record {{.Signature.RecordRef}}</p>
</section>
</body>
</html>
`))

var assignmentTmpl = template.Must(template.New("assignment_deed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body class="deed assignment-deed">
<h1>{{.Title}}</h1>
<p class="created-at">Created at: <span>{{.CreatedAt}}</span></p>
<section class="parties">
<h2>Parties</h2>
<p class="initiator">Initiator: {{.Parties.Initiator.FullName}} &lt;{{.Parties.Initiator.Email}}&gt;</p>
<p class="supplier">Supplier: {{.Parties.Supplier.FullName}} &lt;{{.Parties.Supplier.Email}}&gt; (offer {{.Parties.Supplier.OfferID}})</p>
<ul class="backers">
{{range .Parties.Backers}}<li>{{.FullName}} &lt;{{.Email}}&gt; — need deed {{.NeedDeedID}}</li>
{{end}}</ul>
</section>
<section class="financials">
<h2>Financial summary</h2>
<p class="total-order-value">Total order value: {{printf "%.2f" .FinancialSummary.TotalOrderValue}} {{.FinancialSummary.Currency}}</p>
<p class="weed-fee">Platform fee ({{printf "%g" .FinancialSummary.FeePercent}}%): {{printf "%.2f" .FinancialSummary.WeedFee}} {{.FinancialSummary.Currency}}</p>
</section>
<section class="terms">
<h2>Terms</h2>
{{if .Terms.PaymentTerms}}<p class="payment-terms">Payment: {{.Terms.PaymentTerms}}</p>{{end}}
{{if .Terms.DeliveryTerms}}<p class="delivery-terms">Delivery: {{.Terms.DeliveryTerms}}</p>{{end}}
{{if .Terms.Warranty}}<p class="warranty">Warranty: {{.Terms.Warranty}}</p>{{end}}
</section>
<section class="items">
<h2>Items</h2>
<table>
<thead><tr><th>Item</th><th>Unit</th><th>Min qty</th><th>Unit price</th><th>Row total</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Title}}</td><td>{{.Unit}}</td><td>{{.MinQty}}</td><td>{{printf "%.2f" .UnitPrice}}</td><td>{{printf "%.2f" .RowTotal}}</td></tr>
{{end}}</tbody>
</table>
</section>
<section class="linked-deeds">
<h2>Linked deeds</h2>
<p>Need campaign {{.LinkedDeeds.CampaignNeedID}}, feed campaign {{.LinkedDeeds.CampaignFeedID}}</p>
<ul>
{{range .LinkedDeeds.NeedDeedIDs}}<li class="need-deed-id">{{.}}</li>
{{end}}</ul>
</section>
</body>
</html>
`))

// DeedHTML renders a deed document to its printable HTML form.
func DeedHTML(deedKind string, docJSON []byte) (string, error) {
	var b strings.Builder
	switch deedKind {
	case models.DeedKindNeed:
		var doc deeddoc.NeedDeedDoc
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return "", fmt.Errorf("invalid need deed document: %w", err)
		}
		if err := needTmpl.Execute(&b, doc); err != nil {
			return "", err
		}
	case models.DeedKindAssignment:
		var doc deeddoc.AssignmentDeedDoc
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return "", fmt.Errorf("invalid assignment deed document: %w", err)
		}
		if err := assignmentTmpl.Execute(&b, doc); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported deed kind %q", deedKind)
	}
	return b.String(), nil
}
