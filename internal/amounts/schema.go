package amounts

import "medbill-amounts/internal/llm"

// Amount types the model may assign.
const (
	TypeTotalBill = "total_bill"
	TypePaid      = "paid"
	TypeDue       = "due"
	TypeDiscount  = "discount"
	TypeTax       = "tax"
	TypeOther     = "other"
)

// Result statuses.
const (
	StatusOK               = "ok"
	StatusNoAmountsFound   = "no_amounts_found"
	StatusDocumentTooNoisy = "document_too_noisy"
)

var (
	amountTypes = []string{TypeTotalBill, TypePaid, TypeDue, TypeDiscount, TypeTax, TypeOther}
	statuses    = []string{StatusOK, StatusNoAmountsFound, StatusDocumentTooNoisy}
)

// ExtractionSchema is the structured-output contract sent to the provider.
// A fresh value is built on every call so callers may not mutate a shared one.
func ExtractionSchema() *llm.Schema {
	return &llm.Schema{
		Type:     llm.TypeObject,
		Required: []string{"currency", "ocr_confidence", "amounts", "status"},
		Properties: map[string]*llm.Schema{
			"currency": {
				Type:        llm.TypeString,
				Description: "ISO 4217 currency code, e.g. INR",
			},
			"ocr_confidence": {
				Type:        llm.TypeNumber,
				Description: "Overall confidence in the text read from the document, 0 to 1",
			},
			"amounts": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type:     llm.TypeObject,
					Required: []string{"type", "value", "source", "confidence"},
					Properties: map[string]*llm.Schema{
						"type": {
							Type:   llm.TypeString,
							Format: "enum",
							Enum:   append([]string(nil), amountTypes...),
						},
						"value": {
							Type:        llm.TypeNumber,
							Description: "Normalized numeric amount",
						},
						"source": {
							Type:        llm.TypeString,
							Description: "Text snippet the amount was read from",
						},
						"confidence": {
							Type:        llm.TypeNumber,
							Description: "Classification confidence, 0 to 1",
						},
					},
				},
			},
			"status": {
				Type:   llm.TypeString,
				Format: "enum",
				Enum:   append([]string(nil), statuses...),
			},
		},
	}
}
