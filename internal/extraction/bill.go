package extraction

// Schema keys of the extraction record. Every key is always present in the
// output; unknown values are null, never missing keys.
var schemaKeys = []string{
	"provider", "amount", "currency", "due_date",
	"account_number", "invoice_number", "period_start", "period_end",
}

// Bill is the canonical extraction record. Nil pointers serialize as null so
// the full key set is always on the wire.
type Bill struct {
	Provider      *string  `json:"provider"`
	Amount        *float64 `json:"amount"`
	Currency      *string  `json:"currency"`
	DueDate       *string  `json:"due_date"`
	AccountNumber *string  `json:"account_number"`
	InvoiceNumber *string  `json:"invoice_number"`
	PeriodStart   *string  `json:"period_start"`
	PeriodEnd     *string  `json:"period_end"`
	Period        *string  `json:"period"`
}

// Source describes where the extracted text came from.
type Source struct {
	Mode     string `json:"mode"` // "raw" or "document"
	Document string `json:"document,omitempty"`
}

// Result is a Bill plus acquisition metadata for caller diagnostics.
type Result struct {
	Bill        Bill   `json:"bill"`
	Pages       int    `json:"pages"`
	Source      Source `json:"source"`
	TextPreview string `json:"text_preview"`
	Strategy    string `json:"strategy"`
}

// Input selects the text source for an extraction. Exactly one of RawText or
// Document must be set.
type Input struct {
	RawText  string `json:"raw_text,omitempty"`
	Document string `json:"document,omitempty"`
}
