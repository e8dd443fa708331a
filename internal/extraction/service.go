package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kodwo/billminder/internal/docscan"
	"github.com/kodwo/billminder/internal/fault"
)

// Strategy is one way of pulling fields out of bill text. Strategies return
// the raw field map before normalization; an empty map means "no extraction"
// and the orchestrator moves to the next strategy.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string) (map[string]any, error)
}

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxWait      = 60 * time.Second
	previewLimit        = 4000
)

// Service orchestrates text acquisition, the strategy chain, and
// normalization into the canonical record.
type Service struct {
	text         docscan.TextService
	strategies   []Strategy
	pollInterval time.Duration
	maxWait      time.Duration
	sleep        func(time.Duration)
}

// NewService creates a Service with the default polling bounds. Strategies
// run in order; exactly one strategy's output is used per request.
func NewService(text docscan.TextService, strategies ...Strategy) *Service {
	return NewServiceWithDeps(text, defaultPollInterval, defaultMaxWait, time.Sleep, strategies...)
}

// NewServiceWithDeps creates a Service with custom polling bounds and sleep
// function for testing.
func NewServiceWithDeps(text docscan.TextService, pollInterval, maxWait time.Duration, sleep func(time.Duration), strategies ...Strategy) *Service {
	return &Service{
		text:         text,
		strategies:   strategies,
		pollInterval: pollInterval,
		maxWait:      maxWait,
		sleep:        sleep,
	}
}

// Extract turns an inline text or stored document into the canonical bill
// record plus acquisition metadata. Failures acquiring the text surface as
// tagged faults; failures inside a strategy degrade to the next one.
func (s *Service) Extract(ctx context.Context, input Input) (*Result, error) {
	raw := strings.TrimSpace(input.RawText)
	doc := strings.TrimSpace(input.Document)
	if (raw == "") == (doc == "") {
		return nil, fault.New(fault.InvalidInput, "provide raw_text or document, not both or neither")
	}

	var (
		text   string
		pages  int
		source Source
		err    error
	)
	if raw != "" {
		text, pages, source = raw, 1, Source{Mode: "raw"}
	} else {
		text, pages, err = s.acquireText(ctx, doc)
		if err != nil {
			return nil, err
		}
		source = Source{Mode: "document", Document: doc}
	}

	slog.Info("extracting bill fields",
		"mode", source.Mode, "pages", pages, "text_chars", len(text))

	fields, strategy := s.runStrategies(ctx, text)
	for _, k := range schemaKeys {
		if _, ok := fields[k]; !ok {
			fields[k] = nil
		}
	}

	return &Result{
		Bill:        normalizeFields(fields),
		Pages:       pages,
		Source:      source,
		TextPreview: preview(text),
		Strategy:    strategy,
	}, nil
}

// acquireText runs the document text service, choosing the asynchronous job
// mode for multi-page-capable formats.
func (s *Service) acquireText(ctx context.Context, ref string) (string, int, error) {
	if !multiPageFormat(ref) {
		text, pages, err := s.text.DetectText(ctx, ref)
		if err != nil {
			return "", 0, fault.Wrap(fault.UpstreamUnavailable, err, "detecting document text")
		}
		return text, pages, nil
	}

	jobID, err := s.text.StartTextJob(ctx, ref)
	if err != nil {
		return "", 0, fault.Wrap(fault.UpstreamUnavailable, err, "starting text job")
	}

	var waited time.Duration
	for {
		status, err := s.text.PollTextJob(ctx, jobID)
		if err != nil {
			return "", 0, fault.Wrap(fault.UpstreamUnavailable, err, "polling text job %s", jobID)
		}
		if status == docscan.JobSucceeded {
			break
		}
		if status == docscan.JobFailed {
			return "", 0, fault.New(fault.SourceFailed, "text job %s reported failure", jobID)
		}
		s.sleep(s.pollInterval)
		waited += s.pollInterval
		if waited >= s.maxWait {
			return "", 0, fault.New(fault.Timeout, "text job %s not finished after %s", jobID, s.maxWait)
		}
	}

	text, pages, err := s.text.FetchTextResults(ctx, jobID)
	if err != nil {
		return "", 0, fault.Wrap(fault.UpstreamUnavailable, err, "fetching text job %s results", jobID)
	}
	return text, pages, nil
}

// runStrategies takes the first non-empty strategy result. Strategy errors
// are absorbed here: extraction degrades, it does not fail the request.
func (s *Service) runStrategies(ctx context.Context, text string) (map[string]any, string) {
	for _, strategy := range s.strategies {
		fields, err := strategy.Extract(ctx, text)
		if err != nil {
			slog.Error("extraction strategy failed, degrading",
				"strategy", strategy.Name(), "error", err)
			continue
		}
		if len(fields) == 0 {
			slog.Info("extraction strategy returned nothing, degrading",
				"strategy", strategy.Name())
			continue
		}
		return fields, strategy.Name()
	}
	return map[string]any{}, ""
}

func multiPageFormat(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".pdf", ".tif", ".tiff":
		return true
	}
	return false
}

// normalizeFields coerces the raw field map into the canonical record and
// derives the human-readable period range.
func normalizeFields(fields map[string]any) Bill {
	bill := Bill{
		Provider:      asString(fields["provider"]),
		Amount:        NormalizeAmount(fields["amount"]),
		Currency:      NormalizeCurrency(fields["currency"]),
		DueDate:       NormalizeDate(fields["due_date"]),
		AccountNumber: asString(fields["account_number"]),
		InvoiceNumber: asString(fields["invoice_number"]),
		PeriodStart:   NormalizeDate(fields["period_start"]),
		PeriodEnd:     NormalizeDate(fields["period_end"]),
	}
	if bill.PeriodStart != nil && bill.PeriodEnd != nil {
		period := fmt.Sprintf("%s to %s", *bill.PeriodStart, *bill.PeriodEnd)
		bill.Period = &period
	}
	return bill
}

// asString keeps string fields as-is and stringifies the numeric identifiers
// models occasionally return for account or invoice numbers.
func asString(v any) *string {
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	case float64:
		out := strconv.FormatFloat(s, 'f', -1, 64)
		return &out
	default:
		return nil
	}
}

func preview(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit]
	}
	return text
}
