// Package extraction turns unstructured price lists into offer records using a
// generative model with a fixed output schema.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/util"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrExtraction is the single error surfaced for any extraction failure
var ErrExtraction = errors.New("failed to extract price list")

const maxSuggestions = 3

var offerSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tradeName": {Type: genai.TypeString},
			"discount":  {Type: genai.TypeNumber},
			"price":     {Type: genai.TypeNumber},
			"bonus":     {Type: genai.TypeString},
		},
	},
}

var suggestionSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

const textPrompt = `You receive a pharmaceutical wholesale price list from a warehouse in Egypt or the Middle East.
List every drug it mentions as a JSON array. Each element has "tradeName" (string),
"discount" (number, percent), "price" (number, or null when absent) and "bonus" (string, or null when absent).

Price list:
%s`

const documentPrompt = `Read this pharmaceutical price list document and list every drug as a JSON array
with "tradeName", "price", "discount" and "bonus" fields.`

const suggestionPrompt = `A pharmacist searched a drug catalog with the query below. It may contain typos or a generic name.
Return up to 3 trade names commonly sold in Egyptian pharmacies that the pharmacist most likely meant.
Query: %q`

// Adapter wraps a Generator with the price-list prompts and output contract
type Adapter struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewAdapter creates an extraction adapter; timeout bounds each call when positive
func NewAdapter(gen Generator, timeout time.Duration) *Adapter {
	return &Adapter{
		gen:     gen,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// ParseText extracts offer records from pasted text
func (a *Adapter) ParseText(ctx context.Context, rawText string) ([]models.OfferRecord, error) {
	ctx, span := util.StartSpan(ctx, "Extraction.ParseText")
	defer span.End()

	contents := genai.Text(fmt.Sprintf(textPrompt, rawText))
	return a.extract(ctx, "text", contents)
}

// ParseDocument extracts offer records from a PDF, spreadsheet or image
func (a *Adapter) ParseDocument(ctx context.Context, data []byte, mimeType string) ([]models.OfferRecord, error) {
	ctx, span := util.StartSpan(ctx, "Extraction.ParseDocument")
	defer span.End()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(documentPrompt),
		}, genai.RoleUser),
	}
	return a.extract(ctx, "document", contents)
}

// SuggestCorrections proposes up to three trade names for a query. Failures
// yield an empty list.
func (a *Adapter) SuggestCorrections(ctx context.Context, query string) []string {
	ctx, span := util.StartSpan(ctx, "Extraction.SuggestCorrections")
	defer span.End()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	text, err := a.gen.Generate(ctx, genai.Text(fmt.Sprintf(suggestionPrompt, query)), suggestionSchema)
	if err != nil {
		a.logger.Debug("Suggestion call failed", zap.Error(err))
		util.ExtractionFailuresTotal.WithLabelValues("suggestion").Inc()
		return []string{}
	}

	suggestions, err := decodeSuggestions(text)
	if err != nil {
		a.logger.Debug("Suggestion response malformed", zap.Error(err))
		util.ExtractionFailuresTotal.WithLabelValues("suggestion").Inc()
		return []string{}
	}
	return suggestions
}

func (a *Adapter) extract(ctx context.Context, source string, contents []*genai.Content) ([]models.OfferRecord, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		util.ExtractionLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}()

	text, err := a.gen.Generate(ctx, contents, offerSchema)
	if err != nil {
		a.logger.Error("Extraction call failed", zap.String("source", source), zap.Error(err))
		util.ExtractionFailuresTotal.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	records, err := decodeRecords(text)
	if err != nil {
		a.logger.Error("Extraction response malformed", zap.String("source", source), zap.Error(err))
		util.ExtractionFailuresTotal.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	a.logger.Info("Price list extracted", zap.String("source", source), zap.Int("records", len(records)))
	return records, nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// decodeRecords treats an empty or null response as no records
func decodeRecords(text string) ([]models.OfferRecord, error) {
	text = strings.TrimSpace(text)
	records := []models.OfferRecord{}
	if text == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.OfferRecord{}
	}
	return records, nil
}

func decodeSuggestions(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	suggestions := []string{}
	if text == "" {
		return suggestions, nil
	}
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, err
	}
	out := make([]string, 0, maxSuggestions)
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}
