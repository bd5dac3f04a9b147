package amounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Result mirrors ExtractionSchema. Responses are passed through as raw JSON;
// this type only backs the conformance check.
type Result struct {
	Currency      *string   `json:"currency"`
	OCRConfidence *float64  `json:"ocr_confidence"`
	Amounts       []*Amount `json:"amounts"`
	Status        *string   `json:"status"`
}

// Amount is one classified line item.
type Amount struct {
	Type       *string  `json:"type"`
	Value      *float64 `json:"value"`
	Source     *string  `json:"source"`
	Confidence *float64 `json:"confidence"`
}

// CheckConformance reports every way raw deviates from ExtractionSchema.
// A nil error means the payload conforms.
func CheckConformance(raw json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("result is not an object: %w", err)
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("result shape: %w", err)
	}
	return res.Validate(fields["amounts"] != nil)
}

// Validate checks required fields, enums and confidence ranges.
func (r Result) Validate(hasAmounts bool) error {
	var errs []error
	switch {
	case r.Currency == nil:
		errs = append(errs, errors.New("currency is required"))
	case len(strings.TrimSpace(*r.Currency)) != 3:
		errs = append(errs, fmt.Errorf("currency %q is not an ISO 4217 code", *r.Currency))
	}
	if r.OCRConfidence == nil {
		errs = append(errs, errors.New("ocr_confidence is required"))
	} else if !inUnitRange(*r.OCRConfidence) {
		errs = append(errs, fmt.Errorf("ocr_confidence %v out of range", *r.OCRConfidence))
	}
	if !hasAmounts {
		errs = append(errs, errors.New("amounts is required"))
	}
	switch {
	case r.Status == nil:
		errs = append(errs, errors.New("status is required"))
	case !slices.Contains(statuses, *r.Status):
		errs = append(errs, fmt.Errorf("status %q is not allowed", *r.Status))
	}
	for i, a := range r.Amounts {
		if a == nil {
			errs = append(errs, fmt.Errorf("amounts[%d] is null", i))
			continue
		}
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("amounts[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single amount item.
func (a Amount) Validate() error {
	var errs []error
	switch {
	case a.Type == nil:
		errs = append(errs, errors.New("type is required"))
	case !slices.Contains(amountTypes, *a.Type):
		errs = append(errs, fmt.Errorf("type %q is not allowed", *a.Type))
	}
	if a.Value == nil {
		errs = append(errs, errors.New("value is required"))
	}
	if a.Source == nil {
		errs = append(errs, errors.New("source is required"))
	}
	if a.Confidence == nil {
		errs = append(errs, errors.New("confidence is required"))
	} else if !inUnitRange(*a.Confidence) {
		errs = append(errs, fmt.Errorf("confidence %v out of range", *a.Confidence))
	}
	return errors.Join(errs...)
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
