package usecase

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tastylog/backend/internal/domain"
)

// RecordFilter narrows a record list. Zero values leave a dimension unfiltered,
// except the rating range which defaults to the full 0..5.
type RecordFilter struct {
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Location  string   `json:"location,omitempty"`
	MinRating int      `json:"minRating"`
	MaxRating int      `json:"maxRating"`
	Tags      []string `json:"tags,omitempty"`
}

// DefaultRecordFilter matches every record
func DefaultRecordFilter() RecordFilter {
	return RecordFilter{MinRating: int(domain.MinRating), MaxRating: int(domain.MaxRating)}
}

// Validate checks the filter bounds
func (f RecordFilter) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.From, validation.Date(dateLayout)),
		validation.Field(&f.To, validation.Date(dateLayout)),
		validation.Field(&f.MinRating, validation.Min(int(domain.MinRating)), validation.Max(int(domain.MaxRating))),
		validation.Field(&f.MaxRating, validation.Min(int(domain.MinRating)), validation.Max(int(domain.MaxRating))),
	)
	if err != nil {
		return domain.Validationf("%v", err)
	}
	if f.MinRating > f.MaxRating {
		return domain.Validationf("minRating must not exceed maxRating")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.Validationf("minPrice must not exceed maxPrice")
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return domain.Validationf("from must not be after to")
	}
	return nil
}

// FilterRecords keeps the records matching every set criterion, preserving order
func FilterRecords(records []domain.FoodRecord, f RecordFilter) []domain.FoodRecord {
	out := make([]domain.FoodRecord, 0, len(records))
	for _, record := range records {
		if f.matches(record) {
			out = append(out, record.Clone())
		}
	}
	return out
}

func (f RecordFilter) matches(record domain.FoodRecord) bool {
	date := record.Date()
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price, ok := domain.TryParsePrice(record.Price)
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}

	// Records without a location are not excluded by a location filter
	if f.Location != "" && record.Location != "" {
		if !strings.Contains(strings.ToLower(record.Location), strings.ToLower(f.Location)) {
			return false
		}
	}

	rating := int(record.Rating)
	if rating < f.MinRating || rating > f.MaxRating {
		return false
	}

	if len(f.Tags) > 0 && !hasAnyTag(record.Tags, f.Tags) {
		return false
	}
	return true
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		w = strings.TrimSpace(w)
		for _, t := range tags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}
