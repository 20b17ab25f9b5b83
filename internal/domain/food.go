package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CurrencySymbol prefixes every rendered price
const CurrencySymbol = "¥"

// Rating bounds
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// occurredAtPattern accepts "yyyy-MM-dd" optionally followed by a time part
var occurredAtPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}( .+)?$`)

// FoodRecord represents one logged meal
type FoodRecord struct {
	LocalID    string   `json:"localId"`
	RemoteID   string   `json:"remoteId,omitempty"`
	OwnerID    string   `json:"ownerId,omitempty"`
	Title      string   `json:"title"`
	OccurredAt string   `json:"occurredAt"`
	Rating     float64  `json:"rating"`
	Price      string   `json:"price"`
	Tags       []string `json:"tags"`
	ImageURL   string   `json:"imageUrl"`
	Notes      string   `json:"notes"`
	Location   string   `json:"location"`
}

// Validate checks the fields a record must carry before it is written to the remote store
func (r FoodRecord) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.OccurredAt,
			validation.Required.Error("occurredAt is required"),
			validation.Match(occurredAtPattern).Error("occurredAt must start with yyyy-MM-dd"),
		),
		validation.Field(&r.Rating, validation.Min(MinRating), validation.Max(MaxRating)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Date returns the date portion of OccurredAt (everything before the first space)
func (r FoodRecord) Date() string {
	if idx := strings.Index(r.OccurredAt, " "); idx >= 0 {
		return r.OccurredAt[:idx]
	}
	return r.OccurredAt
}

// Clone returns a copy that shares no slices with r
func (r FoodRecord) Clone() FoodRecord {
	c := r
	if r.Tags != nil {
		c.Tags = append([]string{}, r.Tags...)
	}
	return c
}

// CloneRecords copies a record list so callers never hold a live cache reference
func CloneRecords(records []FoodRecord) []FoodRecord {
	out := make([]FoodRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// ClampRating bounds a rating to [MinRating, MaxRating]
func ClampRating(rating float64) float64 {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}

// FormatPrice renders an amount with exactly one currency prefix.
// Leading currency symbols already present are collapsed.
func FormatPrice(amount string) string {
	amount = strings.TrimSpace(amount)
	for strings.HasPrefix(amount, CurrencySymbol) {
		amount = strings.TrimSpace(strings.TrimPrefix(amount, CurrencySymbol))
	}
	if amount == "" {
		amount = "0"
	}
	return CurrencySymbol + amount
}

// ParsePrice extracts the numeric amount from a display price by dropping every
// character that is not a digit or a dot. Unparseable input yields 0.
func ParsePrice(price string) float64 {
	value, ok := parsePrice(price)
	if !ok {
		return 0
	}
	return value
}

// TryParsePrice is ParsePrice that also reports whether a number was found
func TryParsePrice(price string) (float64, bool) {
	return parsePrice(price)
}

// NormalizeTags trims every tag and drops empty ones
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags turns the stored comma-joined tag field back into a list
func SplitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(joined, ","))
}

// JoinTags produces the single comma-joined tag field stored by the backend
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

func parsePrice(price string) (float64, bool) {
	var b strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
