package usecase

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tastylog/backend/internal/domain"
)

const dateLayout = "2006-01-02"

// MonthlyStats summarises one calendar month of records
type MonthlyStats struct {
	Month         string  `json:"month"`
	TotalSpend    float64 `json:"totalSpend"`
	AverageRating float64 `json:"averageRating"`
	RecordCount   int     `json:"recordCount"`
}

// DailySpend is the spend total of one day
type DailySpend struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// RatingBucket counts records sharing a rating rounded to the nearest half star
type RatingBucket struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// MonthlySummary covers records whose OccurredAt starts with month ("yyyy-MM").
// Unrated records (rating 0) count toward the total but not the average.
func MonthlySummary(records []domain.FoodRecord, month string) MonthlyStats {
	stats := MonthlyStats{Month: month}
	ratingSum := 0.0
	rated := 0

	for _, record := range records {
		if !strings.HasPrefix(record.OccurredAt, month) {
			continue
		}
		stats.RecordCount++
		stats.TotalSpend += domain.ParsePrice(record.Price)
		if record.Rating > 0 {
			ratingSum += record.Rating
			rated++
		}
	}

	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	return stats
}

// SpendingTrend returns per-day totals in ascending date order. Records whose
// date does not parse are skipped.
func SpendingTrend(records []domain.FoodRecord) []DailySpend {
	totals := make(map[string]float64)
	for _, record := range records {
		date := record.Date()
		if _, err := time.Parse(dateLayout, date); err != nil {
			continue
		}
		totals[date] += domain.ParsePrice(record.Price)
	}

	trend := make([]DailySpend, 0, len(totals))
	for date, total := range totals {
		trend = append(trend, DailySpend{Date: date, Total: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// RatingDistribution counts rated records by half-star buckets, highest rating first
func RatingDistribution(records []domain.FoodRecord) []RatingBucket {
	counts := make(map[float64]int)
	for _, record := range records {
		if record.Rating <= 0 {
			continue
		}
		counts[math.Round(record.Rating*2)/2]++
	}

	buckets := make([]RatingBucket, 0, len(counts))
	for rating, count := range counts {
		buckets = append(buckets, RatingBucket{Rating: rating, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Rating > buckets[j].Rating })
	return buckets
}
