package usecase

import (
	"sort"

	"github.com/tastylog/backend/internal/domain"
)

// DayGroup is one date header in the record list with its records and spend total
type DayGroup struct {
	Date    string              `json:"date"`
	Total   float64             `json:"total"`
	Records []domain.FoodRecord `json:"records"`
}

// GroupByDate groups records by the date part of OccurredAt, newest day first.
// Within a day records are ordered by full OccurredAt descending; ties keep input order.
func GroupByDate(records []domain.FoodRecord) []DayGroup {
	byDate := make(map[string]*DayGroup)
	order := make([]string, 0)

	for _, record := range records {
		date := record.Date()
		group, ok := byDate[date]
		if !ok {
			group = &DayGroup{Date: date, Records: []domain.FoodRecord{}}
			byDate[date] = group
			order = append(order, date)
		}
		group.Records = append(group.Records, record.Clone())
		group.Total += domain.ParsePrice(record.Price)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	groups := make([]DayGroup, 0, len(order))
	for _, date := range order {
		group := byDate[date]
		sort.SliceStable(group.Records, func(i, j int) bool {
			return group.Records[i].OccurredAt > group.Records[j].OccurredAt
		})
		groups = append(groups, *group)
	}
	return groups
}
