package appwrite

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tastylog/backend/internal/domain"
)

func TestDocumentToRecord(t *testing.T) {
	doc := domain.Document{
		ID: "doc-1",
		Data: map[string]any{
			FieldFoodID:   "local-1",
			FieldUserID:   "user-1",
			FieldTitle:    "Beef noodles",
			FieldTime:     "2024-07-15 12:30",
			FieldRating:   4.5,
			FieldPrice:    98.0,
			FieldTag:      "noodles,spicy",
			FieldImageURL: "https://img.example.com/1.jpg",
			FieldContent:  "Great broth",
			FieldLocation: "成都市武侯区",
		},
	}

	got := DocumentToRecord(doc)

	want := domain.FoodRecord{
		LocalID:    "local-1",
		RemoteID:   "doc-1",
		OwnerID:    "user-1",
		Title:      "Beef noodles",
		OccurredAt: "2024-07-15 12:30",
		Rating:     4.5,
		Price:      "¥98",
		Tags:       []string{"noodles", "spicy"},
		ImageURL:   "https://img.example.com/1.jpg",
		Notes:      "Great broth",
		Location:   "成都市武侯区",
	}
	if got.LocalID != want.LocalID || got.RemoteID != want.RemoteID || got.OwnerID != want.OwnerID ||
		got.Title != want.Title || got.OccurredAt != want.OccurredAt || got.Rating != want.Rating ||
		got.Price != want.Price || got.ImageURL != want.ImageURL || got.Notes != want.Notes ||
		got.Location != want.Location || strings.Join(got.Tags, "|") != strings.Join(want.Tags, "|") {
		t.Errorf("DocumentToRecord() = %+v, want %+v", got, want)
	}
}

func TestDocumentToRecord_LocalIDFallsBackToDocumentID(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "absent food_id", data: map[string]any{}},
		{name: "empty food_id", data: map[string]any{FieldFoodID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DocumentToRecord(domain.Document{ID: "doc-9", Data: tt.data})
			if got.LocalID != "doc-9" {
				t.Errorf("LocalID = %q, want doc-9", got.LocalID)
			}
		})
	}
}

func TestDocumentToRecord_Price(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "absent", value: nil, want: "¥0"},
		{name: "float", value: 12.5, want: "¥12.5"},
		{name: "whole float", value: 98.0, want: "¥98"},
		{name: "int", value: 45, want: "¥45"},
		{name: "int64", value: int64(20), want: "¥20"},
		{name: "json number", value: json.Number("33.3"), want: "¥33.3"},
		{name: "zero", value: 0.0, want: "¥0"},
		{name: "numeric string", value: "35", want: "¥35"},
		{name: "prefixed string", value: "¥35", want: "¥35"},
		{name: "doubly prefixed string", value: "¥¥35", want: "¥35"},
		{name: "empty string", value: "", want: "¥0"},
		{name: "malformed string", value: "about ten", want: "¥0"},
		{name: "unsupported type", value: []any{1}, want: "¥0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			if tt.value != nil {
				data[FieldPrice] = tt.value
			}
			got := DocumentToRecord(domain.Document{ID: "doc", Data: data}).Price
			if got != tt.want {
				t.Errorf("Price = %q, want %q", got, tt.want)
			}
			if strings.Count(got, domain.CurrencySymbol) != 1 || !strings.HasPrefix(got, domain.CurrencySymbol) {
				t.Errorf("Price %q must carry exactly one leading currency symbol", got)
			}
		})
	}
}

func TestDocumentToRecord_Rating(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{name: "absent", value: nil, want: 0},
		{name: "float", value: 3.5, want: 3.5},
		{name: "int", value: 4, want: 4},
		{name: "numeric string", value: "2.5", want: 2.5},
		{name: "malformed string", value: "great", want: 0},
		{name: "above range", value: 9.0, want: 5},
		{name: "below range", value: -1.0, want: 0},
		{name: "unsupported type", value: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			if tt.value != nil {
				data[FieldRating] = tt.value
			}
			got := DocumentToRecord(domain.Document{ID: "doc", Data: data}).Rating
			if got != tt.want {
				t.Errorf("Rating = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentToRecord_Tags(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "absent", value: nil, want: []string{}},
		{name: "empty", value: "", want: []string{}},
		{name: "single", value: "spicy", want: []string{"spicy"}},
		{name: "comma joined", value: "a, b ,c", want: []string{"a", "b", "c"}},
		{name: "empty pieces dropped", value: "a,,b, ,", want: []string{"a", "b"}},
		{name: "non-string", value: 42, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			if tt.value != nil {
				data[FieldTag] = tt.value
			}
			got := DocumentToRecord(domain.Document{ID: "doc", Data: data}).Tags
			if got == nil {
				t.Fatal("Tags is nil, want empty list")
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Tags = %q, want %q", got, tt.want)
			}
			for _, tag := range got {
				if tag == "" {
					t.Errorf("Tags contains an empty string: %q", got)
				}
			}
		})
	}
}

func TestDocumentToRecord_MissingLocation(t *testing.T) {
	got := DocumentToRecord(domain.Document{ID: "doc", Data: map[string]any{FieldTitle: "Tea"}})

	if got.Location != "" || got.Title != "Tea" {
		t.Errorf("DocumentToRecord() = %+v, want empty location and title Tea", got)
	}
}

func TestRecordToDocument(t *testing.T) {
	record := domain.FoodRecord{
		LocalID:    "local-1",
		RemoteID:   "doc-1",
		OwnerID:    "user-1",
		Title:      "Dumplings",
		OccurredAt: "2024-07-10",
		Rating:     4,
		Price:      "¥20.5",
		Tags:       []string{"steamed", " pork ", ""},
		ImageURL:   "https://img.example.com/2.jpg",
		Notes:      "Lunch",
		Location:   "上海市",
	}

	t.Run("create includes food_id", func(t *testing.T) {
		data := RecordToDocument(record, true)

		if data[FieldFoodID] != "local-1" {
			t.Errorf("food_id = %v, want local-1", data[FieldFoodID])
		}
		if data[FieldPrice] != 20.5 {
			t.Errorf("price = %v, want 20.5", data[FieldPrice])
		}
		if data[FieldTag] != "steamed,pork" {
			t.Errorf("tag = %v, want steamed,pork", data[FieldTag])
		}
		if data[FieldUserID] != "user-1" || data[FieldContent] != "Lunch" || data[FieldLocation] != "上海市" {
			t.Errorf("unexpected document fields: %v", data)
		}
	})

	t.Run("update omits food_id", func(t *testing.T) {
		data := RecordToDocument(record, false)

		if _, ok := data[FieldFoodID]; ok {
			t.Errorf("update payload must not carry food_id: %v", data)
		}
	})
}

func TestRecordToDocument_Price(t *testing.T) {
	tests := []struct {
		price string
		want  float64
	}{
		{price: "¥98", want: 98},
		{price: "12.50元", want: 12.5},
		{price: "", want: 0},
		{price: "free", want: 0},
		{price: "1.2.3", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			data := RecordToDocument(domain.FoodRecord{Price: tt.price}, true)
			if data[FieldPrice] != tt.want {
				t.Errorf("price = %v, want %v", data[FieldPrice], tt.want)
			}
		})
	}
}

func TestPriceRoundTrip(t *testing.T) {
	for _, price := range []string{"¥98", "¥0", "¥12.5"} {
		data := RecordToDocument(domain.FoodRecord{Price: price}, true)
		got := DocumentToRecord(domain.Document{ID: "doc", Data: data}).Price
		if got != price {
			t.Errorf("round trip of %q = %q", price, got)
		}
	}
}

func TestProfileMapping(t *testing.T) {
	profile := domain.UserProfile{
		UserID:    "user-1",
		Email:     "alice@example.com",
		Name:      "Alice",
		AvatarURL: "https://img.example.com/a.jpg",
	}

	data := ProfileToDocument(profile)
	got := DocumentToProfile(domain.Document{ID: "profile-doc", Data: data})

	profile.DocumentID = "profile-doc"
	if got != profile {
		t.Errorf("DocumentToProfile(ProfileToDocument()) = %+v, want %+v", got, profile)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc := decodeDocument(map[string]any{
		"$id":           "doc-1",
		"$collectionId": "foods",
		"$createdAt":    "2024-07-15T00:00:00.000+00:00",
		"$updatedAt":    "2024-07-16T00:00:00.000+00:00",
		"$databaseId":   "db",
		"title":         "Tea",
	})

	if doc.ID != "doc-1" || doc.CollectionID != "foods" || doc.UpdatedAt != "2024-07-16T00:00:00.000+00:00" {
		t.Errorf("decodeDocument() metadata = %+v", doc)
	}
	if len(doc.Data) != 1 || doc.Data["title"] != "Tea" {
		t.Errorf("decodeDocument() data = %v, want only title", doc.Data)
	}
}

func TestRecordToDocument_OwnerlessUpdateKeepsOwner(t *testing.T) {
	data := RecordToDocument(domain.FoodRecord{RemoteID: "doc-1", Title: "Tea", OccurredAt: "2024-07-10"}, false)

	if _, ok := data[FieldUserID]; ok {
		t.Errorf("ownerless update must not overwrite user_id: %v", data)
	}
}
