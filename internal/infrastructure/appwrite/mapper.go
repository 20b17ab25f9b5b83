package appwrite

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/tastylog/backend/internal/domain"
)

// Food collection attributes
const (
	FieldFoodID   = "food_id"
	FieldUserID   = "user_id"
	FieldTitle    = "title"
	FieldTime     = "time"
	FieldRating   = "rating"
	FieldPrice    = "price"
	FieldTag      = "tag"
	FieldImageURL = "img_url"
	FieldContent  = "content"
	FieldLocation = "location"
)

// Users collection attributes
const (
	FieldEmail     = "email"
	FieldName      = "name"
	FieldAvatarURL = "avatar_url"
)

// decodeDocument splits Appwrite's $-prefixed metadata from the user fields
func decodeDocument(raw map[string]any) domain.Document {
	doc := domain.Document{Data: make(map[string]any, len(raw))}
	for key, value := range raw {
		switch key {
		case "$id":
			doc.ID, _ = value.(string)
		case "$collectionId":
			doc.CollectionID, _ = value.(string)
		case "$createdAt":
			doc.CreatedAt, _ = value.(string)
		case "$updatedAt":
			doc.UpdatedAt, _ = value.(string)
		default:
			if !strings.HasPrefix(key, "$") {
				doc.Data[key] = value
			}
		}
	}
	return doc
}

// DocumentToRecord converts a food document into a FoodRecord.
// Malformed fields fall back to their defaults with a warning; mapping never fails.
func DocumentToRecord(doc domain.Document) domain.FoodRecord {
	record := domain.FoodRecord{
		LocalID:    stringField(doc.Data, FieldFoodID),
		RemoteID:   doc.ID,
		OwnerID:    stringField(doc.Data, FieldUserID),
		Title:      stringField(doc.Data, FieldTitle),
		OccurredAt: stringField(doc.Data, FieldTime),
		Rating:     mapRating(doc.ID, doc.Data[FieldRating]),
		Price:      mapPrice(doc.ID, doc.Data[FieldPrice]),
		Tags:       mapTags(doc.ID, doc.Data[FieldTag]),
		ImageURL:   stringField(doc.Data, FieldImageURL),
		Notes:      stringField(doc.Data, FieldContent),
		Location:   stringField(doc.Data, FieldLocation),
	}

	if record.LocalID == "" {
		record.LocalID = doc.ID
	}
	if _, ok := doc.Data[FieldLocation]; !ok {
		log.Printf("[Mapper] Document %s has no location field", doc.ID)
	}

	return record
}

// DocumentsToRecords maps a document list in order
func DocumentsToRecords(docs []domain.Document) []domain.FoodRecord {
	records := make([]domain.FoodRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, DocumentToRecord(doc))
	}
	return records
}

// RecordToDocument builds the document fields for a record. food_id is only
// written on create so a record's local id never changes after the first save;
// an update without an owner leaves user_id alone.
func RecordToDocument(record domain.FoodRecord, create bool) map[string]any {
	price, ok := domain.TryParsePrice(record.Price)
	if !ok && strings.TrimSpace(record.Price) != "" {
		log.Printf("[Mapper] Malformed price %q on record %s, storing 0", record.Price, record.LocalID)
	}

	data := map[string]any{
		FieldTitle:    record.Title,
		FieldTime:     record.OccurredAt,
		FieldRating:   record.Rating,
		FieldPrice:    price,
		FieldTag:      domain.JoinTags(record.Tags),
		FieldImageURL: record.ImageURL,
		FieldContent:  record.Notes,
		FieldLocation: record.Location,
	}
	if create {
		data[FieldFoodID] = record.LocalID
	}
	if create || record.OwnerID != "" {
		data[FieldUserID] = record.OwnerID
	}
	return data
}

// DocumentToProfile converts a users-collection document into a profile
func DocumentToProfile(doc domain.Document) domain.UserProfile {
	return domain.UserProfile{
		UserID:     stringField(doc.Data, FieldUserID),
		Email:      stringField(doc.Data, FieldEmail),
		Name:       stringField(doc.Data, FieldName),
		AvatarURL:  stringField(doc.Data, FieldAvatarURL),
		DocumentID: doc.ID,
	}
}

// ProfileToDocument builds the users-collection fields for a profile
func ProfileToDocument(profile domain.UserProfile) map[string]any {
	return map[string]any{
		FieldUserID:    profile.UserID,
		FieldEmail:     profile.Email,
		FieldName:      profile.Name,
		FieldAvatarURL: profile.AvatarURL,
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// toFloat coerces the numeric shapes a JSON decoder or SDK may produce
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func mapRating(docID string, value any) float64 {
	if value == nil {
		return 0
	}
	rating, ok := toFloat(value)
	if !ok {
		log.Printf("[Mapper] Unparseable rating %v on document %s, using 0", value, docID)
		return 0
	}
	return domain.ClampRating(rating)
}

func mapPrice(docID string, value any) string {
	switch v := value.(type) {
	case nil:
		return domain.FormatPrice("")
	case string:
		amount := strings.TrimSpace(v)
		for strings.HasPrefix(amount, domain.CurrencySymbol) {
			amount = strings.TrimSpace(strings.TrimPrefix(amount, domain.CurrencySymbol))
		}
		if amount == "" {
			return domain.FormatPrice("")
		}
		if _, err := strconv.ParseFloat(amount, 64); err != nil {
			log.Printf("[Mapper] Malformed price %q on document %s, using 0", v, docID)
			return domain.FormatPrice("")
		}
		return domain.FormatPrice(amount)
	default:
		amount, ok := toFloat(v)
		if !ok {
			log.Printf("[Mapper] Unsupported price %v on document %s, using 0", v, docID)
			return domain.FormatPrice("")
		}
		return domain.FormatPrice(strconv.FormatFloat(amount, 'f', -1, 64))
	}
}

func mapTags(docID string, value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		return domain.SplitTags(v)
	default:
		log.Printf("[Mapper] Unsupported tag field %v on document %s, ignoring", v, docID)
		return []string{}
	}
}
