package domain

// UniqueID asks the remote store to generate a document or file id
const UniqueID = "unique()"

// Document is a flat field-map record as stored by the remote store
type Document struct {
	ID           string
	CollectionID string
	CreatedAt    string
	UpdatedAt    string
	Data         map[string]any
}

// Filter restricts a document listing to documents whose Attribute equals one of Values
type Filter struct {
	Attribute string
	Values    []any
}

// Equal builds an equality filter
func Equal(attribute string, values ...any) Filter {
	return Filter{Attribute: attribute, Values: values}
}

// UploadedFile describes a file stored in a remote bucket
type UploadedFile struct {
	ID         string `json:"fileId"`
	BucketID   string `json:"bucketId"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"size"`
	PreviewURL string `json:"url"`
}
