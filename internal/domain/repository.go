package domain

import "context"

// RemoteStore defines the remote backend capability: accounts, documents and files
type RemoteStore interface {
	CreateAccount(ctx context.Context, email, password, name string) (*Account, error)
	CreateSession(ctx context.Context, email, password string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetAccount(ctx context.Context) (*Account, error)

	ListDocuments(ctx context.Context, collectionID string, filters ...Filter) ([]Document, error)
	CreateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*Document, error)
	UpdateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*Document, error)
	DeleteDocument(ctx context.Context, collectionID, documentID string) error

	UploadFile(ctx context.Context, bucketID, fileName, mimeType string, content []byte) (*UploadedFile, error)
	FilePreviewURL(bucketID, fileID string) string
}

// RecordCache holds the last-fetched record list per owner
type RecordCache interface {
	Replace(ownerID string, records []FoodRecord)
	Append(ownerID string, record FoodRecord) bool
	Patch(record FoodRecord) bool
	Remove(remoteID string) bool
	Snapshot(ownerID string) ([]FoodRecord, bool)
}
