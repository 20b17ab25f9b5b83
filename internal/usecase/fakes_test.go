package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/tastylog/backend/internal/domain"
)

// fakeStore is an in-memory domain.RemoteStore that counts calls and can be told to fail
type fakeStore struct {
	mu sync.Mutex

	docs     map[string]map[string]domain.Document // collection -> id -> doc
	accounts map[string]domain.Account             // session secret -> account
	nextID   int

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	uploadCalls int

	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error
	accountErr error
	sessionErr error
	uploadErr  error

	deletedSessions []string
	uploads         []fakeUpload
}

type fakeUpload struct {
	bucketID string
	name     string
	mimeType string
	size     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     make(map[string]map[string]domain.Document),
		accounts: make(map[string]domain.Account),
	}
}

func (f *fakeStore) seed(collectionID string, doc domain.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collectionID] == nil {
		f.docs[collectionID] = make(map[string]domain.Document)
	}
	f.docs[collectionID][doc.ID] = doc
}

func (f *fakeStore) calls() (list, create, update, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.updateCalls, f.deleteCalls
}

func (f *fakeStore) CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	f.nextID++
	account := domain.Account{ID: fmt.Sprintf("user-%d", f.nextID), Email: email, Name: name}
	f.accounts["secret-"+account.ID] = account
	return &account, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, email, password string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	for secret, account := range f.accounts {
		if account.Email == email {
			return &domain.Session{ID: "session-" + account.ID, UserID: account.ID, Secret: secret}, nil
		}
	}
	return nil, &domain.RemoteError{Status: 401, Type: "user_invalid_credentials", Message: "Invalid credentials"}
}

func (f *fakeStore) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSessions = append(f.deletedSessions, sessionID)
	return nil
}

func (f *fakeStore) GetAccount(ctx context.Context) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[domain.SessionFromContext(ctx)]
	if !ok {
		return nil, &domain.RemoteError{Status: 401, Type: "general_unauthorized_scope", Message: "missing scope"}
	}
	return &account, nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, collectionID string, filters ...domain.Filter) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []domain.Document
	for _, doc := range f.docs[collectionID] {
		if matchesAll(doc, filters) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matchesAll(doc domain.Document, filters []domain.Filter) bool {
	for _, filter := range filters {
		matched := false
		for _, v := range filter.Values {
			if doc.Data[filter.Attribute] == v {
				matched = true
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (f *fakeStore) CreateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if documentID == domain.UniqueID || documentID == "" {
		f.nextID++
		documentID = fmt.Sprintf("doc-%d", f.nextID)
	}
	doc := domain.Document{ID: documentID, CollectionID: collectionID, Data: copyData(data)}
	if f.docs[collectionID] == nil {
		f.docs[collectionID] = make(map[string]domain.Document)
	}
	f.docs[collectionID][documentID] = doc
	return &doc, nil
}

func (f *fakeStore) UpdateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	doc, ok := f.docs[collectionID][documentID]
	if !ok {
		return nil, &domain.RemoteError{Status: 404, Type: "document_not_found", Message: "not found"}
	}
	merged := copyData(doc.Data)
	for k, v := range data {
		merged[k] = v
	}
	doc.Data = merged
	f.docs[collectionID][documentID] = doc
	return &doc, nil
}

func (f *fakeStore) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.docs[collectionID][documentID]; !ok {
		return &domain.RemoteError{Status: 404, Type: "document_not_found", Message: "not found"}
	}
	delete(f.docs[collectionID], documentID)
	return nil
}

func (f *fakeStore) UploadFile(ctx context.Context, bucketID, fileName, mimeType string, content []byte) (*domain.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, fakeUpload{bucketID: bucketID, name: fileName, mimeType: mimeType, size: len(content)})
	f.nextID++
	id := fmt.Sprintf("file-%d", f.nextID)
	return &domain.UploadedFile{
		ID:         id,
		BucketID:   bucketID,
		Name:       fileName,
		MimeType:   mimeType,
		SizeBytes:  int64(len(content)),
		PreviewURL: f.FilePreviewURL(bucketID, id),
	}, nil
}

func (f *fakeStore) FilePreviewURL(bucketID, fileID string) string {
	return "https://files.example.com/" + bucketID + "/" + fileID
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// foodDoc builds a food collection document the way the remote store returns it
func foodDoc(id, owner, title, occurredAt string, price float64, rating float64) domain.Document {
	return domain.Document{
		ID: id,
		Data: map[string]any{
			"food_id":  "local-" + id,
			"user_id":  owner,
			"title":    title,
			"time":     occurredAt,
			"price":    price,
			"rating":   rating,
			"tag":      "",
			"location": "",
		},
	}
}
