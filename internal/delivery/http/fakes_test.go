package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/tastylog/backend/internal/domain"
)

// memoryStore is an in-memory domain.RemoteStore for driving the router end to end
type memoryStore struct {
	mu sync.Mutex

	docs     map[string]map[string]domain.Document // collection -> id -> doc
	accounts map[string]domain.Account             // session secret -> account
	nextID   int

	listErr error

	deletedSessions []string
	uploads         []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs:     make(map[string]map[string]domain.Document),
		accounts: make(map[string]domain.Account),
	}
}

func (s *memoryStore) CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Email == email {
			return nil, &domain.RemoteError{Status: 409, Type: "user_already_exists", Message: "A user with the same email already exists"}
		}
	}
	s.nextID++
	account := domain.Account{ID: fmt.Sprintf("user-%d", s.nextID), Email: email, Name: name}
	s.accounts["secret-"+account.ID] = account
	return &account, nil
}

func (s *memoryStore) CreateSession(ctx context.Context, email, password string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for secret, account := range s.accounts {
		if account.Email == email {
			return &domain.Session{ID: "session-" + account.ID, UserID: account.ID, Secret: secret}, nil
		}
	}
	return nil, &domain.RemoteError{Status: 401, Type: "user_invalid_credentials", Message: "Invalid credentials"}
}

func (s *memoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedSessions = append(s.deletedSessions, sessionID)
	return nil
}

func (s *memoryStore) GetAccount(ctx context.Context) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[domain.SessionFromContext(ctx)]
	if !ok {
		return nil, &domain.RemoteError{Status: 401, Type: "user_unauthorized", Message: "invalid session"}
	}
	return &account, nil
}

func (s *memoryStore) ListDocuments(ctx context.Context, collectionID string, filters ...domain.Filter) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	var out []domain.Document
	for _, doc := range s.docs[collectionID] {
		keep := true
		for _, filter := range filters {
			if len(filter.Values) == 0 || doc.Data[filter.Attribute] != filter.Values[0] {
				keep = false
			}
		}
		if keep {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if documentID == domain.UniqueID {
		s.nextID++
		documentID = fmt.Sprintf("doc-%d", s.nextID)
	}
	if s.docs[collectionID] == nil {
		s.docs[collectionID] = make(map[string]domain.Document)
	}
	doc := domain.Document{ID: documentID, CollectionID: collectionID, Data: cloneData(data)}
	s.docs[collectionID][documentID] = doc
	return &doc, nil
}

func (s *memoryStore) UpdateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collectionID][documentID]
	if !ok {
		return nil, &domain.RemoteError{Status: 404, Type: "document_not_found", Message: "Document not found"}
	}
	doc.Data = cloneData(doc.Data)
	for k, v := range data {
		doc.Data[k] = v
	}
	s.docs[collectionID][documentID] = doc
	return &doc, nil
}

func (s *memoryStore) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collectionID][documentID]; !ok {
		return &domain.RemoteError{Status: 404, Type: "document_not_found", Message: "Document not found"}
	}
	delete(s.docs[collectionID], documentID)
	return nil
}

func (s *memoryStore) UploadFile(ctx context.Context, bucketID, fileName, mimeType string, content []byte) (*domain.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("file-%d", s.nextID)
	s.uploads = append(s.uploads, fileName)
	return &domain.UploadedFile{
		ID:         id,
		BucketID:   bucketID,
		Name:       fileName,
		MimeType:   mimeType,
		SizeBytes:  int64(len(content)),
		PreviewURL: s.FilePreviewURL(bucketID, id),
	}, nil
}

func (s *memoryStore) FilePreviewURL(bucketID, fileID string) string {
	return "https://files.example.com/" + bucketID + "/" + fileID
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
