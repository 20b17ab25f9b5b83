package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tastylog/backend/internal/domain"
)

// Config holds the connection settings for an Appwrite project
type Config struct {
	Endpoint          string
	ProjectID         string
	APIKey            string
	DatabaseID        string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client talks to the Appwrite REST API and implements domain.RemoteStore
type Client struct {
	httpClient  *http.Client
	endpoint    string
	projectID   string
	apiKey      string
	databaseID  string
	rateLimiter *rate.Limiter
	debug       bool
}

var _ domain.RemoteStore = (*Client)(nil)

// NewClient creates a new Appwrite API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		projectID:   cfg.ProjectID,
		apiKey:      cfg.APIKey,
		databaseID:  cfg.DatabaseID,
		rateLimiter: rate.NewLimiter(limit, 10),
	}
}

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// SetDebug enables logging of request and response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...any) {
	if c.debug {
		log.Printf("[Appwrite] "+format, args...)
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// errorResponse is the error body Appwrite sends with every non-2xx response
type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// query is one entry of the queries[] parameter
type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values"`
}

// encodeFilters renders filters in Appwrite's JSON query syntax
func encodeFilters(filters []domain.Filter) ([]string, error) {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		raw, err := json.Marshal(query{Method: "equal", Attribute: f.Attribute, Values: f.Values})
		if err != nil {
			return nil, fmt.Errorf("failed to encode query on %q: %w", f.Attribute, err)
		}
		out = append(out, string(raw))
	}
	return out, nil
}

// doRequest executes one API call and returns the raw response body.
// Non-2xx responses become *domain.RemoteError. Requests are never retried.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		log.Printf("[Appwrite] Rate limiter error: %v", err)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := c.endpoint + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Response-Format", "1.5.0")
	req.Header.Set("User-Agent", "TastyLog/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}
	if session := domain.SessionFromContext(ctx); session != "" {
		req.Header.Set("X-Appwrite-Session", session)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.debugLog("%s %s", method, reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Appwrite] Request error: %s %s: %v", method, path, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	respBody, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrRemote, err)
	}
	c.debugLog("Response %d: %s", resp.StatusCode, string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := &domain.RemoteError{Status: resp.StatusCode}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			remoteErr.Message = errResp.Message
			remoteErr.Type = errResp.Type
		} else {
			remoteErr.Message = http.StatusText(resp.StatusCode)
		}
		log.Printf("[Appwrite] API error - %s %s: %v", method, path, remoteErr)
		return nil, remoteErr
	}

	return respBody, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	respBody, err := c.doRequest(ctx, method, path, params, body, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Printf("[Appwrite] JSON decode error: %v", err)
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrRemote, err)
	}
	return nil
}

// CreateAccount registers a new email/password account
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error) {
	log.Printf("[Appwrite] CreateAccount called for %q", email)

	payload := map[string]any{
		"userId":   domain.UniqueID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var account domain.Account
	if err := c.doJSON(ctx, http.MethodPost, "/account", nil, payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateSession opens an email/password session
func (c *Client) CreateSession(ctx context.Context, email, password string) (*domain.Session, error) {
	log.Printf("[Appwrite] CreateSession called for %q", email)

	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	var session domain.Session
	if err := c.doJSON(ctx, http.MethodPost, "/account/sessions/email", nil, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession ends a session; domain.CurrentSession names the caller's own
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = domain.CurrentSession
	}
	return c.doJSON(ctx, http.MethodDelete, "/account/sessions/"+url.PathEscape(sessionID), nil, nil, nil)
}

// GetAccount returns the account that owns the session on ctx
func (c *Client) GetAccount(ctx context.Context) (*domain.Account, error) {
	var account domain.Account
	if err := c.doJSON(ctx, http.MethodGet, "/account", nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) documentsPath(collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(c.databaseID), url.PathEscape(collectionID))
}

// documentList is the response body of a document listing
type documentList struct {
	Total     int              `json:"total"`
	Documents []map[string]any `json:"documents"`
}

// ListDocuments lists a collection restricted by equality filters
func (c *Client) ListDocuments(ctx context.Context, collectionID string, filters ...domain.Filter) ([]domain.Document, error) {
	queries, err := encodeFilters(filters)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}

	var list documentList
	if err := c.doJSON(ctx, http.MethodGet, c.documentsPath(collectionID), params, nil, &list); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(list.Documents))
	for _, raw := range list.Documents {
		docs = append(docs, decodeDocument(raw))
	}
	log.Printf("[Appwrite] Listed %d documents from %s", len(docs), collectionID)
	return docs, nil
}

// CreateDocument stores a new document. Pass domain.UniqueID to let the server pick the id.
func (c *Client) CreateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	if documentID == "" {
		documentID = domain.UniqueID
	}
	payload := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodPost, c.documentsPath(collectionID), nil, payload, &raw); err != nil {
		return nil, err
	}
	doc := decodeDocument(raw)
	return &doc, nil
}

// UpdateDocument patches the given fields of an existing document
func (c *Client) UpdateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) (*domain.Document, error) {
	payload := map[string]any{"data": data}

	var raw map[string]any
	path := c.documentsPath(collectionID) + "/" + url.PathEscape(documentID)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, payload, &raw); err != nil {
		return nil, err
	}
	doc := decodeDocument(raw)
	return &doc, nil
}

// DeleteDocument removes a document
func (c *Client) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	path := c.documentsPath(collectionID) + "/" + url.PathEscape(documentID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// fileResponse is the file object returned by the storage API
type fileResponse struct {
	ID       string `json:"$id"`
	BucketID string `json:"bucketId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeOriginal"`
}

// UploadFile stores content in a bucket under a fresh UUID file id
func (c *Client) UploadFile(ctx context.Context, bucketID, fileName, mimeType string, content []byte) (*domain.UploadedFile, error) {
	if bucketID == "" {
		return nil, domain.Validationf("bucket id is required")
	}
	log.Printf("[Appwrite] UploadFile %q (%d bytes) to bucket %s", fileName, len(content), bucketID)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("fileId", uuid.NewString()); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName)}
	header["Content-Type"] = []string{mimeType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	path := fmt.Sprintf("/storage/buckets/%s/files", url.PathEscape(bucketID))
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var file fileResponse
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrRemote, err)
	}
	if file.ID == "" {
		return nil, fmt.Errorf("%w: upload response carried no file id", domain.ErrRemote)
	}
	if file.BucketID == "" {
		file.BucketID = bucketID
	}

	return &domain.UploadedFile{
		ID:         file.ID,
		BucketID:   file.BucketID,
		Name:       file.Name,
		MimeType:   file.MimeType,
		SizeBytes:  file.Size,
		PreviewURL: c.FilePreviewURL(file.BucketID, file.ID),
	}, nil
}

// FilePreviewURL builds the public view URL of a stored file
func (c *Client) FilePreviewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		c.endpoint, url.PathEscape(bucketID), url.PathEscape(fileID), url.QueryEscape(c.projectID))
}
