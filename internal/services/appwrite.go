// Appwrite REST implementation of [AuthAPI] and [DocumentAPI]
//
// Endpoint paths follow https://appwrite.io/docs/references
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vaporisers/reelist/internal/shared"
)

const defaultAppwriteEndpoint = "https://cloud.appwrite.io/v1"

var (
	_ AuthAPI     = (*AppwriteClient)(nil)
	_ DocumentAPI = (*AppwriteClient)(nil)
)

// AppwriteClient talks to an Appwrite project over its REST API and implements
// both the auth and the document store contracts.
//
// A session secret attached via SetSession authenticates subsequent requests.
type AppwriteClient struct {
	endpoint   string
	project    string
	session    string
	httpClient *http.Client
}

// appwriteError is the provider's error envelope.
type appwriteError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// NewAppwriteClient creates a client for the given endpoint and project.
func NewAppwriteClient(endpoint, project string, client *http.Client) *AppwriteClient {
	if endpoint == "" {
		endpoint = defaultAppwriteEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AppwriteClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		project:    project,
		httpClient: client,
	}
}

// SetSession attaches a session secret to all subsequent requests.
// An empty secret reverts the client to guest scope.
func (c *AppwriteClient) SetSession(secret string) {
	c.session = secret
}

// doRequest performs a JSON request against the Appwrite API and decodes the
// response into result. Non-2xx responses are classified into the shared error
// taxonomy.
func (c *AppwriteClient) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	req.Header.Set("X-Appwrite-Response-Format", "1.6.0")
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr appwriteError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("%w: status %d", shared.ErrProvider, resp.StatusCode)
		}
		return classifyError(apiErr)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// classifyError maps a provider error to the shared taxonomy.
//
// Structured type codes are preferred; the message substrings are a fallback
// for older server versions that omit them.
func classifyError(apiErr appwriteError) error {
	switch apiErr.Type {
	case "user_already_exists", "user_email_already_exists":
		return fmt.Errorf("%w: %s", shared.ErrDuplicateAccount, apiErr.Message)
	case "user_invalid_credentials":
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, apiErr.Message)
	case "general_rate_limit_exceeded":
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, apiErr.Message)
	case "general_unauthorized_scope", "user_session_not_found":
		return fmt.Errorf("%w: %s", shared.ErrNoSession, apiErr.Message)
	}

	switch msg := apiErr.Message; {
	case strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %s", shared.ErrDuplicateAccount, msg)
	case strings.Contains(msg, "Invalid credentials"):
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, msg)
	case strings.Contains(msg, "Rate limit"):
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, msg)
	case strings.Contains(msg, "missing scope"), strings.Contains(msg, "Missing session"):
		return fmt.Errorf("%w: %s", shared.ErrNoSession, msg)
	}

	return fmt.Errorf("%w: %s", shared.ErrProvider, apiErr.Message)
}

// Account retrieves the currently authenticated account.
func (c *AppwriteClient) Account(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.doRequest(ctx, http.MethodGet, "/account", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount registers a new account with the given credentials.
func (c *AppwriteClient) CreateAccount(ctx context.Context, userID, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}

	var account Account
	if err := c.doRequest(ctx, http.MethodPost, "/account", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateEmailSession signs in with email and password. The returned session
// secret authenticates future requests once attached via SetSession.
func (c *AppwriteClient) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.doRequest(ctx, http.MethodPost, "/account/sessions/email", body, &session); err != nil {
		return nil, err
	}

	if session.Secret != "" {
		c.SetSession(session.Secret)
	}

	return &session, nil
}

// DeleteSession terminates the session with the given ID ("current" for the
// active one). The local secret is dropped only after the backend confirms.
func (c *AppwriteClient) DeleteSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/account/sessions/%s", url.PathEscape(sessionID))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	c.session = ""
	return nil
}

// CreateRecovery triggers a password recovery email with a reset link.
func (c *AppwriteClient) CreateRecovery(ctx context.Context, email, redirectURL string) error {
	body := map[string]string{
		"email": email,
		"url":   redirectURL,
	}
	return c.doRequest(ctx, http.MethodPost, "/account/recovery", body, nil)
}

// UpdateRecovery completes a password recovery using the emailed credentials.
func (c *AppwriteClient) UpdateRecovery(ctx context.Context, userID, secret, password string) error {
	body := map[string]string{
		"userId":   userID,
		"secret":   secret,
		"password": password,
	}
	return c.doRequest(ctx, http.MethodPut, "/account/recovery", body, nil)
}

// documentsPath builds the collection documents path.
func (c *AppwriteClient) documentsPath(databaseID, collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(databaseID), url.PathEscape(collectionID))
}

// ListDocuments retrieves documents matching the given queries.
func (c *AppwriteClient) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	path := c.documentsPath(databaseID, collectionID)

	if len(queries) > 0 {
		params := url.Values{}
		for _, q := range queries {
			params.Add("queries[]", q)
		}
		path += "?" + params.Encode()
	}

	var list DocumentList
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateDocument inserts a new document with the given ID and data.
func (c *AppwriteClient) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error) {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	var doc Document
	if err := c.doRequest(ctx, http.MethodPost, c.documentsPath(databaseID, collectionID), body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument patches an existing document's data.
func (c *AppwriteClient) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error) {
	path := fmt.Sprintf("%s/%s", c.documentsPath(databaseID, collectionID), url.PathEscape(documentID))
	body := map[string]any{"data": data}

	var doc Document
	if err := c.doRequest(ctx, http.MethodPatch, path, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document by ID.
func (c *AppwriteClient) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	path := fmt.Sprintf("%s/%s", c.documentsPath(databaseID, collectionID), url.PathEscape(documentID))
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
