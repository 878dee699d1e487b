// package services defines clients for the remote HTTP APIs reelist depends on
//
// Appwrite (auth + document store), TMDB (movie catalog)
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vaporisers/reelist/internal/models"
)

// AuthAPI defines the auth service contract: account creation, email/password
// sessions and out-of-band password recovery.
type AuthAPI interface {
	// Account retrieves the currently authenticated account.
	// Returns shared.ErrNoSession when no session is active.
	Account(ctx context.Context) (*Account, error)

	// CreateAccount registers a new account. Does not establish a session.
	CreateAccount(ctx context.Context, userID, email, password, name string) (*Account, error)

	// CreateEmailSession signs in with email and password.
	CreateEmailSession(ctx context.Context, email, password string) (*Session, error)

	// DeleteSession terminates a session. Use "current" for the active one.
	DeleteSession(ctx context.Context, sessionID string) error

	// CreateRecovery triggers a password recovery email with a reset link
	// pointing at redirectURL.
	CreateRecovery(ctx context.Context, email, redirectURL string) error

	// UpdateRecovery completes a password recovery using the userId and secret
	// from the emailed link.
	UpdateRecovery(ctx context.Context, userID, secret, password string) error
}

// DocumentAPI defines the document store contract: CRUD over collections of
// schemaless documents with equality filters and ordering.
type DocumentAPI interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error)
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// CatalogAPI defines the movie catalog contract used for browsing and search.
type CatalogAPI interface {
	SearchMovies(ctx context.Context, query string) ([]models.Movie, error)
	PopularMovies(ctx context.Context) ([]models.Movie, error)
	MovieDetails(ctx context.Context, movieID int) (*models.Movie, error)
}

// Account represents an auth service account.
type Account struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity converts the account to the domain identity type.
func (a *Account) Identity() *models.Identity {
	return &models.Identity{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Session represents an auth service session.
//
// Secret is only populated on session creation and is what the CLI persists
// locally to stay signed in across invocations.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// Document represents one schemaless document from the document store.
//
// System fields ($id, $createdAt, ...) are split out; everything else lands in
// Data with JSON number fields decoded as float64.
type Document struct {
	ID        string
	CreatedAt string
	Data      map[string]any
}

// DocumentList represents a page of documents from a list call.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// UnmarshalJSON decodes a document, splitting system fields from data fields.
func (d *Document) UnmarshalJSON(b []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	d.Data = make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "$id":
			d.ID, _ = v.(string)
		case "$createdAt":
			d.CreatedAt, _ = v.(string)
		default:
			if len(k) > 0 && k[0] == '$' {
				continue
			}
			d.Data[k] = v
		}
	}

	return nil
}

// String returns a string data field, or "" when absent or mistyped.
func (d Document) String(field string) string {
	s, _ := d.Data[field].(string)
	return s
}

// Float returns a numeric data field, or 0 when absent or mistyped.
func (d Document) Float(field string) float64 {
	f, _ := d.Data[field].(float64)
	return f
}

// Int returns a numeric data field truncated to int.
func (d Document) Int(field string) int {
	return int(d.Float(field))
}

// Query is the wire form of a document store query.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// QueryEqual builds an equality filter on the given attribute.
func QueryEqual(attribute string, value any) string {
	return marshalQuery(Query{Method: "equal", Attribute: attribute, Values: []any{value}})
}

// QueryOrderDesc builds a descending ordering on the given attribute.
func QueryOrderDesc(attribute string) string {
	return marshalQuery(Query{Method: "orderDesc", Attribute: attribute})
}

// QueryLimit builds a page size limit.
func QueryLimit(limit int) string {
	return marshalQuery(Query{Method: "limit", Values: []any{limit}})
}

// ParseQuery decodes a query built by the helpers above. Used by test doubles
// to interpret filters the way the remote store would.
func ParseQuery(s string) (Query, error) {
	var q Query
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return q, fmt.Errorf("failed to parse query: %w", err)
	}
	return q, nil
}

func marshalQuery(q Query) string {
	b, err := json.Marshal(q)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal query: %v", err))
	}
	return string(b)
}
