// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
)

var (
	_ services.AuthAPI     = (*FakeAuth)(nil)
	_ services.DocumentAPI = (*FakeDocuments)(nil)
	_ services.CatalogAPI  = (*FakeCatalog)(nil)
)

// FakeAuth is a test double for [services.AuthAPI] mimicking the provider's
// observable behavior: duplicate registration, credential checks, guest scope.
// Error fields allow behavior injection; call counters allow asserting that an
// operation never reached the backend.
type FakeAuth struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount // keyed by email
	current   *services.Account
	nextID    int
	FailWith  error // returned by every call when set
	CallCount int
}

type fakeAccount struct {
	account  services.Account
	password string
}

func NewFakeAuth() *FakeAuth {
	return &FakeAuth{accounts: map[string]fakeAccount{}}
}

// Seed registers an account without going through CreateAccount.
func (f *FakeAuth) Seed(id, email, password, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = fakeAccount{
		account:  services.Account{ID: id, Email: email, Name: name},
		password: password,
	}
}

// SignedIn reports whether a session is currently established.
func (f *FakeAuth) SignedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil
}

func (f *FakeAuth) Account(ctx context.Context) (*services.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if f.current == nil {
		return nil, fmt.Errorf("%w: User (role: guests) missing scope (account)", shared.ErrNoSession)
	}
	account := *f.current
	return &account, nil
}

func (f *FakeAuth) CreateAccount(ctx context.Context, userID, email, password, name string) (*services.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if _, exists := f.accounts[email]; exists {
		return nil, fmt.Errorf("%w: A user with the same id, email, or phone already exists", shared.ErrDuplicateAccount)
	}

	account := services.Account{ID: userID, Email: email, Name: name}
	f.accounts[email] = fakeAccount{account: account, password: password}
	return &account, nil
}

func (f *FakeAuth) CreateEmailSession(ctx context.Context, email, password string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	stored, ok := f.accounts[email]
	if !ok || stored.password != password {
		return nil, fmt.Errorf("%w: Invalid credentials. Please check the email and password", shared.ErrInvalidCredentials)
	}

	f.current = &stored.account
	f.nextID++
	return &services.Session{
		ID:     fmt.Sprintf("session-%d", f.nextID),
		UserID: stored.account.ID,
		Secret: fmt.Sprintf("secret-%d", f.nextID),
	}, nil
}

func (f *FakeAuth) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return f.FailWith
	}
	if f.current == nil {
		return fmt.Errorf("%w: Missing session", shared.ErrNoSession)
	}
	f.current = nil
	return nil
}

func (f *FakeAuth) CreateRecovery(ctx context.Context, email, redirectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++
	return f.FailWith
}

func (f *FakeAuth) UpdateRecovery(ctx context.Context, userID, secret, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++
	return f.FailWith
}

// FakeDocuments is an in-memory test double for [services.DocumentAPI].
//
// Queries built with the services query helpers are interpreted the way the
// remote store would: equality filters, descending ordering, limits.
type FakeDocuments struct {
	mu        sync.Mutex
	docs      map[string][]services.Document // keyed by databaseID/collectionID
	FailWith  error
	CallCount int
}

func NewFakeDocuments() *FakeDocuments {
	return &FakeDocuments{docs: map[string][]services.Document{}}
}

func collectionKey(databaseID, collectionID string) string {
	return databaseID + "/" + collectionID
}

// Count returns the number of documents stored in a collection.
func (f *FakeDocuments) Count(databaseID, collectionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collectionKey(databaseID, collectionID)])
}

func (f *FakeDocuments) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*services.DocumentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	matched := make([]services.Document, 0)
	limit := -1
	orderAttr := ""

	parsed := make([]services.Query, 0, len(queries))
	for _, raw := range queries {
		q, err := services.ParseQuery(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, q)
	}

	for _, doc := range f.docs[collectionKey(databaseID, collectionID)] {
		if matchesFilters(doc, parsed) {
			matched = append(matched, doc)
		}
	}

	for _, q := range parsed {
		switch q.Method {
		case "orderDesc":
			orderAttr = q.Attribute
		case "limit":
			if len(q.Values) == 1 {
				if n, ok := q.Values[0].(float64); ok {
					limit = int(n)
				}
			}
		}
	}

	if orderAttr != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			return compareValues(matched[i].Data[orderAttr], matched[j].Data[orderAttr]) > 0
		})
	}
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return &services.DocumentList{Total: len(matched), Documents: matched}, nil
}

func (f *FakeDocuments) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*services.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	doc := services.Document{
		ID:        documentID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Data:      normalizeData(data),
	}

	key := collectionKey(databaseID, collectionID)
	f.docs[key] = append(f.docs[key], doc)
	return &doc, nil
}

func (f *FakeDocuments) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*services.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	key := collectionKey(databaseID, collectionID)
	for i, doc := range f.docs[key] {
		if doc.ID == documentID {
			for k, v := range normalizeData(data) {
				f.docs[key][i].Data[k] = v
			}
			updated := f.docs[key][i]
			return &updated, nil
		}
	}

	return nil, fmt.Errorf("%w: document %s", shared.ErrNotFound, documentID)
}

func (f *FakeDocuments) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++

	if f.FailWith != nil {
		return f.FailWith
	}

	key := collectionKey(databaseID, collectionID)
	for i, doc := range f.docs[key] {
		if doc.ID == documentID {
			f.docs[key] = append(f.docs[key][:i], f.docs[key][i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("%w: document %s", shared.ErrNotFound, documentID)
}

func matchesFilters(doc services.Document, queries []services.Query) bool {
	for _, q := range queries {
		if q.Method != "equal" {
			continue
		}
		if len(q.Values) != 1 {
			return false
		}
		if compareValues(doc.Data[q.Attribute], q.Values[0]) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders mixed JSON scalars; numbers compare numerically,
// everything else compares as strings.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// normalizeData copies request data, widening ints to float64 the way a JSON
// round trip through the real service would.
func normalizeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if n, ok := v.(int); ok {
			out[k] = float64(n)
			continue
		}
		out[k] = v
	}
	return out
}

// FakeCatalog is a test double for [services.CatalogAPI].
type FakeCatalog struct {
	Movies   []models.Movie
	FailWith error
}

func (f *FakeCatalog) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	return f.Movies, nil
}

func (f *FakeCatalog) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	return f.Movies, nil
}

func (f *FakeCatalog) MovieDetails(ctx context.Context, movieID int) (*models.Movie, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	for _, m := range f.Movies {
		if m.ID == movieID {
			movie := m
			return &movie, nil
		}
	}
	return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
