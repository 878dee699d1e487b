package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vaporisers/reelist/internal/shared"
)

func TestAppwriteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("With Empty Endpoint", func(t *testing.T) {
			c := NewAppwriteClient("", "proj", nil)
			if c.endpoint != defaultAppwriteEndpoint {
				t.Errorf("expected default endpoint, got %s", c.endpoint)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trailing Slash Is Trimmed", func(t *testing.T) {
			c := NewAppwriteClient("http://example.com/v1/", "proj", nil)
			if c.endpoint != "http://example.com/v1" {
				t.Errorf("expected trimmed endpoint, got %s", c.endpoint)
			}
		})
	})

	t.Run("Error Classification", func(t *testing.T) {
		tc := []struct {
			name    string
			errType string
			message string
			want    error
		}{
			{"duplicate by type", "user_already_exists", "", shared.ErrDuplicateAccount},
			{"invalid credentials by type", "user_invalid_credentials", "", shared.ErrInvalidCredentials},
			{"rate limit by type", "general_rate_limit_exceeded", "", shared.ErrRateLimited},
			{"missing scope by type", "general_unauthorized_scope", "", shared.ErrNoSession},
			{"session not found by type", "user_session_not_found", "", shared.ErrNoSession},
			{"duplicate by message", "", "A user with the same email already exists", shared.ErrDuplicateAccount},
			{"invalid credentials by message", "", "Invalid credentials. Please check the email and password.", shared.ErrInvalidCredentials},
			{"rate limit by message", "", "Rate limit for the current endpoint exceeded", shared.ErrRateLimited},
			{"missing scope by message", "", "User (role: guests) missing scope (account)", shared.ErrNoSession},
			{"missing session by message", "", "Missing session", shared.ErrNoSession},
			{"anything else", "general_unknown", "something broke", shared.ErrProvider},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got := classifyError(appwriteError{Message: tt.message, Type: tt.errType})
				if !errors.Is(got, tt.want) {
					t.Errorf("classifyError() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Account", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/account" {
					t.Errorf("expected /account, got %s", r.URL.Path)
				}
				if r.Header.Get("X-Appwrite-Project") != "proj" {
					t.Errorf("expected project header, got %q", r.Header.Get("X-Appwrite-Project"))
				}
				json.NewEncoder(w).Encode(map[string]any{"$id": "u1", "name": "Ann", "email": "ann@example.com"})
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			account, err := c.Account(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if account.ID != "u1" || account.Name != "Ann" || account.Email != "ann@example.com" {
				t.Errorf("unexpected account %+v", account)
			}
		})

		t.Run("Guest Scope Maps To ErrNoSession", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"message": "User (role: guests) missing scope (account)",
					"type":    "general_unauthorized_scope",
					"code":    401,
				})
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			if _, err := c.Account(ctx); !errors.Is(err, shared.ErrNoSession) {
				t.Errorf("expected ErrNoSession, got %v", err)
			}
		})

	})

	t.Run("CreateEmailSession", func(t *testing.T) {
		t.Run("Attaches Secret To Subsequent Requests", func(t *testing.T) {
			var gotSession string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/account/sessions/email":
					json.NewEncoder(w).Encode(map[string]any{"$id": "s1", "userId": "u1", "secret": "tok-1"})
				case "/account":
					gotSession = r.Header.Get("X-Appwrite-Session")
					json.NewEncoder(w).Encode(map[string]any{"$id": "u1", "name": "Ann", "email": "ann@example.com"})
				}
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			session, err := c.CreateEmailSession(ctx, "ann@example.com", "password123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if session.Secret != "tok-1" {
				t.Errorf("expected secret tok-1, got %q", session.Secret)
			}

			if _, err := c.Account(ctx); err != nil {
				t.Fatalf("account failed: %v", err)
			}
			if gotSession != "tok-1" {
				t.Errorf("expected session header tok-1, got %q", gotSession)
			}
		})

		t.Run("Invalid Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"message": "Invalid credentials. Please check the email and password.",
					"type":    "user_invalid_credentials",
					"code":    401,
				})
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			if _, err := c.CreateEmailSession(ctx, "ann@example.com", "nope"); !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	})

	t.Run("DeleteSession", func(t *testing.T) {
		t.Run("Drops Local Secret Only On Success", func(t *testing.T) {
			fail := true
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if fail {
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]any{"message": "boom", "type": "general_unknown", "code": 500})
					return
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			c.SetSession("tok-1")

			if err := c.DeleteSession(ctx, "current"); !errors.Is(err, shared.ErrProvider) {
				t.Errorf("expected ErrProvider, got %v", err)
			}
			if c.session != "tok-1" {
				t.Error("secret must survive a failed delete")
			}

			fail = false
			if err := c.DeleteSession(ctx, "current"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.session != "" {
				t.Error("secret should be dropped after confirmed delete")
			}
		})
	})

	t.Run("Documents", func(t *testing.T) {
		t.Run("List Encodes Queries", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/databases/db/collections/saved/documents" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				queries := r.URL.Query()["queries[]"]
				if len(queries) != 2 {
					t.Errorf("expected 2 queries, got %d", len(queries))
				}
				json.NewEncoder(w).Encode(map[string]any{
					"total": 1,
					"documents": []map[string]any{
						{"$id": "d1", "$createdAt": "2024-01-01T00:00:00Z", "movie_id": 550, "title": "Fight Club"},
					},
				})
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			list, err := c.ListDocuments(ctx, "db", "saved", []string{
				QueryEqual("user_id", "u1"),
				QueryOrderDesc("saved_at"),
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if list.Total != 1 || len(list.Documents) != 1 {
				t.Fatalf("unexpected list %+v", list)
			}

			doc := list.Documents[0]
			if doc.ID != "d1" {
				t.Errorf("expected $id split into ID, got %q", doc.ID)
			}
			if doc.Int("movie_id") != 550 || doc.String("title") != "Fight Club" {
				t.Errorf("unexpected data %+v", doc.Data)
			}
			if _, ok := doc.Data["$id"]; ok {
				t.Error("system fields must not leak into Data")
			}
		})

		t.Run("Create Posts Document ID And Data", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body["documentId"] != "d1" {
					t.Errorf("expected documentId d1, got %v", body["documentId"])
				}
				data, ok := body["data"].(map[string]any)
				if !ok || data["title"] != "Fight Club" {
					t.Errorf("unexpected data payload %v", body["data"])
				}
				json.NewEncoder(w).Encode(map[string]any{"$id": "d1", "title": "Fight Club"})
			}))
			defer server.Close()

			c := NewAppwriteClient(server.URL, "proj", nil)
			doc, err := c.CreateDocument(ctx, "db", "saved", "d1", map[string]any{"title": "Fight Club"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if doc.ID != "d1" {
				t.Errorf("expected doc d1, got %q", doc.ID)
			}
		})
	})
}

func TestQueryHelpers(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		q, err := ParseQuery(QueryEqual("user_id", "u1"))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if q.Method != "equal" || q.Attribute != "user_id" || len(q.Values) != 1 || q.Values[0] != "u1" {
			t.Errorf("unexpected query %+v", q)
		}
	})

	t.Run("OrderDesc Has No Values", func(t *testing.T) {
		q, err := ParseQuery(QueryOrderDesc("saved_at"))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if q.Method != "orderDesc" || q.Attribute != "saved_at" || len(q.Values) != 0 {
			t.Errorf("unexpected query %+v", q)
		}
	})
}
