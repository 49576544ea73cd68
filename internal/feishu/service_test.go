package feishu

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bothubai/bothub/internal/config"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(nil, config.FeishuConfig{
		AppID:     "cli_test",
		AppSecret: "secret",
		BaseURL:   srv.URL,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/authen/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "auth-code-1" {
			writeJSON(w, map[string]any{"code": 20001, "msg": "invalid code"})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "data": map[string]any{"access_token": "uat-1"}})
	})
	mux.HandleFunc("/authen/v1/user_info", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer uat-1" {
			writeJSON(w, map[string]any{"code": 99991663, "msg": "bad token"})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "data": map[string]any{
			"user_id":    "u_1",
			"open_id":    "ou_1",
			"name":       "Alice",
			"email":      "alice@example.com",
			"avatar_url": "https://avatars.example/a.png",
		}})
	})

	svc := newTestService(t, mux)
	ident, err := svc.ResolveIdentity(t.Context(), "auth-code-1")
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if ident.UserID != "u_1" || ident.OpenID != "ou_1" || ident.Name != "Alice" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestResolveIdentityInvalidCode(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/authen/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"code": 20001, "msg": "invalid code"})
	})

	svc := newTestService(t, mux)
	_, err := svc.ResolveIdentity(t.Context(), "stale-code")
	if !errors.Is(err, ErrUpstreamAuth) {
		t.Fatalf("want ErrUpstreamAuth, got %v", err)
	}
}

func TestResolveIdentityUpstreamDown(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := svc.ResolveIdentity(t.Context(), "any")
	if !errors.Is(err, ErrUpstreamAuth) {
		t.Fatalf("want ErrUpstreamAuth, got %v", err)
	}
}

func TestResolveIdentityEmptyCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.NewServeMux())
	_, err := svc.ResolveIdentity(t.Context(), "  ")
	if !errors.Is(err, ErrUpstreamAuth) {
		t.Fatalf("want ErrUpstreamAuth, got %v", err)
	}
}

func relationshipMux(t *testing.T, tokenCalls *atomic.Int32, admins []string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		writeJSON(w, map[string]any{"code": 0, "tenant_access_token": "tat-1", "expire": 7200})
	})
	mux.HandleFunc("/application/v6/applications/cli_app", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"code": 0, "data": map[string]any{
			"app": map[string]any{
				"app_name": "Demo App",
				"creator":  map[string]any{"user_id": "u_creator"},
				"owner":    map[string]any{"user_id": "u_owner"},
			},
		}})
	})
	mux.HandleFunc("/application/v6/applications/cli_app/app_admin_user_list", func(w http.ResponseWriter, r *http.Request) {
		list := make([]map[string]any, 0, len(admins))
		for _, id := range admins {
			list = append(list, map[string]any{"user_id": id})
		}
		writeJSON(w, map[string]any{"code": 0, "data": map[string]any{"user_list": list}})
	})
	return mux
}

func TestVerifyRelationship(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		userID   string
		wantKind string
		wantOK   bool
	}{
		{name: "owner", userID: "u_owner", wantKind: RelationshipOwner, wantOK: true},
		{name: "creator counts as owner", userID: "u_creator", wantKind: RelationshipOwner, wantOK: true},
		{name: "admin", userID: "u_admin", wantKind: RelationshipAdmin, wantOK: true},
		{name: "stranger", userID: "u_nobody", wantKind: RelationshipNone, wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, relationshipMux(t, nil, []string{"u_admin"}))
			rel := svc.VerifyRelationship(t.Context(), "cli_app", tc.userID)
			if !rel.Verified {
				t.Fatalf("relationship should be verified: %+v", rel)
			}
			if rel.Kind != tc.wantKind || rel.IsOwnerOrAdmin != tc.wantOK {
				t.Fatalf("got kind=%s ok=%v, want kind=%s ok=%v", rel.Kind, rel.IsOwnerOrAdmin, tc.wantKind, tc.wantOK)
			}
			if rel.Evidence["app_name"] != "Demo App" {
				t.Fatalf("evidence missing app name: %+v", rel.Evidence)
			}
		})
	}
}

func TestVerifyRelationshipInconclusive(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	rel := svc.VerifyRelationship(t.Context(), "cli_app", "u_owner")
	if rel.Verified {
		t.Fatal("upstream failure must yield Verified=false")
	}
	if rel.IsOwnerOrAdmin {
		t.Fatal("inconclusive must never report owner/admin")
	}
	if rel.Evidence["error"] == nil || rel.Evidence["error"] == "" {
		t.Fatalf("inconclusive evidence should carry the error: %+v", rel.Evidence)
	}
}

func TestTenantTokenCached(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	svc := newTestService(t, relationshipMux(t, &tokenCalls, nil))

	for range 3 {
		rel := svc.VerifyRelationship(t.Context(), "cli_app", "u_owner")
		if !rel.Verified {
			t.Fatalf("unexpected inconclusive: %+v", rel)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("tenant token fetched %d times, want 1", got)
	}
}
