package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/northquay/stocktrail-backend/pkg/enums"
)

func TestRequireRoleOrdering(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		minimum enums.ActorRole
		want    int
	}{
		{"viewer can read", "viewer", enums.ActorRoleViewer, http.StatusOK},
		{"viewer cannot mutate", "viewer", enums.ActorRoleEditor, http.StatusForbidden},
		{"editor can mutate", "editor", enums.ActorRoleEditor, http.StatusOK},
		{"editor is not admin", "editor", enums.ActorRoleAdmin, http.StatusForbidden},
		{"admin passes everything", "admin", enums.ActorRoleAdmin, http.StatusOK},
		{"unknown role rejected", "superuser", enums.ActorRoleViewer, http.StatusForbidden},
		{"missing role rejected", "", enums.ActorRoleViewer, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.minimum, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithActor(req.Context(), "actor-1", "Dana", tc.role))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}
