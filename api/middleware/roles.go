package middleware

import (
	"net/http"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

var roleRank = map[enums.ActorRole]int{
	enums.ActorRoleViewer: 1,
	enums.ActorRoleEditor: 2,
	enums.ActorRoleAdmin:  3,
}

// RequireRole rejects requests whose actor ranks below the minimum role.
// Roles are strictly ordered viewer < editor < admin.
func RequireRole(minimum enums.ActorRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.ActorRole(RoleFromContext(r.Context()))
			if roleRank[role] == 0 || roleRank[role] < roleRank[minimum] {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
