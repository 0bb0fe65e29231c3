package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/google/uuid"
)

// actorFromContext builds the service-layer Actor from the claims the
// auth middleware decoded. A request that never passed through auth
// yields an anonymous actor.
func actorFromContext(r *http.Request) service.Actor {
	idStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return service.Actor{}
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return service.Actor{}
	}
	role, _ := middleware.GetUserRole(r.Context())
	return service.Actor{ID: id, Role: role}
}
