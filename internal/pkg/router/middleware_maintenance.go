package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints. The list is read once at startup.
func middlewareMaintenance(cfg config.Config) Middleware {
	var routes []string
	if cfg != nil {
		routes = cfg.GetArray("app.maintenance.endpoints")
	}

	blocked := lo.SliceToMap(routes, func(route string) (string, struct{}) {
		return route, struct{}{}
	})

	return func(next http.Handler) http.Handler {
		if len(blocked) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := blocked[matchedRoutePath(r)]; ok {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Error: "maintenance", Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
