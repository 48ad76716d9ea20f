package recommend

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/minglehq/matchsvc/internal/app"
	"github.com/minglehq/matchsvc/internal/db"
	svcErr "github.com/minglehq/matchsvc/internal/errors"
	"github.com/minglehq/matchsvc/internal/utils/httpx"
)

// Registrar ties the recommendation service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the recommendation service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the recommendation routes under /api/match.
func (r *Registrar) Register(router *mux.Router) {
	svc := NewService(r.appCtx)

	sub := router.PathPrefix("/api/match").Subrouter()
	sub.HandleFunc("/recommendations", svc.HandleRecommendations).Methods(http.MethodGet)
}

// HandleRecommendations handles GET /api/match/recommendations.
func (s *Service) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserID(r)
	if userID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	q := r.URL.Query()
	s.appCtx.Logger.Debug("Recommendations called",
		"user", userID, "scene", q.Get("sceneType"), "role", q.Get("roleType"))

	result, err := s.Recommendations(
		r.Context(),
		userID,
		db.SceneType(q.Get("sceneType")),
		q.Get("roleType"),
		queryInt(q.Get("page"), 1),
		queryInt(q.Get("pageSize"), 10),
	)
	if err != nil {
		s.appCtx.Logger.Error("Recommendations failed", "user", userID, "err", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
