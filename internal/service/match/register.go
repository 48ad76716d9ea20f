package match

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/minglehq/matchsvc/internal/app"
)

// Registrar ties the match service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match routes under /api/match.
func (r *Registrar) Register(router *mux.Router) {
	svc := NewService(r.appCtx)

	sub := router.PathPrefix("/api/match").Subrouter()
	sub.HandleFunc("/actions", svc.HandleSubmitAction).Methods(http.MethodPost)
	sub.HandleFunc("/collections", svc.HandleCollect).Methods(http.MethodPost)
	sub.HandleFunc("/collections", svc.HandleCancelCollection).Methods(http.MethodDelete)
	sub.HandleFunc("/collections", svc.HandleListCollections).Methods(http.MethodGet)
	sub.HandleFunc("/statistics", svc.HandleStatistics).Methods(http.MethodGet)
	sub.HandleFunc("/detail/{id}", svc.HandleDetail).Methods(http.MethodGet)
	sub.HandleFunc("", svc.HandleListMatches).Methods(http.MethodGet)
}
