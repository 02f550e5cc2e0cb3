package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/safeplate/internal/api/v1"
	"github.com/gosuda/safeplate/internal/api/ws"
)

func registerAPIRoutes(api huma.API, store v1.DataStore, onboarder v1.Onboarder, maxUploadBytes int64) {
	v1.RegisterOnboardingRoutes(api, onboarder, maxUploadBytes)
	v1.RegisterBusinessRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/onboarding", hub.ServeOnboarding)
}
