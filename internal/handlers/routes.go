package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register adds every API route to router.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet).Name("health")
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("liveness")
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("readiness")
	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/preview/{path:.+}", h.GetPreview).Methods(http.MethodGet).Name("preview")
	api.HandleFunc("/preview-available/{path:.+}", h.PreviewAvailable).Methods(http.MethodGet).Name("preview-available")
	api.HandleFunc("/mimetypes/supported", h.MimeSupported).Methods(http.MethodGet).Name("mime-supported")
	api.HandleFunc("/providers", h.ListProviders).Methods(http.MethodGet).Name("providers")
	api.HandleFunc("/mounts", h.ListMounts).Methods(http.MethodGet).Name("mounts")
	api.HandleFunc("/mounts/{name}/previews", h.SetMountPreviews).Methods(http.MethodPut).Name("mount-previews")
	api.HandleFunc("/mounts/{name}/warmup", h.StartWarmup).Methods(http.MethodPost).Name("mount-warmup")
	api.HandleFunc("/warmup", h.WarmupStatus).Methods(http.MethodGet).Name("warmup-status")
}
