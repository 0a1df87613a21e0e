package handler

import (
	"net/http"

	"pdf-viewer/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(viewerHandler *ViewerHandler, logger domain.Logger, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-viewer"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/viewers", viewerHandler.CreateViewer).Methods("POST")
	api.HandleFunc("/viewers/{id}", viewerHandler.GetViewer).Methods("GET")
	api.HandleFunc("/viewers/{id}", viewerHandler.DeleteViewer).Methods("DELETE")
	api.HandleFunc("/viewers/{id}/load", viewerHandler.LoadDocument).Methods("POST")
	api.HandleFunc("/viewers/{id}/page", viewerHandler.SetPage).Methods("PUT")
	api.HandleFunc("/viewers/{id}/next", viewerHandler.NextPage).Methods("POST")
	api.HandleFunc("/viewers/{id}/previous", viewerHandler.PreviousPage).Methods("POST")
	api.HandleFunc("/viewers/{id}/zoom", viewerHandler.SetZoom).Methods("PUT")
	api.HandleFunc("/viewers/{id}/position", viewerHandler.SetPosition).Methods("PUT")
	api.HandleFunc("/viewers/{id}/frame.png", viewerHandler.GetFrame).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"If-None-Match",
		},
		ExposedHeaders: []string{
			"ETag",
			"Location",
			"X-Frame-Drawn",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
