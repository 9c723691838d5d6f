package api

import (
	"errors"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListAirportsHandler handles GET /api/v1/airports
func ListAirportsHandler(docs *services.DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		airports, err := docs.ListAirports(r.Context())
		if err != nil {
			common.RespondError(w, start, err, "failed to list airports")
			return
		}

		common.RespondSuccess(w, start, "airports", airports)
	}
}

// ListDocumentsHandler handles GET /api/v1/airports/{icao}/documents
func ListDocumentsHandler(docs *services.DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		icao := chi.URLParam(r, "icao")

		list, err := docs.ListDocuments(r.Context(), icao)
		if err != nil {
			if errors.Is(err, services.ErrNoCurrentVersion) {
				common.RespondError(w, start, err, "", http.StatusNotFound)
				return
			}
			common.RespondError(w, start, err, "failed to list documents")
			return
		}

		common.RespondSuccess(w, start, "documents", list)
	}
}
