package api

import (
	"errors"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/common"
	"stratus-efb/chartvault/internal/constants"
	"stratus-efb/chartvault/internal/providers"
	"stratus-efb/chartvault/internal/services"

	"github.com/go-chi/chi/v5"
)

// OpenDocumentHandler handles GET /api/v1/documents/{kind}/{id}. Serves
// the payload bytes through the fetch-through cache.
func OpenDocumentHandler(docs *services.DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		kind := chi.URLParam(r, "kind")
		id := chi.URLParam(r, "id")

		data, err := docs.Open(r.Context(), kind, id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoCurrentVersion), providers.IsNotFound(err):
				common.RespondError(w, start, err, "", http.StatusNotFound)
			case providers.IsTransient(err):
				common.RespondError(w, start, err, "", http.StatusBadGateway)
			default:
				common.RespondError(w, start, err, "failed to open document")
			}
			return
		}

		w.Header().Set("Content-Type", contentTypeForKind(kind))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func contentTypeForKind(kind string) string {
	switch kind {
	case constants.DocumentKindChart, constants.DocumentKindAIP:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
