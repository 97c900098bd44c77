package report

import (
	"io"
	"log"
	"net/http"
)

// Handler exposes the report pipeline as an HTTP trigger. Any request runs
// the same unconditional pipeline; the body is ignored.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a trigger endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	message, fail := h.service.Run(r.Context())
	if fail != nil {
		log.Printf("[report] run failed (%s): %v", fail.Kind, fail)
		writeText(w, fail.HTTPStatus(), fail.Error())
		return
	}
	log.Printf("[report] run completed")
	writeText(w, http.StatusOK, message)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
