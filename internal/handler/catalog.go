package handler

import (
	"net/http"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// Catalog handles GET /v1/catalog
func Catalog(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, model.DefaultCatalog(), map[string]string{
		"self": "/v1/catalog",
		"form": "/v1/form",
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
