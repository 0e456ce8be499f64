package handlers

import (
	"net/http"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
)

// RootHandler answers the service banner at /.
type RootHandler struct {
	serviceName string
	logger      *common.Logger
}

// NewRootHandler creates the root banner handler.
func NewRootHandler(serviceName string, logger *common.Logger) *RootHandler {
	return &RootHandler{serviceName: serviceName, logger: logger}
}

// ServeHTTP handles GET /.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"service": h.serviceName,
		"status":  "running",
		"version": config.GetVersion(),
	})
}
