// Package swaggerkit provides helpers to mount Swagger UI and JSON spec
package swaggerkit

import (
	"net/http"

	phttp "brickdump/internal/platform/net/http"
	pstrings "brickdump/internal/platform/strings"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount the Swagger UI and JSON spec under prefix (e.g. "/api/docs") if enabled
func Mount(r phttp.Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = pstrings.MustPrefix(prefix)
	docURL := prefix + "/doc.json"
	r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, prefix+"/", http.StatusPermanentRedirect)
	})
	r.Get(docURL, serveDocJSON())
	r.Handle(prefix+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("brickdump"),
		httpSwagger.URL(docURL),
	))
}
