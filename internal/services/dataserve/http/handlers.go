// Package http provides http transport for the data server
package http

import (
	"errors"
	"io/fs"
	stdhttp "net/http"
	"path"
	"strings"

	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	phttp "brickdump/internal/platform/net/http"
	"brickdump/internal/platform/net/http/bind"
	"brickdump/internal/services/dataserve/domain"
)

// Register mounts the JSON and manifest routes under r
func Register(r phttp.Router, s domain.CatalogPort) {
	h := &handlers{svc: s}
	phttp.GetJSON(r, "/runs", h.runs)
	phttp.GetJSON(r, "/runs/{run}", h.run)
	r.Get("/runs/{run}/manifest", h.manifest)
}

// RegisterFiles mounts static file serving at /{run}/* under r
func RegisterFiles(r phttp.Router, s domain.CatalogPort) {
	h := &handlers{svc: s}
	r.Get("/{run}/*", h.file)
	r.Head("/{run}/*", h.file)
}

type handlers struct{ svc domain.CatalogPort }

// runsQuery holds the optional filters of GET /runs
type runsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// runs lists runs newest first, at most ?limit of them
func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	q, err := bind.Query[runsQuery](r)
	if err != nil {
		return nil, err
	}
	runs, err := h.svc.Runs(r.Context())
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(runs) > q.Limit {
		runs = runs[:q.Limit]
	}
	return runs, nil
}

// run describes one run, {run} may be "latest"
func (h *handlers) run(r *stdhttp.Request) (any, error) {
	return h.svc.Run(r.Context(), phttp.URLParam(r, "run"))
}

// manifest serves parts_info.txt as text
func (h *handlers) manifest(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	b, err := h.svc.Manifest(r.Context(), phttp.URLParam(r, "run"))
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.Text(w, stdhttp.StatusOK, b)
}

// file serves one file of a run, directories and escapes are 404
func (h *handlers) file(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	run := phttp.URLParam(r, "run")
	name := strings.TrimPrefix(phttp.URLParam(r, "*"), "/")
	if !fs.ValidPath(name) || name == "." {
		phttp.RespondError(w, r, perr.WithField(perr.NotFoundf("no file %q in %s", name, run), "path"))
		return
	}
	fsys, err := h.svc.Files(r.Context(), run)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	fi, err := fs.Stat(fsys, name)
	if err != nil || fi.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.C(r.Context()).Warn().Err(err).Str("run", run).Str("path", name).Msg("stat failed")
		}
		phttp.RespondError(w, r, perr.WithField(perr.NotFoundf("no file %q in %s", name, run), "path"))
		return
	}
	if strings.EqualFold(path.Ext(fi.Name()), ".csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	}
	stdhttp.ServeFileFS(w, r, fsys, name)
}
