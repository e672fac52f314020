package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
)

type validator interface {
	Validate() error
}

// urlID reads the numeric {id} parameter. It answers 400 itself when the
// parameter is unusable.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}

// decodeBody reads a JSON body into v. It answers 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "malformed request body")
		return false
	}
	return true
}

func ListResource[T any](res *backend.Resource[T], code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := res.List(r.Context(), r.URL.Query())
		if err != nil {
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		render.JSON(w, r, page)
	}
}

func GetResource[T any](res *backend.Resource[T], code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		item, err := res.Get(r.Context(), id)
		if err != nil {
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		render.JSON(w, r, item)
	}
}

// CreateResource validates the posted entity before the backend sees it.
func CreateResource[T validator](res *backend.Resource[T], code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if !decodeBody(w, r, &item) {
			return
		}
		if err := item.Validate(); err != nil {
			httpx.LogInvalid(w, code+".validate", err)
			return
		}

		created, err := res.Create(r.Context(), item)
		if err != nil {
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func UpdateResource[T validator](res *backend.Resource[T], code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		var item T
		if !decodeBody(w, r, &item) {
			return
		}
		if err := item.Validate(); err != nil {
			httpx.LogInvalid(w, code+".validate", err)
			return
		}

		updated, err := res.Update(r.Context(), id, item)
		if err != nil {
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		render.JSON(w, r, updated)
	}
}

func DeleteResource[T any](res *backend.Resource[T], code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		if err := res.Delete(r.Context(), id); err != nil {
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
