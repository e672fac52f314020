package routes

import (
	"net/http"
	"net/url"

	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
)

// ListQuestionnaires answers the backend list and keeps the local cache in
// step with it: a complete list replaces the cache, a single page only
// refreshes its entries. When the backend cannot be reached the cached list
// is served instead, marked by the X-Questionnaire-Source header.
func ListQuestionnaires(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page, err := app.Backend.Questionnaires.List(r.Context(), query)
		if err != nil {
			if status := backend.StatusOf(err); status >= 400 && status < 500 {
				httpx.LogBackendError(w, "backend.questionnaires.list", err)
				return
			}
			serveCachedQuestionnaires(w, r, app, err)
			return
		}

		if isPaged(query) {
			err = app.Store.RefreshQuestionnaires(r.Context(), page.Items)
		} else {
			err = app.Store.CacheQuestionnaires(r.Context(), page.Items)
		}
		if err != nil {
			log.Warnf("store.questionnaires.cache: %s", err)
		}

		w.Header().Set(sourceHeader, "backend")
		render.JSON(w, r, page)
	}
}

const sourceHeader = "X-Questionnaire-Source"

func isPaged(query url.Values) bool {
	return query.Has("page") || query.Has("pageSize")
}

func serveCachedQuestionnaires(w http.ResponseWriter, r *http.Request, app app.App, backendErr error) {
	cached, err := app.Store.CachedQuestionnaires(r.Context())
	if err != nil {
		log.Warnf("store.questionnaires.cached: %s", err)
	}
	if len(cached) == 0 {
		httpx.LogBackendError(w, "backend.questionnaires.list", backendErr)
		return
	}

	log.Warnf("backend.questionnaires.list: serving %d cached entries: %s", len(cached), backendErr)
	w.Header().Set(sourceHeader, "cache")
	render.JSON(w, r, model.Page[model.Questionnaire]{
		Items:      cached,
		TotalCount: len(cached),
		Page:       1,
		PageSize:   len(cached),
		TotalPages: 1,
	})
}

// DeleteQuestionnaire deletes on the backend and evicts the cached copy. A
// questionnaire the backend no longer knows is evicted as well.
func DeleteQuestionnaire(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		err := app.Backend.Questionnaires.Delete(r.Context(), id)
		if err == nil || backend.IsNotFound(err) {
			if err := app.Store.EvictQuestionnaire(r.Context(), id); err != nil {
				log.Warnf("store.questionnaires.evict: %s", err)
			}
		}
		if err != nil {
			httpx.LogBackendError(w, "backend.questionnaires.delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishQuestionnaire(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		if err := app.Backend.PublishQuestionnaire(r.Context(), id); err != nil {
			httpx.LogBackendError(w, "backend.questionnaires.publish", err)
			return
		}

		q, err := app.Backend.Questionnaires.Get(r.Context(), id)
		if err != nil {
			httpx.LogBackendError(w, "backend.questionnaires.get", err)
			return
		}
		render.JSON(w, r, q)
	}
}
