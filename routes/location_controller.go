package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/csvimport"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
)

const maxImportSize = 10 << 20

// LocationTemplate downloads the import spreadsheet in the language asked by
// ?lang, or by Accept-Language.
func LocationTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := csvimport.ParseLang(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="locations-template-%s.csv"`, lang))
		// spreadsheet programs need the BOM to read Greek headers as UTF-8
		io.WriteString(w, "\ufeff")
		if err := csvimport.WriteTemplate(w, lang); err != nil {
			log.Errorf("locations.template: %s", err)
		}
	}
}

// ImportLocations reads a spreadsheet posted as the "file" field of a
// multipart form, or as the raw body, and creates the new locations.
func ImportLocations(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, closeIn, err := importSource(r)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "locations.import.source", "%s", err)
			return
		}
		defer closeIn()

		rows, rejected, err := csvimport.Parse(io.LimitReader(in, maxImportSize))
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "locations.import.parse", "%s", err)
			return
		}

		existing, err := app.Backend.Locations.All(r.Context())
		if err != nil {
			httpx.LogBackendError(w, "backend.locations.list", err)
			return
		}

		create, report := csvimport.Plan(rows, rejected, existing)
		for _, l := range create {
			created, err := app.Backend.Locations.Create(r.Context(), l)
			if err == nil {
				report.Add(created)
				continue
			}
			if status := backend.StatusOf(err); status >= 400 && status < 500 {
				report.Reject(l, httpx.BackendMessage(err))
				continue
			}
			httpx.LogBackendError(w, "backend.locations.create", err)
			return
		}

		log.WithFields(log.Fields{
			"total":    report.Total,
			"created":  report.Success,
			"existing": report.Existing,
			"rejected": report.Rejected,
		}).Info("locations.import")
		render.JSON(w, r, report)
	}
}

func importSource(r *http.Request) (io.Reader, func(), error) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return r.Body, func() {}, nil
		}
		return nil, nil, err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New(`missing "file" field`)
	}
	return file, func() { file.Close() }, nil
}
