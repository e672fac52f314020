package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/formschema"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
)

const maxSchemaSize = 1 << 20

type schemaResponse struct {
	Components []formschema.FormComponent `json:"components"`
	Schema     formschema.FormSchema      `json:"schema"`
	Selected   *formschema.FormComponent  `json:"selected,omitempty"`
}

func newSchemaResponse(b *formschema.Builder) schemaResponse {
	resp := schemaResponse{
		Components: b.Components(),
		Schema:     b.Serialize(),
	}
	if c, ok := b.Selected(); ok {
		resp.Selected = &c
	}
	return resp
}

// loadBuilder starts a builder from the stored schema. A questionnaire that
// exists but never had a schema starts empty.
func loadBuilder(ctx context.Context, app app.App, id int) (*formschema.Builder, error) {
	raw, err := app.Backend.Schema(ctx, id)
	if backend.IsNotFound(err) {
		if _, qerr := app.Backend.Questionnaires.Get(ctx, id); qerr != nil {
			return nil, qerr
		}
		return formschema.NewBuilder(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return formschema.NewBuilder(formschema.Deserialize(raw)), nil
}

func GetSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		b, err := loadBuilder(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.schema.get", err)
			return
		}
		render.JSON(w, r, newSchemaResponse(b))
	}
}

// SaveSchema replaces the whole component list.
func SaveSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		components := []formschema.FormComponent{}
		if !decodeBody(w, r, &components) {
			return
		}

		b := formschema.NewBuilder(components)
		if err := b.Validate(); err != nil {
			httpx.LogInvalid(w, "schema.save.validate", err)
			return
		}
		if err := app.Backend.SaveSchema(r.Context(), id, b.Serialize()); err != nil {
			httpx.LogBackendError(w, "backend.schema.save", err)
			return
		}
		render.JSON(w, r, newSchemaResponse(b))
	}
}

// ExportSchema downloads the wire schema as an indented JSON file.
func ExportSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		b, err := loadBuilder(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.schema.export", err)
			return
		}
		data, err := json.MarshalIndent(b.Serialize(), "", "  ")
		if err != nil {
			httpx.LogInternalError(w, "schema.export.marshal", err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="questionnaire-%d-schema.json"`, id))
		w.Write(data)
	}
}

type addComponentRequest struct {
	Type formschema.Type `json:"type"`
}

func AddComponent(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		req := addComponentRequest{}
		if !decodeBody(w, r, &req) {
			return
		}

		editSchema(w, r, app, id, "schema.add_component", func(b *formschema.Builder) error {
			_, err := b.AddComponent(req.Type)
			return err
		}, http.StatusCreated)
	}
}

func UpdateComponent(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		patch := formschema.Patch{}
		if !decodeBody(w, r, &patch) {
			return
		}
		key := chi.URLParam(r, "key")

		editSchema(w, r, app, id, "schema.update_component", func(b *formschema.Builder) error {
			_, err := b.UpdateComponent(key, patch)
			return err
		}, http.StatusOK)
	}
}

func RemoveComponent(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		key := chi.URLParam(r, "key")

		editSchema(w, r, app, id, "schema.remove_component", func(b *formschema.Builder) error {
			return b.RemoveComponent(key)
		}, http.StatusOK)
	}
}

// editSchema loads the schema of questionnaire id, applies edit and saves
// the result when it is still a valid form.
func editSchema(w http.ResponseWriter, r *http.Request, app app.App, id int, code string, edit func(*formschema.Builder) error, status int) {
	b, err := loadBuilder(r.Context(), app, id)
	if err != nil {
		httpx.LogBackendError(w, "backend."+code, err)
		return
	}

	err = edit(b)
	switch {
	case errors.Is(err, formschema.ErrComponentNotFound):
		httpx.LogNotFound(w, code, chi.URLParam(r, "key"))
		return
	case err != nil:
		httpx.LogInvalid(w, code, err)
		return
	}
	if err := b.Validate(); err != nil {
		httpx.LogInvalid(w, code+".validate", err)
		return
	}

	if err := app.Backend.SaveSchema(r.Context(), id, b.Serialize()); err != nil {
		httpx.LogBackendError(w, "backend."+code, err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, newSchemaResponse(b))
}

func SerializeSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := []formschema.FormComponent{}
		if !decodeBody(w, r, &components) {
			return
		}
		if err := formschema.Validate(components); err != nil {
			httpx.LogInvalid(w, "schema.serialize.validate", err)
			return
		}
		render.JSON(w, r, formschema.Serialize(components))
	}
}

// DeserializeSchema reads a wire schema back into components. A malformed
// document yields an empty list.
func DeserializeSchema() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxSchemaSize))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
			return
		}
		render.JSON(w, r, formschema.Deserialize(data))
	}
}

func PreviewForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		b, err := loadBuilder(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.preview.schema", err)
			return
		}
		render.JSON(w, r, formschema.NewForm(b.Components()).Widgets())
	}
}

// SubmitPreview checks the posted answers against the form and stores them.
func SubmitPreview(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		values := map[string]any{}
		if !decodeBody(w, r, &values) {
			return
		}

		b, err := loadBuilder(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.preview.schema", err)
			return
		}

		form := formschema.NewForm(b.Components())
		if err := form.Load(values); err != nil {
			httpx.LogInvalid(w, "preview.load", err)
			return
		}
		responses, err := form.Submit()
		if err != nil {
			httpx.LogInvalid(w, "preview.validate", err)
			return
		}

		sub := model.Submission{QuestionnaireID: id, Time: time.Now(), Values: responses}
		sub.ID, err = app.Store.SaveSubmission(r.Context(), sub)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}
		log.Debugf("preview.submit: questionnaire %d, %d answers", id, len(responses))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, sub)
	}
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		subs, err := app.Store.Submissions(r.Context(), id)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}
		render.JSON(w, r, subs)
	}
}
