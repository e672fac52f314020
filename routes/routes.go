package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/routes/middlewares"
)

const idPattern = `{id:^\d+$}`

// Views are the pages of the single page client; each is served the same
// shell.
var Views = []string{"dashboard", "questionnaires", "themes", "samples", "quotas", "locations", "reports"}

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Mount("/api", apiRouter(app))

	root.Get("/", ServeView(app.PublicDir))
	for _, view := range Views {
		root.Get("/"+view, ServeView(app.PublicDir))
	}
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	admin := middlewares.Admin(app.TokenSecret)

	api.Get("/health", Health(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.Route("/questionnaires", func(r chi.Router) {
		r.Get("/", ListQuestionnaires(app))
		r.Get("/"+idPattern, GetResource(app.Backend.Questionnaires, "questionnaires.get"))
		r.Get("/"+idPattern+"/schema", GetSchema(app))
		r.Get("/"+idPattern+"/schema/export", ExportSchema(app))
		r.Get("/"+idPattern+"/preview", PreviewForm(app))

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", CreateResource(app.Backend.Questionnaires, "questionnaires.create"))
			r.Put("/"+idPattern, UpdateResource(app.Backend.Questionnaires, "questionnaires.update"))
			r.Delete("/"+idPattern, DeleteQuestionnaire(app))
			r.Post("/"+idPattern+"/publish", PublishQuestionnaire(app))
			r.Put("/"+idPattern+"/schema", SaveSchema(app))
			r.Post("/"+idPattern+"/components", AddComponent(app))
			r.Patch("/"+idPattern+"/components/{key}", UpdateComponent(app))
			r.Delete("/"+idPattern+"/components/{key}", RemoveComponent(app))
			r.Post("/"+idPattern+"/preview", SubmitPreview(app))
			r.Get("/"+idPattern+"/submissions", ListSubmissions(app))
		})
	})

	api.Post("/schema/serialize", SerializeSchema())
	api.Post("/schema/deserialize", DeserializeSchema())

	api.Route("/samples", func(r chi.Router) {
		r.Get("/", ListResource(app.Backend.Samples, "samples.list"))
		r.Get("/"+idPattern, GetResource(app.Backend.Samples, "samples.get"))
		r.Get("/"+idPattern+"/participants", ListSampleParticipants(app))
		r.Get("/"+idPattern+"/groups", ListSampleGroups(app))

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", CreateResource(app.Backend.Samples, "samples.create"))
			r.Put("/"+idPattern, UpdateResource(app.Backend.Samples, "samples.update"))
			r.Delete("/"+idPattern, DeleteResource(app.Backend.Samples, "samples.delete"))
			r.Post("/"+idPattern+"/participants", GenerateParticipants(app))
		})
	})

	api.Route("/sample-groups", func(r chi.Router) {
		r.Get("/", ListResource(app.Backend.SampleGroups, "sample_groups.list"))
		r.Get("/"+idPattern, GetResource(app.Backend.SampleGroups, "sample_groups.get"))
		r.Get("/"+idPattern+"/candidates", ListCandidateFarms(app))

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", CreateResource(app.Backend.SampleGroups, "sample_groups.create"))
			r.Put("/"+idPattern, UpdateResource(app.Backend.SampleGroups, "sample_groups.update"))
			r.Delete("/"+idPattern, DeleteResource(app.Backend.SampleGroups, "sample_groups.delete"))
			r.Post("/"+idPattern+"/assign", AssignFarms(app))
			r.Put("/"+idPattern+"/interviewer", SetInterviewer(app))
		})
	})

	api.Get("/farms", ListFarms(app))

	api.Route("/quotas", func(r chi.Router) {
		r.Get("/", ListResource(app.Backend.Quotas, "quotas.list"))
		r.Get("/summary", QuotaSummary(app))
		r.Get("/"+idPattern+"/board", QuotaBoard(app))

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/"+idPattern+"/allocate", Allocate(app))
			r.Post("/"+idPattern+"/deallocate", Deallocate(app))
			r.Post("/auto-allocate", AutoAllocate(app))
		})
	})

	api.With(admin).Get("/users", ListResource(app.Backend.Users, "users.list"))

	api.Route("/themes", func(r chi.Router) {
		r.Get("/", ListResource(app.Backend.Themes, "themes.list"))

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", CreateResource(app.Backend.Themes, "themes.create"))
			r.Put("/"+idPattern, UpdateResource(app.Backend.Themes, "themes.update"))
			r.Delete("/"+idPattern, DeleteResource(app.Backend.Themes, "themes.delete"))
		})
	})

	api.Route("/locations", func(r chi.Router) {
		r.Get("/", ListResource(app.Backend.Locations, "locations.list"))
		r.Get("/template.csv", LocationTemplate())

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", CreateResource(app.Backend.Locations, "locations.create"))
			r.Put("/"+idPattern, UpdateResource(app.Backend.Locations, "locations.update"))
			r.Delete("/"+idPattern, DeleteResource(app.Backend.Locations, "locations.delete"))
			r.Post("/import", ImportLocations(app))
		})
	})

	api.Get("/reports/summary", ReportSummary(app))

	return api
}

// ServeView answers every known view with the client shell.
func ServeView(publicDir string) http.HandlerFunc {
	index := filepath.Join(publicDir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, index)
	}
}

func servePublicFiles(publicDir string) http.Handler {
	return http.FileServer(http.Dir(publicDir))
}
