package routes

import (
	"math"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
)

type Summary struct {
	Questionnaires QuestionnaireCounts `json:"questionnaires"`
	Samples        int                 `json:"samples"`
	SampleGroups   int                 `json:"sampleGroups"`
	Quotas         QuotaProgress       `json:"quotas"`
	ByQuota        []QuotaProgress     `json:"byQuota"`
}

type QuestionnaireCounts struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Published int `json:"published"`
	Archived  int `json:"archived"`
}

type QuotaProgress struct {
	Name      string  `json:"name,omitempty"`
	Target    int     `json:"target"`
	Allocated int     `json:"allocated"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}

func buildSummary(questionnaires []model.Questionnaire, samples, groups int, quotas model.QuotaSummary) Summary {
	s := Summary{
		Samples:      samples,
		SampleGroups: groups,
		ByQuota:      make([]QuotaProgress, 0, len(quotas.Quotas)),
	}

	s.Questionnaires.Total = len(questionnaires)
	for _, q := range questionnaires {
		switch q.Status {
		case model.StatusPublished:
			s.Questionnaires.Published++
		case model.StatusArchived:
			s.Questionnaires.Archived++
		default:
			s.Questionnaires.Draft++
		}
	}

	var target, allocated, completed int
	for _, q := range quotas.Quotas {
		target += q.Target
		allocated += q.Allocated
		completed += q.Completed
		s.ByQuota = append(s.ByQuota, QuotaProgress{
			Name:      q.Name,
			Target:    q.Target,
			Allocated: q.Allocated,
			Completed: q.Completed,
			Percent:   percent(q.Completed, q.Target),
		})
	}
	// the backend totals win when it sends them
	if quotas.TotalTarget > 0 || quotas.TotalAllocated > 0 || quotas.TotalCompleted > 0 {
		target, allocated, completed = quotas.TotalTarget, quotas.TotalAllocated, quotas.TotalCompleted
	}
	s.Quotas = QuotaProgress{
		Target:    target,
		Allocated: allocated,
		Completed: completed,
		Percent:   percent(completed, target),
	}
	return s
}

// ReportSummary feeds the dashboard counters.
func ReportSummary(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		questionnaires, err := app.Backend.Questionnaires.All(ctx)
		if err != nil {
			httpx.LogBackendError(w, "backend.reports.questionnaires", err)
			return
		}
		samples, err := app.Backend.Samples.List(ctx, nil)
		if err != nil {
			httpx.LogBackendError(w, "backend.reports.samples", err)
			return
		}
		groups, err := app.Backend.SampleGroups.List(ctx, nil)
		if err != nil {
			httpx.LogBackendError(w, "backend.reports.sample_groups", err)
			return
		}
		quotas, err := app.Backend.QuotaSummary(ctx)
		if err != nil {
			httpx.LogBackendError(w, "backend.reports.quotas", err)
			return
		}

		render.JSON(w, r, buildSummary(questionnaires, samples.TotalCount, groups.TotalCount, quotas))
	}
}

// Health reports on the local database and the backend. Either one failing
// answers 503.
func Health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := model.Health{Status: "ok", Backend: "ok"}

		if err := app.PingContext(r.Context()); err != nil {
			log.Errorf("health.db: %s", err)
			health.Status = "degraded"
		}
		if err := app.Backend.Health(r.Context()); err != nil {
			log.Warnf("health.backend: %s", err)
			health.Status = "degraded"
			health.Backend = "unreachable"
		}

		if health.Status != "ok" {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, health)
	}
}
