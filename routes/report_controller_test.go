package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/agriquest/model"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(5, 0))
	assert.Equal(t, 33.3, percent(1, 3))
	assert.Equal(t, 66.7, percent(2, 3))
	assert.Equal(t, 100.0, percent(4, 4))
}

func TestBuildSummary(t *testing.T) {
	questionnaires := []model.Questionnaire{
		{ID: 1, Status: model.StatusPublished},
		{ID: 2, Status: model.StatusDraft},
		{ID: 3},
		{ID: 4, Status: model.StatusArchived},
	}
	quotas := model.QuotaSummary{Quotas: []model.Quota{
		{Name: "Nicosia crops", Target: 10, Allocated: 8, Completed: 5},
		{Name: "Paphos livestock", Target: 0, Allocated: 0, Completed: 0},
	}}

	s := buildSummary(questionnaires, 3, 7, quotas)
	assert.Equal(t, QuestionnaireCounts{Total: 4, Draft: 2, Published: 1, Archived: 1}, s.Questionnaires)
	assert.Equal(t, 3, s.Samples)
	assert.Equal(t, 7, s.SampleGroups)
	assert.Equal(t, QuotaProgress{Target: 10, Allocated: 8, Completed: 5, Percent: 50}, s.Quotas)
	require.Len(t, s.ByQuota, 2)
	assert.Equal(t, 0.0, s.ByQuota[1].Percent)

	quotas.TotalTarget, quotas.TotalAllocated, quotas.TotalCompleted = 40, 20, 10
	s = buildSummary(nil, 0, 0, quotas)
	assert.Equal(t, QuotaProgress{Target: 40, Allocated: 20, Completed: 10, Percent: 25}, s.Quotas)
	assert.Equal(t, QuestionnaireCounts{}, s.Questionnaires)
}

func TestReportSummary(t *testing.T) {
	env := newTestEnv(t)
	env.fake.handle("GET /questionnaires", reply(http.StatusOK, `[{"id":1,"name":"a","status":"published"},{"id":2,"name":"b"}]`))
	env.fake.handle("GET /samples", reply(http.StatusOK, `{"data":[{"id":1,"name":"s"}],"totalCount":6}`))
	env.fake.handle("GET /SampleGroups", reply(http.StatusOK, `[{"id":1,"name":"g","sampleId":1},{"id":2,"name":"h","sampleId":1}]`))
	env.fake.handle("GET /Quotas/summary", reply(http.StatusOK, `{"totalTarget":20,"totalAllocated":10,"totalCompleted":3,"quotas":null}`))

	rec := env.do(t, http.MethodGet, "/api/reports/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s := decode[Summary](t, rec)
	assert.Equal(t, QuestionnaireCounts{Total: 2, Draft: 1, Published: 1}, s.Questionnaires)
	assert.Equal(t, 6, s.Samples)
	assert.Equal(t, 2, s.SampleGroups)
	assert.Equal(t, 15.0, s.Quotas.Percent)
	assert.Empty(t, s.ByQuota)

	env.fake.handle("GET /Quotas/summary", reply(http.StatusInternalServerError, ``))
	rec = env.do(t, http.MethodGet, "/api/reports/summary", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
