package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/agriquest/csvimport"
	"github.com/mbolis/agriquest/model"
)

func TestLocationTemplate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/locations/template.csv?lang=el", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="locations-template-el.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffΌνομα,Κοινότητα,"))

	req := httptest.NewRequest(http.MethodGet, "/api/locations/template.csv", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name,Community,District,Population,Farmers\n")

	rows, rejected, err := csvimport.Parse(rec.Body)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Len(t, rows, 3)
}

const importFile = "Name,Community,District,Population,Farmers\n" +
	"Pissouri,pissouri,Limassol,1500,140\n" +
	"Kakopetria,Kakopetria,Nicosia,1150,60\n" +
	"Refused,Refused,Paphos,10,1\n" +
	"Broken,,Paphos,abc,1\n"

func newLocationEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	env.login(t)
	env.fake.handle("GET /locations", reply(http.StatusOK, `[{"id":1,"name":"Pissouri","community":"Pissouri","district":"Limassol"}]`))
	env.fake.handle("POST /locations", func(w http.ResponseWriter, r *http.Request) {
		var l model.Location
		json.NewDecoder(r.Body).Decode(&l)
		if l.Name == "Refused" {
			reply(http.StatusBadRequest, `{"message":"unknown district"}`)(w, r)
			return
		}
		l.ID = 2
		data, _ := json.Marshal(l)
		reply(http.StatusCreated, string(data))(w, r)
	})
	return env
}

func TestImportLocations(t *testing.T) {
	env := newLocationEnv(t)

	rec := env.do(t, http.MethodPost, "/api/locations/import", importFile)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[csvimport.Report](t, rec)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Existing)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, report.Total, report.Success+report.Existing+report.Rejected)

	require.Len(t, report.Created, 1)
	assert.Equal(t, 2, report.Created[0].ID)
	assert.Equal(t, "Kakopetria", report.Created[0].Name)

	require.Len(t, report.Rejections, 2)
	assert.Equal(t, 5, report.Rejections[0].Line)
	assert.Contains(t, report.Rejections[0].Reason, "community is required")
	assert.Equal(t, "Refused", report.Rejections[1].Name)
	assert.Equal(t, "unknown district", report.Rejections[1].Reason)

	assert.Equal(t, 2, env.fake.called("POST /locations"))
}

func TestImportLocations_Multipart(t *testing.T) {
	env := newLocationEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "locations.csv")
	require.NoError(t, err)
	io.WriteString(part, "\ufeff"+importFile)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/locations/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[csvimport.Report](t, rec).Success)

	body.Reset()
	mw = multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/locations/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportLocations_Failures(t *testing.T) {
	env := newLocationEnv(t)

	rec := env.do(t, http.MethodPost, "/api/locations/import", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/locations/import", "City,Town\nx,y\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.fake.called("GET /locations"))

	env.fake.handle("POST /locations", reply(http.StatusServiceUnavailable, ``))
	rec = env.do(t, http.MethodPost, "/api/locations/import", importFile)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
