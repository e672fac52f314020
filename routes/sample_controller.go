package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
	"github.com/mbolis/agriquest/sampling"
)

func ListSampleParticipants(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		page, err := app.Backend.SampleParticipants(r.Context(), id)
		if err != nil {
			httpx.LogBackendError(w, "backend.samples.participants", err)
			return
		}
		render.JSON(w, r, page)
	}
}

func GenerateParticipants(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		req := model.GenerateParticipantsRequest{}
		if r.ContentLength != 0 && !decodeBody(w, r, &req) {
			return
		}
		if req.Size < 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "samples.generate.validate", "size cannot be negative")
			return
		}

		participants, err := app.Backend.GenerateParticipants(r.Context(), id, req)
		if err != nil {
			httpx.LogBackendError(w, "backend.samples.generate", err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, participants)
	}
}

func ListSampleGroups(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		groups, err := app.Backend.GroupsBySample(r.Context(), id)
		if err != nil {
			httpx.LogBackendError(w, "backend.sample_groups.by_sample", err)
			return
		}
		render.JSON(w, r, groups)
	}
}

// ListFarms filters the farm register with the province, farmType,
// economicSize and search query parameters.
func ListFarms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farms, err := app.Backend.Farms.All(r.Context())
		if err != nil {
			httpx.LogBackendError(w, "backend.farms.list", err)
			return
		}

		filter := sampling.FilterFromQuery(r.URL.Query())
		render.JSON(w, r, farmList{
			Items:  filter.Apply(farms),
			Total:  len(farms),
			Facets: sampling.FacetsOf(farms),
		})
	}
}

type farmList struct {
	Items    []model.Farm    `json:"items"`
	Total    int             `json:"total"`
	Facets   sampling.Facets `json:"facets"`
	Assigned []model.Farm    `json:"assigned,omitempty"`
}

// groupBoard splits the farm register into the farms of group and the ones
// still free to assign.
func groupBoard(ctx context.Context, app app.App, groupID int) (model.SampleGroup, *sampling.Board[model.Farm], error) {
	group, err := app.Backend.SampleGroups.Get(ctx, groupID)
	if err != nil {
		return group, nil, err
	}
	farms, err := app.Backend.Farms.All(ctx)
	if err != nil {
		return group, nil, err
	}

	inGroup := make(map[int]bool, len(group.FarmIDs))
	for _, id := range group.FarmIDs {
		inGroup[id] = true
	}
	assigned := []model.Farm{}
	for _, f := range farms {
		if inGroup[f.ID] {
			assigned = append(assigned, f)
		}
	}
	return group, sampling.NewFarmBoard(sampling.Unassigned(farms, group.FarmIDs), assigned), nil
}

func ListCandidateFarms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		_, board, err := groupBoard(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.sample_groups.candidates", err)
			return
		}

		filter := sampling.FilterFromQuery(r.URL.Query())
		render.JSON(w, r, farmList{
			Items:    filter.Apply(board.Available),
			Total:    len(board.Available),
			Facets:   sampling.FacetsOf(board.Available),
			Assigned: board.Assigned,
		})
	}
}

// AssignFarms adds farms to a sample group. The answer is the board as it
// stands after the backend accepted the assignment.
func AssignFarms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		req := model.AssignFarmsRequest{}
		if !decodeBody(w, r, &req) {
			return
		}
		req.FarmIDs = uniqueIDs(req.FarmIDs)
		if len(req.FarmIDs) == 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "sample_groups.assign.validate", "no farms to assign")
			return
		}

		_, board, err := groupBoard(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.sample_groups.assign", err)
			return
		}

		err = board.AllocateAll(r.Context(), req.FarmIDs, func(ctx context.Context) error {
			return app.Backend.AssignFarms(ctx, id, req.FarmIDs)
		})
		switch {
		case errors.Is(err, sampling.ErrNotOnBoard):
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "sample_groups.assign", "%s", err)
			return
		case err != nil:
			httpx.LogBackendError(w, "backend.sample_groups.assign", err)
			return
		}
		render.JSON(w, r, board)
	}
}

// uniqueIDs keeps the first occurrence of each id, in order.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func SetInterviewer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		req := model.InterviewerRequest{}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.InterviewerID <= 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "sample_groups.interviewer.validate", "interviewerId is required")
			return
		}

		if err := app.Backend.SetInterviewer(r.Context(), id, req.InterviewerID); err != nil {
			httpx.LogBackendError(w, "backend.sample_groups.interviewer", err)
			return
		}

		group, err := app.Backend.SampleGroups.Get(r.Context(), id)
		if err != nil {
			httpx.LogBackendError(w, "backend.sample_groups.get", err)
			return
		}
		render.JSON(w, r, group)
	}
}
