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

func QuotaSummary(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := app.Backend.QuotaSummary(r.Context())
		if err != nil {
			httpx.LogBackendError(w, "backend.quotas.summary", err)
			return
		}
		render.JSON(w, r, summary)
	}
}

func quotaBoard(ctx context.Context, app app.App, quotaID int) (*sampling.Board[model.Participant], error) {
	eligible, err := app.Backend.EligibleParticipants(ctx, quotaID)
	if err != nil {
		return nil, err
	}
	allocated, err := app.Backend.QuotaParticipants(ctx, quotaID)
	if err != nil {
		return nil, err
	}
	return sampling.NewParticipantBoard(eligible, allocated), nil
}

// QuotaBoard lists the eligible and the allocated participants of a quota.
func QuotaBoard(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		board, err := quotaBoard(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend.quotas.board", err)
			return
		}
		render.JSON(w, r, board)
	}
}

type moveRequest struct {
	ParticipantID int `json:"participantId"`
}

func Allocate(app app.App) http.HandlerFunc {
	return moveParticipant(app, "quotas.allocate", func(b *sampling.Board[model.Participant]) boardMove {
		return b.Allocate
	}, app.Backend.Allocate)
}

func Deallocate(app app.App) http.HandlerFunc {
	return moveParticipant(app, "quotas.deallocate", func(b *sampling.Board[model.Participant]) boardMove {
		return b.Deallocate
	}, app.Backend.Deallocate)
}

type boardMove func(ctx context.Context, id int, remote func(context.Context) error) error

// moveParticipant moves one participant across the quota board. The backend
// is called first; the board in the answer only changes when it succeeded.
func moveParticipant(app app.App, code string, pick func(*sampling.Board[model.Participant]) boardMove, remote func(ctx context.Context, quotaID, participantID int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		req := moveRequest{}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.ParticipantID <= 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code+".validate", "participantId is required")
			return
		}

		board, err := quotaBoard(r.Context(), app, id)
		if err != nil {
			httpx.LogBackendError(w, "backend."+code+".board", err)
			return
		}

		err = pick(board)(r.Context(), req.ParticipantID, func(ctx context.Context) error {
			return remote(ctx, id, req.ParticipantID)
		})
		switch {
		case errors.Is(err, sampling.ErrNotOnBoard):
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "participant %d cannot be moved on quota %d", req.ParticipantID, id)
			return
		case err != nil:
			httpx.LogBackendError(w, "backend."+code, err)
			return
		}
		render.JSON(w, r, board)
	}
}

// AutoAllocate relays the backend's automatic allocation as reported.
func AutoAllocate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := model.AutoAllocationRequest{}
		if r.ContentLength != 0 && !decodeBody(w, r, &req) {
			return
		}

		result, err := app.Backend.AutoAllocate(r.Context(), req)
		if err != nil {
			httpx.LogBackendError(w, "backend.quotas.auto_allocate", err)
			return
		}
		render.JSON(w, r, result)
	}
}
