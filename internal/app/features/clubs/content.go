// internal/app/features/clubs/content.go
package clubs

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type announcementRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	Pinned  bool   `json:"pinned"`
}

// HandlePostAnnouncement adds an announcement and notifies every member.
func (h *Handler) HandlePostAnnouncement(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	var req announcementRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanPostAnnouncements {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required"))
		return
	}

	a, err := h.Clubs.AddAnnouncement(ctx, clubID, models.Announcement{
		Message:  strings.TrimSpace(req.Message),
		PostedBy: uid,
		Pinned:   req.Pinned,
	})
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	if club, cerr := h.Clubs.GetByID(ctx, clubID); cerr == nil {
		var recipients []primitive.ObjectID
		for _, m := range club.Members {
			if m.UserID != uid {
				recipients = append(recipients, m.UserID)
			}
		}
		h.Notify.Broadcast(ctx, recipients, notify.Notification{
			Type:        models.NotificationClub,
			Message:     "New announcement in " + club.Name + ".",
			RelatedClub: &clubID,
		})
	}

	respond.JSON(w, http.StatusCreated, a)
}

type askQueryRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

// HandleAskQuery lets a member ask the club leadership a question.
func (h *Handler) HandleAskQuery(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	var req askQueryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.IsMember {
		respond.Error(w, h.Log, apperr.Forbidden("club membership required"))
		return
	}

	q, err := h.Clubs.AddQuery(ctx, clubID, models.ClubQuery{
		AskedBy:  uid,
		Question: strings.TrimSpace(req.Question),
	})
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusCreated, q)
}

type answerQueryRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// HandleAnswerQuery records the single response on a pending query and
// notifies the asker.
func (h *Handler) HandleAnswerQuery(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	queryID, ok := h.pathID(w, r, "queryID")
	if !ok {
		return
	}
	var req answerQueryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanAnswerQueries {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required"))
		return
	}

	if err := h.Clubs.AnswerQuery(ctx, clubID, queryID, uid, strings.TrimSpace(req.Message)); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	if club, cerr := h.Clubs.GetByID(ctx, clubID); cerr == nil {
		for _, q := range club.Queries {
			if q.ID == queryID {
				h.Notify.Send(ctx, q.AskedBy, notify.Notification{
					Type:        models.NotificationClub,
					Message:     "Your question to " + club.Name + " was answered.",
					RelatedClub: &clubID,
				})
				break
			}
		}
	}

	respond.Message(w, http.StatusOK, "query answered")
}

// HandleCloseQuery closes a query without answering.
func (h *Handler) HandleCloseQuery(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	queryID, ok := h.pathID(w, r, "queryID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanAnswerQueries {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required"))
		return
	}

	if err := h.Clubs.CloseQuery(ctx, clubID, queryID); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "query closed")
}
