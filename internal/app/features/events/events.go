// internal/app/features/events/events.go
package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=150"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Type        string    `json:"type,omitempty" validate:"omitempty,max=50"`
	Tags        []string  `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
	Date        time.Time `json:"date" validate:"required"`
	IsOnline    bool      `json:"is_online"`
	Venue       string    `json:"venue,omitempty" validate:"omitempty,max=200"`
	MapLink     string    `json:"map_link,omitempty" validate:"omitempty,url"`

	MaxParticipants int    `json:"max_participants,omitempty" validate:"omitempty,min=1"`
	ClubID          string `json:"club_id" validate:"required,len=24,hexadecimal"`

	IsPaid   bool       `json:"is_paid"`
	Price    float64    `json:"price,omitempty" validate:"omitempty,min=0"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// HandleCreate creates an event under a club. The caller needs the club's
// event-creation capability.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	clubID, err := primitive.ObjectIDFromHex(req.ClubID)
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid club_id"))
		return
	}
	if req.IsPaid && req.Price <= 0 {
		respond.Error(w, h.Log, apperr.InvalidArgument("paid events need a positive price"))
		return
	}
	if req.Date.Before(time.Now()) {
		respond.Error(w, h.Log, apperr.InvalidArgument("event date must be in the future"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanCreateEvents {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required to host events"))
		return
	}

	ev, err := h.Events.Create(ctx, models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
		Tags:        req.Tags,
		Date:        req.Date.UTC(),
		IsOnline:    req.IsOnline,
		Location: models.EventLocation{
			Venue:   req.Venue,
			MapLink: req.MapLink,
		},
		MaxParticipants: req.MaxParticipants,
		CreatedByClub:   clubID,
		Registration: models.EventRegistration{
			IsPaid:   req.IsPaid,
			Price:    req.Price,
			Deadline: req.Deadline,
		},
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := h.Clubs.AddEventRef(ctx, clubID, ev.ID); err != nil {
		h.Log.Warn("club event ref update failed",
			zap.String("event_id", ev.ID.Hex()), zap.Error(err))
	}

	respond.JSON(w, http.StatusCreated, ev)
}

// HandleList returns events; ?upcoming=true limits to future ones and
// ?club=<id> filters by hosting club.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if clubHex := r.URL.Query().Get("club"); clubHex != "" {
		clubID, err := primitive.ObjectIDFromHex(clubHex)
		if err != nil {
			respond.Error(w, h.Log, apperr.InvalidArgument("invalid club filter"))
			return
		}
		events, err := h.Events.ListByClub(ctx, clubID)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}

	var (
		events []models.Event
		err    error
	)
	if r.URL.Query().Get("upcoming") == "true" {
		events, err = h.Events.ListUpcoming(ctx)
	} else {
		events, err = h.Events.List(ctx)
	}
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": events})
}

// HandleGet returns one event.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, ev)
}

type updateRequest struct {
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Venue           *string    `json:"venue,omitempty" validate:"omitempty,max=200"`
	MapLink         *string    `json:"map_link,omitempty" validate:"omitempty,url"`
	Date            *time.Time `json:"date,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty" validate:"omitempty,min=1"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// HandleUpdate edits an event. Requires the hosting club's event capability.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ev, _, ok := h.loadForManage(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Venue != nil {
		set["location.venue"] = *req.Venue
	}
	if req.MapLink != nil {
		set["location.map_link"] = *req.MapLink
	}
	if req.Date != nil {
		set["date"] = req.Date.UTC()
	}
	if req.MaxParticipants != nil {
		set["max_participants"] = *req.MaxParticipants
	}
	if req.Deadline != nil {
		set["registration.deadline"] = req.Deadline.UTC()
	}
	if len(set) == 0 {
		respond.Error(w, h.Log, apperr.InvalidArgument("no fields to update"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Events.Update(ctx, ev.ID, set); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "event updated")
}

// HandleDelete removes an event. Requires the hosting club's capability.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ev, _, ok := h.loadForManage(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.Delete(ctx, ev.ID); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "event deleted")
}

// HandleUploadBanner accepts a multipart "banner" image.
func (h *Handler) HandleUploadBanner(w http.ResponseWriter, r *http.Request) {
	ev, _, ok := h.loadForManage(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("multipart form required"))
		return
	}
	f, hdr, err := r.FormFile("banner")
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("banner file required"))
		return
	}
	defer f.Close()

	url, err := h.Uploads.Save("banners", hdr.Filename, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Events.Update(ctx, ev.ID, bson.M{"banner_image": url}); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"banner_image": url})
}

// loadForManage loads the event and checks the caller can manage it through
// the hosting club, writing the error response itself on failure.
func (h *Handler) loadForManage(w http.ResponseWriter, r *http.Request) (models.Event, primitive.ObjectID, bool) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return models.Event{}, primitive.NilObjectID, false
	}
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return models.Event{}, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return models.Event{}, primitive.NilObjectID, false
	}
	cap, err := clubpolicy.Resolve(ctx, h.DB, ev.CreatedByClub, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return models.Event{}, primitive.NilObjectID, false
	}
	if !cap.CanCreateEvents {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required"))
		return models.Event{}, primitive.NilObjectID, false
	}
	return ev, uid, true
}
