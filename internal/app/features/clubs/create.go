// internal/app/features/clubs/create.go
package clubs

import (
	"context"
	"errors"
	"net/http"
	"strings"

	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
)

type createRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
	Message     string   `json:"message,omitempty" validate:"omitempty,max=1000"`

	Documents struct {
		Certificate  string `json:"certificate,omitempty" validate:"omitempty,url"`
		ActivityPlan string `json:"activity_plan,omitempty" validate:"omitempty,url"`
		Budget       string `json:"budget,omitempty" validate:"omitempty,url"`
	} `json:"documents"`
}

// HandleCreate submits a new club application. The club stays invisible to
// listings until an admin accepts it.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.Create(ctx, models.Club{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Documents: models.ClubDocuments{
			Certificate:  req.Documents.Certificate,
			ActivityPlan: req.Documents.ActivityPlan,
			Budget:       req.Documents.Budget,
		},
		President: models.ClubPresident{UserID: uid, Message: req.Message},
	})
	if err != nil {
		if errors.Is(err, clubstore.ErrDuplicateName) {
			respond.Error(w, h.Log, apperr.Conflict(err.Error()))
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, club)
}

// HandleList returns the accepted clubs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.ListAccepted(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"clubs": clubs})
}

// HandleGet returns one club.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, club)
}

// HandleMine returns the accepted clubs the signed-in user belongs to.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.MemberClubs(ctx, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"clubs": clubs})
}

// HandlePermissions resolves what the signed-in user may do in this club.
// An unknown club or non-member resolves to all-false rather than an error;
// frontends branch on the flags.
func (h *Handler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, cap)
}

type updateDetailsRequest struct {
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
}

// HandleUpdateDetails edits the club's descriptive fields. Officers only.
func (h *Handler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	var req updateDetailsRequest
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
	if !cap.CanEditClub {
		respond.Error(w, h.Log, apperr.Forbidden("club officer role required"))
		return
	}

	if err := h.Clubs.UpdateDetails(ctx, clubID, req.Description, req.Category, req.Tags); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "club updated")
}

// HandleUploadImages accepts multipart "profile" and "cover" images for the
// club page. Officers only.
func (h *Handler) HandleUploadImages(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
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
	if !cap.CanEditClub {
		respond.Error(w, h.Log, apperr.Forbidden("club officer role required"))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("multipart form required"))
		return
	}

	var profileURL, coverURL string
	if f, hdr, ferr := r.FormFile("profile"); ferr == nil {
		defer f.Close()
		profileURL, err = h.Uploads.Save("clubs", hdr.Filename, f)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
	}
	if f, hdr, ferr := r.FormFile("cover"); ferr == nil {
		defer f.Close()
		coverURL, err = h.Uploads.Save("clubs", hdr.Filename, f)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
	}
	if profileURL == "" && coverURL == "" {
		respond.Error(w, h.Log, apperr.InvalidArgument("provide a profile or cover image"))
		return
	}

	if err := h.Clubs.UpdateImages(ctx, clubID, profileURL, coverURL); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"profile_image": profileURL,
		"cover_image":   coverURL,
	})
}
