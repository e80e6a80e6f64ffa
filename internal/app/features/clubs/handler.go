// internal/app/features/clubs/handler.go

// Package clubs implements club creation, the membership workflow
// (apply, withdraw, accept, reject, promote), and club-scoped content:
// announcements and member queries.
package clubs

import (
	"errors"
	"net/http"

	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Clubs   *clubstore.Store
	Users   *userstore.Store
	DB      *mongo.Database // capability resolution reads the club directly
	Uploads uploads.Store
	Notify  *notify.Sink
	Log     *zap.Logger
}

// Routes mounts the club endpoints. Typically: r.Mount("/clubs", clubs.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{clubID}", h.HandleGet)
	r.Get("/{clubID}/members", h.HandleMembers)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/mine", h.HandleMine)
		pr.Get("/{clubID}/permissions", h.HandlePermissions)

		pr.Post("/{clubID}/apply", h.HandleApply)
		pr.Delete("/{clubID}/apply", h.HandleWithdraw)

		pr.Get("/{clubID}/applicants", h.HandleApplicants)
		pr.Post("/{clubID}/applicants/{userID}/accept", h.HandleAcceptApplicant)
		pr.Post("/{clubID}/applicants/{userID}/reject", h.HandleRejectApplicant)

		pr.Put("/{clubID}/members/{userID}/role", h.HandleSetRole)
		pr.Delete("/{clubID}/members/{userID}", h.HandleRemoveMember)

		pr.Put("/{clubID}", h.HandleUpdateDetails)
		pr.Post("/{clubID}/images", h.HandleUploadImages)

		pr.Post("/{clubID}/announcements", h.HandlePostAnnouncement)
		pr.Post("/{clubID}/queries", h.HandleAskQuery)
		pr.Post("/{clubID}/queries/{queryID}/answer", h.HandleAnswerQuery)
		pr.Post("/{clubID}/queries/{queryID}/close", h.HandleCloseQuery)
	})

	return r
}

// pathID parses an ObjectID URL parameter, writing the 400 itself on
// failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid "+name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// storeErr maps club store sentinels onto the error taxonomy.
func storeErr(err error) error {
	switch {
	case errors.Is(err, clubstore.ErrNotFound):
		return apperr.NotFound(err.Error())
	case errors.Is(err, clubstore.ErrDuplicateName),
		errors.Is(err, clubstore.ErrAlreadyMember),
		errors.Is(err, clubstore.ErrAlreadyApplied):
		return apperr.Conflict(err.Error())
	case errors.Is(err, clubstore.ErrNotApplicant),
		errors.Is(err, clubstore.ErrNotMember),
		errors.Is(err, clubstore.ErrNotAccepted),
		errors.Is(err, clubstore.ErrQueryNotOpen):
		return apperr.InvalidState(err.Error())
	}
	return err
}
