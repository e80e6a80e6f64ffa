// internal/app/features/blogs/handler.go

// Package blogs implements authored posts: drafting, publishing with
// activity points, club badges, voting, and view counts. Content is HTML;
// it is sanitized on the way in.
package blogs

import (
	"net/http"

	blogstore "github.com/dalemusser/campushub/internal/app/store/blogs"
	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// sanitizer strips script and style from user-authored HTML while keeping
// formatting and links.
var sanitizer = bluemonday.UGCPolicy()

type Handler struct {
	Blogs  *blogstore.Store
	Users  *userstore.Store
	Clubs  *clubstore.Store
	DB     *mongo.Database
	Rank   *ranking.Engine
	Notify *notify.Sink
	Log    *zap.Logger
}

// Routes mounts the blog endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{blogID}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/mine", h.HandleMine)
		pr.Put("/{blogID}", h.HandleUpdate)
		pr.Post("/{blogID}/publish", h.HandlePublish)
		pr.Delete("/{blogID}", h.HandleDelete)
		pr.Post("/{blogID}/vote", h.HandleVote)
	})

	return r
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("invalid "+name))
		return primitive.NilObjectID, false
	}
	return id, true
}
