// internal/app/features/blogs/blogs.go
package blogs

import (
	"context"
	"errors"
	"net/http"
	"strings"

	blogstore "github.com/dalemusser/campushub/internal/app/store/blogs"
	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Content       string   `json:"content" validate:"required"`
	Media         string   `json:"media,omitempty" validate:"omitempty,url"`
	Tags          []string `json:"tags,omitempty" validate:"omitempty,max=5"`
	AuthorComment string   `json:"author_comment,omitempty" validate:"omitempty,max=500"`
	ClubBadge     string   `json:"club_badge,omitempty" validate:"omitempty,len=24,hexadecimal"`
	IsDraft       bool     `json:"is_draft"`
}

// HandleCreate writes a new blog. Publishing immediately (not a draft)
// awards the author's publication points; a club badge requires membership
// in that club.
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
	for _, tag := range req.Tags {
		if !models.ValidBlogTag(tag) {
			respond.Error(w, h.Log, apperr.InvalidArgument("unknown tag: "+tag))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var badge *primitive.ObjectID
	if req.ClubBadge != "" {
		clubID, err := primitive.ObjectIDFromHex(req.ClubBadge)
		if err != nil {
			respond.Error(w, h.Log, apperr.InvalidArgument("invalid club_badge"))
			return
		}
		cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		if !cap.CanPublishBadgedBlogs {
			respond.Error(w, h.Log, apperr.Forbidden("club membership required to badge a blog"))
			return
		}
		badge = &clubID
	}

	blog, err := h.Blogs.Create(ctx, models.Blog{
		Title:         strings.TrimSpace(req.Title),
		Content:       sanitizer.Sanitize(req.Content),
		Media:         req.Media,
		Author:        uid,
		ClubBadge:     badge,
		Tags:          req.Tags,
		AuthorComment: req.AuthorComment,
		IsDraft:       req.IsDraft,
		IsPublished:   !req.IsDraft,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := h.Users.AddBlogRef(ctx, uid, blog.ID); err != nil {
		h.Log.Warn("blog ref update failed", zap.Error(err))
	}
	if badge != nil {
		if err := h.Clubs.AddBlogRef(ctx, *badge, blog.ID); err != nil {
			h.Log.Warn("club blog ref update failed", zap.Error(err))
		}
	}
	if blog.IsPublished {
		if err := h.Rank.Award(ctx, uid, ranking.PointsBlogPublish); err != nil {
			h.Log.Warn("blog points award failed", zap.Error(err))
		}
	}

	respond.JSON(w, http.StatusCreated, blog)
}

// HandleList returns published blogs. ?tag= filters by tag, ?club= by
// club badge, ?author= by author; the filters are mutually exclusive and
// checked in that order.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag != "" && !models.ValidBlogTag(tag) {
		respond.Error(w, h.Log, apperr.InvalidArgument("unknown tag: "+tag))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		list []models.Blog
		err  error
	)
	switch {
	case r.URL.Query().Get("club") != "":
		var clubID primitive.ObjectID
		clubID, err = primitive.ObjectIDFromHex(r.URL.Query().Get("club"))
		if err != nil {
			respond.Error(w, h.Log, apperr.InvalidArgument("invalid club filter"))
			return
		}
		list, err = h.Blogs.ListPublishedByClub(ctx, clubID)
	case r.URL.Query().Get("author") != "":
		var authorID primitive.ObjectID
		authorID, err = primitive.ObjectIDFromHex(r.URL.Query().Get("author"))
		if err != nil {
			respond.Error(w, h.Log, apperr.InvalidArgument("invalid author filter"))
			return
		}
		list, err = h.Blogs.ListPublishedByAuthor(ctx, authorID)
	default:
		list, err = h.Blogs.ListPublished(ctx, tag)
	}
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"blogs": list})
}

// HandleGet returns one blog and bumps its view counter. Drafts are only
// visible to their author.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blogID, ok := h.pathID(w, r, "blogID")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	blog, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return
	}
	if blog.IsDraft || !blog.IsPublished {
		uid, signed := authz.UserCtx(r)
		if !signed || uid != blog.Author {
			respond.Error(w, h.Log, apperr.NotFound("blog not found"))
			return
		}
	} else {
		if err := h.Blogs.IncrementViews(ctx, blogID); err != nil {
			h.Log.Debug("view count bump failed", zap.Error(err))
		} else {
			blog.ViewCount++
		}
	}
	respond.JSON(w, http.StatusOK, blog)
}

// HandleMine lists everything the signed-in user wrote, drafts included.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Blogs.ListByAuthor(ctx, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"blogs": list})
}

type updateRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Content       *string  `json:"content,omitempty"`
	Media         *string  `json:"media,omitempty" validate:"omitempty,url"`
	Tags          []string `json:"tags,omitempty" validate:"omitempty,max=5"`
	AuthorComment *string  `json:"author_comment,omitempty" validate:"omitempty,max=500"`
}

// HandleUpdate edits a blog. Author only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	for _, tag := range req.Tags {
		if !models.ValidBlogTag(tag) {
			respond.Error(w, h.Log, apperr.InvalidArgument("unknown tag: "+tag))
			return
		}
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		set["content"] = sanitizer.Sanitize(*req.Content)
	}
	if req.Media != nil {
		set["media"] = *req.Media
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.AuthorComment != nil {
		set["author_comment"] = *req.AuthorComment
	}
	if len(set) == 0 {
		respond.Error(w, h.Log, apperr.InvalidArgument("no fields to update"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Blogs.Update(ctx, blog.ID, set); err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "blog updated")
}

// HandlePublish flips a draft live and awards the publication points.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	blog, uid, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if blog.IsPublished && !blog.IsDraft {
		respond.Error(w, h.Log, apperr.InvalidState("blog is already published"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Blogs.Publish(ctx, blog.ID); err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return
	}
	if err := h.Rank.Award(ctx, uid, ranking.PointsBlogPublish); err != nil {
		h.Log.Warn("blog points award failed", zap.Error(err))
	}
	respond.Message(w, http.StatusOK, "blog published")
}

// HandleDelete removes a blog. Author only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	blog, uid, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Blogs.Delete(ctx, blog.ID); err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return
	}
	if err := h.Users.RemoveBlogRef(ctx, uid, blog.ID); err != nil {
		h.Log.Warn("blog ref removal failed", zap.Error(err))
	}
	respond.Message(w, http.StatusOK, "blog deleted")
}

type voteRequest struct {
	// Direction is "up", "down", or "none" to withdraw.
	Direction string `json:"direction" validate:"required,oneof=up down none"`
}

// HandleVote records the signed-in user's vote. A user holds at most one
// vote per blog; switching direction moves it.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	blogID, ok := h.pathID(w, r, "blogID")
	if !ok {
		return
	}
	var req voteRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var err error
	switch req.Direction {
	case "up":
		err = h.Blogs.Upvote(ctx, blogID, uid)
	case "down":
		err = h.Blogs.Downvote(ctx, blogID, uid)
	default:
		err = h.Blogs.Unvote(ctx, blogID, uid)
	}
	if err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "vote recorded")
}

// loadOwned loads a blog and checks the caller authored it, writing the
// error response itself on failure.
func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Blog, primitive.ObjectID, bool) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return models.Blog{}, primitive.NilObjectID, false
	}
	blogID, ok := h.pathID(w, r, "blogID")
	if !ok {
		return models.Blog{}, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	blog, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		respond.Error(w, h.Log, mapBlogErr(err))
		return models.Blog{}, primitive.NilObjectID, false
	}
	if blog.Author != uid {
		respond.Error(w, h.Log, apperr.Forbidden("only the author can modify this blog"))
		return models.Blog{}, primitive.NilObjectID, false
	}
	return blog, uid, true
}

func mapBlogErr(err error) error {
	if errors.Is(err, blogstore.ErrNotFound) {
		return apperr.NotFound(err.Error())
	}
	return err
}
