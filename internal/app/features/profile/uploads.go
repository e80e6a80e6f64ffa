// internal/app/features/profile/uploads.go
package profile

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// HandleUploadAvatar accepts a multipart "avatar" image and stores its URL
// on the profile.
func (h *Handler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("multipart form required"))
		return
	}
	f, hdr, err := r.FormFile("avatar")
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("avatar file required"))
		return
	}
	defer f.Close()
	if !imageExts[strings.ToLower(filepath.Ext(hdr.Filename))] {
		respond.Error(w, h.Log, apperr.InvalidArgument("avatar must be a jpg, png, or webp image"))
		return
	}

	url, err := h.Uploads.Save("avatars", hdr.Filename, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{PictureURL: &url}); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"picture": url})
}

// HandleUploadDocuments accepts optional multipart "resume" and "idcard"
// files (PDF or image) and stores their URLs and original names.
func (h *Handler) HandleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("multipart form required"))
		return
	}

	var upd userstore.ProfileUpdate
	saved := map[string]string{}

	if f, hdr, err := r.FormFile("resume"); err == nil {
		defer f.Close()
		url, serr := h.Uploads.Save("documents", hdr.Filename, f)
		if serr != nil {
			respond.Error(w, h.Log, serr)
			return
		}
		name := hdr.Filename
		upd.ResumeURL = &url
		upd.ResumeOriginalName = &name
		saved["resume_url"] = url
	}
	if f, hdr, err := r.FormFile("idcard"); err == nil {
		defer f.Close()
		url, serr := h.Uploads.Save("documents", hdr.Filename, f)
		if serr != nil {
			respond.Error(w, h.Log, serr)
			return
		}
		name := hdr.Filename
		upd.IDCardURL = &url
		upd.IDCardOriginalName = &name
		saved["idcard_url"] = url
	}
	if len(saved) == 0 {
		respond.Error(w, h.Log, apperr.InvalidArgument("provide a resume or idcard file"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Users.UpdateProfile(ctx, uid, upd); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, saved)
}
