// internal/app/features/clubs/membership.go
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
	"go.uber.org/zap"
)

// HandleApply records a join request for the signed-in user.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Clubs.Apply(ctx, clubID, uid); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	// Tell the club president there is a new applicant.
	if club, err := h.Clubs.GetByID(ctx, clubID); err == nil {
		h.Notify.Send(ctx, club.President.UserID, notify.Notification{
			Type:        models.NotificationClub,
			Message:     "A new member application is waiting for review in " + club.Name + ".",
			RelatedClub: &clubID,
		})
	}

	respond.Message(w, http.StatusCreated, "application submitted")
}

// HandleWithdraw removes the signed-in user's pending application.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Clubs.WithdrawApplication(ctx, clubID, uid); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "application withdrawn")
}

// HandleApplicants lists the pending queue. Requires manage capability.
func (h *Handler) HandleApplicants(w http.ResponseWriter, r *http.Request) {
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
	if !cap.CanViewApplicantsQueue {
		respond.Error(w, h.Log, apperr.Forbidden("core member or officer role required"))
		return
	}

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"applicants": club.Applicants})
}

// HandleAcceptApplicant moves an applicant to the member list and notifies
// them. Requires manage capability.
func (h *Handler) HandleAcceptApplicant(w http.ResponseWriter, r *http.Request) {
	h.decideApplicant(w, r, true)
}

// HandleRejectApplicant drops an applicant and notifies them.
func (h *Handler) HandleRejectApplicant(w http.ResponseWriter, r *http.Request) {
	h.decideApplicant(w, r, false)
}

func (h *Handler) decideApplicant(w http.ResponseWriter, r *http.Request, accept bool) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	applicantID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanManageMembers {
		respond.Error(w, h.Log, apperr.Forbidden("core member or officer role required"))
		return
	}

	if accept {
		err = h.Clubs.AcceptApplicant(ctx, clubID, applicantID)
	} else {
		err = h.Clubs.RejectApplicant(ctx, clubID, applicantID)
	}
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	club, cerr := h.Clubs.GetByID(ctx, clubID)
	clubName := "the club"
	if cerr == nil {
		clubName = club.Name
	}

	if accept {
		if err := h.Users.AddClubRef(ctx, applicantID, clubID); err != nil {
			h.Log.Warn("club ref update failed",
				zap.String("user_id", applicantID.Hex()), zap.Error(err))
		}
		h.Notify.Send(ctx, applicantID, notify.Notification{
			Type:        models.NotificationClub,
			Message:     "Your application to " + clubName + " was accepted. Welcome!",
			RelatedClub: &clubID,
		})
		respond.Message(w, http.StatusOK, "applicant accepted")
		return
	}

	h.Notify.Send(ctx, applicantID, notify.Notification{
		Type:        models.NotificationClub,
		Message:     "Your application to " + clubName + " was not accepted this time.",
		RelatedClub: &clubID,
	})
	respond.Message(w, http.StatusOK, "applicant rejected")
}

type setRoleRequest struct {
	Role       string `json:"role" validate:"required"`
	CoreMember bool   `json:"core_member"`
}

// HandleSetRole changes a member's role and core flag. Only the president
// may assign officer roles or grant the core flag; other managers are
// limited to the plain member role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	memberID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.ValidClubRole(role) {
		respond.Error(w, h.Log, apperr.InvalidArgument("unknown club role: "+req.Role))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, h.DB, clubID, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanManageMembers {
		respond.Error(w, h.Log, apperr.Forbidden("core member or officer role required"))
		return
	}
	officerRole := role == models.ClubRolePresident ||
		role == models.ClubRoleVicePresident || role == models.ClubRoleTreasurer
	grantsCore := req.CoreMember || role == models.ClubRoleCoreMember
	if (officerRole || grantsCore) && !cap.IsPresident {
		respond.Error(w, h.Log, apperr.Forbidden("only the president can assign officer roles or the core flag"))
		return
	}

	if err := h.Clubs.SetMemberRole(ctx, clubID, memberID, role, req.CoreMember); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	h.Notify.Send(ctx, memberID, notify.Notification{
		Type:        models.NotificationClub,
		Message:     "Your club role was updated to " + role + ".",
		RelatedClub: &clubID,
	})
	respond.Message(w, http.StatusOK, "member role updated")
}

// HandleRemoveMember drops a member. President cannot be removed this way.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	clubID, ok := h.pathID(w, r, "clubID")
	if !ok {
		return
	}
	memberID, ok := h.pathID(w, r, "userID")
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
	// Members may leave on their own; removing anyone else needs the
	// manage capability.
	if memberID != uid && !cap.CanManageMembers {
		respond.Error(w, h.Log, apperr.Forbidden("core member or officer role required"))
		return
	}

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if club.President.UserID == memberID {
		respond.Error(w, h.Log, apperr.InvalidState("the president cannot be removed from the club"))
		return
	}

	if err := h.Clubs.RemoveMember(ctx, clubID, memberID); err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	respond.Message(w, http.StatusOK, "member removed")
}

// HandleMembers lists the confirmed member entries.
func (h *Handler) HandleMembers(w http.ResponseWriter, r *http.Request) {
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
	respond.JSON(w, http.StatusOK, map[string]any{"members": club.Members})
}
