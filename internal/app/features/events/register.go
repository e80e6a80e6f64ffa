// internal/app/features/events/register.go
package events

import (
	"context"
	"errors"
	"net/http"

	ticketstore "github.com/dalemusser/campushub/internal/app/store/tickets"
	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleRegister registers the signed-in user for a free event: a paid
// ticket record, participant entry, registration reference, activity
// points, and a confirmation email in one request.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if ev.Registration.IsPaid {
		respond.Error(w, h.Log, apperr.InvalidState("this is a paid event; use checkout"))
		return
	}

	ticket, err := h.Tickets.Create(ctx, uid, eventID, true)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if err := h.Events.AddParticipant(ctx, eventID, ticket.ID); err != nil {
		// Roll the ticket back so the user can retry once space frees up.
		if derr := h.Tickets.Delete(ctx, ticket.ID); derr != nil {
			h.Log.Warn("ticket rollback failed",
				zap.String("ticket_id", ticket.ID.Hex()), zap.Error(derr))
		}
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	h.fulfilRegistration(ctx, ev, ticket, uid, ranking.PointsEventRegister)
	respond.JSON(w, http.StatusCreated, ticket)
}

// HandleCheckout opens a Stripe Checkout session for a paid event. The
// unpaid ticket is created up front so the (user, event) uniqueness holds
// across retried checkouts; an abandoned session just leaves it unpaid.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if !ev.Registration.IsPaid {
		respond.Error(w, h.Log, apperr.InvalidState("this event is free; use register"))
		return
	}

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ticket, err := h.Tickets.Create(ctx, uid, eventID, false)
	if err != nil {
		if !errors.Is(err, ticketstore.ErrAlreadyRegistered) {
			respond.Error(w, h.Log, storeErr(err))
			return
		}
		// Reuse the unpaid ticket from an earlier abandoned checkout.
		ticket, err = h.Tickets.GetByUserEvent(ctx, uid, eventID)
		if err != nil {
			respond.Error(w, h.Log, storeErr(err))
			return
		}
		if ticket.HasPaid {
			respond.Error(w, h.Log, apperr.Conflict("you already hold a paid ticket for this event"))
			return
		}
	}

	sessionID, url, err := h.Payments.CreateCheckoutSession(paymentsInput(ev, ticket, user))
	if err != nil {
		respond.Error(w, h.Log, paymentErr(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"session_id":   sessionID,
		"checkout_url": url,
	})
}

type verifyCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// HandleVerifyCheckout confirms a completed Stripe session: marks the
// ticket paid, seats the participant, and awards the paid-ticket points.
// Replaying a session is harmless; only the first confirmation fulfils.
func (h *Handler) HandleVerifyCheckout(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	var req verifyCheckoutRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Payments.RetrieveSession(req.SessionID)
	if err != nil {
		respond.Error(w, h.Log, paymentErr(err))
		return
	}
	if !result.Paid {
		respond.Error(w, h.Log, apperr.InvalidState("payment has not completed for this session"))
		return
	}
	if result.UserID != uid.Hex() {
		respond.Error(w, h.Log, apperr.Forbidden("this checkout session belongs to another user"))
		return
	}

	ticketID, err := primitive.ObjectIDFromHex(result.TicketID)
	if err != nil {
		respond.Error(w, h.Log, apperr.InvalidArgument("checkout session carries no ticket"))
		return
	}
	ticket, err := h.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	first, err := h.Tickets.MarkPaid(ctx, ticketID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if !first {
		respond.JSON(w, http.StatusOK, map[string]any{
			"message": "ticket already confirmed",
			"ticket":  ticket,
		})
		return
	}
	ticket.HasPaid = true

	ev, err := h.Events.GetByID(ctx, ticket.EventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if err := h.Events.AddParticipant(ctx, ev.ID, ticket.ID); err != nil {
		// Seat anyway: payment already cleared, capacity races lose to money.
		h.Log.Warn("participant add after payment failed",
			zap.String("event_id", ev.ID.Hex()), zap.Error(err))
	}

	h.fulfilRegistration(ctx, ev, ticket, uid, ranking.PointsPaidTicket)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "ticket confirmed",
		"ticket":  ticket,
	})
}

type verifyTicketRequest struct {
	Token string `json:"token" validate:"required"`
}

// HandleVerifyTicket checks a ticket token at the door. Requires the
// hosting club's verification capability.
func (h *Handler) HandleVerifyTicket(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req verifyTicketRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	cap, err := clubpolicy.Resolve(ctx, h.DB, ev.CreatedByClub, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !cap.CanVerifyEventTickets {
		respond.Error(w, h.Log, apperr.Forbidden("core member role required"))
		return
	}

	ticket, err := h.Tickets.GetByToken(ctx, req.Token)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}
	if ticket.EventID != eventID {
		respond.Error(w, h.Log, apperr.InvalidArgument("ticket belongs to a different event"))
		return
	}
	if !ticket.HasPaid {
		respond.Error(w, h.Log, apperr.InvalidState("ticket is not paid"))
		return
	}

	holder, err := h.Users.GetByID(ctx, ticket.UserID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"ticket": ticket,
		"holder": map[string]string{
			"id":       holder.ID.Hex(),
			"name":     holder.Name,
			"username": holder.Username,
		},
	})
}

// HandleMyTickets lists the signed-in user's tickets.
func (h *Handler) HandleMyTickets(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.Forbidden("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

// fulfilRegistration runs the shared post-registration side effects:
// user references, activity points, the in-app notification, and the
// ticket email. All best effort past this point.
func (h *Handler) fulfilRegistration(ctx context.Context, ev models.Event, ticket models.Ticket, uid primitive.ObjectID, points int) {
	if err := h.Users.AddEventRef(ctx, uid, ev.ID); err != nil {
		h.Log.Warn("event ref update failed", zap.Error(err))
	}
	if err := h.Rank.Award(ctx, uid, points); err != nil {
		h.Log.Warn("registration points award failed", zap.Error(err))
	}
	h.Notify.Send(ctx, uid, notify.Notification{
		Type:         models.NotificationEvent,
		Message:      "You're registered for " + ev.Name + ".",
		RelatedEvent: &ev.ID,
	})

	if user, err := h.Users.GetByID(ctx, uid); err == nil {
		email := mailer.BuildTicketEmail(mailer.TicketEmailData{
			SiteName:  h.Mail.SiteName(),
			Name:      user.Name,
			EventName: ev.Name,
			EventDate: ev.Date.Format("Mon, 02 Jan 2006 15:04 MST"),
			Venue:     ev.Location.Venue,
			Token:     ticket.Token,
		})
		email.To = user.Email
		h.Mail.Send(email)
	}
}
