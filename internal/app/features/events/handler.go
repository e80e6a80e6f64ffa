// internal/app/features/events/handler.go

// Package events implements event hosting and ticketing: free registration,
// paid checkout through Stripe, ticket verification at the door, and
// calendar export.
package events

import (
	"errors"
	"net/http"

	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	ticketstore "github.com/dalemusser/campushub/internal/app/store/tickets"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apperr"
	sysauth "github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/payments"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events   *eventstore.Store
	Tickets  *ticketstore.Store
	Clubs    *clubstore.Store
	Users    *userstore.Store
	DB       *mongo.Database
	Rank     *ranking.Engine
	Notify   *notify.Sink
	Mail     *mailer.Mailer
	Payments *payments.Client
	Uploads  uploads.Store
	Log      *zap.Logger
}

// Routes mounts the event endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{eventID}", h.HandleGet)
	r.Get("/{eventID}/calendar.ics", h.HandleCalendar)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Put("/{eventID}", h.HandleUpdate)
		pr.Delete("/{eventID}", h.HandleDelete)
		pr.Post("/{eventID}/banner", h.HandleUploadBanner)

		pr.Get("/mine", h.HandleMyTickets)
		pr.Post("/{eventID}/register", h.HandleRegister)
		pr.Post("/{eventID}/checkout", h.HandleCheckout)
		pr.Post("/checkout/verify", h.HandleVerifyCheckout)
		pr.Post("/{eventID}/verify-ticket", h.HandleVerifyTicket)
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

// storeErr maps event and ticket store sentinels onto the error taxonomy.
func storeErr(err error) error {
	switch {
	case errors.Is(err, eventstore.ErrNotFound),
		errors.Is(err, ticketstore.ErrNotFound):
		return apperr.NotFound(err.Error())
	case errors.Is(err, ticketstore.ErrAlreadyRegistered):
		return apperr.Conflict(err.Error())
	case errors.Is(err, eventstore.ErrEventFull),
		errors.Is(err, eventstore.ErrDeadlinePassed),
		errors.Is(err, eventstore.ErrClosed):
		return apperr.InvalidState(err.Error())
	}
	return err
}
