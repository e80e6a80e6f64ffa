package events_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/campushub/internal/app/features/events"
	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	ticketstore "github.com/dalemusser/campushub/internal/app/store/tickets"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/app/system/payments"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/testutil"
)

func newTestHandler(t *testing.T) (*events.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	users := userstore.New(db)
	tickets := ticketstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := tickets.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	h := &events.Handler{
		Events:   eventstore.New(db),
		Tickets:  tickets,
		Clubs:    clubstore.New(db),
		Users:    users,
		DB:       db,
		Rank:     ranking.New(users, nil, logger),
		Notify:   notify.New(users, logger),
		Mail:     mailer.New("", "CampusHub", "noreply@example.com", logger),
		Payments: payments.New("", "", ""), // unconfigured
		Log:      logger,
	}
	return h, testutil.NewFixtures(t, db)
}

func registerRequest(t *testing.T, eventID primitive.ObjectID) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", fmt.Sprintf("/events/%s/register", eventID.Hex()), nil)
	return testutil.WithChiURLParam(req, "eventID", eventID.Hex())
}

func TestHandleRegister_FreeEvent(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Open Mic", club.ID, 0)
	user := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	req := testutil.WithUser(registerRequest(t, ev.ID), user)
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	// The ticket is issued already paid (free events owe nothing).
	ticket, err := h.Tickets.GetByUserEvent(ctx, user.ID, ev.ID)
	if err != nil {
		t.Fatalf("GetByUserEvent failed: %v", err)
	}
	if !ticket.HasPaid {
		t.Error("free-event ticket should be marked paid")
	}

	// The ticket reference landed on the event.
	got, err := h.Events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Participants) != 1 || got.Participants[0] != ticket.ID {
		t.Errorf("participants: %v", got.Participants)
	}

	// Registration awarded the activity points and recorded the event.
	u, err := h.Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Profile.ActivityPoints != ranking.PointsEventRegister {
		t.Errorf("points: got %d, want %d", u.Profile.ActivityPoints, ranking.PointsEventRegister)
	}
	if len(u.RegisteredEvents) != 1 || u.RegisteredEvents[0] != ev.ID {
		t.Errorf("registered events: %v", u.RegisteredEvents)
	}
}

func TestHandleRegister_Twice(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Open Mic", club.ID, 0)
	user := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.WithUser(registerRequest(t, ev.ID), user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.WithUser(registerRequest(t, ev.ID), user))
	if rec.Code != http.StatusConflict {
		t.Errorf("second register: got %d, want 409", rec.Code)
	}
}

func TestHandleRegister_PaidEvent(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Gala Night", club.ID, 250)
	user := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.WithUser(registerRequest(t, ev.ID), user))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_state") {
		t.Errorf("expected invalid_state kind, got %s", rec.Body.String())
	}
	// No ticket slipped through.
	if _, err := h.Tickets.GetByUserEvent(ctx, user.ID, ev.ID); err == nil {
		t.Error("paid event register created a ticket")
	}
}

func TestHandleRegister_FullEvent(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Tiny Workshop", club.ID, 0)
	if _, err := fixtures.DB().Collection("events").UpdateByID(ctx, ev.ID,
		bson.M{"$set": bson.M{"max_participants": 1}}); err != nil {
		t.Fatalf("failed to cap the event: %v", err)
	}

	first := fixtures.CreateUser(ctx, "First", "first@example.com")
	second := fixtures.CreateUser(ctx, "Second", "second@example.com")

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.WithUser(registerRequest(t, ev.ID), first))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleRegister(rec, testutil.WithUser(registerRequest(t, ev.ID), second))
	if rec.Code != http.StatusConflict {
		t.Errorf("over-capacity register: got %d, want 409", rec.Code)
	}

	// The rejected registration rolled its ticket back, so retrying after
	// space frees up is possible.
	if _, err := h.Tickets.GetByUserEvent(ctx, second.ID, ev.ID); err == nil {
		t.Error("rolled-back ticket still present")
	}
}

func TestHandleCheckout_Unconfigured(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Gala Night", club.ID, 250)
	user := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	req := httptest.NewRequest("POST", fmt.Sprintf("/events/%s/checkout", ev.ID.Hex()), nil)
	req = testutil.WithUser(testutil.WithChiURLParam(req, "eventID", ev.ID.Hex()), user)
	rec := httptest.NewRecorder()
	h.HandleCheckout(rec, req)

	// Without a Stripe key the checkout reports the misconfiguration
	// instead of silently issuing free tickets.
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409 (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleVerifyTicket_RequiresCoreMember(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Host Club", primitive.NewObjectID())
	ev := fixtures.CreateEvent(ctx, "Gala Night", club.ID, 250)
	holder := fixtures.CreateUser(ctx, "Holder", "holder@example.com")
	ticket := fixtures.CreateTicket(ctx, holder.ID, ev.ID, true)
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	body := fmt.Sprintf(`{"token":%q}`, ticket.Token)
	req := httptest.NewRequest("POST", fmt.Sprintf("/events/%s/verify-ticket", ev.ID.Hex()), strings.NewReader(body))
	req = testutil.WithUser(testutil.WithChiURLParam(req, "eventID", ev.ID.Hex()), outsider)
	rec := httptest.NewRecorder()
	h.HandleVerifyTicket(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestHandleVerifyTicket(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	verifier := fixtures.CreateUser(ctx, "Verifier", "verifier@example.com")
	club := fixtures.CreateClub(ctx, "Host Club", verifier.ID)
	ev := fixtures.CreateEvent(ctx, "Gala Night", club.ID, 250)
	holder := fixtures.CreateUser(ctx, "Holder", "holder@example.com")
	ticket := fixtures.CreateTicket(ctx, holder.ID, ev.ID, true)

	body := fmt.Sprintf(`{"token":%q}`, ticket.Token)
	req := httptest.NewRequest("POST", fmt.Sprintf("/events/%s/verify-ticket", ev.ID.Hex()), strings.NewReader(body))
	req = testutil.WithUser(testutil.WithChiURLParam(req, "eventID", ev.ID.Hex()), verifier)
	rec := httptest.NewRecorder()
	h.HandleVerifyTicket(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), holder.Name) {
		t.Error("expected holder name in the verification response")
	}
}

func TestHandleVerifyTicket_UnpaidTicket(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	verifier := fixtures.CreateUser(ctx, "Verifier", "verifier@example.com")
	club := fixtures.CreateClub(ctx, "Host Club", verifier.ID)
	ev := fixtures.CreateEvent(ctx, "Gala Night", club.ID, 250)
	holder := fixtures.CreateUser(ctx, "Holder", "holder@example.com")
	ticket := fixtures.CreateTicket(ctx, holder.ID, ev.ID, false)

	body := fmt.Sprintf(`{"token":%q}`, ticket.Token)
	req := httptest.NewRequest("POST", fmt.Sprintf("/events/%s/verify-ticket", ev.ID.Hex()), strings.NewReader(body))
	req = testutil.WithUser(testutil.WithChiURLParam(req, "eventID", ev.ID.Hex()), verifier)
	rec := httptest.NewRecorder()
	h.HandleVerifyTicket(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_state") {
		t.Errorf("expected invalid_state kind, got %s", rec.Body.String())
	}
}
