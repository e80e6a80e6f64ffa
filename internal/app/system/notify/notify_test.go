package notify_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/notify"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
)

func TestSink_Send(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	sink := notify.New(users, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha", "asha@example.com")
	clubID := primitive.NewObjectID()

	sink.Send(ctx, u.ID, notify.Notification{
		Type:        models.NotificationClub,
		Message:     "your application was accepted",
		RelatedClub: &clubID,
	})

	list, err := users.Notifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one notification, got %d", len(list))
	}
	n := list[0]
	if n.Type != models.NotificationClub {
		t.Errorf("type: got %q, want club", n.Type)
	}
	if n.RelatedClub == nil || *n.RelatedClub != clubID {
		t.Error("expected related club reference")
	}
	if n.IsRead {
		t.Error("new notifications start unread")
	}
}

func TestSink_Send_UnknownTypeDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	sink := notify.New(users, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	sink.Send(ctx, u.ID, notify.Notification{Type: "carrier-pigeon", Message: "coo"})

	list, err := users.Notifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("unknown-type notification was stored: %+v", list)
	}
}

func TestSink_Send_UnknownUserSwallowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	sink := notify.New(users, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Must not panic or surface an error to the caller.
	sink.Send(ctx, primitive.NewObjectID(), notify.Notification{
		Type:    models.NotificationSystem,
		Message: "hello, nobody",
	})
}

func TestSink_Broadcast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	sink := notify.New(users, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", "a@example.com")
	b := fixtures.CreateUser(ctx, "B", "b@example.com")

	// A missing recipient in the middle must not stop the rest.
	sink.Broadcast(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID(), b.ID}, notify.Notification{
		Type:    models.NotificationAdmin,
		Message: "maintenance window tonight",
	})

	for _, u := range []primitive.ObjectID{a.ID, b.ID} {
		list, err := users.Notifications(ctx, u)
		if err != nil {
			t.Fatalf("Notifications failed: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("user %s: expected one notification, got %d", u.Hex(), len(list))
		}
	}
}
