package eventstore_test

import (
	"errors"
	"testing"
	"time"

	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, err := store.Create(ctx, models.Event{
		Name:          "Hack Night",
		Date:          time.Now().UTC().Add(48 * time.Hour),
		CreatedByClub: primitive.NewObjectID(),
		Registration:  models.EventRegistration{IsPaid: false},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ev.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if ev.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if ev.Participants == nil {
		t.Error("expected Participants to be initialized")
	}
}

func TestStore_AddParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, err := store.Create(ctx, models.Event{
		Name:          "Workshop",
		Date:          time.Now().UTC().Add(48 * time.Hour),
		CreatedByClub: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ticket := primitive.NewObjectID()
	if err := store.AddParticipant(ctx, ev.ID, ticket); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	// $addToSet keeps re-registration idempotent at the document level.
	if err := store.AddParticipant(ctx, ev.ID, ticket); err != nil {
		t.Fatalf("repeated AddParticipant failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Participants) != 1 {
		t.Errorf("participants: got %d, want 1", len(got.Participants))
	}
}

func TestStore_AddParticipant_Capacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, err := store.Create(ctx, models.Event{
		Name:            "Tiny Room",
		Date:            time.Now().UTC().Add(48 * time.Hour),
		CreatedByClub:   primitive.NewObjectID(),
		MaxParticipants: 2,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.AddParticipant(ctx, ev.ID, primitive.NewObjectID()); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := store.AddParticipant(ctx, ev.ID, primitive.NewObjectID()); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := store.AddParticipant(ctx, ev.ID, primitive.NewObjectID()); !errors.Is(err, eventstore.ErrEventFull) {
		t.Errorf("over-capacity AddParticipant: got %v, want ErrEventFull", err)
	}
}

func TestStore_AddParticipant_DeadlinePassed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	past := time.Now().UTC().Add(-time.Hour)
	ev, err := store.Create(ctx, models.Event{
		Name:          "Missed It",
		Date:          time.Now().UTC().Add(48 * time.Hour),
		CreatedByClub: primitive.NewObjectID(),
		Registration:  models.EventRegistration{Deadline: &past},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.AddParticipant(ctx, ev.ID, primitive.NewObjectID())
	if !errors.Is(err, eventstore.ErrDeadlinePassed) {
		t.Errorf("past-deadline AddParticipant: got %v, want ErrDeadlinePassed", err)
	}
}

func TestStore_RemoveParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, err := store.Create(ctx, models.Event{
		Name:          "Refundable",
		Date:          time.Now().UTC().Add(48 * time.Hour),
		CreatedByClub: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ticket := primitive.NewObjectID()
	if err := store.AddParticipant(ctx, ev.ID, ticket); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := store.RemoveParticipant(ctx, ev.ID, ticket); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Participants) != 0 {
		t.Errorf("participants after removal: got %d, want 0", len(got.Participants))
	}
}

func TestStore_ListByClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clubID := primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Event{
		Name: "Later", Date: time.Now().UTC().Add(72 * time.Hour), CreatedByClub: clubID,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Event{
		Name: "Sooner", Date: time.Now().UTC().Add(24 * time.Hour), CreatedByClub: clubID,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Event{
		Name: "Elsewhere", Date: time.Now().UTC().Add(24 * time.Hour), CreatedByClub: primitive.NewObjectID(),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	events, err := store.ListByClub(ctx, clubID)
	if err != nil {
		t.Fatalf("ListByClub failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	// Sorted by date ascending.
	if events[0].Name != "Sooner" {
		t.Errorf("first event: got %q, want %q", events[0].Name, "Sooner")
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, err := store.Create(ctx, models.Event{
		Name: "Draft Name", Date: time.Now().UTC().Add(24 * time.Hour), CreatedByClub: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, ev.ID, bson.M{"description": "now with details"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "now with details" {
		t.Errorf("description: got %q", got.Description)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), bson.M{"description": "x"}); !errors.Is(err, eventstore.ErrNotFound) {
		t.Errorf("Update of missing event: got %v, want ErrNotFound", err)
	}
}
