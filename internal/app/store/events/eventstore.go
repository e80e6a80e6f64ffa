// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("event not found")
	ErrEventFull      = errors.New("event has reached its participant limit")
	ErrClosed         = errors.New("registration for this event has closed")
	ErrDeadlinePassed = errors.New("registration deadline has passed")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_events_date"),
		},
		{
			Keys:    bson.D{{Key: "created_by_club", Value: 1}},
			Options: options.Index().SetName("idx_events_club"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.NameCI = text.Fold(ev.Name)
	if ev.Participants == nil {
		ev.Participants = []primitive.ObjectID{}
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// List returns all events, soonest first.
func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	return s.list(ctx, bson.M{})
}

// ListUpcoming returns events whose date has not passed.
func (s *Store) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	return s.list(ctx, bson.M{"date": bson.M{"$gte": time.Now().UTC()}})
}

// ListByClub returns a club's events.
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.Event, error) {
	return s.list(ctx, bson.M{"created_by_club": clubID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// AddParticipant appends a ticket reference, enforcing the registration
// window and capacity in the update filter so a full event cannot oversell
// under concurrent registrations.
func (s *Store) AddParticipant(ctx context.Context, eventID, ticketID primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"_id": eventID,
		"$or": bson.A{
			bson.M{"registration.deadline": bson.M{"$exists": false}},
			bson.M{"registration.deadline": nil},
			bson.M{"registration.deadline": bson.M{"$gte": now}},
		},
	}
	// Capacity guard: either unlimited or the list is still short.
	filter["$and"] = bson.A{bson.M{"$or": bson.A{
		bson.M{"max_participants": bson.M{"$in": bson.A{nil, 0}}},
		bson.M{"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": "$participants"},
			"$max_participants",
		}}},
	}}}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$addToSet": bson.M{"participants": ticketID},
		"$set":      bson.M{"updated_at": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyRegisterFailure(ctx, eventID)
	}
	return nil
}

func (s *Store) classifyRegisterFailure(ctx context.Context, eventID primitive.ObjectID) error {
	ev, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.Registration.Deadline != nil && time.Now().After(*ev.Registration.Deadline) {
		return ErrDeadlinePassed
	}
	if ev.MaxParticipants > 0 && len(ev.Participants) >= ev.MaxParticipants {
		return ErrEventFull
	}
	return ErrClosed
}

// RemoveParticipant drops a ticket reference (refund or cancellation).
func (s *Store) RemoveParticipant(ctx context.Context, eventID, ticketID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, eventID, bson.M{
		"$pull": bson.M{"participants": ticketID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// Update applies editable event fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
