// internal/app/store/tickets/ticketstore.go
package ticketstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrAlreadyRegistered = errors.New("user already holds a ticket for this event")
	ErrNotFound          = errors.New("ticket not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tickets")}
}

// EnsureIndexes enforces one ticket per (user, event) and unique tokens.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
			Options: options.Index().SetName("idx_tickets_user_event").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_tickets_token").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a ticket with a fresh opaque token. hasPaid is true for
// free events and false until checkout completes for paid ones.
func (s *Store) Create(ctx context.Context, userID, eventID primitive.ObjectID, hasPaid bool) (models.Ticket, error) {
	t := models.Ticket{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		EventID:   eventID,
		Token:     uuid.NewString(),
		HasPaid:   hasPaid,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Ticket{}, ErrAlreadyRegistered
		}
		return models.Ticket{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Ticket, error) {
	return s.getOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByToken(ctx context.Context, token string) (models.Ticket, error) {
	return s.getOne(ctx, bson.M{"token": token})
}

func (s *Store) GetByUserEvent(ctx context.Context, userID, eventID primitive.ObjectID) (models.Ticket, error) {
	return s.getOne(ctx, bson.M{"user_id": userID, "event_id": eventID})
}

func (s *Store) getOne(ctx context.Context, filter bson.M) (models.Ticket, error) {
	var t models.Ticket
	err := s.c.FindOne(ctx, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.Ticket{}, ErrNotFound
	}
	if err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

// MarkPaid flips an unpaid ticket to paid. Returns true when this call did
// the flip; false when the ticket was already paid, so a replayed checkout
// confirmation awards nothing twice.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "has_paid": false},
		bson.M{"$set": bson.M{"has_paid": true}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return false, gerr
		}
		return false, nil
	}
	return true, nil
}

// ListByEvent returns all tickets for an event, oldest first.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Ticket, error) {
	return s.list(ctx, bson.M{"event_id": eventID})
}

// ListByUser returns a user's tickets.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Ticket, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Ticket, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var tickets []models.Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Delete removes a ticket (cancelled registration or abandoned checkout).
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
