// internal/app/store/users/points.go
package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncrementPoints adds delta to the user's activity points.
func (s *Store) IncrementPoints(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"profile.activity_points": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PointsRow is the projection the rank recomputation works over.
type PointsRow struct {
	ID     primitive.ObjectID `bson:"_id"`
	Points int                `bson:"points"`
	Rank   *int               `bson:"rank"`
}

// AllPointTotals returns every user's points and current rank, sorted by
// points descending with _id ascending as the tiebreak, which fixes the
// rank order deterministically.
func (s *Store) AllPointTotals(ctx context.Context) ([]PointsRow, error) {
	opts := options.Find().
		SetProjection(bson.M{"points": "$profile.activity_points", "rank": "$profile.rank"}).
		SetSort(bson.D{{Key: "profile.activity_points", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []PointsRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// WriteRanks persists the given rank assignments in one bulk write.
func (s *Store) WriteRanks(ctx context.Context, ranks map[primitive.ObjectID]int) error {
	if len(ranks) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ranks))
	for id, rank := range ranks {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"profile.rank": rank}}))
	}
	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// TopByPoints returns the leaderboard head, sorted like AllPointTotals.
func (s *Store) TopByPoints(ctx context.Context, limit int) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "profile.activity_points", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{
			"name":     1,
			"username": 1,
			"profile":  1,
		})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PushNotification prepends n to the user's notification list so the newest
// entry always reads first.
func (s *Store) PushNotification(ctx context.Context, userID primitive.ObjectID, n models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"notifications": bson.M{"$each": bson.A{n}, "$position": 0}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkNotificationRead flips one embedded notification to read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "notifications._id": notificationID},
		bson.M{"$set": bson.M{"notifications.$.is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead flips every embedded notification to read.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"notifications.$[].is_read": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Notifications returns the user's embedded notification list, newest first.
func (s *Store) Notifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"notifications": 1})).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Notifications == nil {
		return []models.Notification{}, nil
	}
	return u.Notifications, nil
}
