// internal/app/store/blogs/blogstore.go
package blogstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("blog not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("blogs")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author", Value: 1}},
			Options: options.Index().SetName("idx_blogs_author"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_blogs_tags"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_blogs_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, b models.Blog) (models.Blog, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	if b.Upvotes == nil {
		b.Upvotes = []primitive.ObjectID{}
	}
	if b.Downvotes == nil {
		b.Downvotes = []primitive.ObjectID{}
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Blog{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Blog, error) {
	var b models.Blog
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Blog{}, ErrNotFound
	}
	if err != nil {
		return models.Blog{}, err
	}
	return b, nil
}

// ListPublished returns published, non-draft blogs, newest first. tag
// filters when non-empty.
func (s *Store) ListPublished(ctx context.Context, tag string) ([]models.Blog, error) {
	filter := bson.M{"is_published": true, "is_draft": false}
	if tag != "" {
		filter["tags"] = tag
	}
	return s.list(ctx, filter)
}

// ListPublishedByClub returns published posts carrying the club's badge.
func (s *Store) ListPublishedByClub(ctx context.Context, clubID primitive.ObjectID) ([]models.Blog, error) {
	return s.list(ctx, bson.M{"is_published": true, "is_draft": false, "club_badge": clubID})
}

// ListPublishedByAuthor returns a user's published posts only; drafts stay
// private to the author.
func (s *Store) ListPublishedByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Blog, error) {
	return s.list(ctx, bson.M{"is_published": true, "is_draft": false, "author": author})
}

// ListByAuthor returns everything a user has written, drafts included.
func (s *Store) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Blog, error) {
	return s.list(ctx, bson.M{"author": author})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Blog, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var blogs []models.Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// Update applies editable fields.
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

// Publish flips a draft live.
func (s *Store) Publish(ctx context.Context, id primitive.ObjectID) error {
	return s.Update(ctx, id, bson.M{"is_draft": false, "is_published": true})
}

// Upvote records the user's upvote and withdraws any downvote, so one user
// holds at most one vote. Repeated upvotes are absorbed by $addToSet.
func (s *Store) Upvote(ctx context.Context, blogID, userID primitive.ObjectID) error {
	return s.vote(ctx, blogID, userID, "upvotes", "downvotes")
}

// Downvote mirrors Upvote.
func (s *Store) Downvote(ctx context.Context, blogID, userID primitive.ObjectID) error {
	return s.vote(ctx, blogID, userID, "downvotes", "upvotes")
}

func (s *Store) vote(ctx context.Context, blogID, userID primitive.ObjectID, add, remove string) error {
	res, err := s.c.UpdateByID(ctx, blogID, bson.M{
		"$addToSet": bson.M{add: userID},
		"$pull":     bson.M{remove: userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Unvote withdraws any vote the user holds.
func (s *Store) Unvote(ctx context.Context, blogID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, blogID, bson.M{
		"$pull": bson.M{"upvotes": userID, "downvotes": userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter. Best effort; a miss is not an
// error worth failing a read over.
func (s *Store) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"view_count": 1}})
	return err
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
