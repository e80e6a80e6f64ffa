// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateName  = errors.New("a club with this name already exists")
	ErrNotFound       = errors.New("club not found")
	ErrAlreadyMember  = errors.New("user is already a member of this club")
	ErrAlreadyApplied = errors.New("user has already applied to this club")
	ErrNotApplicant   = errors.New("user has no pending application to this club")
	ErrNotMember      = errors.New("user is not a member of this club")
	ErrNotAccepted    = errors.New("club application has not been accepted")
	ErrQueryNotOpen   = errors.New("query is not open for a response")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clubs")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_clubs_name_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "members.user_id", Value: 1}},
			Options: options.Index().SetName("idx_clubs_member_user"),
		},
		{
			Keys:    bson.D{{Key: "application.status", Value: 1}},
			Options: options.Index().SetName("idx_clubs_app_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new club in the pending review state. The proposer is
// recorded as president but joins the member list only on acceptance.
func (s *Store) Create(ctx context.Context, club models.Club) (models.Club, error) {
	now := time.Now().UTC()
	club.ID = primitive.NewObjectID()
	club.NameCI = text.Fold(club.Name)
	club.Application = models.ClubApplication{Status: models.ClubStatusPending}
	if club.Members == nil {
		club.Members = []models.ClubMember{}
	}
	if club.Applicants == nil {
		club.Applicants = []models.ClubApplicant{}
	}
	if club.Announcements == nil {
		club.Announcements = []models.Announcement{}
	}
	if club.Queries == nil {
		club.Queries = []models.ClubQuery{}
	}
	if club.Blogs == nil {
		club.Blogs = []primitive.ObjectID{}
	}
	if club.Events == nil {
		club.Events = []primitive.ObjectID{}
	}
	club.CreatedAt = now
	club.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, club); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Club{}, ErrDuplicateName
		}
		return models.Club{}, err
	}
	return club, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Club, error) {
	var club models.Club
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&club)
	if err == mongo.ErrNoDocuments {
		return models.Club{}, ErrNotFound
	}
	if err != nil {
		return models.Club{}, err
	}
	return club, nil
}

// ListAccepted returns the clubs visible to regular users.
func (s *Store) ListAccepted(ctx context.Context) ([]models.Club, error) {
	return s.list(ctx, bson.M{"application.status": models.ClubStatusAccepted})
}

// ListAll returns every club regardless of review state. Admin use.
func (s *Store) ListAll(ctx context.Context) ([]models.Club, error) {
	return s.list(ctx, bson.M{})
}

// ListPendingReview returns clubs awaiting an admin decision.
func (s *Store) ListPendingReview(ctx context.Context) ([]models.Club, error) {
	return s.list(ctx, bson.M{"application.status": bson.M{
		"$in": bson.A{models.ClubStatusPending, models.ClubStatusReview},
	}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Club, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var clubs []models.Club
	if err := cur.All(ctx, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// MemberClubs returns the accepted clubs the user belongs to.
func (s *Store) MemberClubs(ctx context.Context, userID primitive.ObjectID) ([]models.Club, error) {
	return s.list(ctx, bson.M{
		"application.status": models.ClubStatusAccepted,
		"members.user_id":    userID,
	})
}

// SetApplicationStatus records the admin decision on the club's own
// application. Accepting seeds the proposing president as the first member;
// the $ne guard keeps a repeated accept from duplicating the entry.
func (s *Store) SetApplicationStatus(ctx context.Context, clubID primitive.ObjectID, status, adminMessage string) (models.Club, error) {
	switch status {
	case models.ClubStatusPending, models.ClubStatusReview,
		models.ClubStatusAccepted, models.ClubStatusRejected:
	default:
		return models.Club{}, errors.New("unknown application status: " + status)
	}

	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return models.Club{}, err
	}

	update := bson.M{"$set": bson.M{
		"application.status":        status,
		"application.admin_message": adminMessage,
		"updated_at":                time.Now().UTC(),
	}}
	filter := bson.M{"_id": clubID}
	if status == models.ClubStatusAccepted {
		filter["members.user_id"] = bson.M{"$ne": club.President.UserID}
		update["$push"] = bson.M{"members": models.ClubMember{
			UserID:     club.President.UserID,
			Role:       models.ClubRolePresident,
			CoreMember: true,
			JoinedAt:   time.Now().UTC(),
		}}
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.Club{}, err
	}
	if res.MatchedCount == 0 && status == models.ClubStatusAccepted {
		// President already seeded; just set the status fields.
		_, err = s.c.UpdateByID(ctx, clubID, bson.M{"$set": bson.M{
			"application.status":        status,
			"application.admin_message": adminMessage,
			"updated_at":                time.Now().UTC(),
		}})
		if err != nil {
			return models.Club{}, err
		}
	}
	return s.GetByID(ctx, clubID)
}

// Apply records a pending join request. A user already on the member list
// or the applicant list cannot apply; the guards live in the update filter
// so two racing applies cannot both land.
func (s *Store) Apply(ctx context.Context, clubID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":                clubID,
			"application.status": models.ClubStatusAccepted,
			"members.user_id":    bson.M{"$ne": userID},
			"applicants.user_id": bson.M{"$ne": userID},
		},
		bson.M{
			"$push": bson.M{"applicants": models.ClubApplicant{
				UserID:    userID,
				Status:    models.ApplicantPending,
				AppliedAt: time.Now().UTC(),
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.classifyApplyFailure(ctx, clubID, userID)
	}
	return nil
}

func (s *Store) classifyApplyFailure(ctx context.Context, clubID, userID primitive.ObjectID) error {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if club.Application.Status != models.ClubStatusAccepted {
		return ErrNotAccepted
	}
	for _, m := range club.Members {
		if m.UserID == userID {
			return ErrAlreadyMember
		}
	}
	for _, a := range club.Applicants {
		if a.UserID == userID {
			return ErrAlreadyApplied
		}
	}
	return ErrNotFound
}

// WithdrawApplication removes the user's pending application.
func (s *Store) WithdrawApplication(ctx context.Context, clubID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clubID, "applicants.user_id": userID},
		bson.M{
			"$pull": bson.M{"applicants": bson.M{"user_id": userID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, gerr := s.GetByID(ctx, clubID); gerr != nil {
			return gerr
		}
		return ErrNotApplicant
	}
	return nil
}

// AcceptApplicant moves a pending applicant onto the member list in a single
// document update, so the move is atomic and cannot double-apply.
func (s *Store) AcceptApplicant(ctx context.Context, clubID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": clubID,
			"applicants": bson.M{"$elemMatch": bson.M{
				"user_id": userID,
				"status":  models.ApplicantPending,
			}},
		},
		bson.M{
			"$pull": bson.M{"applicants": bson.M{"user_id": userID}},
			"$push": bson.M{"members": models.ClubMember{
				UserID:     userID,
				Role:       models.ClubRoleMember,
				CoreMember: false,
				JoinedAt:   time.Now().UTC(),
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		club, gerr := s.GetByID(ctx, clubID)
		if gerr != nil {
			return gerr
		}
		// Distinguish a repeated accept (the user is already seated) from a
		// user who never applied.
		for _, m := range club.Members {
			if m.UserID == userID {
				return ErrAlreadyMember
			}
		}
		return ErrNotApplicant
	}
	return nil
}

// RejectApplicant drops a pending applicant without seating them.
func (s *Store) RejectApplicant(ctx context.Context, clubID, userID primitive.ObjectID) error {
	return s.WithdrawApplication(ctx, clubID, userID)
}

// SetMemberRole changes a member's role and core flag.
func (s *Store) SetMemberRole(ctx context.Context, clubID, userID primitive.ObjectID, role string, core bool) error {
	role = strings.ToLower(role)
	if !models.ValidClubRole(role) {
		return errors.New("unknown club role: " + role)
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clubID, "members.user_id": userID},
		bson.M{"$set": bson.M{
			"members.$.role":        role,
			"members.$.core_member": core,
			"updated_at":            time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, gerr := s.GetByID(ctx, clubID); gerr != nil {
			return gerr
		}
		return ErrNotMember
	}
	return nil
}

// RemoveMember drops a member from the club.
func (s *Store) RemoveMember(ctx context.Context, clubID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clubID, "members.user_id": userID},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user_id": userID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, gerr := s.GetByID(ctx, clubID); gerr != nil {
			return gerr
		}
		return ErrNotMember
	}
	return nil
}

// AddMemberPoints bumps a member's within-club contribution points.
func (s *Store) AddMemberPoints(ctx context.Context, clubID, userID primitive.ObjectID, delta int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clubID, "members.user_id": userID},
		bson.M{"$inc": bson.M{"members.$.individual_points": delta}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotMember
	}
	return nil
}

// AddAnnouncement appends an announcement and returns it with its ID set.
func (s *Store) AddAnnouncement(ctx context.Context, clubID primitive.ObjectID, a models.Announcement) (models.Announcement, error) {
	a.ID = primitive.NewObjectID()
	a.PostedAt = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, clubID, bson.M{
		"$push": bson.M{"announcements": bson.M{"$each": bson.A{a}, "$position": 0}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.Announcement{}, err
	}
	if res.MatchedCount == 0 {
		return models.Announcement{}, ErrNotFound
	}
	return a, nil
}

// AddQuery appends a member question in the pending state.
func (s *Store) AddQuery(ctx context.Context, clubID primitive.ObjectID, q models.ClubQuery) (models.ClubQuery, error) {
	q.ID = primitive.NewObjectID()
	q.Status = models.QueryPending
	q.Response = nil
	q.AskedAt = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, clubID, bson.M{
		"$push": bson.M{"queries": q},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.ClubQuery{}, err
	}
	if res.MatchedCount == 0 {
		return models.ClubQuery{}, ErrNotFound
	}
	return q, nil
}

// AnswerQuery records the single response on a pending query and marks it
// answered. A query that already has a response stays untouched.
func (s *Store) AnswerQuery(ctx context.Context, clubID, queryID, responder primitive.ObjectID, message string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": clubID,
			"queries": bson.M{"$elemMatch": bson.M{
				"_id":    queryID,
				"status": models.QueryPending,
			}},
		},
		bson.M{"$set": bson.M{
			"queries.$.status": models.QueryAnswered,
			"queries.$.response": models.QueryResponse{
				Responder:   responder,
				Message:     message,
				RespondedAt: time.Now().UTC(),
			},
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, gerr := s.GetByID(ctx, clubID); gerr != nil {
			return gerr
		}
		return ErrQueryNotOpen
	}
	return nil
}

// CloseQuery marks a query closed without a response.
func (s *Store) CloseQuery(ctx context.Context, clubID, queryID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": clubID, "queries._id": queryID},
		bson.M{"$set": bson.M{"queries.$.status": models.QueryClosed, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBlogRef records a blog published under the club's badge.
func (s *Store) AddBlogRef(ctx context.Context, clubID, blogID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, clubID, bson.M{"$addToSet": bson.M{"blogs": blogID}})
	return err
}

// AddEventRef records an event hosted by the club.
func (s *Store) AddEventRef(ctx context.Context, clubID, eventID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, clubID, bson.M{"$addToSet": bson.M{"events": eventID}})
	return err
}

// UpdateImages sets the club's profile and cover image URLs; empty strings
// leave the current value in place.
func (s *Store) UpdateImages(ctx context.Context, clubID primitive.ObjectID, profileURL, coverURL string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if profileURL != "" {
		set["profile_image"] = profileURL
	}
	if coverURL != "" {
		set["cover_image"] = coverURL
	}
	res, err := s.c.UpdateByID(ctx, clubID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDetails sets the club's editable descriptive fields.
func (s *Store) UpdateDetails(ctx context.Context, clubID primitive.ObjectID, description, category string, tags []string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if description != "" {
		set["description"] = description
	}
	if category != "" {
		set["category"] = category
	}
	if tags != nil {
		set["tags"] = tags
	}
	res, err := s.c.UpdateByID(ctx, clubID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
