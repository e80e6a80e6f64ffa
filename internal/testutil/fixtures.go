// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a verified test user.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Email:            email,
		EmailCI:          text.Fold(email),
		PasswordHash:     "$2a$10$TESTONLYTESTONLYTESTONLYTESTONLYTESTONLYTESTONLYTESTON",
		IsVerified:       true,
		Profile:          models.Profile{Role: models.ProfileRoleStudent},
		Notifications:    []models.Notification{},
		ClubsMember:      []primitive.ObjectID{},
		BlogsAuthored:    []primitive.ObjectID{},
		RegisteredEvents: []primitive.ObjectID{},
		BookmarkedBlogs:  []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUserWithPoints creates a verified test user carrying activity points.
func (f *Fixtures) CreateUserWithPoints(ctx context.Context, name, email string, points int) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, name, email)
	u.Profile.ActivityPoints = points
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		bson.M{"$set": bson.M{"profile.activity_points": points}}); err != nil {
		f.t.Fatalf("failed to set test user points: %v", err)
	}
	return u
}

// CreateAdmin creates a verified user with active admin privileges.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, name, email)
	u.Admin = models.AdminFlags{IsAdmin: true, Role: "admin", Status: true}
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		bson.M{"$set": bson.M{"admin": u.Admin}}); err != nil {
		f.t.Fatalf("failed to grant test admin flags: %v", err)
	}
	return u
}

// CreateClub creates an accepted club with the president seated as its
// first member.
func (f *Fixtures) CreateClub(ctx context.Context, name string, president primitive.ObjectID) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	club := models.Club{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		President:   models.ClubPresident{UserID: president},
		Application: models.ClubApplication{Status: models.ClubStatusAccepted},
		Members: []models.ClubMember{{
			UserID:     president,
			Role:       models.ClubRolePresident,
			CoreMember: true,
			JoinedAt:   now,
		}},
		Applicants:    []models.ClubApplicant{},
		Announcements: []models.Announcement{},
		Queries:       []models.ClubQuery{},
		Blogs:         []primitive.ObjectID{},
		Events:        []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("clubs").InsertOne(ctx, club); err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}
	return club
}

// CreatePendingClub creates a club still awaiting admin review.
func (f *Fixtures) CreatePendingClub(ctx context.Context, name string, president primitive.ObjectID) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	club := models.Club{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		President:     models.ClubPresident{UserID: president},
		Application:   models.ClubApplication{Status: models.ClubStatusPending},
		Members:       []models.ClubMember{},
		Applicants:    []models.ClubApplicant{},
		Announcements: []models.Announcement{},
		Queries:       []models.ClubQuery{},
		Blogs:         []primitive.ObjectID{},
		Events:        []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("clubs").InsertOne(ctx, club); err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}
	return club
}

// AddMember seats a user on the club with the given role.
func (f *Fixtures) AddMember(ctx context.Context, clubID, userID primitive.ObjectID, role string, core bool) {
	f.t.Helper()

	entry := models.ClubMember{
		UserID:     userID,
		Role:       role,
		CoreMember: core,
		JoinedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("clubs").UpdateByID(ctx, clubID,
		bson.M{"$push": bson.M{"members": entry}}); err != nil {
		f.t.Fatalf("failed to add test member: %v", err)
	}
}

// AddApplicant records a pending join request on the club.
func (f *Fixtures) AddApplicant(ctx context.Context, clubID, userID primitive.ObjectID) {
	f.t.Helper()

	entry := models.ClubApplicant{
		UserID:    userID,
		Status:    models.ApplicantPending,
		AppliedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("clubs").UpdateByID(ctx, clubID,
		bson.M{"$push": bson.M{"applicants": entry}}); err != nil {
		f.t.Fatalf("failed to add test applicant: %v", err)
	}
}

// CreateEvent creates an event hosted by the club. price zero makes it
// free; positive makes it paid.
func (f *Fixtures) CreateEvent(ctx context.Context, name string, clubID primitive.ObjectID, price float64) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Date:          now.Add(7 * 24 * time.Hour),
		CreatedByClub: clubID,
		Registration: models.EventRegistration{
			IsPaid: price > 0,
			Price:  price,
		},
		Participants: []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateTicket issues a ticket for the user and event.
func (f *Fixtures) CreateTicket(ctx context.Context, userID, eventID primitive.ObjectID, paid bool) models.Ticket {
	f.t.Helper()

	t := models.Ticket{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		EventID:   eventID,
		Token:     uuid.NewString(),
		HasPaid:   paid,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("tickets").InsertOne(ctx, t); err != nil {
		f.t.Fatalf("failed to create test ticket: %v", err)
	}
	return t
}

// CreateBlog creates a published blog by the author.
func (f *Fixtures) CreateBlog(ctx context.Context, title string, author primitive.ObjectID) models.Blog {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Blog{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Content:     "<p>test content</p>",
		Author:      author,
		Upvotes:     []primitive.ObjectID{},
		Downvotes:   []primitive.ObjectID{},
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("blogs").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test blog: %v", err)
	}
	return b
}
