// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OTPExpiry is how long a signup verification code is valid.
	OTPExpiry = 15 * time.Minute
	// bcryptCost for hashing one-time codes; password hashing uses
	// bcrypt.DefaultCost at the call site.
	bcryptCost = 10
)

var (
	ErrDuplicateEmail    = errors.New("an account with this email already exists")
	ErrDuplicateUsername = errors.New("this username is already taken")
	ErrNotFound          = errors.New("user not found")
	ErrOTPInvalid        = errors.New("invalid verification code")
	ErrOTPExpired        = errors.New("verification code has expired")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the uniqueness indexes the signup flow relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_email_ci").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_username_ci").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"username_ci": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "profile.activity_points", Value: -1}},
			Options: options.Index().SetName("idx_users_points"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new unverified user carrying a hashed OTP. The plain code
// is generated by the caller (who also emails it).
func (s *Store) Create(ctx context.Context, u models.User, otpCode string) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.EmailCI = text.Fold(u.Email)
	if u.Profile.Role == "" {
		u.Profile.Role = models.ProfileRoleStudent
	}
	if u.Notifications == nil {
		u.Notifications = []models.Notification{}
	}
	if u.ClubsMember == nil {
		u.ClubsMember = []primitive.ObjectID{}
	}
	if u.BlogsAuthored == nil {
		u.BlogsAuthored = []primitive.ObjectID{}
	}
	if u.RegisteredEvents == nil {
		u.RegisteredEvents = []primitive.ObjectID{}
	}
	if u.BookmarkedBlogs == nil {
		u.BookmarkedBlogs = []primitive.ObjectID{}
	}
	if otpCode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(otpCode), bcryptCost)
		if err != nil {
			return models.User{}, err
		}
		u.OTPHash = string(hash)
		exp := now.Add(OTPExpiry)
		u.OTPExpires = &exp
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByIdentifier looks a user up by email or username (login accepts both).
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	folded := text.Fold(identifier)
	var u models.User
	err := s.c.FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"email_ci": folded},
			bson.M{"username_ci": folded},
		},
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// VerifyOTP checks the emailed code against the stored hash and, when it
// matches and has not expired, marks the account verified and clears the
// OTP fields.
func (s *Store) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.OTPHash == "" || u.OTPExpires == nil {
		return ErrOTPInvalid
	}
	if time.Now().After(*u.OTPExpires) {
		return ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(u.OTPHash), []byte(code)) != nil {
		return ErrOTPInvalid
	}
	_, err = s.c.UpdateByID(ctx, u.ID, bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"otp_hash": "", "otp_expires": ""},
	})
	return err
}

// ResetOTP stores a fresh hashed code and expiry for an unverified account.
func (s *Store) ResetOTP(ctx context.Context, id primitive.ObjectID, otpCode string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(otpCode), bcryptCost)
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(OTPExpiry)
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"otp_hash": string(hash), "otp_expires": exp, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpiredOTPs clears OTP fields on unverified accounts whose codes have
// lapsed. Run periodically from the task runner.
func (s *Store) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"is_verified": false, "otp_expires": bson.M{"$lt": time.Now().UTC()}},
		bson.M{"$unset": bson.M{"otp_hash": "", "otp_expires": ""}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetUsername assigns the chosen username, failing on collision.
func (s *Store) SetUsername(ctx context.Context, id primitive.ObjectID, username string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"username":    username,
			"username_ci": text.Fold(username),
			"updated_at":  time.Now().UTC(),
		},
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernameAvailable reports whether no user holds the (folded) username.
func (s *Store) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"username_ci": text.Fold(username)})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// StudentIDAvailable reports whether no profile claims the student ID.
func (s *Store) StudentIDAvailable(ctx context.Context, studentID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"profile.student_id": studentID})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// ProfileUpdate carries the mutable profile fields; nil pointers are left
// untouched, matching the original's merge semantics.
type ProfileUpdate struct {
	Name           *string
	Bio            *string
	StudentID      *string
	Department     *string
	GraduationYear *string
	Interests      []string
	LinkedIn       *string
	Role           *string

	PictureURL         *string
	ResumeURL          *string
	ResumeOriginalName *string
	IDCardURL          *string
	IDCardOriginalName *string
}

// UpdateProfile applies the non-nil fields of upd.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Bio != nil {
		set["profile.bio"] = *upd.Bio
	}
	if upd.StudentID != nil {
		set["profile.student_id"] = *upd.StudentID
	}
	if upd.Department != nil {
		set["profile.department"] = *upd.Department
	}
	if upd.GraduationYear != nil {
		set["profile.graduation_year"] = *upd.GraduationYear
	}
	if upd.Interests != nil {
		set["profile.interests"] = upd.Interests
	}
	if upd.LinkedIn != nil {
		set["profile.linkedin"] = *upd.LinkedIn
	}
	if upd.Role != nil {
		set["profile.role"] = *upd.Role
	}
	if upd.PictureURL != nil {
		set["profile.picture"] = *upd.PictureURL
	}
	if upd.ResumeURL != nil {
		set["profile.resume_url"] = *upd.ResumeURL
	}
	if upd.ResumeOriginalName != nil {
		set["profile.resume_original_name"] = *upd.ResumeOriginalName
	}
	if upd.IDCardURL != nil {
		set["profile.idcard_url"] = *upd.IDCardURL
	}
	if upd.IDCardOriginalName != nil {
		set["profile.idcard_original_name"] = *upd.IDCardOriginalName
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account. References held by clubs, tickets, and blogs
// are not cascaded; readers tolerate dangling IDs.
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

// List returns all users. Admin overview only; the collection is
// campus-sized.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
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

// AddClubRef idempotently records club membership on the user side.
func (s *Store) AddClubRef(ctx context.Context, userID, clubID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"clubs_member": clubID}})
	return err
}

// AddBlogRef records an authored blog.
func (s *Store) AddBlogRef(ctx context.Context, userID, blogID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"blogs_authored": blogID}})
	return err
}

// RemoveBlogRef drops an authored blog reference.
func (s *Store) RemoveBlogRef(ctx context.Context, userID, blogID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"blogs_authored": blogID}})
	return err
}

// AddEventRef idempotently records an event registration.
func (s *Store) AddEventRef(ctx context.Context, userID, eventID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"registered_events": eventID}})
	return err
}

// SetAdminFlags grants or revokes site-admin privileges.
func (s *Store) SetAdminFlags(ctx context.Context, id primitive.ObjectID, isAdmin bool, role string, status bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"admin.is_admin": isAdmin,
		"admin.role":     role,
		"admin.status":   status,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchAdminActive stamps the admin last-active time.
func (s *Store) TouchAdminActive(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"admin.last_active": time.Now().UTC()}})
	return err
}
