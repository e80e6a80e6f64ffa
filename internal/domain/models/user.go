// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile roles (the platform-wide role, independent of any club role).
const (
	ProfileRoleStudent   = "student"
	ProfileRoleAlumni    = "alumni"
	ProfileRoleProfessor = "professor"
)

// User represents every account on the platform: students, alumni,
// professors, and site admins.
//
// NOTE:
//   - Club membership details (role, coreMember) live on the club document;
//     ClubsMember holds only references for the "my clubs" listing.
//   - Notifications are embedded, newest first (see Notification).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	UsernameCI string             `bson:"username_ci,omitempty" json:"-"`

	PasswordHash string `bson:"password_hash" json:"-"`

	// Signup verification state. OTPHash is a bcrypt hash of the emailed
	// code; both fields are cleared once the account is verified.
	IsVerified bool       `bson:"is_verified" json:"is_verified"`
	OTPHash    string     `bson:"otp_hash,omitempty" json:"-"`
	OTPExpires *time.Time `bson:"otp_expires,omitempty" json:"-"`

	Profile Profile    `bson:"profile" json:"profile"`
	Admin   AdminFlags `bson:"admin" json:"admin"`

	Notifications []Notification `bson:"notifications" json:"notifications"`

	ClubsMember      []primitive.ObjectID `bson:"clubs_member" json:"clubs_member"`
	BlogsAuthored    []primitive.ObjectID `bson:"blogs_authored" json:"blogs_authored"`
	RegisteredEvents []primitive.ObjectID `bson:"registered_events" json:"registered_events"`
	BookmarkedBlogs  []primitive.ObjectID `bson:"bookmarked_blogs" json:"bookmarked_blogs"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile holds the user-editable profile and the activity-points state.
// Rank is nil until the first recomputation has run.
type Profile struct {
	Role           string   `bson:"role" json:"role"` // student | alumni | professor
	Picture        string   `bson:"picture,omitempty" json:"picture,omitempty"`
	Bio            string   `bson:"bio,omitempty" json:"bio,omitempty"`
	StudentID      string   `bson:"student_id,omitempty" json:"student_id,omitempty"`
	Department     string   `bson:"department,omitempty" json:"department,omitempty"`
	GraduationYear string   `bson:"graduation_year,omitempty" json:"graduation_year,omitempty"`
	Interests      []string `bson:"interests,omitempty" json:"interests,omitempty"`
	LinkedIn       string   `bson:"linkedin,omitempty" json:"linkedin,omitempty"`

	IDCardURL          string `bson:"idcard_url,omitempty" json:"idcard_url,omitempty"`
	IDCardOriginalName string `bson:"idcard_original_name,omitempty" json:"idcard_original_name,omitempty"`
	ResumeURL          string `bson:"resume_url,omitempty" json:"resume_url,omitempty"`
	ResumeOriginalName string `bson:"resume_original_name,omitempty" json:"resume_original_name,omitempty"`

	ActivityPoints int  `bson:"activity_points" json:"activity_points"`
	Rank           *int `bson:"rank,omitempty" json:"rank,omitempty"`
}

// AdminFlags marks site administrators. Status must also be true for the
// admin privileges to be active.
type AdminFlags struct {
	IsAdmin    bool       `bson:"is_admin" json:"is_admin"`
	Role       string     `bson:"role,omitempty" json:"role,omitempty"` // super_admin | admin | moderator
	Status     bool       `bson:"status" json:"status"`
	LastActive *time.Time `bson:"last_active,omitempty" json:"last_active,omitempty"`
}

// Active reports whether the account carries usable admin privileges.
func (a AdminFlags) Active() bool {
	return a.IsAdmin && a.Status
}
