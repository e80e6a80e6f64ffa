// internal/domain/models/club.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club member roles. CoreMember is a separate flag: a member may hold the
// plain "member" role and still be a core member.
const (
	ClubRoleMember        = "member"
	ClubRoleCoreMember    = "core-member"
	ClubRoleAmbassador    = "ambassador"
	ClubRoleVicePresident = "vice-president"
	ClubRolePresident     = "president"
	ClubRoleTreasurer     = "treasurer"
)

// ValidClubRole reports whether role names one of the closed role set.
// Comparison is case-insensitive; stored roles are lowercase.
func ValidClubRole(role string) bool {
	switch strings.ToLower(role) {
	case ClubRoleMember, ClubRoleCoreMember, ClubRoleAmbassador,
		ClubRoleVicePresident, ClubRolePresident, ClubRoleTreasurer:
		return true
	}
	return false
}

// Club application review states (the club's own application to exist,
// reviewed by site admins).
const (
	ClubStatusPending  = "pending"
	ClubStatusReview   = "review"
	ClubStatusAccepted = "accepted"
	ClubStatusRejected = "rejected"
)

// Applicant states. Rejected applicants are removed, not kept, so only
// pending and accepted appear on the document.
const (
	ApplicantPending  = "pending"
	ApplicantAccepted = "accepted"
)

// Club is the aggregate root for a student club. Applicants, members,
// announcements, and queries are owned sub-documents: they are only ever
// read or written through the club document, which is what makes the
// applicant-to-member move atomic.
//
// Invariant: a user ID appears in Applicants or Members, never both.
type Club struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	ProfileImage string `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	CoverImage   string `bson:"cover_image,omitempty" json:"cover_image,omitempty"`

	Documents ClubDocuments `bson:"documents" json:"documents"`
	President ClubPresident `bson:"president" json:"president"`

	Application ClubApplication `bson:"application" json:"application"`

	Members    []ClubMember    `bson:"members" json:"members"`
	Applicants []ClubApplicant `bson:"applicants" json:"applicants"`

	Announcements []Announcement `bson:"announcements" json:"announcements"`
	Queries       []ClubQuery    `bson:"queries" json:"queries"`

	Blogs  []primitive.ObjectID `bson:"blogs" json:"blogs"`
	Events []primitive.ObjectID `bson:"events" json:"events"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ClubDocuments holds the URLs of the paperwork submitted with the club
// creation application.
type ClubDocuments struct {
	Certificate  string `bson:"certificate,omitempty" json:"certificate,omitempty"`
	ActivityPlan string `bson:"activity_plan,omitempty" json:"activity_plan,omitempty"`
	Budget       string `bson:"budget,omitempty" json:"budget,omitempty"`
}

// ClubPresident records who proposed the club. The user becomes an actual
// member (role president, core) only once the application is accepted.
type ClubPresident struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Message string             `bson:"message,omitempty" json:"message,omitempty"`
}

// ClubApplication is the admin-review state of the club itself.
type ClubApplication struct {
	Status       string `bson:"status" json:"status"` // pending | review | accepted | rejected
	AdminMessage string `bson:"admin_message,omitempty" json:"admin_message,omitempty"`
}

// ClubMember is a confirmed member entry embedded in the club document.
type ClubMember struct {
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role             string             `bson:"role" json:"role"`
	CoreMember       bool               `bson:"core_member" json:"core_member"`
	IndividualPoints int                `bson:"individual_points" json:"individual_points"`
	JoinedAt         time.Time          `bson:"joined_at" json:"joined_at"`
}

// ClubApplicant is a pending join request embedded in the club document.
type ClubApplicant struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"` // pending | accepted
	AppliedAt time.Time          `bson:"applied_at" json:"applied_at"`
}

// Announcement is an owned child record of its club, keyed by its own ID
// only within the parent document.
type Announcement struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message  string             `bson:"message" json:"message"`
	PostedBy primitive.ObjectID `bson:"posted_by" json:"posted_by"`
	Pinned   bool               `bson:"pinned" json:"pinned"`
	PostedAt time.Time          `bson:"posted_at" json:"posted_at"`
}

// Query states.
const (
	QueryPending  = "pending"
	QueryAnswered = "answered"
	QueryClosed   = "closed"
)

// ClubQuery is a member question with at most one response, embedded in the
// club document.
type ClubQuery struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AskedBy  primitive.ObjectID `bson:"asked_by" json:"asked_by"`
	Question string             `bson:"question" json:"question"`
	Status   string             `bson:"status" json:"status"` // pending | answered | closed
	Response *QueryResponse     `bson:"response,omitempty" json:"response,omitempty"`
	AskedAt  time.Time          `bson:"asked_at" json:"asked_at"`
}

// QueryResponse is the (single) answer to a club query.
type QueryResponse struct {
	Responder   primitive.ObjectID `bson:"responder" json:"responder"`
	Message     string             `bson:"message" json:"message"`
	RespondedAt time.Time          `bson:"responded_at" json:"responded_at"`
}
