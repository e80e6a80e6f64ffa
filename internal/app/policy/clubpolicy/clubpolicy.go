// internal/app/policy/clubpolicy/clubpolicy.go
package clubpolicy

import (
	"context"
	"strings"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Capability is what a user may do within one club. The zero value means
// "no relationship": not a member, no powers.
type Capability struct {
	IsMember     bool
	Role         string
	IsCoreMember bool
	IsPresident  bool

	// Applicant state, mutually exclusive with membership: a user ID lives
	// in applicants or members, never both.
	IsApplicant       bool
	ApplicationStatus string

	CanManageMembers       bool // accept/reject applicants, change roles
	CanPostAnnouncements   bool
	CanCreateEvents        bool
	CanAnswerQueries       bool
	CanEditClub            bool
	CanPublishBadgedBlogs  bool
	CanVerifyEventTickets  bool
	CanViewApplicantsQueue bool
}

// officer roles beyond the core-member flag.
func officer(role string) bool {
	switch role {
	case models.ClubRolePresident, models.ClubRoleVicePresident, models.ClubRoleTreasurer:
		return true
	}
	return false
}

// Resolve computes the user's capabilities for the club with a projected
// read of just the relevant member entry. An absent club or a user with no
// member entry resolves to the zero Capability; Resolve never turns a
// missing document into an error.
func Resolve(ctx context.Context, db *mongo.Database, clubID, userID primitive.ObjectID) (Capability, error) {
	var doc struct {
		President  models.ClubPresident   `bson:"president"`
		Members    []models.ClubMember    `bson:"members"`
		Applicants []models.ClubApplicant `bson:"applicants"`
	}
	err := db.Collection("clubs").FindOne(ctx,
		bson.M{"_id": clubID, "application.status": models.ClubStatusAccepted},
		options.FindOne().SetProjection(bson.M{
			"president":  1,
			"members":    bson.M{"$elemMatch": bson.M{"user_id": userID}},
			"applicants": bson.M{"$elemMatch": bson.M{"user_id": userID}},
		}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Capability{}, nil
	}
	if err != nil {
		return Capability{}, err
	}
	if len(doc.Members) == 0 {
		if len(doc.Applicants) > 0 {
			return Capability{
				IsApplicant:       true,
				ApplicationStatus: doc.Applicants[0].Status,
			}, nil
		}
		return Capability{}, nil
	}

	m := doc.Members[0]
	role := strings.ToLower(m.Role)
	cap := Capability{
		IsMember:     true,
		Role:         role,
		IsCoreMember: m.CoreMember,
		IsPresident:  role == models.ClubRolePresident || doc.President.UserID == userID,
	}
	elevated := cap.IsPresident || officer(role) || m.CoreMember
	cap.CanPostAnnouncements = elevated
	cap.CanCreateEvents = elevated
	cap.CanAnswerQueries = elevated
	cap.CanVerifyEventTickets = elevated
	cap.CanPublishBadgedBlogs = true // any confirmed member may badge a blog
	cap.CanViewApplicantsQueue = elevated
	cap.CanManageMembers = elevated
	cap.CanEditClub = cap.IsPresident || officer(role)
	return cap, nil
}
