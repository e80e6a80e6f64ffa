package clubpolicy_test

import (
	"testing"

	"github.com/dalemusser/campushub/internal/app/policy/clubpolicy"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolve_AbsentClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cap, err := clubpolicy.Resolve(ctx, db, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Resolve returned error for absent club: %v", err)
	}
	if cap.IsMember {
		t.Error("absent club must yield the zero capability")
	}
}

func TestResolve_NonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Robotics", primitive.NewObjectID())

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cap.IsMember || cap.CanManageMembers || cap.CanPostAnnouncements {
		t.Errorf("non-member got capabilities: %+v", cap)
	}
}

func TestResolve_PendingClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	president := primitive.NewObjectID()
	club := fixtures.CreatePendingClub(ctx, "Robotics", president)
	// Seat the president anyway; an unaccepted club grants nothing.
	fixtures.AddMember(ctx, club.ID, president, models.ClubRolePresident, true)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, president)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cap.IsMember {
		t.Error("membership in an unaccepted club must not confer capabilities")
	}
}

func TestResolve_PlainMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Robotics", primitive.NewObjectID())
	member := primitive.NewObjectID()
	fixtures.AddMember(ctx, club.ID, member, models.ClubRoleMember, false)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, member)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !cap.IsMember {
		t.Error("expected IsMember")
	}
	if cap.Role != models.ClubRoleMember {
		t.Errorf("role: got %q, want member", cap.Role)
	}
	if !cap.CanPublishBadgedBlogs {
		t.Error("any member can publish club-badged blogs")
	}
	if cap.CanManageMembers || cap.CanPostAnnouncements || cap.CanCreateEvents ||
		cap.CanAnswerQueries || cap.CanEditClub || cap.CanVerifyEventTickets ||
		cap.CanViewApplicantsQueue {
		t.Errorf("plain member got elevated capabilities: %+v", cap)
	}
}

func TestResolve_CoreMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Robotics", primitive.NewObjectID())
	// The core flag is independent of role name: a plain member with the
	// flag set carries the full elevated set.
	core := primitive.NewObjectID()
	fixtures.AddMember(ctx, club.ID, core, models.ClubRoleMember, true)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, core)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !cap.IsCoreMember {
		t.Error("expected IsCoreMember")
	}
	if !cap.CanPostAnnouncements || !cap.CanCreateEvents || !cap.CanAnswerQueries ||
		!cap.CanVerifyEventTickets || !cap.CanViewApplicantsQueue {
		t.Errorf("core member missing elevated capabilities: %+v", cap)
	}
	if !cap.CanManageMembers {
		t.Error("core member must be able to accept and reject applicants")
	}
	// Editing the club itself stays with officers.
	if cap.CanEditClub {
		t.Errorf("core member got officer capabilities: %+v", cap)
	}
}

func TestResolve_Applicant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Robotics", primitive.NewObjectID())
	applicant := primitive.NewObjectID()
	fixtures.AddApplicant(ctx, club.ID, applicant)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, applicant)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !cap.IsApplicant {
		t.Error("expected IsApplicant")
	}
	if cap.ApplicationStatus != models.ApplicantPending {
		t.Errorf("application status: got %q, want pending", cap.ApplicationStatus)
	}
	if cap.IsMember || cap.CanManageMembers || cap.CanPublishBadgedBlogs {
		t.Errorf("applicant got member capabilities: %+v", cap)
	}
}

func TestResolve_President(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	president := primitive.NewObjectID()
	club := fixtures.CreateClub(ctx, "Robotics", president)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, president)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !cap.IsPresident {
		t.Error("expected IsPresident")
	}
	if !cap.CanManageMembers || !cap.CanEditClub || !cap.CanPostAnnouncements ||
		!cap.CanCreateEvents || !cap.CanAnswerQueries || !cap.CanVerifyEventTickets ||
		!cap.CanViewApplicantsQueue {
		t.Errorf("president missing capabilities: %+v", cap)
	}
}

func TestResolve_VicePresident(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Robotics", primitive.NewObjectID())
	vp := primitive.NewObjectID()
	fixtures.AddMember(ctx, club.ID, vp, models.ClubRoleVicePresident, true)

	cap, err := clubpolicy.Resolve(ctx, db, club.ID, vp)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !cap.CanManageMembers || !cap.CanEditClub {
		t.Errorf("vice-president missing officer capabilities: %+v", cap)
	}
	if cap.IsPresident {
		t.Error("vice-president must not report IsPresident")
	}
}
