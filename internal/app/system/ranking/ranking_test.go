package ranking_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/testutil"
)

func TestEngine_Recompute_DenseRanks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	engine := ranking.New(users, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := fixtures.CreateUserWithPoints(ctx, "First", "first@example.com", 50)
	second := fixtures.CreateUserWithPoints(ctx, "Second", "second@example.com", 30)
	third := fixtures.CreateUserWithPoints(ctx, "Third", "third@example.com", 10)

	if err := engine.Recompute(ctx); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	want := map[primitive.ObjectID]int{
		first.ID:  1,
		second.ID: 2,
		third.ID:  3,
	}
	for id, rank := range want {
		var u struct {
			Profile struct {
				Rank *int `bson:"rank"`
			} `bson:"profile"`
		}
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
			t.Fatalf("FindOne failed: %v", err)
		}
		if u.Profile.Rank == nil || *u.Profile.Rank != rank {
			t.Errorf("rank for %s: got %v, want %d", id.Hex(), u.Profile.Rank, rank)
		}
	}
}

func TestEngine_Recompute_SecondSweepWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	engine := ranking.New(users, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPoints(ctx, "A", "a@example.com", 20)
	fixtures.CreateUserWithPoints(ctx, "B", "b@example.com", 10)

	if err := engine.Recompute(ctx); err != nil {
		t.Fatalf("first Recompute failed: %v", err)
	}
	// With ranks already settled, the second sweep must still succeed and
	// leave everything in place.
	if err := engine.Recompute(ctx); err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}

	rows, err := users.AllPointTotals(ctx)
	if err != nil {
		t.Fatalf("AllPointTotals failed: %v", err)
	}
	for i, row := range rows {
		if row.Rank == nil || *row.Rank != i+1 {
			t.Errorf("row %d rank: got %v, want %d", i, row.Rank, i+1)
		}
	}
}

func TestEngine_Award(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	engine := ranking.New(users, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Asha", "asha@example.com")

	if err := engine.Award(ctx, u.ID, ranking.PointsBlogPublish); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := engine.Award(ctx, u.ID, ranking.PointsLogin); err != nil {
		t.Fatalf("Award failed: %v", err)
	}

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	want := ranking.PointsBlogPublish + ranking.PointsLogin
	if got.Profile.ActivityPoints != want {
		t.Errorf("points: got %d, want %d", got.Profile.ActivityPoints, want)
	}
}

func TestEngine_Leaderboard_Cache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine := ranking.New(users, rdb, zap.NewNop())

	fixtures.CreateUserWithPoints(ctx, "Leader", "leader@example.com", 40)
	fixtures.CreateUserWithPoints(ctx, "Runner Up", "runner@example.com", 20)

	if err := engine.Recompute(ctx); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	entries, err := engine.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Name != "Leader" || entries[0].Rank != 1 {
		t.Errorf("top entry: %+v", entries[0])
	}

	// The cold read warmed the cache.
	if !mr.Exists("leaderboard:top") {
		t.Error("expected leaderboard cache key after a cold read")
	}

	// A warm read serves the cached copy even when the database changes
	// underneath.
	fixtures.CreateUserWithPoints(ctx, "Newcomer", "new@example.com", 100)
	entries, err = engine.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("warm Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("warm read returned %d entries, want cached 2", len(entries))
	}

	// Recompute invalidates, so the next read sees the newcomer.
	if err := engine.Recompute(ctx); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if mr.Exists("leaderboard:top") {
		t.Error("expected cache key to be invalidated by recompute")
	}
	entries, err = engine.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard after invalidation failed: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "Newcomer" {
		t.Errorf("post-invalidation leaderboard: %+v", entries)
	}
}
