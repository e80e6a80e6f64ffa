// internal/app/system/ranking/ranking.go
package ranking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
)

// Point awards for ranked activity. These are the only sources of activity
// points; nothing else mutates the counter.
const (
	PointsLogin         = 5
	PointsBlogPublish   = 10
	PointsEventRegister = 5
	PointsPaidTicket    = 15
)

const (
	cacheKey = "leaderboard:top"
	cacheTTL = 5 * time.Minute
	topSize  = 10
)

// Engine awards activity points and keeps profile ranks consistent. Ranks
// are dense positions 1..N over points descending; only users whose rank
// actually changed are written back.
type Engine struct {
	users *userstore.Store
	rdb   *redis.Client // nil disables the leaderboard cache
	log   *zap.Logger

	mu      sync.Mutex
	running bool
	queued  bool
}

func New(users *userstore.Store, rdb *redis.Client, log *zap.Logger) *Engine {
	return &Engine{users: users, rdb: rdb, log: log}
}

// Award adds delta points to a user and schedules a rank recomputation.
// The recomputation is asynchronous; the award itself is not.
func (e *Engine) Award(ctx context.Context, userID primitive.ObjectID, delta int) error {
	if err := e.users.IncrementPoints(ctx, userID, delta); err != nil {
		return err
	}
	e.ScheduleRecompute()
	return nil
}

// ScheduleRecompute kicks off a background recomputation. While one is in
// flight, further calls coalesce into a single follow-up run, so a burst of
// awards costs at most two sweeps.
func (e *Engine) ScheduleRecompute() {
	e.mu.Lock()
	if e.running {
		e.queued = true
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	go e.runLoop()
}

func (e *Engine) runLoop() {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := e.Recompute(ctx); err != nil {
			e.log.Warn("rank recompute failed", zap.Error(err))
		}
		cancel()

		e.mu.Lock()
		if !e.queued {
			e.running = false
			e.mu.Unlock()
			return
		}
		e.queued = false
		e.mu.Unlock()
	}
}

// Recompute assigns dense ranks over the full user population and writes
// back only the rows whose stored rank differs. Ties on points break by
// _id, which the store's sort already fixes.
func (e *Engine) Recompute(ctx context.Context) error {
	rows, err := e.users.AllPointTotals(ctx)
	if err != nil {
		return err
	}
	changed := make(map[primitive.ObjectID]int)
	for i, row := range rows {
		rank := i + 1
		if row.Rank == nil || *row.Rank != rank {
			changed[row.ID] = rank
		}
	}
	if len(changed) > 0 {
		if err := e.users.WriteRanks(ctx, changed); err != nil {
			return err
		}
	}
	e.invalidateCache(ctx)
	e.log.Debug("ranks recomputed",
		zap.Int("users", len(rows)),
		zap.Int("changed", len(changed)))
	return nil
}

// Entry is one leaderboard row.
type Entry struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Name     string             `json:"name"`
	Username string             `json:"username,omitempty"`
	Points   int                `json:"points"`
	Rank     int                `json:"rank"`
}

// Leaderboard returns the top users by points, served from the Redis cache
// when warm. A cold or unavailable cache falls through to the database.
func (e *Engine) Leaderboard(ctx context.Context) ([]Entry, error) {
	if e.rdb != nil {
		raw, err := e.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var entries []Entry
			if json.Unmarshal(raw, &entries) == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			e.log.Debug("leaderboard cache read failed", zap.Error(err))
		}
	}

	users, err := e.users.TopByPoints(ctx, topSize)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(users))
	for i, u := range users {
		rank := i + 1
		if u.Profile.Rank != nil {
			rank = *u.Profile.Rank
		}
		entries = append(entries, Entry{
			UserID:   u.ID,
			Name:     u.Name,
			Username: u.Username,
			Points:   u.Profile.ActivityPoints,
			Rank:     rank,
		})
	}

	if e.rdb != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := e.rdb.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				e.log.Debug("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (e *Engine) invalidateCache(ctx context.Context) {
	if e.rdb == nil {
		return
	}
	if err := e.rdb.Del(ctx, cacheKey).Err(); err != nil {
		e.log.Debug("leaderboard cache invalidation failed", zap.Error(err))
	}
}
