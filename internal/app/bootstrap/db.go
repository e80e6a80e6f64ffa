// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	blogstore "github.com/dalemusser/campushub/internal/app/store/blogs"
	clubstore "github.com/dalemusser/campushub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	ticketstore "github.com/dalemusser/campushub/internal/app/store/tickets"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and, when configured, the
// Redis client for the leaderboard cache.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache is optional; run without it rather than refuse to start.
			logger.Warn("redis unreachable, leaderboard cache disabled", zap.Error(err))
		} else {
			deps.Redis = rdb
			logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
		}
	}

	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on: unique folded email
// and username, unique club names, and the one-ticket-per-user-per-event
// constraint.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"clubs", clubstore.New(db).EnsureIndexes},
		{"events", eventstore.New(db).EnsureIndexes},
		{"tickets", ticketstore.New(db).EnsureIndexes},
		{"blogs", blogstore.New(db).EnsureIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", e.name, err)
		}
	}
	logger.Info("database indexes ensured")
	return nil
}
