// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
	"github.com/dalemusser/campushub/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// taskCancel stops the background job runner; set in Startup, called in
// Shutdown. rankEngine is shared between the rank sweep job and the HTTP
// award paths so its single-flight guard covers every recompute trigger.
var (
	taskCancel context.CancelFunc
	taskRunner *tasks.Runner
	rankEngine *ranking.Engine
)

// sharedRankEngine returns the process-wide ranking engine, creating it on
// first use. Startup runs before BuildHandler, so both see the same engine.
func sharedRankEngine(users *userstore.Store, deps DBDeps, logger *zap.Logger) *ranking.Engine {
	if rankEngine == nil {
		rankEngine = ranking.New(users, deps.Redis, logger)
	}
	return rankEngine
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. CampusHub
// uses it to launch the background jobs: OTP cleanup and the periodic rank
// sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	engine := sharedRankEngine(users, deps, logger)

	taskRunner = tasks.NewRunner(logger,
		tasks.OTPCleanupJob(users, logger),
		tasks.RankSweepJob(engine),
	)

	var jobsCtx context.Context
	jobsCtx, taskCancel = context.WithCancel(context.Background())
	taskRunner.Start(jobsCtx)
	logger.Info("background jobs started")
	return nil
}
