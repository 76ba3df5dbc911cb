// Package main provides the fray battle server: real-time party combat
// encounters served over WebSocket, one encounter per connection.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/battleserver"
	"github.com/kverkest/fray/internal/config"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/rng"
	"github.com/kverkest/fray/internal/observability"
	"github.com/kverkest/fray/internal/scripting"
	"github.com/kverkest/fray/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "path to the content directory (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentDir != "" {
		cfg.Content.Dir = *contentDir
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting fray battle server",
		zap.String("mode", cfg.Battle.Mode),
		zap.String("addr", cfg.Server.Addr()),
	)

	// Load battle content
	content, err := battleserver.LoadContent(cfg.Content.Dir, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("arenas", len(content.Arenas)),
		zap.Int("opponents", len(content.Templates)),
	)

	src := rng.NewCryptoSource()

	// Load scripted outcome policies when a script directory is configured
	var policies battleserver.Policies
	if cfg.Content.ScriptDir != "" {
		scripts := scripting.NewManager(src, logger)
		defer scripts.Close()
		if err := scripts.LoadDir(cfg.Content.ScriptDir, cfg.Content.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading battle scripts", zap.Error(err))
		}
		policies = battleserver.Policies{
			Reward:  scripts.RewardPolicy(outcome.DefaultRewardPolicy()),
			Recruit: scripts.RecruitPolicy(outcome.DefaultRecruitPolicy(src)),
			Flee:    scripts.FleePolicy(outcome.DefaultFleePolicy(src)),
		}
		logger.Info("battle scripts loaded", zap.String("dir", cfg.Content.ScriptDir))
	}

	// Build services
	srv, err := battleserver.New(cfg, content, policies, logger)
	if err != nil {
		logger.Fatal("building battle server", zap.Error(err))
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)

	lifecycle.Add("battle", &server.FuncService{
		StartFn: srv.ListenAndServe,
		StopFn:  srv.Stop,
	})

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
