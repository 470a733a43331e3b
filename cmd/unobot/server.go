package main

import (
	"os"
	"sync/atomic"
	"time"

	rand "math/rand/v2"

	"github.com/coder/quartz"

	"github.com/lox/unobot/cmd/unobot/shared"
	"github.com/lox/unobot/internal/ledger"
	"github.com/lox/unobot/internal/randutil"
	"github.com/lox/unobot/internal/render"
	"github.com/lox/unobot/internal/server"
)

// ServerCmd runs the WebSocket game server.
type ServerCmd struct {
	Config    string `kong:"default='unobot.hcl',help='HCL config file'"`
	Addr      string `kong:"help='Listen address, overrides config'"`
	ScoreFile string `kong:"help='Score file path, overrides config'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}
	scoreFile := cfg.Game.ScoreFile
	if c.ScoreFile != "" {
		scoreFile = c.ScoreFile
	}
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	seed := cfg.Game.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info("using random seed", "seed", seed)
	} else {
		logger.Info("using deterministic seed", "seed", seed)
	}

	// Every session gets its own generator; they lock independently.
	var sessionCount atomic.Int64
	newRNG := func() *rand.Rand {
		return randutil.New(seed + sessionCount.Add(1))
	}

	registry := server.NewRegistry(quartz.NewReal(), newRNG, logger)
	scores := ledger.New(scoreFile, logger)
	service := server.NewGameService(registry, scores, cfg.Game.Admins, logger)

	prefs := render.NewPrefStore()
	formatter := server.NewFormatter(render.NewRenderer(), prefs)

	srv := server.NewServer(addr, service, formatter, prefs, logger)
	logger.Info("starting unobot server", "addr", addr, "score_file", scoreFile, "admins", len(cfg.Game.Admins))

	ctx := shared.SetupSignalHandler(logger)
	return srv.Run(ctx)
}
