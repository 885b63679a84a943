package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stackyard/stackyard/internal/config"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/persist"
	"github.com/stackyard/stackyard/internal/scripting"
	"github.com/stackyard/stackyard/internal/session"
)

// app holds what every subcommand loads before it can do anything.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	catalog  *data.Catalog
	layout   *data.Scene
	rules    *scripting.Engine
	db       *persist.DB // nil when the ledger is off
	sessions *persist.SessionRepo
	ledger   *persist.LedgerRepo
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("STACKYARD_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

type appOptions struct {
	db      bool   // open the database when a driver is configured
	logFile string // overrides logging.file when set
}

// openApp loads config, data, scripts and, when asked and a driver is
// configured, the database with migrations applied.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	if a.catalog, err = data.LoadCatalog(cfg.Data.Catalog); err != nil {
		a.close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if a.layout, err = data.LoadScene(cfg.Data.Scene); err != nil {
		a.close()
		return nil, fmt.Errorf("load scene: %w", err)
	}
	if a.rules, err = scripting.NewEngine(cfg.Scripting.Dir, log); err != nil {
		a.close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	if opts.db && cfg.Database.Driver != "" {
		if err := a.openDB(ctx); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openDB(ctx context.Context) error {
	db, err := persist.NewDB(ctx, a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := persist.RunMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	a.db = db
	a.sessions = persist.NewSessionRepo(db)
	a.ledger = persist.NewLedgerRepo(db)
	return nil
}

func (a *app) close() {
	if a.rules != nil {
		a.rules.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	_ = a.log.Sync()
}

// startSession builds a session and, with a database, records its row.
func (a *app) startSession(ctx context.Context, name string) (*session.Session, error) {
	deps := session.Deps{Rules: a.rules}
	if a.ledger != nil {
		deps.Ledger = a.ledger
	}
	s, err := session.New(a.cfg, a.catalog, a.layout, deps, a.log)
	if err != nil {
		return nil, err
	}
	if a.sessions == nil {
		return s, nil
	}
	digest, err := session.RulesDigest(a.cfg.Data.Catalog, a.cfg.Data.Scene, a.cfg.Scripting.Dir)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("rules digest: %w", err)
	}
	row := &persist.SessionRow{ID: s.ID, Name: name, RulesDigest: digest, StartedAt: time.Now()}
	if err := a.sessions.Create(ctx, row); err != nil {
		s.Close()
		return nil, fmt.Errorf("record session: %w", err)
	}
	return s, nil
}

// finishSession closes s and stamps its row. It runs on its own deadline so
// an interrupted run still gets recorded.
func (a *app) finishSession(s *session.Session) error {
	s.Close()
	if a.sessions == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st := s.Stats()
	if err := a.sessions.Finish(ctx, s.ID, st.Ticks, st.Score, time.Now()); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
