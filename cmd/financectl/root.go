package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/bizcms/backend/internal/infrastructure/config"
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the state shared by all commands of one invocation
type app struct {
	out      io.Writer
	envFile  string
	tenant   string
	logLevel string

	cfg      *config.Config
	log      *zap.Logger
	tenantID uuid.UUID
	db       *persistence.Database
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "financectl",
		Short:         "Maintenance tasks for the finance core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before configuration")
	flags.StringVar(&a.tenant, "tenant", "", "Tenant ID (required)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newInitChartCmd(a),
		newRecalculateCmd(a),
		newTrialBalanceCmd(a),
	)
	return root
}

// setup loads environment, configuration and logger, and validates the
// tenant. The database is opened lazily by the commands.
func (a *app) setup() error {
	if err := loadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg

	a.log, err = logger.New(&logger.Config{
		Level:      a.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	if a.tenant == "" {
		return errors.New("--tenant is required")
	}
	a.tenantID, err = uuid.Parse(a.tenant)
	if err != nil || a.tenantID == uuid.Nil {
		return fmt.Errorf("invalid --tenant %q", a.tenant)
	}
	return nil
}

// loadEnvFile loads path into the process environment. Variables already
// set win, and a missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (a *app) database() (*persistence.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := persistence.NewDatabase(&a.cfg.Database,
		persistence.WithZapLogger(a.log, logger.MapGormLogLevel(a.logLevel)),
	)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		_ = logger.Sync(a.log)
	}
	return err
}
