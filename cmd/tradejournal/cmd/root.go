package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A personal options trading journal",
	Long: `Tradejournal records option trades, keeps the account parameters used
to plan them and reports net charges, final P&L and the cumulative P&L curve.

Data lives in a local SQLite file. Several tradejournal processes may share
the file; each one sees the others' writes.

  tradejournal trade add --contract "p 108000 260925" --type Sell --lot 2 --pl 80
  tradejournal summary set capital 250
  tradejournal pnl --from 2025-09-01
  tradejournal export -o trade-journal-data.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	cfgFile  string
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite journal (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setup() error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Storage.DBPath = dbPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c

	logger, err = newLogger(cfg.Log.Level)
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

func openStore() (storage.Store, error) {
	switch cfg.Storage.Type {
	case "memory":
		logger.Warn("memory storage: nothing is kept after exit")
		return storage.NewMemory().Open(), nil
	default:
		s, err := storage.NewSQLite(cfg.Storage.DBPath, storage.SQLiteOptions{
			PollInterval: cfg.Storage.PollInterval,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return s, nil
	}
}

// openSession opens the configured store and a session over it. The
// returned func flushes the session and closes the store.
func openSession() (*journal.Session, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	sess, err := journal.Open(st, journal.Options{
		Logger:       logger,
		SummaryDelay: cfg.Summary.Debounce,
		CacheCost:    1 << 20,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := sess.Close(); err != nil {
			logger.Error("close session", zap.Error(err))
		}
		if err := st.Close(); err != nil {
			logger.Error("close store", zap.Error(err))
		}
	}
	return sess, closeFn, nil
}

func display() journal.Display {
	return journal.Display{
		Currency: cfg.Display.Currency,
		Local:    cfg.Display.Local,
		Rate:     cfg.Display.Rate,
	}
}
