package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/logger"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/source"
	"github.com/theirongolddev/varcop/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagPrior      []string
	flagCurrent    []string
	flagConfig     string
	flagNoCache    bool
	flagLenient    bool
	flagSignMode   string
	flagQuiet      bool
	flagVerbose    bool
	flagColAccount string
	flagColAmount  string
	flagColDate    string
	flagColName    string
	flagColText    string
	flagDimensions []string
	flagDecimal    string

	// flagDimensionsSet records whether --dimensions was given, so an empty
	// list can override the config.
	flagDimensionsSet bool
)

// lg is the diagnostic logger, set up before any command runs.
var lg = logger.Discard()

var rootCmd = &cobra.Command{
	Use:   "varcop",
	Short: "Period-over-period ledger variance analysis",
	Long: "Compare two accounting periods read from ledger exports, flag material\n" +
		"account changes and break them down by driver, posting and keyword.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		lg = logger.Default(flagVerbose, flagQuiet)
		flagDimensionsSet = cmd.Flags().Changed("dimensions")
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSliceVarP(&flagPrior, "prior", "P", nil, "Prior period export file or directory (repeatable)")
	pf.StringSliceVarP(&flagCurrent, "current", "C", nil, "Current period export file or directory (repeatable)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	pf.BoolVar(&flagLenient, "lenient", false, "Drop malformed rows instead of failing")
	pf.StringVar(&flagSignMode, "sign-mode", "", "Amount sign handling: as_is, invert or abs")
	pf.StringVar(&flagDecimal, "decimal", "", "Decimal separator in amounts: auto, comma or dot")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&flagColAccount, "col-account", "", "Column holding the account number")
	pf.StringVar(&flagColAmount, "col-amount", "", "Column holding the amount")
	pf.StringVar(&flagColDate, "col-date", "", "Column holding the posting date")
	pf.StringVar(&flagColName, "col-name", "", "Column holding the account name")
	pf.StringVar(&flagColText, "col-text", "", "Column holding the posting text")
	pf.StringSliceVar(&flagDimensions, "dimensions", nil, "Dimension columns, as name or name=Header")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if flagLenient {
		cfg.Analysis.Lenient = true
	}
	if flagSignMode != "" {
		cfg.Analysis.SignMode = flagSignMode
	}
	if flagDecimal != "" {
		cfg.Analysis.Decimal = flagDecimal
	}
	m := &cfg.Mapping
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{flagColAccount, &m.Account},
		{flagColAmount, &m.Amount},
		{flagColDate, &m.PostingDate},
		{flagColName, &m.AccountName},
		{flagColText, &m.Text},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	if flagDimensionsSet {
		m.Dimensions = flagDimensions
	}
	return cfg, nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	if len(flagPrior) == 0 || len(flagCurrent) == 0 {
		return nil, errors.New("both --prior and --current are required")
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading exports...\n")
	}
	start := time.Now()

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}

	result, err := loadWithCacheFallback(cfg.Mapping, opts, progressFn)
	if err != nil {
		if !flagQuiet {
			fmt.Fprintln(os.Stderr)
		}
		return nil, err
	}

	for _, f := range result.Files {
		lg.Debug("loaded", "file", f.Path, "period", f.Period, "rows", f.Rows,
			"dropped", f.Dropped, "encoding", f.Encoding, "cached", f.Cached)
		if f.Dropped > 0 {
			lg.Warn("dropped malformed rows", "file", f.Path, "dropped", f.Dropped)
		}
	}
	lg.Info("load finished", "files", result.TotalFiles, "parsed", result.ParsedFiles,
		"dropped", result.Dropped, "elapsed", time.Since(start).Round(time.Millisecond))

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Loaded %s prior + %s current postings from %d files    \n",
			cli.FormatNumber(int64(len(result.Prior.Postings))),
			cli.FormatNumber(int64(len(result.Current.Postings))),
			result.TotalFiles,
		)
	}
	return result, nil
}

func loadWithCacheFallback(m source.ColumnMapping, opts source.Options, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			lg.Warn("cache unavailable, doing full parse", "err", err)
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(flagPrior, flagCurrent, m, opts, cache, progressFn)
			if err == nil {
				lg.Debug("cache", "hits", cr.CacheHits, "reparsed", cr.Reparsed)
				return &cr.LoadResult, nil
			}
			var de *model.DataError
			if errors.As(err, &de) {
				return nil, err
			}
			lg.Warn("cache error, falling back to full parse", "err", err)
		}
	}

	return pipeline.Load(flagPrior, flagCurrent, m, opts, progressFn)
}

// session bundles what the analysis commands need.
type session struct {
	cfg      config.Config
	data     *pipeline.LoadResult
	analysis *pipeline.Analysis
}

// loadSession loads config and data and runs the whole-book analysis.
// adjust, when non-nil, may change the config before the data is read.
func loadSession(adjust func(*config.Config) error) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		if err := adjust(&cfg); err != nil {
			return nil, err
		}
	}

	data, err := loadData(cfg)
	if err != nil {
		return nil, err
	}

	a, err := pipeline.Analyze(data.Prior, data.Current, cfg.Materiality)
	if err != nil {
		return nil, fmt.Errorf("analyzing: %w", err)
	}
	return &session{cfg: cfg, data: data, analysis: a}, nil
}

// periodLabel names a period by its inputs.
func periodLabel(paths []string) string {
	return strings.Join(paths, ", ")
}

// accountTitle is "4400 Revenue" or just the account when it has no name.
func accountTitle(account, name string) string {
	if name == "" {
		return account
	}
	return account + " " + name
}
