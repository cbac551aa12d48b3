package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/iwvelando/dream-calculator/internal/calculator"
	"github.com/iwvelando/dream-calculator/internal/config"
	"github.com/iwvelando/dream-calculator/internal/metrics"
	"github.com/iwvelando/dream-calculator/internal/server"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/currency"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"github.com/iwvelando/dream-calculator/pkg/output"
	"github.com/iwvelando/dream-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the global flags and everything loaded from them.
type app struct {
	configPath   string
	envFile      string
	logLevel     string
	outputFormat string
	language     string

	conf   *config.Configuration
	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "dream-calculator",
		Short:             "Work out how savings grow and what a dream costs per deposit",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.envFile, "env-file", ".env", "optional file of DREAMCALC_* environment overrides")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output", "", "output format override: pretty, csv, json")
	flags.StringVar(&a.language, "language", "", "label language override for pretty output: en, ru")

	root.AddCommand(
		a.savingsCmd(),
		a.goalCmd(),
		a.convertCmd(),
		a.ratesCmd(),
		a.selfTestCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the configuration and logger shared by every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	conf, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// CLI overrides take precedence over config
	if a.outputFormat != "" {
		conf.Output.Format = a.outputFormat
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		return err
	}
	if a.language != "" {
		conf.Output.Language = a.language
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.conf = conf
	a.logger = logger
	return nil
}

// newService builds a calculator over the configured rates and runs the
// startup self-tests.
func (a *app) newService(opts ...calculator.Option) (*calculator.Service, finance.SelfTestReport, error) {
	table, err := a.conf.RateTable()
	if err != nil {
		return nil, finance.SelfTestReport{}, fmt.Errorf("invalid currency configuration: %w", err)
	}

	opts = append([]calculator.Option{calculator.WithDefaultCurrency(a.conf.Currency.Display)}, opts...)
	svc, err := calculator.NewService(a.logger, table, opts...)
	if err != nil {
		return nil, finance.SelfTestReport{}, err
	}
	return svc, svc.SelfTest(), nil
}

func (a *app) writer(cmd *cobra.Command) (*output.Writer, error) {
	return output.NewWriter(cmd.OutOrStdout(), a.conf.Output.Format, a.conf.Output.Language)
}

func (a *app) savingsCmd() *cobra.Command {
	var (
		amount, rate, growth float64
		years                int
		compound             bool
		frequency, code      string
	)

	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Project the future value of a recurring deposit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := a.conf.SavingsPlan()
			flags := cmd.Flags()
			if flags.Changed("amount") {
				plan.AmountPerPeriod = amount
			}
			if flags.Changed("rate") {
				plan.AnnualRatePercent = rate
			}
			if flags.Changed("years") {
				plan.TermYears = years
			}
			if flags.Changed("compound") {
				plan.CompoundingEnabled = compound
			}
			if flags.Changed("growth") {
				plan.AnnualGrowthPercent = growth
			}
			if flags.Changed("frequency") {
				f, err := finance.ParseFrequency(frequency)
				if err != nil {
					return err
				}
				plan.Frequency = f
			}

			svc, selfTests, err := a.newService()
			if err != nil {
				return err
			}
			report, err := svc.Savings(cmd.Context(), calculator.SavingsRequest{Plan: plan, Currency: code})
			if err != nil {
				return err
			}

			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			if err := w.Savings(report); err != nil {
				return err
			}
			return w.SelfTestSummary(selfTests)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&amount, "amount", constants.DefaultAmountPerPeriod, "deposit per period")
	flags.Float64Var(&rate, "rate", constants.DefaultAnnualRate, "annual interest rate in percent")
	flags.IntVar(&years, "years", constants.DefaultSavingsYears, "plan length in years (1-50)")
	flags.BoolVar(&compound, "compound", true, "apply interest every period")
	flags.StringVar(&frequency, "frequency", constants.DefaultFrequency, "deposit frequency: daily, biweekly, monthly")
	flags.Float64Var(&growth, "growth", 0, "yearly increase of the deposit in percent")
	flags.StringVar(&code, "currency", "", "display currency (default from config)")
	return cmd
}

func (a *app) goalCmd() *cobra.Command {
	var (
		target, rate          float64
		years                 int
		compound              bool
		frequency, name, code string
	)

	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Work out the deposit needed each period to afford a dream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := a.conf.GoalPlan()
			dreamName := a.conf.Goal.DreamName
			flags := cmd.Flags()
			if flags.Changed("target") {
				plan.TargetAmount = target
			}
			if flags.Changed("rate") {
				plan.AnnualRatePercent = rate
			}
			if flags.Changed("years") {
				plan.TermYears = years
			}
			if flags.Changed("compound") {
				plan.CompoundingEnabled = compound
			}
			if flags.Changed("name") {
				dreamName = name
			}
			if flags.Changed("frequency") {
				f, err := finance.ParseFrequency(frequency)
				if err != nil {
					return err
				}
				plan.Frequency = f
			}

			svc, selfTests, err := a.newService()
			if err != nil {
				return err
			}
			report, err := svc.Goal(cmd.Context(), calculator.GoalRequest{DreamName: dreamName, Plan: plan, Currency: code})
			if err != nil {
				return err
			}

			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			if err := w.Goal(report); err != nil {
				return err
			}
			return w.SelfTestSummary(selfTests)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&target, "target", constants.DefaultGoalAmount, "price of the dream")
	flags.Float64Var(&rate, "rate", constants.DefaultAnnualRate, "annual interest rate in percent")
	flags.IntVar(&years, "years", constants.DefaultGoalYears, "years until the dream (1-50)")
	flags.BoolVar(&compound, "compound", true, "apply interest every period")
	flags.StringVar(&frequency, "frequency", constants.DefaultFrequency, "deposit frequency: daily, biweekly, monthly")
	flags.StringVar(&name, "name", "", "name of the dream")
	flags.StringVar(&code, "currency", "", "display currency (default from config)")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between two configured currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			svc, _, err := a.newService()
			if err != nil {
				return err
			}
			conversion, err := svc.Convert(amount, args[1], args[2])
			if err != nil {
				return err
			}

			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			return w.Conversion(conversion)
		},
	}
}

func (a *app) ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the configured exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := a.newService()
			if err != nil {
				return err
			}
			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			return w.Rates(svc.RatesView())
		},
	}
}

func (a *app) selfTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Check the arithmetic against closed-form annuity formulas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := a.newService()
			if err != nil {
				return err
			}
			report := svc.SelfTest()

			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			if err := w.SelfTest(report); err != nil {
				return err
			}
			if !report.AllPassed() {
				return fmt.Errorf("self-tests failed: %d of %d passed", report.PassedCount, report.TotalCount)
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var serverConfigPath, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srvCfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				srvCfg.Address = address
			}

			logger, err := initializeLogger(mergeLogging(a.conf.Logging, srvCfg.Logging), a.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			_ = a.logger.Sync()
			a.logger = logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			recorder := metrics.NewRecorder(constants.MetricsNamespace)
			reportCache, closeCache := srvCfg.NewCache(ctx, logger)
			defer func() {
				if err := closeCache(); err != nil {
					logger.Warn("failed to close cache", zap.String("op", "main"), zap.Error(err))
				}
			}()

			svc, selfTests, err := a.newService(calculator.WithCache(reportCache), calculator.WithObserver(recorder))
			if err != nil {
				return err
			}
			if !selfTests.AllPassed() {
				logger.Warn("serving with failing self-tests",
					zap.String("op", "main"),
					zap.Int("passed", selfTests.PassedCount),
					zap.Int("total", selfTests.TotalCount),
				)
			}
			a.watchRates(svc.Rates())

			handler := server.NewHandler(logger, svc, recorder, server.Options{
				MaxBodySize:    srvCfg.BodySizeBytes(),
				Version:        version,
				AllowedOrigins: srvCfg.CORS.AllowedOrigins,
			})
			return server.Run(ctx, logger, srvCfg, handler)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	return cmd
}

// watchRates swaps in new exchange rates whenever the config file changes.
func (a *app) watchRates(table *currency.Table) {
	if _, err := os.Stat(a.configPath); err != nil {
		a.logger.Debug("not watching configuration",
			zap.String("op", "main"),
			zap.String("file", a.configPath),
			zap.Error(err),
		)
		return
	}

	err := config.WatchConfiguration(a.logger, a.configPath, func(conf *config.Configuration) {
		if err := table.Replace(currency.RateTable(conf.Currency.Rates)); err != nil {
			a.logger.Warn("ignoring reloaded exchange rates",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return
		}
		a.logger.Info("exchange rates reloaded",
			zap.String("op", "main"),
			zap.Any("rates", table.Snapshot()),
		)
	})
	if err != nil {
		a.logger.Warn("failed to watch configuration",
			zap.String("op", "main"),
			zap.String("file", a.configPath),
			zap.Error(err),
		)
	}
}
