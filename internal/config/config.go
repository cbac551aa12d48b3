// Package config defines the data structures related to configuration and
// includes functions for loading, validating and watching the config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/iwvelando/dream-calculator/pkg/constants"
	"github.com/iwvelando/dream-calculator/pkg/currency"
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"github.com/iwvelando/dream-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Configuration holds all configuration for dream-calculator.
type Configuration struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging,omitempty"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output,omitempty"`
	Savings  SavingsConfig  `mapstructure:"savings" yaml:"savings"`
	Goal     GoalConfig     `mapstructure:"goal" yaml:"goal"`
	Currency CurrencyConfig `mapstructure:"currency" yaml:"currency"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `mapstructure:"format" yaml:"format,omitempty"`     // pretty, csv, json
	Language string `mapstructure:"language" yaml:"language,omitempty"` // en, ru
}

// SavingsConfig is the piggy bank plan: a recurring deposit and how it grows.
type SavingsConfig struct {
	AmountPerPeriod     float64 `mapstructure:"amountPerPeriod" yaml:"amountPerPeriod"`
	AnnualRatePercent   float64 `mapstructure:"annualRatePercent" yaml:"annualRatePercent"`
	TermYears           int     `mapstructure:"termYears" yaml:"termYears"`
	CompoundingEnabled  bool    `mapstructure:"compoundingEnabled" yaml:"compoundingEnabled"`
	Frequency           string  `mapstructure:"frequency" yaml:"frequency"`
	AnnualGrowthPercent float64 `mapstructure:"annualGrowthPercent" yaml:"annualGrowthPercent"`
}

// GoalConfig is the dream plan: what it costs and when it is wanted.
type GoalConfig struct {
	DreamName          string  `mapstructure:"dreamName" yaml:"dreamName,omitempty"`
	TargetAmount       float64 `mapstructure:"targetAmount" yaml:"targetAmount"`
	AnnualRatePercent  float64 `mapstructure:"annualRatePercent" yaml:"annualRatePercent"`
	TermYears          int     `mapstructure:"termYears" yaml:"termYears"`
	CompoundingEnabled bool    `mapstructure:"compoundingEnabled" yaml:"compoundingEnabled"`
	Frequency          string  `mapstructure:"frequency" yaml:"frequency"`
}

// CurrencyConfig lists the currencies offered for display and their rates
// against the pivot currency.
type CurrencyConfig struct {
	Pivot   string             `mapstructure:"pivot" yaml:"pivot"`
	Display string             `mapstructure:"display" yaml:"display,omitempty"`
	Codes   []string           `mapstructure:"codes" yaml:"codes"`
	Rates   map[string]float64 `mapstructure:"rates" yaml:"rates"`
}

// setDefaults registers every key so environment overrides apply even when
// the file omits them. Defaults mirror the plans a first-time user sees.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.language", constants.DefaultLanguage)

	v.SetDefault("savings.amountPerPeriod", constants.DefaultAmountPerPeriod)
	v.SetDefault("savings.annualRatePercent", constants.DefaultAnnualRate)
	v.SetDefault("savings.termYears", constants.DefaultSavingsYears)
	v.SetDefault("savings.compoundingEnabled", true)
	v.SetDefault("savings.frequency", constants.DefaultFrequency)
	v.SetDefault("savings.annualGrowthPercent", 0.0)

	v.SetDefault("goal.dreamName", "")
	v.SetDefault("goal.targetAmount", constants.DefaultGoalAmount)
	v.SetDefault("goal.annualRatePercent", constants.DefaultAnnualRate)
	v.SetDefault("goal.termYears", constants.DefaultGoalYears)
	v.SetDefault("goal.compoundingEnabled", true)
	v.SetDefault("goal.frequency", constants.DefaultFrequency)

	v.SetDefault("currency.pivot", constants.DefaultPivotCurrency)
	v.SetDefault("currency.display", constants.DefaultPivotCurrency)
	v.SetDefault("currency.codes", []string{"USD", "EUR", "RUB", "GBP"})
}

// defaultRates apply only when the file has no rates section at all. Viper
// merges nested map defaults key by key, so they stay out of setDefaults.
func defaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 1,
		"EUR": 0.92,
		"RUB": 92,
		"GBP": 0.79,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads environment overrides from a .env file when one exists.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file at the default location yields the
// built-in defaults; a missing file that was asked for explicitly is an error.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath == "" {
		return decode(v)
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if configPath == constants.DefaultConfigFile && isNotExist(err) {
			return decode(v)
		}
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromBytes is a convenience wrapper for in-memory YAML.
func LoadConfigurationFromBytes(data []byte) (*Configuration, error) {
	return LoadConfigurationFromReader(bytes.NewReader(data))
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if len(configuration.Currency.Rates) == 0 {
		configuration.Currency.Rates = make(map[string]float64)
		for code, rate := range defaultRates() {
			if containsCode(configuration.Currency.Codes, code) {
				configuration.Currency.Rates[code] = rate
			}
		}
	}
	return &configuration, nil
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}

// WatchConfiguration re-reads the file at configPath whenever it changes and
// hands the new configuration to onChange. Decode failures are logged and
// the previous configuration stays in effect.
func WatchConfiguration(logger *zap.Logger, configPath string, onChange func(*Configuration)) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file, %w", err)
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		conf, err := decode(v)
		if err != nil {
			logger.Warn("ignoring configuration change",
				zap.String("op", "config.WatchConfiguration"),
				zap.String("file", event.Name),
				zap.Error(err),
			)
			return
		}
		logger.Info("configuration reloaded",
			zap.String("op", "config.WatchConfiguration"),
			zap.String("file", event.Name),
		)
		onChange(conf)
	})
	v.WatchConfig()
	return nil
}

// SavingsPlan converts the savings section into an engine plan. Unknown
// frequencies become the zero Frequency, which the engine computes as monthly.
func (c *Configuration) SavingsPlan() finance.ContributionPlan {
	frequency, _ := finance.ParseFrequency(c.Savings.Frequency)
	return finance.ContributionPlan{
		AmountPerPeriod:     c.Savings.AmountPerPeriod,
		AnnualRatePercent:   c.Savings.AnnualRatePercent,
		TermYears:           c.Savings.TermYears,
		CompoundingEnabled:  c.Savings.CompoundingEnabled,
		Frequency:           frequency,
		AnnualGrowthPercent: c.Savings.AnnualGrowthPercent,
	}
}

// GoalPlan converts the goal section into an engine plan.
func (c *Configuration) GoalPlan() finance.GoalPlan {
	frequency, _ := finance.ParseFrequency(c.Goal.Frequency)
	return finance.GoalPlan{
		TargetAmount:       c.Goal.TargetAmount,
		AnnualRatePercent:  c.Goal.AnnualRatePercent,
		TermYears:          c.Goal.TermYears,
		CompoundingEnabled: c.Goal.CompoundingEnabled,
		Frequency:          frequency,
	}
}

// RateTable builds the live exchange-rate table described by the currency
// section.
func (c *Configuration) RateTable() (*currency.Table, error) {
	return currency.NewTable(c.Currency.Pivot, c.Currency.Codes, currency.RateTable(c.Currency.Rates))
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		Savings: validation.PlanConfig{
			Name:       "savings",
			AmountName: "amount per period",
			Amount:     c.Savings.AmountPerPeriod,
			Rate:       c.Savings.AnnualRatePercent,
			Growth:     c.Savings.AnnualGrowthPercent,
			TermYears:  c.Savings.TermYears,
			Frequency:  c.Savings.Frequency,
		},
		Goal: validation.PlanConfig{
			Name:       "goal",
			AmountName: "target amount",
			Amount:     c.Goal.TargetAmount,
			Rate:       c.Goal.AnnualRatePercent,
			TermYears:  c.Goal.TermYears,
			Frequency:  c.Goal.Frequency,
		},
		Display: c.Currency.Display,
		Codes:   c.Currency.Codes,
		Rates:   c.Currency.Rates,
	}
	return validator.ValidateAll()
}
