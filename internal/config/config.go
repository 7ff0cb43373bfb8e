// Package config resolves the engine's StrategyConfig from environment
// variables, an optional YAML file, and struct-tag defaults, then
// validates it. Nothing downstream reads globals at runtime; every
// component is handed a fully resolved *StrategyConfig* value (Design
// Notes §9).
package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"signalengine/internal/errkind"
)

// IndicatorPeriods holds every indicator kernel's lookback window.
type IndicatorPeriods struct {
	RSI       int `mapstructure:"rsi" default:"14" validate:"min=1"`
	MACDFast  int `mapstructure:"macd_fast" default:"12" validate:"min=1"`
	MACDSlow  int `mapstructure:"macd_slow" default:"26" validate:"min=1,gtfield=MACDFast"`
	MACDSig   int `mapstructure:"macd_signal" default:"9" validate:"min=1"`
	EMAFast   int `mapstructure:"ema_fast" default:"5" validate:"min=1"`
	EMAMedium int `mapstructure:"ema_medium" default:"20" validate:"min=1,gtfield=EMAFast"`
	EMASlow   int `mapstructure:"ema_slow" default:"60" validate:"min=1,gtfield=EMAMedium"`
	Bollinger int `mapstructure:"bollinger" default:"20" validate:"min=1"`
	ATR       int `mapstructure:"atr" default:"14" validate:"min=1"`
	ADX       int `mapstructure:"adx" default:"14" validate:"min=1"`
	CCI       int `mapstructure:"cci" default:"20" validate:"min=1"`
	KDJ       int `mapstructure:"kdj" default:"9" validate:"min=1"`
	KDJSmooth int `mapstructure:"kdj_smooth" default:"3" validate:"min=1"`
	VolumeMA  int `mapstructure:"volume_ma" default:"20" validate:"min=1"`
}

// ClassifierThresholds holds the market-state classifier's gates.
type ClassifierThresholds struct {
	RangingThr       float64 `mapstructure:"ranging_thr" default:"20" validate:"gt=0"`
	TrendingThr      float64 `mapstructure:"trending_thr" default:"25" validate:"gtfield=RangingThr"`
	StrongThr        float64 `mapstructure:"strong_thr" default:"40" validate:"gtfield=TrendingThr"`
	VolumeSpikeThr   float64 `mapstructure:"volume_spike_thr" default:"1.5" validate:"gt=0"`
	ATRSpikeThr      float64 `mapstructure:"atr_spike_thr" default:"1.3" validate:"gt=0"`
	BreakoutLookback int     `mapstructure:"breakout_lookback" default:"20" validate:"min=1"`
}

// GradeThresholds maps adjusted_strength to A/B/C/NONE.
type GradeThresholds struct {
	A float64 `mapstructure:"a" default:"0.75" validate:"gt=0,lte=1"`
	B float64 `mapstructure:"b" default:"0.50" validate:"gt=0,ltfield=A"`
	C float64 `mapstructure:"c" default:"0.30" validate:"gt=0,ltfield=B"`
}

// MTFConfig configures the multi-timeframe confirmer.
type MTFConfig struct {
	PrimaryTimeframe       string             `mapstructure:"primary_timeframe" default:"5m"`
	ConfirmationTimeframes []string           `mapstructure:"confirmation_timeframes"`
	MinConfirmations       int                `mapstructure:"min_confirmations" default:"1" validate:"min=0"`
	Weights                map[string]float64 `mapstructure:"weights" validate:"weightsum"`
}

// VerificationConfig holds the prediction horizons the signal generator
// attaches to each signal. verify.New builds its tracker from
// verify.DefaultHorizons and verify.DefaultMaxPending; neither field here
// is passed to it, and MaxPending is only validated.
type VerificationConfig struct {
	Horizons   []int `mapstructure:"horizons"`
	MaxPending int   `mapstructure:"max_pending" default:"50" validate:"min=1"`
}

// StrategyConfig is the engine's fully resolved, validated configuration.
// Every field either has a struct-tag default or is required by env/file.
type StrategyConfig struct {
	Symbol   string `mapstructure:"symbol" validate:"required"`
	Interval string `mapstructure:"interval" default:"5m"`

	Periods    IndicatorPeriods     `mapstructure:"periods"`
	Classifier ClassifierThresholds `mapstructure:"classifier"`
	Grades     GradeThresholds      `mapstructure:"grades"`
	MTF        MTFConfig            `mapstructure:"mtf"`
	Verify     VerificationConfig   `mapstructure:"verify"`

	CandleBufferCapacity int `mapstructure:"candle_buffer_capacity" default:"300" validate:"min=1"`

	MinRangingSignals   int     `mapstructure:"min_ranging_signals" default:"2" validate:"min=1"`
	MinRangingStrength  float64 `mapstructure:"min_ranging_strength" default:"0.5" validate:"gt=0,lte=1"`
	MinTrendingSignals  int     `mapstructure:"min_trending_signals" default:"3" validate:"min=1"`
	MinTrendingStrength float64 `mapstructure:"min_trending_strength" default:"0.5" validate:"gt=0,lte=1"`
	MinBreakoutSignals  int     `mapstructure:"min_breakout_signals" default:"2" validate:"min=1"`
	MinBreakoutStrength float64 `mapstructure:"min_breakout_strength" default:"0.5" validate:"gt=0,lte=1"`
}

// EnvPrefix is the environment-variable prefix viper reads (e.g.
// MDENGINE_SYMBOL, MDENGINE_PERIODS_RSI).
const EnvPrefix = "MDENGINE"

// Load resolves a StrategyConfig from, in ascending priority: struct-tag
// defaults, an optional YAML file at configPath, and MDENGINE_-prefixed
// environment variables. It returns a wrapped ConfigInvalid error if the
// result fails struct validation.
func Load(configPath string) (*StrategyConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	cfg := &StrategyConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: apply defaults: %w", err)
	}
	if len(cfg.MTF.ConfirmationTimeframes) == 0 {
		cfg.MTF.ConfirmationTimeframes = []string{"15m", "1h"}
	}
	if len(cfg.MTF.Weights) == 0 {
		cfg.MTF.Weights = map[string]float64{"5m": 0.4, "15m": 0.35, "1h": 0.25}
	}
	if len(cfg.Verify.Horizons) == 0 {
		cfg.Verify.Horizons = []int{10, 30, 60}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errkind.New(errkind.ConfigInvalid, fmt.Errorf("config: %w", err))
	}
	return cfg, nil
}

func validateConfig(cfg *StrategyConfig) error {
	validate := validator.New()
	_ = validate.RegisterValidation("weightsum", validateWeightSum)
	return validate.Struct(cfg)
}

// validateWeightSum ensures the MTF weight map sums close enough to 1.0
// that normalization elsewhere isn't silently compensating for a typo'd
// config file.
func validateWeightSum(fl validator.FieldLevel) bool {
	weights, ok := fl.Field().Interface().(map[string]float64)
	if !ok || len(weights) == 0 {
		return true
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return sum > 0.9 && sum < 1.1
}
