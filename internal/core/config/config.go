// Package config loads deployment configuration from an env file and the
// ambient process environment into an immutable record.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// =============================================================================
// Keys
// =============================================================================

// Env-file keys recognized by the loader. Anything else in the file is
// ignored.
const (
	KeyDBUser            = "POSTGRES_USER"
	KeyDBPassword        = "POSTGRES_PASSWORD"
	KeyDBName            = "POSTGRES_DB"
	KeyDBHost            = "POSTGRES_HOST"
	KeyDBPort            = "POSTGRES_PORT"
	KeyConnectTimeout    = "REQUEST_CONNECT_TIMEOUT"
	KeyReadTimeout       = "REQUEST_READ_TIMEOUT"
	KeyRunTimeLimit      = "RUN_TIME_LIMIT_SECONDS"
	KeyQueueURL          = "YMQ_QUEUE_URL"
	KeyQueueARN          = "YMQ_QUEUE_ARN"
	KeyServiceAccount    = "YC_SA_ID"
	KeyPredictName       = "FN_PREDICT_NAME"
	KeyFinalizerName     = "FN_FINALIZER_NAME"
	KeyQueueTriggerName  = "TRIGGER_MQ_NAME"
	KeyTimerTriggerName  = "TRIGGER_TIMER_NAME"
	KeyBatchSize         = "TRIGGER_BATCH_SIZE"
	KeyBatchCutoff       = "TRIGGER_BATCH_CUTOFF"
	KeyVisibilityTimeout = "TRIGGER_VISIBILITY_TIMEOUT"
	KeyTimerCron         = "TRIGGER_TIMER_CRON"
)

// FileKeys is the allow-list for the env file.
var FileKeys = []string{
	KeyDBUser, KeyDBPassword, KeyDBName, KeyDBHost, KeyDBPort,
	KeyConnectTimeout, KeyReadTimeout, KeyRunTimeLimit,
	KeyQueueURL, KeyQueueARN,
}

// envKeys are consumed from the ambient environment only.
var envKeys = []string{
	KeyServiceAccount,
	KeyPredictName, KeyFinalizerName,
	KeyQueueTriggerName, KeyTimerTriggerName,
	KeyBatchSize, KeyBatchCutoff, KeyVisibilityTimeout,
	KeyTimerCron,
}

// requiredKeys must be non-empty after loading; the run fails before any
// external call otherwise.
var requiredKeys = []string{
	KeyDBUser, KeyDBPassword, KeyDBName, KeyDBHost, KeyDBPort,
	KeyConnectTimeout, KeyReadTimeout, KeyRunTimeLimit,
	KeyServiceAccount,
}

// =============================================================================
// Errors
// =============================================================================

// ConfigError reports a required configuration value that is missing.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("required configuration value %s is not set", e.Key)
}

// =============================================================================
// Config
// =============================================================================

// Config is the validated deployment configuration. It is constructed once
// by Load and passed read-only into every component; nothing mutates the
// process environment.
type Config struct {
	// Database values, passed verbatim into function environments.
	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	// HTTP client budgets for the predict worker and the per-run wall clock
	// limit, again opaque strings handed through.
	RequestConnectTimeout string
	RequestReadTimeout    string
	RunTimeLimitSeconds   string

	// Message queue reference. Either may be empty; ARN wins when both are
	// set. Both empty means the queue trigger step is skipped.
	QueueURL string
	QueueARN string

	// Identity used for deploys and for trigger read/invoke permissions.
	ServiceAccountID string

	// Resource names.
	PredictFunctionName   string
	FinalizerFunctionName string
	QueueTriggerName      string
	TimerTriggerName      string

	// Queue trigger tuning, capability-gated at reconcile time.
	BatchSize         string
	BatchCutoff       string
	VisibilityTimeout string

	// Timer trigger schedule.
	TimerCron string
}

// Load builds a Config with the precedence: built-in defaults, then values
// from the env file at path, then the ambient process environment on top.
// File values fill gaps; they never override explicit environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		allowed := make(map[string]struct{}, len(FileKeys))
		for _, k := range FileKeys {
			allowed[k] = struct{}{}
		}
		values, err := ParseEnvFile(path, allowed)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		merged := make(map[string]any, len(values))
		for k, val := range values {
			merged[k] = val
		}
		if err := v.MergeConfigMap(merged); err != nil {
			return nil, fmt.Errorf("failed to merge env file %s: %w", path, err)
		}
	}

	for _, k := range FileKeys {
		_ = v.BindEnv(k, k)
	}
	for _, k := range envKeys {
		_ = v.BindEnv(k, k)
	}

	cfg := &Config{
		DBUser:                v.GetString(KeyDBUser),
		DBPassword:            v.GetString(KeyDBPassword),
		DBName:                v.GetString(KeyDBName),
		DBHost:                v.GetString(KeyDBHost),
		DBPort:                v.GetString(KeyDBPort),
		RequestConnectTimeout: v.GetString(KeyConnectTimeout),
		RequestReadTimeout:    v.GetString(KeyReadTimeout),
		RunTimeLimitSeconds:   v.GetString(KeyRunTimeLimit),
		QueueURL:              v.GetString(KeyQueueURL),
		QueueARN:              v.GetString(KeyQueueARN),
		ServiceAccountID:      v.GetString(KeyServiceAccount),
		PredictFunctionName:   v.GetString(KeyPredictName),
		FinalizerFunctionName: v.GetString(KeyFinalizerName),
		QueueTriggerName:      v.GetString(KeyQueueTriggerName),
		TimerTriggerName:      v.GetString(KeyTimerTriggerName),
		BatchSize:             v.GetString(KeyBatchSize),
		BatchCutoff:           v.GetString(KeyBatchCutoff),
		VisibilityTimeout:     v.GetString(KeyVisibilityTimeout),
		TimerCron:             v.GetString(KeyTimerCron),
	}

	if err := cfg.validate(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(v *viper.Viper) error {
	for _, k := range requiredKeys {
		if v.GetString(k) == "" {
			return &ConfigError{Key: k}
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPredictName, "predict-worker")
	v.SetDefault(KeyFinalizerName, "run-finalizer")
	v.SetDefault(KeyQueueTriggerName, "predict-tasks")
	v.SetDefault(KeyTimerTriggerName, "run-watchdog")
	v.SetDefault(KeyBatchSize, "10")
	v.SetDefault(KeyBatchCutoff, "10s")
	v.SetDefault(KeyVisibilityTimeout, "600s")
	v.SetDefault(KeyTimerCron, "* * ? * * *")
}

// TriggerNames resolves just the two trigger names from defaults and the
// ambient environment. Teardown uses this; it has no business requiring
// the database values.
func TriggerNames() (queueTrigger, timerTrigger string) {
	v := viper.New()
	setDefaults(v)
	_ = v.BindEnv(KeyQueueTriggerName, KeyQueueTriggerName)
	_ = v.BindEnv(KeyTimerTriggerName, KeyTimerTriggerName)
	return v.GetString(KeyQueueTriggerName), v.GetString(KeyTimerTriggerName)
}
