package config

import (
	"os"
	"strconv"
)

// FromEnv overlays WAITLINE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	setString(&cfg.HTTPAddr, "WAITLINE_HTTP_ADDR")
	setString(&cfg.Redis.Addr, "WAITLINE_REDIS_ADDR")
	setString(&cfg.Redis.Password, "WAITLINE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "WAITLINE_REDIS_DB")
	setString(&cfg.Auth.HashKey, "WAITLINE_AUTH_HASH_KEY")
	setString(&cfg.Auth.BlockKey, "WAITLINE_AUTH_BLOCK_KEY")
	setInt(&cfg.Auth.TokenTTLMinutes, "WAITLINE_AUTH_TOKEN_TTL_MINUTES")
	setString(&cfg.Estimator.ModelPath, "WAITLINE_ESTIMATOR_MODEL_PATH")
	setInt(&cfg.Estimator.TimeoutMs, "WAITLINE_ESTIMATOR_TIMEOUT_MS")
	setInt(&cfg.Policy.BanThreshold, "WAITLINE_POLICY_BAN_THRESHOLD")
	setInt(&cfg.Policy.CompletionReward, "WAITLINE_POLICY_COMPLETION_REWARD")
	setInt(&cfg.Journal.MaxEntries, "WAITLINE_JOURNAL_MAX_ENTRIES")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
