package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all prdgen server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr    string `json:"listen_addr"`
	DBPath        string `json:"db_path"`
	LogLevel      string `json:"log_level"`
	LLMProvider   string `json:"llm_provider"`
	LLMModel      string `json:"llm_model"`
	LLMBaseURL    string `json:"llm_base_url"`
	LLMTimeout    string `json:"llm_timeout"`
	MaxRevisions  int    `json:"max_revisions"`
	LoopDelay     string `json:"loop_delay"`
	RetentionDays int    `json:"retention_days"`
	SweepCron     string `json:"sweep_cron"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:    ":8000",
		DBPath:        "file:" + filepath.Join(prdgenDir(), "prdgen.db"),
		LogLevel:      "info",
		LLMProvider:   "openai",
		LLMTimeout:    "2m",
		MaxRevisions:  3,
		LoopDelay:     "1s",
		RetentionDays: 7,
		SweepCron:     "0 3 * * *",
	}
}

func prdgenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prdgen"
	}
	return filepath.Join(home, ".prdgen")
}

func settingsPath() string {
	return filepath.Join(prdgenDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("PRDGEN_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PRDGEN_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PRDGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PRDGEN_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = v
	}
	if v := os.Getenv("PRDGEN_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("PRDGEN_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("PRDGEN_LLM_TIMEOUT"); v != "" {
		cfg.LLMTimeout = v
	}
	if v := os.Getenv("PRDGEN_MAX_REVISIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRevisions = n
		}
	}
	if v := os.Getenv("PRDGEN_LOOP_DELAY"); v != "" {
		cfg.LoopDelay = v
	}
	if v := os.Getenv("PRDGEN_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetentionDays = n
		}
	}
	if v := os.Getenv("PRDGEN_SWEEP_CRON"); v != "" {
		cfg.SweepCron = v
	}

	return cfg
}

// duration parses a config duration string, falling back when empty or invalid.
func duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
