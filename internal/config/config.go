package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries server settings plus the tunable game constants. The
// happiness cutoffs and the consensus quorum are policy knobs, not domain
// law, so they live here behind env overrides instead of as literals
// scattered through the engine.
type Config struct {
	Port            string
	DefaultProvider string
	DefaultModel    string
	OpenAIKey       string
	OpenAIBaseURL   string
	OllamaHost      string

	// StorePath selects the sqlite-backed session store when set;
	// empty keeps sessions in memory.
	StorePath string

	ResendAPIKey  string
	ReportFrom    string
	ReportTo      string
	ReportFile    string
	ReportEnabled bool

	MaxPlayers       int
	BudgetLimit      int
	ConsensusQuorum  int
	HappyThreshold   float64
	NeutralHappiness float64
	DebounceQuiet    time.Duration
	OracleTimeout    time.Duration
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DefaultProvider = getenv("DEFAULT_PROVIDER", "openai")
	c.DefaultModel = getenv("DEFAULT_MODEL", "gpt-4o-mini")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.StorePath = os.Getenv("STORE_PATH")
	c.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	c.ReportFrom = getenv("REPORT_FROM", "reports@beancouncil.local")
	c.ReportTo = os.Getenv("REPORT_TO")
	c.ReportFile = getenv("REPORT_FILE", "./beancouncil-reports.txt")
	c.ReportEnabled = getenv("REPORT_ENABLED", "true") == "true"
	c.MaxPlayers = getint("MAX_PLAYERS", 2)
	c.BudgetLimit = getint("BUDGET_LIMIT", 14)
	c.ConsensusQuorum = getint("CONSENSUS_QUORUM", 2)
	c.HappyThreshold = getfloat("HAPPY_THRESHOLD", 0.5)
	c.NeutralHappiness = getfloat("NEUTRAL_HAPPINESS", 0.4)
	c.DebounceQuiet = time.Duration(getint("DEBOUNCE_MS", 1500)) * time.Millisecond
	c.OracleTimeout = time.Duration(getint("ORACLE_TIMEOUT_MS", 30000)) * time.Millisecond
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
