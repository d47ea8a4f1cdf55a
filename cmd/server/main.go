package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/ai"
	"github.com/policylab/beancouncil/internal/ai/ollama"
	"github.com/policylab/beancouncil/internal/ai/openai"
	"github.com/policylab/beancouncil/internal/config"
	"github.com/policylab/beancouncil/internal/engine"
	"github.com/policylab/beancouncil/internal/gateway"
	"github.com/policylab/beancouncil/internal/oracle"
	"github.com/policylab/beancouncil/internal/policy"
	"github.com/policylab/beancouncil/internal/report"
	"github.com/policylab/beancouncil/internal/session"
	"github.com/policylab/beancouncil/internal/ws"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Bean Council - refugee education policy negotiation server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  DEFAULT_PROVIDER    AI provider: "openai" or "ollama" (default: openai)
  DEFAULT_MODEL       AI model to use (default: gpt-4o-mini)
  OPENAI_API_KEY      OpenAI API key (required for OpenAI provider)
  OPENAI_BASE_URL     Custom OpenAI API base URL (optional)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  STORE_PATH          Sqlite file for session storage (default: in-memory)
  RESEND_API_KEY      API key for report mail delivery (optional)
  REPORT_TO           Recipient address for report mails (optional)
  REPORT_FILE         Path for the report file sink (default: ./beancouncil-reports.txt)
  REPORT_ENABLED      Enable report export (default: true)
  BUDGET_LIMIT        Policy package budget (default: 14)
  CONSENSUS_QUORUM    Agents required at/above the happy threshold (default: 2)
  HAPPY_THRESHOLD     Happiness cutoff for consensus (default: 0.5)
  DEBOUNCE_MS         Oracle debounce quiet window in ms (default: 1500)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Bean Council %s\n", version)
		return
	}

	cfg := config.FromEnv()
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Session store: sqlite when configured, memory otherwise.
	var store session.Store
	if cfg.StorePath != "" {
		st, err := session.OpenSqlite(cfg.StorePath)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()
		store = st
	} else {
		store = session.NewMemoryStore()
	}
	sy := session.NewSynchronizer(store, cfg.MaxPlayers)

	// Oracle provider
	var provider ai.Provider
	switch strings.ToLower(cfg.DefaultProvider) {
	case "ollama":
		provider = ollama.New(cfg.OllamaHost)
	default:
		provider = openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	orc := oracle.NewProviderOracle(provider, cfg.DefaultModel)

	// One engine (with its own gateway and cache) per connection, so
	// concurrent negotiations never share judgments.
	newEngine := func(onChange func()) *engine.Engine {
		gw := gateway.New(orc, gateway.Options{Quiet: cfg.DebounceQuiet, Timeout: cfg.OracleTimeout})
		return engine.New(gw, engine.Options{
			Quorum:           cfg.ConsensusQuorum,
			HappyThreshold:   cfg.HappyThreshold,
			NeutralHappiness: cfg.NeutralHappiness,
		}, onChange)
	}

	sock := ws.New(sy, newEngine, cfg.BudgetLimit)
	io := sock.Mount(r)
	defer io.Close()

	// Report sinks: fire-and-forget, never blocking game completion.
	var sinks []report.Sink
	if cfg.ReportEnabled {
		sinks = append(sinks, &report.FileSink{Path: cfg.ReportFile})
		if cfg.ResendAPIKey != "" && cfg.ReportTo != "" {
			sinks = append(sinks, report.NewMailSink(cfg.ResendAPIKey, cfg.ReportFrom, cfg.ReportTo))
		}
	}
	dispatcher := report.NewDispatcher(15*time.Second, sinks...)

	r.POST("/api/report", func(c *gin.Context) {
		var rep report.Report
		if err := c.BindJSON(&rep); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_report"})
			return
		}
		dispatcher.Submit(&rep)
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	// Point read for a session document.
	r.GET("/api/session/:id", func(c *gin.Context) {
		sess, err := sy.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": session.Code(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess, "consensus": sess.ConsensusReached()})
	})

	// Static catalog for clients.
	r.GET("/api/catalog", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"areas": policy.Catalog, "budget": cfg.BudgetLimit})
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
