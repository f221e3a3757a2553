package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	alertrepo "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/infrastructure/postgres"
	alerthttp "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/interfaces/http"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/notify"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/auth"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/observability/metrics"
	operatorrepo "github.com/G-OrdiaD/GreenhouseSolution/internal/operators/infrastructure/postgres"
	rangedomain "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
	rangerepo "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/infrastructure/postgres"
	rangehttp "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/interfaces/http"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/readings/application"
	readingrepo "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/infrastructure/postgres"
	readinghttp "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBPoolSize)
	db.SetMaxIdleConns(cfg.DBPoolSize)

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	readingRepo := readingrepo.NewReadingRepository(db)
	readingQuery := readingrepo.NewReadingQuery(db)
	rangeRepo := rangerepo.NewRangeRepository(db)
	alertRepo := alertrepo.NewAlertRepository(db)
	recipientRepo := operatorrepo.NewRecipientRepository(db)

	if err := rangeRepo.EnsureDefaults(context.Background(), rangedomain.Defaults()); err != nil {
		logger.Fatalf("range defaults error: %v", err)
	}

	notifyCfg, err := notify.LoadConfig()
	if err != nil {
		logger.Fatalf("notify config error: %v", err)
	}
	var channel notify.Channel
	if notifyCfg.GatewayURL != "" {
		webhook, err := notify.NewWebhookChannel(notifyCfg.GatewayURL)
		if err != nil {
			logger.Fatalf("notify channel error: %v", err)
		}
		channel = webhook
	} else {
		logger.Printf("messaging gateway not configured; alert dispatch disabled")
	}
	tpl, err := notify.NewTemplate(notifyCfg.Template)
	if err != nil {
		logger.Fatalf("notify template error: %v", err)
	}
	dispatcher, err := notify.NewDispatcher(recipientRepo, channel, tpl, logger,
		notify.WithMaxInFlight(notifyCfg.MaxInFlight),
		notify.WithSendTimeout(notifyCfg.SendTimeoutDuration()),
	)
	if err != nil {
		logger.Fatalf("alert dispatcher error: %v", err)
	}

	ingestService, err := application.NewService(db, readingRepo, alertRepo, rangeRepo, logger,
		application.WithNotifier(dispatcher))
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}

	ingestHandler, err := readinghttp.NewIngestHandler(ingestService, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}
	historyHandler, err := readinghttp.NewHistoryHandler(readingQuery)
	if err != nil {
		logger.Fatalf("history handler error: %v", err)
	}
	historyExport, err := readinghttp.NewHistoryExportHandler(readingQuery)
	if err != nil {
		logger.Fatalf("history export error: %v", err)
	}
	alertHandler, err := alerthttp.NewHandler(alertRepo)
	if err != nil {
		logger.Fatalf("alerts handler error: %v", err)
	}
	alertReport, err := alerthttp.NewReportHandler(alertRepo)
	if err != nil {
		logger.Fatalf("alert report error: %v", err)
	}
	rangeHandler, err := rangehttp.NewHandler(rangeRepo)
	if err != nil {
		logger.Fatalf("ranges handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ingest/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), time.Duration(cfg.IngestSkewSeconds)*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/ingest/readings", ingestAuth.Wrap(ingestHandler))
	mux.Handle("/api/v1/history", historyHandler)
	mux.Handle("/api/v1/exports/history.xlsx", historyExport)
	mux.Handle("/api/v1/exports/alerts.pdf", alertReport)
	mux.Handle("/api/v1/alerts", alertHandler)
	mux.Handle("/api/v1/alerts/", alertHandler)
	mux.Handle("/api/v1/ranges", rangeHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger),
	}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	DBPoolSize        int
	HTTPAddr          string
	JWTSecret         string
	IngestSecret      string
	IngestSkewSeconds int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		DBPoolSize:        getenvIntDefault("DB_POOL_SIZE", 5),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:      getenvDefault("INGEST_HMAC_SECRET", ""),
		IngestSkewSeconds: getenvIntDefault("INGEST_MAX_SKEW_SECONDS", 300),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
