package main

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/proxy"

	"github.com/redditwatch/api/config"
	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/data/repos"
	"github.com/redditwatch/api/handlers"
	"github.com/redditwatch/api/ingest"
	"github.com/redditwatch/api/matchers"
	"github.com/redditwatch/api/progress"
	"github.com/redditwatch/api/scan"
	"github.com/redditwatch/api/sources"
)

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}

	db.SetMaxOpenConns(90)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cursorRepo := repos.NewCursorRepo(db)
	if err := cursorRepo.Ensure(ctx); err != nil {
		slog.Error("failed to initialize cursors", "error", err)
		os.Exit(1)
	}

	itemRepo := repos.NewItemRepo(db)
	campaignRepo := repos.NewCampaignRepo(db)
	keywordRepo := repos.NewKeywordRepo(db)
	matchRepo := repos.NewMatchRepo(db)

	redisClient, err := progress.Connect(config.Config.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	reporter := progress.NewReporter(redisClient)

	client, err := httpClient(config.Config.ProxyURL)
	if err != nil {
		slog.Error("failed to create http client", "error", err)
		os.Exit(1)
	}
	feedClient := sources.NewRedditClient(client, config.Config.RedditBaseURL, config.Config.RedditUserAgent)

	ingestor := ingest.NewIngestor(
		logger, feedClient, cursorRepo, itemRepo, reporter,
		config.Config.FetchLimit, config.Config.StaleThreshold,
	)
	scanner := scan.NewScanner(
		logger, campaignRepo, keywordRepo, itemRepo, matchRepo,
		matchers.NewLanguageDetector(),
		time.Duration(config.Config.KeywordLookbackMinutes)*time.Minute,
		config.Config.ScanBatchSize,
	)

	scheduler := NewScheduler(
		ingestor, scanner, campaignRepo,
		time.Duration(config.Config.PostFetchInterval)*time.Second,
		time.Duration(config.Config.CommentFetchInterval)*time.Second,
	)
	scheduler.Start(ctx)

	campaigns := handlers.NewCampaignHandler(campaignRepo)
	keywords := handlers.NewKeywordHandler(keywordRepo, campaignRepo)
	matches := handlers.NewMatchHandler(matchRepo)
	items := handlers.NewItemHandler(itemRepo)
	progressHandler := handlers.NewProgressHandler(reporter)
	admin := handlers.NewAdminHandler(itemRepo, cursorRepo, campaignRepo)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /campaigns", handle(campaigns.CreateCampaign))
	mux.HandleFunc("GET /campaigns", handle(campaigns.GetCampaigns))
	mux.HandleFunc("GET /campaigns/{id}", handle(campaigns.GetCampaign))
	mux.HandleFunc("PUT /campaigns/{id}", handle(campaigns.UpdateCampaign))
	mux.HandleFunc("DELETE /campaigns/{id}", handle(campaigns.DeleteCampaign))

	mux.HandleFunc("POST /campaigns/{id}/keywords", handle(keywords.CreateKeyword))
	mux.HandleFunc("GET /campaigns/{id}/keywords", handle(keywords.GetKeywords))
	mux.HandleFunc("PUT /keywords/{id}", handle(keywords.UpdateKeyword))
	mux.HandleFunc("DELETE /keywords/{id}", handle(keywords.DeleteKeyword))
	mux.HandleFunc("POST /keywords/{id}/tags", handle(keywords.CreateTag))
	mux.HandleFunc("DELETE /tags/{id}", handle(keywords.DeleteTag))

	mux.HandleFunc("GET /campaigns/{id}/matches", handle(matches.GetMatches))
	mux.HandleFunc("GET /posts", handle(items.GetPosts))
	mux.HandleFunc("GET /comments", handle(items.GetComments))
	mux.HandleFunc("GET /progress", handle(progressHandler.GetProgress))

	mux.HandleFunc("POST /admin/reset", handle(admin.ResetIngestedData))

	mux.Handle("GET /metrics", promhttp.Handler())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
		if err := db.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
		os.Exit(0)
	}()

	slog.Info("Starting server", "addr", config.Config.ListenAddr)
	err = http.ListenAndServe(config.Config.ListenAddr, withCORS(mux))
	if err != nil {
		slog.Error("failed to start server", "error", err)
	}
}

func httpClient(proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	if proxyURL == "" {
		return client, nil
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "socks5" {
		return client, nil
	}

	// SOCKS5 proxy with authentication
	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
	slog.Info("using SOCKS5 proxy", "proxy", parsedURL.Host)

	return client, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handle(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs)
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res handlers.Result) {
	if res.Code == http.StatusNoContent {
		w.WriteHeader(res.Code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
	if res.Code == http.StatusInternalServerError {
		slog.Error("internal error", "error", res.Error.Error())
	}
}
