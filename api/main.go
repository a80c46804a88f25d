package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/lawgpt-ru/lawsearch/backend/internal/config"
	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
	"github.com/lawgpt-ru/lawsearch/backend/internal/logger"
	"github.com/lawgpt-ru/lawsearch/backend/internal/research"
	"github.com/lawgpt-ru/lawsearch/backend/internal/search"
	"github.com/lawgpt-ru/lawsearch/backend/internal/websearch"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	// A dead Elasticsearch is logged once; the service keeps running in
	// degraded mode and answers searches from the endpoint fallback or with
	// empty results.
	var backend search.Backend
	esClient, err := esclient.New(cfg.ElasticsearchAddr, cfg.ElasticsearchUser, cfg.ElasticsearchPass, log)
	if err != nil {
		log.Error("init elasticsearch, continuing degraded", slog.Any("err", err))
		esClient = nil
	} else {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := esClient.Ping(pingCtx); pingErr != nil {
			log.Error("elasticsearch unreachable, continuing degraded", slog.Any("err", pingErr))
			esClient = nil
		} else {
			backend = esClient
		}
		cancel()
	}

	endpoint := search.NewEndpoint(cfg.RetrieverEndpoint, cfg.RetrieverArgs)
	retriever := search.NewRetriever(backend, search.IndicesFromConfig(&cfg.Search), endpoint, log)

	var web research.WebSearcher
	if googleCfg, gerr := config.LoadGoogle(); gerr != nil {
		log.Warn("web search disabled", slog.Any("err", gerr))
	} else if client, cerr := websearch.New(googleCfg, log); cerr != nil {
		log.Warn("web search disabled", slog.Any("err", cerr))
	} else {
		web = client
	}

	researchService := research.NewService()
	researchService.Register(research.LegislationAnalysis, research.NewAdapter(research.Config{
		Type:               research.LegislationAnalysis,
		DepthLevels:        2,
		BreadthQueries:     3,
		IncludeCaseLaw:     true,
		IncludeLegislation: true,
	}, retriever, web, log))
	researchService.Register(research.CaseLawResearch, research.NewAdapter(research.Config{
		Type:                  research.CaseLawResearch,
		DepthLevels:           3,
		BreadthQueries:        4,
		IncludeCaseLaw:        true,
		IncludeExpertOpinions: true,
	}, retriever, web, log))

	srv := &server{log: log, cfg: cfg, es: esClient, retriever: retriever, research: researchService}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/search", srv.handleSearch)
	r.Post("/research", srv.handleResearch)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	es        *esclient.Client
	retriever *search.Retriever
	research  *research.Service
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.es == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "elasticsearch unavailable"})
		return
	}

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}

	limit := clampInt(r.URL.Query().Get("limit"), s.cfg.DefaultLimit, s.cfg.MaxLimit)
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))

	var result search.Result
	if scope == "decisions" {
		result = s.retriever.SearchDecisions(ctx, query, limit)
	} else {
		result = s.retriever.Search(ctx, query, limit)
	}

	writeJSON(w, http.StatusOK, result)
}

type researchRequest struct {
	Question string        `json:"question"`
	Type     research.Type `json:"research_type"`
}

func (s *server) handleResearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	outcome, err := s.research.Conduct(ctx, req.Question, req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
