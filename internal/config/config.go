package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// retrieverArgPrefix marks environment variables forwarded verbatim to the
// external retriever endpoint.
const retrieverArgPrefix = "RETRIEVER_ARG_"

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr string
	ElasticsearchUser string
	ElasticsearchPass string
}

// Search holds the index registry and the optional external retriever
// endpoint used when Elasticsearch is unreachable.
type Search struct {
	Common
	DecisionsIndex    string
	ReviewsIndex      string
	ArticlesIndex     string
	LawChunksIndex    string
	FormsIndex        string
	RetrieverEndpoint string
	RetrieverArgs     map[string]string
}

// API describes HTTP-layer configuration.
type API struct {
	Search
	BindAddr     string
	DefaultLimit int
	MaxLimit     int
}

// Worker holds configuration for the Kafka -> Elasticsearch ingest worker.
type Worker struct {
	Common
	DecisionsIndex string
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the stale-chunk cleanup loop.
type Retention struct {
	Search
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// Google configures the Custom Search web retriever.
type Google struct {
	APIKey       string
	CXKey        string
	SafeSearch   bool
	Language     string
	Country      string
	QueryDomains []string
	DateRestrict string
}

// LoadSearch builds a Search config from environment variables.
func LoadSearch() (*Search, error) {
	c := &Search{
		Common:            loadCommon(),
		DecisionsIndex:    getEnv("ES_INDEX_COURT_DECISIONS", "court_decisions_index"),
		ReviewsIndex:      getEnv("ES_INDEX_COURT_REVIEWS", "court_reviews_index"),
		ArticlesIndex:     getEnv("ES_INDEX_LEGAL_ARTICLES", "legal_articles_index"),
		LawChunksIndex:    getEnv("ES_INDEX_RUSLAWOD_CHUNKS", "ruslawod_chunks_index"),
		FormsIndex:        getEnv("ES_INDEX_PROCEDURAL_FORMS", "procedural_forms_index"),
		RetrieverEndpoint: getEnv("RETRIEVER_ENDPOINT", ""),
		RetrieverArgs:     retrieverArgs(os.Environ()),
	}

	for _, index := range []string{c.DecisionsIndex, c.ReviewsIndex, c.ArticlesIndex, c.LawChunksIndex, c.FormsIndex} {
		if strings.TrimSpace(index) == "" {
			return nil, fmt.Errorf("index names cannot be empty")
		}
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	search, err := LoadSearch()
	if err != nil {
		return nil, err
	}

	c := &API{
		Search:       *search,
		BindAddr:     getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultLimit: getInt("API_RESULT_LIMIT", 10),
		MaxLimit:     getInt("API_MAX_RESULT_LIMIT", 50),
	}

	if c.DefaultLimit <= 0 {
		return nil, fmt.Errorf("API_RESULT_LIMIT must be positive")
	}
	if c.MaxLimit <= 0 {
		return nil, fmt.Errorf("API_MAX_RESULT_LIMIT must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return nil, fmt.Errorf("API_RESULT_LIMIT cannot exceed API_MAX_RESULT_LIMIT")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		DecisionsIndex: getEnv("ES_INDEX_COURT_DECISIONS", "court_decisions_index"),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "court_documents_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "court-doc-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	search, err := LoadSearch()
	if err != nil {
		return nil, err
	}

	c := &Retention{
		Search:    *search,
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "2160h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadGoogle builds a Google config from environment variables. Both the API
// key and the search engine id are required.
func LoadGoogle() (*Google, error) {
	c := &Google{
		APIKey:       strings.Trim(getEnv("GOOGLE_API_KEY", ""), `"`),
		CXKey:        getEnv("GOOGLE_CX_KEY", ""),
		SafeSearch:   getBool("GOOGLE_SAFE_SEARCH", true),
		Language:     getEnv("GOOGLE_SEARCH_LANG", ""),
		Country:      getEnv("GOOGLE_SEARCH_COUNTRY", ""),
		QueryDomains: splitAndTrim(getEnv("GOOGLE_QUERY_DOMAINS", "")),
		DateRestrict: getEnv("GOOGLE_DATE_RESTRICT", ""),
	}

	if c.APIKey == "" || c.CXKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY and GOOGLE_CX_KEY must be set")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr: getEnv("ES_HOST", "http://elasticsearch:9200"),
		ElasticsearchUser: getEnv("ES_USER", ""),
		ElasticsearchPass: getEnv("ES_PASS", ""),
	}
}

// retrieverArgs collects RETRIEVER_ARG_-prefixed variables into a map with
// lowercased keys, mirroring how they are forwarded to the endpoint.
func retrieverArgs(environ []string) map[string]string {
	args := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, retrieverArgPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, retrieverArgPrefix))
		if name != "" {
			args[name] = value
		}
	}
	return args
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
