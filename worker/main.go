package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/lawgpt-ru/lawsearch/backend/internal/config"
	"github.com/lawgpt-ru/lawsearch/backend/internal/dedupe"
	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
	"github.com/lawgpt-ru/lawsearch/backend/internal/logger"
	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
	"github.com/lawgpt-ru/lawsearch/backend/internal/processing"
)

// rawChunk is one court-document chunk as published by the crawler.
type rawChunk struct {
	DocID        string `json:"doc_id"`
	ChunkID      int    `json:"chunk_id"`
	CaseNumber   string `json:"case_number"`
	CourtName    string `json:"court_name"`
	Date         string `json:"date"`
	DecisionDate string `json:"decision_date"`
	Subject      string `json:"subject"`
	Claimant     string `json:"claimant"`
	Defendant    string `json:"defendant"`
	FullText     string `json:"full_text"`
	Instance     string `json:"instance"`
	Region       string `json:"region"`
	Judges       string `json:"judges"`
	Arguments    string `json:"arguments"`
	Conclusion   string `json:"conclusion"`
	Result       string `json:"result"`
	Laws         string `json:"laws"`
	Amount       string `json:"amount"`
	VidDokumenta string `json:"vid_dokumenta"`
	Vidpr        string `json:"vidpr"`
}

type docIndexer interface {
	IndexDocument(ctx context.Context, index, id string, doc any) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := esclient.New(cfg.ElasticsearchAddr, cfg.ElasticsearchUser, cfg.ElasticsearchPass, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.New(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("index", cfg.DecisionsIndex),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			dlqMsg := kafka.Message{
				Value: msg.Value,
				Headers: append(msg.Headers,
					kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
					kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
					kafka.Header{Key: "error", Value: []byte(err.Error())},
					kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
				),
			}

			dlqSuccess := false
			for attempt := 0; attempt < 5; attempt++ {
				if dlqErr := dlqWriter.WriteMessages(ctx, dlqMsg); dlqErr == nil {
					dlqSuccess = true
					log.Info("message sent to DLQ",
						slog.Int("partition", msg.Partition),
						slog.Int64("offset", msg.Offset),
						slog.Int("attempt", attempt+1),
					)
					break
				} else {
					backoff := time.Duration(1<<uint(attempt)) * time.Second
					log.Warn("DLQ write failed, retrying",
						slog.Any("err", dlqErr),
						slog.Int("attempt", attempt+1),
						slog.Duration("backoff", backoff),
					)
					select {
					case <-time.After(backoff):
						// Continue to next attempt
					case <-ctx.Done():
						log.Info("context canceled during DLQ retry")
						return
					}
				}
			}

			// Only commit if DLQ write succeeded; otherwise skip commit and reprocess on restart
			if dlqSuccess {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, esClient docIndexer, cache *dedupe.Cache, cfg *config.Worker, msg kafka.Message) error {
	var payload rawChunk
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return err
	}

	fullText := processing.CleanText(payload.FullText)
	caseNumber := strings.TrimSpace(payload.CaseNumber)
	if fullText == "" {
		return errors.New("empty full_text")
	}

	doc := models.CourtDocument{
		DocID:        strings.TrimSpace(payload.DocID),
		ChunkID:      payload.ChunkID,
		CaseNumber:   caseNumber,
		CourtName:    strings.TrimSpace(payload.CourtName),
		Date:         processing.NormalizeDate(strings.TrimSpace(payload.Date)),
		DecisionDate: processing.NormalizeDate(strings.TrimSpace(payload.DecisionDate)),
		Subject:      strings.TrimSpace(payload.Subject),
		Claimant:     strings.TrimSpace(payload.Claimant),
		Defendant:    strings.TrimSpace(payload.Defendant),
		FullText:     fullText,
		Instance:     strings.TrimSpace(payload.Instance),
		Region:       strings.TrimSpace(payload.Region),
		Judges:       strings.TrimSpace(payload.Judges),
		Arguments:    strings.TrimSpace(payload.Arguments),
		Conclusion:   strings.TrimSpace(payload.Conclusion),
		Result:       strings.TrimSpace(payload.Result),
		Laws:         strings.TrimSpace(payload.Laws),
		Amount:       strings.TrimSpace(payload.Amount),
		VidDokumenta: strings.TrimSpace(payload.VidDokumenta),
		Vidpr:        strings.TrimSpace(payload.Vidpr),
		IndexedAt:    time.Now().UTC(),
	}

	id := processing.BuildChunkID(doc.DocID, doc.ChunkID, doc.CaseNumber)
	if id == "" {
		id = uuid.NewString()
	}

	if cache.Seen(id) {
		log.Debug("duplicate chunk", slog.String("id", id))
		return nil
	}

	if err := esClient.IndexDocument(ctx, cfg.DecisionsIndex, id, doc); err != nil {
		return err
	}

	cache.Remember(id)
	log.Info("indexed chunk",
		slog.String("id", id),
		slog.String("case_number", doc.CaseNumber),
		slog.Int("chunk_id", doc.ChunkID),
	)
	return nil
}
