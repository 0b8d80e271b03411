package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/corpusgraph/internal/queue"
	"github.com/OFFIS-RIT/corpusgraph/internal/storage"
	"github.com/OFFIS-RIT/corpusgraph/internal/util"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	oai "github.com/OFFIS-RIT/corpusgraph/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/corpusgraph/pkg/ai/openai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger/console"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// maxRetries is the redelivery cap before a message goes to the DLQ.
const maxRetries = 10

type delivery struct {
	msg       amqp.Delivery
	queueName string
}

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	s3Client := storage.NewS3Client(ctx)
	aiClient := newAIClient()

	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	pgConn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.QueueNames); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// One consumer channel with prefetch 1, so the worker handles a
	// single message at a time across all queues.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()
	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	deliveries := make(chan delivery)
	for _, queueName := range queue.QueueNames {
		go consume(ctx, consumerCh, queueName, deliveries)
	}

	logger.Info("Listening for messages")

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case d := <-deliveries:
				started := time.Now()
				logger.Info("Received message", "queue", d.queueName)

				err := handle(ctx, d, s3Client, aiClient, ch, pgConn)
				if err != nil {
					logger.Error("Error processing message", "queue", d.queueName, "err", err)
					retryOrDeadLetter(consumerCh, d.msg, d.queueName)
				} else {
					if ackErr := d.msg.Ack(false); ackErr != nil {
						logger.Error("Failed to ack message", "err", ackErr)
					}
					logger.Info("Message processed successfully", "queue", d.queueName)
				}

				reportMetrics(aiClient, started)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func newAIClient() ai.GraphAIClient {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

// consume forwards deliveries of one queue into the shared channel
// until ctx ends or the broker closes the stream.
func consume(ctx context.Context, ch *amqp.Channel, queueName string, out chan<- delivery) {
	msgs, err := ch.Consume(queueName, queueName+"_consumer", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queueName, "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping consumer", "queue", queueName)
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queueName)
				return
			}
			out <- delivery{msg: msg, queueName: queueName}
		}
	}
}

func handle(ctx context.Context, d delivery, s3Client *s3.Client, aiClient ai.GraphAIClient, ch *amqp.Channel, pgConn *pgxpool.Pool) error {
	body := string(d.msg.Body)
	switch d.queueName {
	case queue.IngestQueue:
		return queue.ProcessIngestMessage(ctx, s3Client, aiClient, ch, pgConn, body)
	case queue.KNNQueue:
		return queue.ProcessKNNMessage(ctx, pgConn, body)
	case queue.DeleteQueue:
		return queue.ProcessDeleteMessage(ctx, s3Client, pgConn, body)
	default:
		return fmt.Errorf("no processor for queue %s", d.queueName)
	}
}

// retryOrDeadLetter republishes a failed message to its retry queue
// with an incremented x-retries header, or to the DLQ once the cap is
// reached. Publish failures fall back to a requeueing nack.
func retryOrDeadLetter(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	target := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	if retries >= maxRetries {
		target = queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", target)
	}

	pubErr := ch.Publish("", target, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        msg.Body,
		Headers:     headers,
	})
	if pubErr != nil {
		logger.Error("Failed to republish message", "target", target, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}

func reportMetrics(aiClient ai.GraphAIClient, started time.Time) {
	metrics := aiClient.GetMetrics()
	logger.Info(
		"AI Metrics",
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", clockFormat(time.Duration(metrics.DurationMs)*time.Millisecond),
	)
	logger.Info("Processing time", "duration", clockFormat(time.Since(started)))
	logger.Info("Waiting for next message")
	aiClient.ResetMetrics()
}

func clockFormat(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
