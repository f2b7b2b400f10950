package cleanup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TaskRemoveFiles is the asynq task type carrying paths to remove.
const TaskRemoveFiles = "files:remove"

// RemoveFilesPayload is the task payload.
type RemoveFilesPayload struct {
	Paths []string `json:"paths"`
}

// NewRemoveFilesTask builds a removal task.
func NewRemoveFilesTask(paths []string) (*asynq.Task, error) {
	payload, err := json.Marshal(RemoveFilesPayload{Paths: paths})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRemoveFiles, payload), nil
}

// RedisConnOpt converts a redis:// URL into asynq connection options.
func RedisConnOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

// QueueCleaner enqueues removals as retryable jobs, removing inline when
// the queue is unreachable.
type QueueCleaner struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	fallback *InlineCleaner
	logger   zerolog.Logger
}

// NewQueueCleaner creates a cleaner backed by an asynq client.
func NewQueueCleaner(client *asynq.Client, queue string, maxRetry int, fallback *InlineCleaner, logger zerolog.Logger) *QueueCleaner {
	if queue == "" {
		queue = "default"
	}
	return &QueueCleaner{
		client:   client,
		queue:    queue,
		maxRetry: maxRetry,
		fallback: fallback,
		logger:   logger,
	}
}

// Cleanup implements Cleaner.
func (c *QueueCleaner) Cleanup(ctx context.Context, paths ...string) {
	paths = compact(paths)
	if len(paths) == 0 {
		return
	}

	task, err := NewRemoveFilesTask(paths)
	if err == nil {
		_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(c.maxRetry))
	}
	if err != nil {
		c.logger.Warn().Err(err).Strs("paths", paths).Msg("Cleanup queue unavailable, removing inline")
		_ = c.fallback.remove(ctx, paths)
	}
}

// Close releases the asynq client.
func (c *QueueCleaner) Close() error {
	return c.client.Close()
}

// HandleRemoveFiles returns the task handler. A failed removal returns an
// error so that asynq retries the whole task; removal is idempotent.
func HandleRemoveFiles(cleaner *InlineCleaner) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload RemoveFilesPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("decode %s payload: %v: %w", TaskRemoveFiles, err, asynq.SkipRetry)
		}
		return cleaner.remove(ctx, compact(payload.Paths))
	}
}

// Worker consumes removal tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger zerolog.Logger
}

// NewWorker creates a worker for queue.
func NewWorker(opt asynq.RedisConnOpt, queue string, concurrency int, cleaner *InlineCleaner, logger zerolog.Logger) *Worker {
	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      asynqLogger{logger: logger},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRemoveFiles, HandleRemoveFiles(cleaner))

	return &Worker{server: server, mux: mux, logger: logger}
}

// Run processes tasks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start cleanup worker: %w", err)
	}
	w.logger.Info().Msg("Cleanup worker started")
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

// asynqLogger routes asynq's logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
