package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// MailJob is one outbound email waiting for a worker.
type MailJob struct {
	To      string
	Subject string
	Body    string
}

type Worker struct {
	ID         int
	WorkerPool chan chan MailJob
	JobChannel chan MailJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan MailJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan MailJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(MailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing mail job", "worker_id", w.ID, "to", job.To)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client delivers transactional mail through an HTTP mail API. Sends are
// queued and processed by a small worker pool so callers never block on the
// provider.
type Client struct {
	apiURL      string
	apiKey      string
	fromAddress string
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan MailJob
	workerPool chan chan MailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	APIURL       string
	APIKey       string
	FromAddress  string
	SendTimeout  time.Duration
	MaxWorkers   int
	JobQueueSize int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &Client{
		apiURL:      config.APIURL,
		apiKey:      config.APIKey,
		fromAddress: config.FromAddress,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan MailJob, jobQueueSize),
		workerPool: make(chan chan MailJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.deliver)
		}

		c.wg.Add(1)
		go c.dispatch()

		c.logger.Info("mailer worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down mailer client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("mailer client shutdown complete")
}

// Send queues an email for delivery. A full queue is reported to the caller
// so the surrounding flow can decide whether that is fatal.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("mail recipient is required")
	}

	job := MailJob{To: to, Subject: subject, Body: body}

	select {
	case c.jobQueue <- job:
		c.logger.Info("mail job queued",
			"to", to,
			"subject", subject,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		c.logger.Warn("mail queue full, rejecting send",
			"to", to,
			"queue_capacity", cap(c.jobQueue))
		return fmt.Errorf("mail queue full, please try again later")
	}
}

func (c *Client) deliver(job MailJob) {
	payload := map[string]interface{}{
		"from":    c.fromAddress,
		"to":      job.To,
		"subject": job.Subject,
		"body":    job.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal mail payload", "error", err, "to", job.To)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.Error("failed to create mail request", "error", err, "to", job.To)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpClient := &http.Client{Timeout: c.sendTimeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Error("mail delivery failed", "error", err, "to", job.To)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.logger.Warn("mail API returned error status",
			"status_code", resp.StatusCode, "to", job.To)
		return
	}

	c.logger.Info("mail delivered", "to", job.To, "subject", job.Subject)
}
