// Package queue carries resume evaluation jobs over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-evaluator/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultQueue    = "resume_evaluation"
	DefaultPrefetch = 4

	publishTimeout = 5 * time.Second
)

var (
	ErrInvalidJob = errors.New("invalid evaluation job")
	ErrClosed     = errors.New("delivery channel closed by broker")
)

// Job asks a worker to evaluate one resume against its job description.
type Job struct {
	JDID     string `json:"jd_id"`
	ResumeID string `json:"resume_id"`
}

func (j Job) validate() error {
	if strings.TrimSpace(j.JDID) == "" || strings.TrimSpace(j.ResumeID) == "" {
		return fmt.Errorf("%w: jd_id and resume_id are required", ErrInvalidJob)
	}
	return nil
}

// Handler processes a job. A nil return acknowledges the delivery; an error
// dead-letters it without requeueing. Errors wrapping ErrInvalidJob reject it.
type Handler func(ctx context.Context, job Job) error

type Config struct {
	URL      string `mapstructure:"url"`
	Name     string `mapstructure:"name"`
	Prefetch int    `mapstructure:"prefetch"`
}

type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	prefetch int
	logger   *zap.Logger
}

func Dial(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("queue url is required")
	}
	if cfg.Name == "" {
		cfg.Name = DefaultQueue
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = DefaultPrefetch
	}
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Name, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Name, err)
	}

	log = log.With(zap.String("queue", cfg.Name))
	log.Debug("connected to rabbitmq")

	return &Client{conn: conn, channel: ch, queue: cfg.Name, prefetch: cfg.Prefetch, logger: log}, nil
}

func (c *Client) Close() error {
	return errors.Join(c.channel.Close(), c.conn.Close())
}

func (c *Client) Publish(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish job for resume %s: %w", job.ResumeID, err)
	}

	c.logger.Debug("job published", zap.String(logger.FieldJD, job.JDID), zap.String(logger.FieldResume, job.ResumeID))
	return nil
}

// Consume delivers jobs to handler one at a time until ctx is cancelled or
// the broker closes the channel.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.logger.Info("waiting for evaluation jobs")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrClosed
			}
			if err := handleDelivery(ctx, d, handler, c.logger); err != nil {
				return err
			}
		}
	}
}

// handleDelivery settles exactly one delivery. The returned error is an
// acknowledgement failure, which means the channel is gone.
func handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler, log *zap.Logger) error {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Warn("malformed job rejected", zap.Error(err))
		return settle(d.Reject(false))
	}
	if err := job.validate(); err != nil {
		log.Warn("incomplete job rejected", zap.Error(err))
		return settle(d.Reject(false))
	}

	jobLog := log.With(zap.String(logger.FieldJD, job.JDID), zap.String(logger.FieldResume, job.ResumeID))

	if err := handler(ctx, job); err != nil {
		if errors.Is(err, ErrInvalidJob) {
			jobLog.Warn("job rejected by handler", zap.Error(err))
			return settle(d.Reject(false))
		}
		jobLog.Error("evaluation job failed", zap.Error(err))
		return settle(d.Nack(false, false))
	}

	jobLog.Debug("evaluation job done")
	return settle(d.Ack(false))
}

func settle(err error) error {
	if err != nil {
		return fmt.Errorf("settle delivery: %w", err)
	}
	return nil
}
