package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nivasraf/caai-logbook/internal/types"
)

const (
	SubjectConvertJobs = "jobs.convert"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist. Jobs survive restarts until a
	// worker picks them up.
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "CONVERT_JOBS",
		Subjects: []string{SubjectConvertJobs},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishJob publishes a conversion job to NATS
func (c *Client) PublishJob(job *types.ConversionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = c.js.Publish(SubjectConvertJobs, data)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	return nil
}

// SubscribeJobs subscribes to conversion jobs
func (c *Client) SubscribeJobs(handler func(*types.ConversionJob)) error {
	_, err := c.js.Subscribe(SubjectConvertJobs, func(msg *nats.Msg) {
		var job types.ConversionJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			fmt.Printf("Error unmarshaling job: %v\n", err)
			return
		}
		handler(&job)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
