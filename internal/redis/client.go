package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nivasraf/caai-logbook/internal/types"
	"github.com/redis/go-redis/v9"
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// SetJobStatus stores the current status of a conversion job
func (c *Client) SetJobStatus(ctx context.Context, status *types.JobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}

	key := fmt.Sprintf("job:%s", status.ID)
	return c.client.Set(ctx, key, data, 24*time.Hour).Err()
}

// getData retrieves data from Redis and unmarshals it into the target
func (c *Client) getData(ctx context.Context, key string, target interface{}, dataType string) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil // Data not found
	}
	if err != nil {
		return fmt.Errorf("failed to get %s data: %w", dataType, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", dataType, err)
	}

	return nil
}

// GetJobStatus retrieves the status of a conversion job. Returns nil when
// the job is unknown or expired.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*types.JobStatus, error) {
	key := fmt.Sprintf("job:%s", jobID)
	var status types.JobStatus
	if err := c.getData(ctx, key, &status, "job status"); err != nil {
		return nil, err
	}
	if status.ID == "" {
		return nil, nil
	}
	return &status, nil
}

// DeleteJobStatus removes a job status entry
func (c *Client) DeleteJobStatus(ctx context.Context, jobID string) error {
	key := fmt.Sprintf("job:%s", jobID)
	return c.client.Del(ctx, key).Err()
}

// StoreReconciliation caches the reconciliation report of a finished job
func (c *Client) StoreReconciliation(ctx context.Context, jobID string, rep *types.ReconciliationReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal reconciliation report: %w", err)
	}

	key := fmt.Sprintf("reconciliation:%s", jobID)
	return c.client.Set(ctx, key, data, 7*24*time.Hour).Err()
}

// GetReconciliation retrieves a cached reconciliation report
func (c *Client) GetReconciliation(ctx context.Context, jobID string) (*types.ReconciliationReport, error) {
	key := fmt.Sprintf("reconciliation:%s", jobID)
	var rep types.ReconciliationReport
	if err := c.getData(ctx, key, &rep, "reconciliation"); err != nil {
		return nil, err
	}
	return &rep, nil
}

// StoreGrandTotals caches the grand totals of a finished job
func (c *Client) StoreGrandTotals(ctx context.Context, jobID string, g *types.GrandTotals) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal grand totals: %w", err)
	}

	key := fmt.Sprintf("totals:%s", jobID)
	return c.client.Set(ctx, key, data, 7*24*time.Hour).Err()
}

// GetGrandTotals retrieves cached grand totals
func (c *Client) GetGrandTotals(ctx context.Context, jobID string) (*types.GrandTotals, error) {
	key := fmt.Sprintf("totals:%s", jobID)
	var g types.GrandTotals
	if err := c.getData(ctx, key, &g, "grand totals"); err != nil {
		return nil, err
	}
	return &g, nil
}
