package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nivasraf/caai-logbook/internal/types"
	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testContainers holds the test containers for integration tests
type testContainers struct {
	nats *natscontainer.NATSContainer
}

// setupTestContainers sets up the test containers for integration tests
func setupTestContainers(t *testing.T) *testContainers {
	ctx := context.Background()

	natsContainer, err := natscontainer.Run(ctx, "nats:2.9-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server is ready"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}

	return &testContainers{
		nats: natsContainer,
	}
}

func (tc *testContainers) terminate(t *testing.T) {
	if err := tc.nats.Terminate(context.Background()); err != nil {
		t.Logf("Failed to terminate NATS container: %v", err)
	}
}

func (tc *testContainers) url(t *testing.T) string {
	natsURL, err := tc.nats.ConnectionString(context.Background())
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}
	return natsURL
}

// TestNATSClient_Integration_Connection tests basic NATS connection
func TestNATSClient_Integration_Connection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers := setupTestContainers(t)
	defer containers.terminate(t)

	client, err := New(containers.url(t))
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	if client.conn == nil {
		t.Error("Expected connection to be established")
	}
	if client.js == nil {
		t.Error("Expected JetStream context to be available")
	}
}

// TestNATSClient_Integration_PublishAndSubscribe tests the job round trip
func TestNATSClient_Integration_PublishAndSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers := setupTestContainers(t)
	defer containers.terminate(t)

	client, err := New(containers.url(t))
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	received := make(chan *types.ConversionJob, 1)
	if err := client.SubscribeJobs(func(job *types.ConversionJob) {
		received <- job
	}); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	job := &types.ConversionJob{
		ID:          "integration-test-job",
		FileName:    "logbook.xlsx",
		StoredPath:  "/data/uploads/logbook.xlsx",
		PilotName:   "Integration Pilot",
		SubmittedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := client.PublishJob(job); err != nil {
		t.Fatalf("Failed to publish job: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != job.ID {
			t.Errorf("ID mismatch: got %q, want %q", got.ID, job.ID)
		}
		if got.FileName != job.FileName {
			t.Errorf("FileName mismatch: got %q, want %q", got.FileName, job.FileName)
		}
		if got.PilotName != job.PilotName {
			t.Errorf("PilotName mismatch: got %q, want %q", got.PilotName, job.PilotName)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for job")
	}
}

// TestNATSClient_Integration_MultipleJobs tests ordered delivery of a batch
func TestNATSClient_Integration_MultipleJobs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers := setupTestContainers(t)
	defer containers.terminate(t)

	client, err := New(containers.url(t))
	if err != nil {
		t.Fatalf("Failed to create NATS client: %v", err)
	}
	defer client.Close()

	const jobCount = 10
	received := make(chan *types.ConversionJob, jobCount)
	if err := client.SubscribeJobs(func(job *types.ConversionJob) {
		received <- job
	}); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	for i := 0; i < jobCount; i++ {
		job := &types.ConversionJob{
			ID:       fmt.Sprintf("job-%d", i),
			FileName: fmt.Sprintf("logbook-%d.csv", i),
		}
		if err := client.PublishJob(job); err != nil {
			t.Fatalf("Failed to publish job %d: %v", i, err)
		}
	}

	seen := make(map[string]bool)
	timeout := time.After(15 * time.Second)
	for len(seen) < jobCount {
		select {
		case job := <-received:
			seen[job.ID] = true
		case <-timeout:
			t.Fatalf("Timed out: received %d of %d jobs", len(seen), jobCount)
		}
	}
}
