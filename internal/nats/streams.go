package nats

import (
	"context"
	"time"
)

// Stream names
const (
	StreamJobs = "JAVACG_JOBS"
)

// Subject patterns for revision routing
const (
	// SubjectRevisionsAll matches all revision subjects
	SubjectRevisionsAll = "revisions.>"

	// SubjectRevisionsMaven carries Maven coordinate records to analyze
	SubjectRevisionsMaven = "revisions.maven"
)

// Consumer names
const (
	ConsumerMaven = "maven-worker"
)

// DefaultStreamConfig returns the default stream configuration for revision jobs
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:        StreamJobs,
		Subjects:    []string{SubjectRevisionsAll},
		MaxMsgs:     100000,
		MaxBytes:    1024 * 1024 * 500, // 500MB
		MaxAge:      7 * 24 * time.Hour,
		Replicas:    1,
		Description: "Maven revision processing stream",
	}
}

// SetupStreams creates the revision stream and its consumers
func (c *Client) SetupStreams(ctx context.Context) error {
	_, err := c.CreateStream(ctx, DefaultStreamConfig())
	if err != nil {
		return err
	}

	if _, err := c.CreateConsumer(ctx, StreamJobs, ConsumerMaven, SubjectRevisionsMaven); err != nil {
		return err
	}

	return nil
}
