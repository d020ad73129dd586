// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter connects the auth service to external infrastructure that
// is not the primary database.
//
// It ships two integrations:
//   - [SessionEventPublisher] pushes session lifecycle events to RabbitMQ so
//     other services can react to logins, rotations and revocations.
//   - [RateLimiter] is a Redis token bucket guarding the credential endpoints.
//
// Both fall back to no-op implementations when their backend is not
// configured, so the service runs with PostgreSQL alone.
package adapter

import (
	"context"
	"time"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// SessionEventPublisher delivers session lifecycle events to a broker.
// Publish failures must never fail the operation that produced the event;
// callers log and continue.
type SessionEventPublisher interface {
	Publish(ctx context.Context, event models.SessionEvent) error
	Close() error
}

// RateLimiter consumes one token for key and reports whether the request may
// proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
	Close() error
}

// RateDecision is the outcome of one [RateLimiter.Allow] call.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}
