// Package backend provides the Quill web application server.

// This package contains the main application entry points under cmd/.
// The implementation is organized into subpackages:

// - internal/handlers: HTTP handlers for all page and form routes
// - internal/models: Data models and database schemas
// - internal/auth: Registration, login and session middleware
// - internal/pagination: Page windows for listing views
// - internal/validation: Image attachment extension checks
// - internal/storage: Image storage (S3 and local disk)
// - internal/database: Database connection and migrations
// - internal/seed: Development data seeding
// - internal/middleware: Request ID, logging, metrics, rate limiting
// - internal/cache: Redis client for the rate limiter
// - internal/telemetry: OpenTelemetry tracing setup

// See the individual package documentation for detailed reference.
package backend
