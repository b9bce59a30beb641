// Package middleware provides the HTTP middleware for the preview server:
// W3C Extended Log Format access logging and Prometheus request metrics.
package middleware
