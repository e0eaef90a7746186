// Package tracing wraps OpenTelemetry so that pipeline code can open and
// close spans without importing the SDK. Spans are exported by the stdout
// exporter, to a file when one is configured.
package tracing
