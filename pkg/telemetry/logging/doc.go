// Package logging builds the process-wide slog logger from configuration
// and carries request-scoped fields through context.
package logging
