// Package logger wraps zap for the chime process:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and an optional file tee for autostarted runs without a console.
//
// Services take a context and pull their logger from it, so every log line
// carries the component name it was emitted from.
package logger
