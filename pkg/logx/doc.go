// Package logx configures hwbot's structured logging.
//
// Logger is a small value type on top of zerolog:
//   - Console output stays readable (short timestamp + file:line caller)
//   - File output is JSON-structured
//   - An optional Telegram sink forwards warnings to a chat (min-level + rate limiting)
package logx
