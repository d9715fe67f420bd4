// Package logx is a thin structured-logging layer over zerolog.
//
// The rest of the codebase uses a small wrapper (logx.Logger) so that:
//   - Console output stays readable (short timestamp + short caller)
//   - File output stays JSON-structured
//   - Call sites never import zerolog directly
package logx
