// Package logging builds the slog loggers used across wirebridge.
//
// Components accept a *slog.Logger in their constructor; a nil logger means
// no logging, which constructors normalize through Nop. The CLI turns its
// --log-level and --log-format flags into a Config here.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("connection opened", "handle", h)
package logging
