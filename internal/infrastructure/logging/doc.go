// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a named child logger so lines can be attributed:
//
//	logger := logging.NewDefault()
//	b := bridge.New(page, bridge.WithLogger(logger.Component("bridge-sdk")))
//	logger.Info("Preview loaded", zap.String("source", src))
package logging
