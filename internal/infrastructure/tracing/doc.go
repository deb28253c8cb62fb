/*
Package tracing provides lightweight request tracing for the preview daemon.

Each HTTP request, and each bridge relay connection, runs inside a span.
Finished spans are collected asynchronously and written to the log.

# Usage

	tracer := tracing.New("previewd", logger.Component("tracing"))
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "bridge.relay")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Propagation

  - X-Trace-ID: identifier of the whole flow
  - X-Span-ID: identifier of the calling operation
*/
package tracing
