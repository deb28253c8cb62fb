// Package chat is a client for OpenAI-compatible chat completion APIs.
//
// Send returns one complete response. Stream decodes the server-sent event
// stream line by line and reports incremental text through StreamHandlers:
//
//	client := chat.NewClient(cfg, chat.WithLogger(logger.Component("chat")))
//	err := client.Stream(ctx, messages, chat.StreamHandlers{
//		OnChunk:    func(text string) { fmt.Print(text) },
//		OnComplete: func() { fmt.Println() },
//	})
//
// Malformed stream lines are logged and skipped. Nothing is retried.
package chat
