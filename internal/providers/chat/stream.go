package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	dataPrefix = "data: "
	doneLine   = "data: [DONE]"

	// maxErrorBody bounds how much of a failed streaming response is kept
	maxErrorBody = 64 * 1024
)

// Stream requests a streamed completion and feeds it to h. OnComplete runs
// once on a clean end of stream; OnError runs once on transport failure or a
// non-2xx answer, and the same error is returned.
func (c *Client) Stream(ctx context.Context, messages []Message, h StreamHandlers) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(c.payload(messages, true)).
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Post(completionsPath)
	if err != nil {
		return c.streamFailed(h, fmt.Errorf("chat stream request: %w", err))
	}

	body := resp.RawBody()
	if body == nil {
		return c.streamFailed(h, ErrNotReadable)
	}
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return c.streamFailed(h, &APIError{Status: resp.StatusCode(), Body: string(data)})
	}

	if err := c.readStream(body, h); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return c.streamFailed(h, err)
	}

	c.metrics.RecordChatRequest("stream", "ok")
	if h.OnComplete != nil {
		h.OnComplete()
	}
	return nil
}

// readStream decodes event-stream lines until EOF. A trailing line without a
// newline is incomplete and discarded.
func (c *Client) readStream(r io.Reader, h StreamHandlers) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
		c.handleLine(line, h)
	}
}

func (c *Client) handleLine(line string, h StreamHandlers) {
	line = strings.TrimSpace(line)
	if line == "" || line == doneLine || !strings.HasPrefix(line, dataPrefix) {
		return
	}

	var chunk StreamChunk
	if err := sonic.UnmarshalString(line[len(dataPrefix):], &chunk); err != nil {
		c.logger.Warn("Failed to parse SSE data", zap.Error(err))
		return
	}

	if text := chunk.Content(); text != "" {
		c.metrics.IncChatChunks()
		if h.OnChunk != nil {
			h.OnChunk(text)
		}
	}
}

func (c *Client) streamFailed(h StreamHandlers, err error) error {
	c.metrics.RecordChatRequest("stream", "error")
	c.logger.Warn("Chat stream failed", zap.Error(err))
	if h.OnError != nil {
		h.OnError(err)
	}
	return err
}
