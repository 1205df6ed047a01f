package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrStreamingUnsupported 表示ResponseWriter不支持Flush
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSEWriter 向HTTP响应写入Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter 设置Server-Sent Events响应头并返回写入器
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// SendEvent 发送带事件类型的SSE消息，event为空时只写data行
func (s *SSEWriter) SendEvent(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sse event data: %w", err)
	}

	var frame strings.Builder
	if event != "" {
		fmt.Fprintf(&frame, "event: %s\n", event)
	}
	fmt.Fprintf(&frame, "data: %s\n\n", data)

	if _, err := fmt.Fprint(s.w, frame.String()); err != nil {
		return fmt.Errorf("write sse event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
