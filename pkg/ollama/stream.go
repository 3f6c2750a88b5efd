package ollama

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// streamChunk is one SSE event body in a streamed completion.
type streamChunk struct {
	ID      string `json:"id"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream is a finite, non-restartable sequence of text tokens from a
// streamed completion. Recv suspends the caller until the backend emits the
// next token or the stream ends.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
	done    bool
}

func newStream(body io.ReadCloser) *Stream {
	sc := bufio.NewScanner(body)
	// Individual SSE events carry one token each but can still be sizable
	// once the model emits long words or the backend batches deltas.
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &Stream{body: body, scanner: sc}
}

// Recv returns the next token. It returns io.EOF once the backend signals
// end-of-stream, and any transport or decode error otherwise. After a non-nil
// error the stream is exhausted.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	if s.err != nil {
		return "", s.err
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.err = eris.Wrap(err, "ollama: decode stream chunk")
			return "", s.err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.err = eris.Wrap(err, "ollama: read stream")
		return "", s.err
	}

	// Stream closed without an explicit [DONE]; treat as natural end.
	s.done = true
	return "", io.EOF
}

// Close abandons the stream and releases the underlying connection.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Collect drains the stream, concatenating tokens in emission order. The
// stream is closed regardless of outcome.
func (s *Stream) Collect() (string, error) {
	defer s.Close()

	var b strings.Builder
	for {
		token, err := s.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(token)
	}
}
