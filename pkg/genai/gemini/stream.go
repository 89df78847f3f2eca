package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/user/prakharai/pkg/genai"
)

// StreamChat sends the history to streamGenerateContent and returns a stream
// of incremental events parsed from the server-sent event feed.
func (c *Client) StreamChat(ctx context.Context, history []genai.Message, system string, tools []genai.FunctionDecl) (genai.ChatStream, error) {
	contents := make([]content, 0, len(history))
	for _, msg := range history {
		entry := content{Role: string(msg.Role)}
		for _, p := range msg.Parts {
			if p.InlineData != nil {
				entry.Parts = append(entry.Parts, part{InlineData: &inlineData{
					MIMEType: p.InlineData.MIMEType,
					Data:     p.InlineData.Data,
				}})
			} else {
				entry.Parts = append(entry.Parts, part{Text: p.Text})
			}
		}
		contents = append(contents, entry)
	}

	reqBody := &generateRequest{Contents: contents}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if len(tools) > 0 {
		reqBody.Tools = []toolDecl{{FunctionDeclarations: tools}}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.endpoint(c.config.ChatModel, "streamGenerateContent") + "?alt=sse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &genai.GenerationError{Op: "stream chat", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &genai.GenerationError{Op: "stream chat", Err: fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sseStream{body: resp.Body, scanner: scanner}, nil
}

// sseStream parses "data: {...}" lines from a streamGenerateContent response.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *sseStream) Recv() (genai.StreamEvent, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return genai.StreamEvent{}, fmt.Errorf("parsing stream chunk: %w", err)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}

		var event genai.StreamEvent
		for _, p := range chunk.Candidates[0].Content.Parts {
			if p.FunctionCall != nil {
				event.FunctionCalls = append(event.FunctionCalls, *p.FunctionCall)
			}
			if p.Text != "" {
				event.Text += p.Text
			}
		}
		if event.Text == "" && len(event.FunctionCalls) == 0 {
			continue
		}
		return event, nil
	}

	if err := s.scanner.Err(); err != nil {
		return genai.StreamEvent{}, fmt.Errorf("reading stream: %w", err)
	}
	return genai.StreamEvent{}, io.EOF
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
