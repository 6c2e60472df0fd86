package ollama

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/logger"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llama2"

	maxErrorLength = 200

	providerName    = "ollama"
	generatePath    = "/api/generate"
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/hackmate"
)

// Options are the sampling parameters sent with every request.
type Options struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

func DefaultOptions() Options {
	return Options{
		Temperature: 0.7,
		NumCtx:      2048,
		TopP:        0.9,
		MaxTokens:   800,
	}
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

// Client talks to a local Ollama server.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	model      string
	options    Options
}

func New(logger *zap.Logger, apiURL, model string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/"); apiURL == "" {
		apiURL = DefaultURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		model:     model,
		options:   DefaultOptions(),
	}
}

func (c *Client) Model() string    { return c.model }
func (c *Client) Provider() string { return providerName }

// GenerateContent posts the prompt to /api/generate with streaming disabled and
// returns the generated text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("model", c.model))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s: %s", resp.Status, errorMessage(data))
	}

	text := normalizeResponse(data)
	if text == "" {
		return "", errors.New("ollama returned empty response")
	}

	return text, nil
}

// normalizeResponse extracts the generated text from the shapes Ollama is seen
// to return: a JSON string, an object with a response field, an array of such
// chunks, or newline-delimited chunks when the server streams anyway.
func normalizeResponse(data []byte) string {
	dec := json.NewDecoder(bytes.NewReader(data))

	var values []any
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return strings.TrimSpace(string(data))
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return ""
	case 1:
		return normalizeValue(values[0], data)
	default:
		return joinChunks(values)
	}
}

func normalizeValue(v any, data []byte) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if text, ok := val["response"].(string); ok {
			return strings.TrimSpace(text)
		}
	case []any:
		return joinChunks(val)
	}
	return strings.TrimSpace(string(data))
}

func joinChunks(chunks []any) string {
	var b strings.Builder
	for _, chunk := range chunks {
		if obj, ok := chunk.(map[string]any); ok {
			if text, ok := obj["response"].(string); ok {
				b.WriteString(text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return logger.Truncate(string(data), maxErrorLength)
}
