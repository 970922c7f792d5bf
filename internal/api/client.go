package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"regchat-cli/internal/config"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	debug      bool
}

func NewClient(cfg *config.Config) *Client {
	eff := cfg.Effective()
	c := NewClientWithServer(eff.Server)
	c.httpClient.Timeout = cfg.Timeout()
	return c
}

// NewClientWithServer builds a client for an explicit server URL with the
// default timeout.
func NewClientWithServer(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: config.DefaultTimeout,
		},
		log: zap.NewNop(),
	}
}

// SetLogger routes request failures (and, in debug mode, every request) to log.
func (c *Client) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
}

func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// --- Roles ---

type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

// UnmarshalJSON accepts any casing; the backend stores "USER"/"ASSISTANT"
// but older rows were written lowercase.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Role(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// --- Threads ---

type Thread struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateThreadRequest struct {
	Title string `json:"title"`
}

// ListThreads returns threads in server order (most recent first).
func (c *Client) ListThreads() ([]Thread, error) {
	var threads []Thread
	if err := c.doJSON("GET", "/api/threads", nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (c *Client) CreateThread(title string) (*Thread, error) {
	var t Thread
	if err := c.doJSON("POST", "/api/threads", CreateThreadRequest{Title: title}, &t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		return nil, fmt.Errorf("creating thread: %w: no id in response", ErrMalformed)
	}
	return &t, nil
}

// --- Messages ---

// Citation is a cited source document with an optional regulatory status.
type Citation struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type Message struct {
	ID        string     `json:"id,omitempty"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Thought   string     `json:"thought,omitempty"`
	Citations []Citation `json:"citations,omitempty"`

	// Local marks an entry added by this client that the server has not
	// confirmed yet.
	Local bool `json:"-"`
}

func (c *Client) ListMessages(threadID string) ([]Message, error) {
	params := url.Values{}
	params.Set("threadId", threadID)
	var msgs []Message
	if err := c.doJSON("GET", "/api/messages?"+params.Encode(), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// --- Chat ---

type ChatRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"threadId"`
}

type ChatResponse struct {
	Response  string     `json:"response"`
	Thought   string     `json:"thought,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// Message converts the reply into the assistant entry appended to a thread.
func (r *ChatResponse) Message() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Response,
		Thought:   r.Thought,
		Citations: r.Citations,
		Local:     true,
	}
}

func (c *Client) Chat(threadID, query string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON("POST", "/api/v1/llm/chat", ChatRequest{Query: query, ThreadID: threadID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Generic JSON helper ---

func (c *Client) doJSON(method, path string, reqBody interface{}, result interface{}) error {
	var bodyReader io.Reader
	hasBody := reqBody != nil && method != "GET"
	if hasBody {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, hasBody)

	start := time.Now()
	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request_failed", zap.Error(err))
		return fmt.Errorf("request failed: %w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("read_response_failed", zap.Error(err))
		return fmt.Errorf("reading response: %w: %w", ErrTransport, err)
	}

	if c.debug {
		log.Debug("response",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.ByteString("body", respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("non_success_status", zap.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			log.Error("decode_failed", zap.Error(err))
			return fmt.Errorf("parsing response: %w: %w", ErrMalformed, err)
		}
	}
	return nil
}
