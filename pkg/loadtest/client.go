package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client 调用 newsroom API 的压测客户端
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, maxConns int) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = maxConns
	t.MaxIdleConnsPerHost = maxConns
	t.MaxConnsPerHost = maxConns
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Transport: t, Timeout: 10 * time.Second},
	}
}

// envelope 统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// StatusError 非预期的 HTTP 状态
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return err
	}
	if resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Health GET /health
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// Register 注册普通用户，返回用户 ID
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	body := map[string]string{"name": name, "email": email, "password": password, "role": "registered_user"}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &user)
	return user.ID, err
}

// Login 返回 token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password}, &result)
	return result.Token, err
}

// ListNews 公开新闻列表
func (c *Client) ListNews(ctx context.Context, page int) error {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/news?page=%d&limit=20", page), "", nil, nil)
}

// ListComments 新闻下的评论
func (c *Client) ListComments(ctx context.Context, newsID string) error {
	return c.do(ctx, http.MethodGet, "/api/comments/news/"+url.PathEscape(newsID)+"?sortBy=likes", "", nil, nil)
}

// Reaction 点赞结果
type Reaction struct {
	Likes        int64   `json:"likes"`
	Dislikes     int64   `json:"dislikes"`
	UserReaction *string `json:"userReaction"`
}

// React 点赞/点踩
func (c *Client) React(ctx context.Context, token, commentID, kind string) (*Reaction, error) {
	var result Reaction
	err := c.do(ctx, http.MethodPost, "/api/comments/"+url.PathEscape(commentID)+"/react", token, map[string]string{"type": kind}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
