package loadtest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	durations := make([]time.Duration, 0, 100)
	for i := 100; i >= 1; i-- {
		durations = append(durations, time.Duration(i)*time.Millisecond)
	}

	res := Summarize("sample", 4, 2*time.Second, durations, 5)

	assert.Equal(t, int64(100), res.Total)
	assert.Equal(t, 50.0, res.QPS)
	assert.InDelta(t, 0.05, res.ErrorRate, 1e-9)
	assert.Equal(t, time.Millisecond, res.Min)
	assert.Equal(t, 100*time.Millisecond, res.Max)
	assert.Equal(t, 51*time.Millisecond, res.P50)
	assert.Equal(t, 96*time.Millisecond, res.P95)
	assert.Equal(t, 100*time.Millisecond, res.P99)
	// 原切片不被排序
	assert.Equal(t, 100*time.Millisecond, durations[0])

	var buf bytes.Buffer
	res.Print(&buf)
	assert.Contains(t, buf.String(), "sample")
}

func TestSummarizeEmpty(t *testing.T) {
	res := Summarize("empty", 1, time.Second, nil, 0)
	assert.Equal(t, int64(0), res.Total)
	assert.Zero(t, res.QPS)
}

func TestRunner(t *testing.T) {
	var calls int64
	runner := NewRunner("counter", 4, 100*time.Millisecond).
		AddRequest(func(ctx context.Context) error {
			n := atomic.AddInt64(&calls, 1)
			time.Sleep(time.Millisecond)
			if n%2 == 0 {
				return errors.New("even")
			}
			return nil
		})

	res := runner.Run(context.Background())

	assert.Greater(t, res.Total, int64(0))
	assert.LessOrEqual(t, res.Total, atomic.LoadInt64(&calls))
	assert.Greater(t, res.Failed, int64(0))
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"code":0,"message":"success","data":{"database":"ok"}}`))
		case "/api/auth/login":
			w.Write([]byte(`{"code":0,"message":"success","data":{"token":"t1"}}`))
		case "/api/comments/c1/react":
			if r.Header.Get("Authorization") != "Bearer t1" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":10004,"message":"Token invalid","data":null}`))
				return
			}
			w.Write([]byte(`{"code":0,"message":"success","data":{"likes":1,"dislikes":0,"userReaction":"like"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":20001,"message":"not found","data":null}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL, 4)

	require.NoError(t, c.Health(ctx))

	token, err := c.Login(ctx, "a@news.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "t1", token)

	reaction, err := c.React(ctx, token, "c1", "like")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reaction.Likes)
	require.NotNil(t, reaction.UserReaction)
	assert.Equal(t, "like", *reaction.UserReaction)

	_, err = c.React(ctx, "", "c1", "like")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)

	err = c.ListNews(ctx, 1)
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}
