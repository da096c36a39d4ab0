package loadtest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// RequestFunc 单次请求，返回 error 视为失败
type RequestFunc func(ctx context.Context) error

// Runner 在固定时长内以固定并发循环执行请求
type Runner struct {
	name        string
	concurrency int
	duration    time.Duration
	requests    []RequestFunc

	mu        sync.Mutex
	durations []time.Duration
	failed    int64
}

func NewRunner(name string, concurrency int, duration time.Duration) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{name: name, concurrency: concurrency, duration: duration}
}

// AddRequest 添加请求，多个请求轮流执行
func (r *Runner) AddRequest(req RequestFunc) *Runner {
	r.requests = append(r.requests, req)
	return r
}

// Run 执行直到 duration 到期或 ctx 取消
func (r *Runner) Run(ctx context.Context) *Result {
	ctx, cancel := context.WithTimeout(ctx, r.duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			r.loop(ctx, offset)
		}(i)
	}
	wg.Wait()

	return r.result(time.Since(start))
}

func (r *Runner) loop(ctx context.Context, offset int) {
	if len(r.requests) == 0 {
		return
	}
	for i := offset; ; i++ {
		if ctx.Err() != nil {
			return
		}
		req := r.requests[i%len(r.requests)]

		begin := time.Now()
		err := req(ctx)
		elapsed := time.Since(begin)

		// 到期时被取消的请求不计入
		if ctx.Err() != nil {
			return
		}
		r.record(elapsed, err)
	}
}

func (r *Runner) record(d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, d)
	if err != nil {
		r.failed++
	}
}

func (r *Runner) result(elapsed time.Duration) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summarize(r.name, r.concurrency, elapsed, r.durations, r.failed)
}

// Result 压测结果
type Result struct {
	Name        string        `json:"name"`
	Concurrency int           `json:"concurrency"`
	Elapsed     time.Duration `json:"elapsed"`
	Total       int64         `json:"total"`
	Failed      int64         `json:"failed"`
	QPS         float64       `json:"qps"`
	ErrorRate   float64       `json:"errorRate"`
	Avg         time.Duration `json:"avg"`
	Min         time.Duration `json:"min"`
	Max         time.Duration `json:"max"`
	P50         time.Duration `json:"p50"`
	P95         time.Duration `json:"p95"`
	P99         time.Duration `json:"p99"`
}

// Summarize 根据每次请求的耗时计算统计值
func Summarize(name string, concurrency int, elapsed time.Duration, durations []time.Duration, failed int64) *Result {
	res := &Result{
		Name:        name,
		Concurrency: concurrency,
		Elapsed:     elapsed,
		Total:       int64(len(durations)),
		Failed:      failed,
	}
	if res.Total == 0 {
		return res
	}
	if elapsed > 0 {
		res.QPS = float64(res.Total) / elapsed.Seconds()
	}
	res.ErrorRate = float64(failed) / float64(res.Total)

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	res.Avg = sum / time.Duration(len(sorted))
	res.Min = sorted[0]
	res.Max = sorted[len(sorted)-1]
	res.P50 = percentile(sorted, 0.50)
	res.P95 = percentile(sorted, 0.95)
	res.P99 = percentile(sorted, 0.99)
	return res
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Print 输出一行摘要
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "%-24s | c=%-4d | total=%-7d | QPS=%-9.2f | P50=%-10v | P95=%-10v | P99=%-10v | err=%.2f%%\n",
		r.Name, r.Concurrency, r.Total, r.QPS, r.P50, r.P95, r.P99, r.ErrorRate*100)
}
