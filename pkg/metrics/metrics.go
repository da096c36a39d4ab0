package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 内容审核状态流转
	moderationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_moderation_transitions_total",
			Help: "Moderation status transitions by entity",
		},
		[]string{"entity", "from", "to"},
	)

	// 评论反应
	commentReactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_comment_reactions_total",
			Help: "Comment reaction toggles by kind and result",
		},
		[]string{"kind", "result"},
	)

	// 审计任务
	auditJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_audit_jobs_total",
			Help: "Audit events processed by the worker pool",
		},
		[]string{"result"},
	)

	// 身份缓存
	identityCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_identity_cache_total",
			Help: "Identity cache lookups",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest 记录 HTTP 请求
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTransition 记录审核状态流转，entity 为 news 或 comment
func RecordTransition(entity, from, to string) {
	moderationTransitions.WithLabelValues(entity, from, to).Inc()
}

// RecordReaction 记录评论反应，result 为 added / removed / switched
func RecordReaction(kind, result string) {
	commentReactions.WithLabelValues(kind, result).Inc()
}

// RecordAuditJob 记录审计任务结果
func RecordAuditJob(result string) {
	auditJobs.WithLabelValues(result).Inc()
}

// RecordIdentityCache 记录身份缓存命中情况
func RecordIdentityCache(hit bool) {
	if hit {
		identityCache.WithLabelValues("hit").Inc()
		return
	}
	identityCache.WithLabelValues("miss").Inc()
}
