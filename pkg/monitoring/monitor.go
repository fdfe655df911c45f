package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// QuestionnaireOps 问卷写操作结果统计（op: create/copy/update/delete/toggle/add_questions/export）
	QuestionnaireOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaire_operations_total",
			Help: "Questionnaire mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	ResponsesInvalidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "questionnaire_responses_invalidated_total",
			Help: "Questionnaire edits that invalidated existing answers",
		},
	)

	QuestionPatchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "questionnaire_question_patch_failures_total",
			Help: "Per-question patches rejected during bulk questionnaire update",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(QuestionnaireOps)
		prometheus.MustRegister(ResponsesInvalidated)
		prometheus.MustRegister(QuestionPatchFailures)
	})
}

// ObserveOp 记录一次问卷操作的结果
func ObserveOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	QuestionnaireOps.WithLabelValues(op, result).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
