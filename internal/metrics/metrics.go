// Package metrics Prometheus 메트릭 수집 및 /metrics 노출
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

// Collector holds the service metrics.
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	attachmentUploads *prometheus.CounterVec
	attachmentDeletes *prometheus.CounterVec
	orphansRecorded   prometheus.Counter
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matdori_http_requests_total",
			Help: "HTTP 요청 수 (method, route, status 별)",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matdori_http_request_duration_seconds",
			Help:    "HTTP 요청 처리 시간 (초)",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		attachmentUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matdori_attachment_uploads_total",
			Help: "족보 이미지 업로드 결과",
		}, []string{"result"}),
		attachmentDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matdori_attachment_deletes_total",
			Help: "족보 이미지 삭제 결과",
		}, []string{"result"}),
		orphansRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matdori_orphaned_attachments_total",
			Help: "삭제에 실패해 정리 대상으로 기록된 이미지 수",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.attachmentUploads,
		c.attachmentDeletes,
		c.orphansRecorded,
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordUpload(result string) {
	c.attachmentUploads.WithLabelValues(result).Inc()
}

func (c *Collector) RecordDelete(result string) {
	c.attachmentDeletes.WithLabelValues(result).Inc()
}

func (c *Collector) RecordOrphans(n int) {
	c.orphansRecorded.Add(float64(n))
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
