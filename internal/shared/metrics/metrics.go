package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	pipelineStartedTotal   atomic.Uint64
	pipelineCompletedTotal atomic.Uint64
	pipelineFailedTotal    atomic.Uint64
	ocrFallbackTotal       atomic.Uint64
	modelFallbackTotal     atomic.Uint64
	reminderSentTotal      atomic.Uint64
	reminderFailedTotal    atomic.Uint64

	pipelineDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncPipelineStarted counts a resume check that passed intake.
func IncPipelineStarted() {
	pipelineStartedTotal.Add(1)
}

// IncPipelineCompleted counts a resume check that persisted its result.
func IncPipelineCompleted() {
	pipelineCompletedTotal.Add(1)
}

// IncPipelineFailed counts a resume check that ended in a terminal error.
func IncPipelineFailed() {
	pipelineFailedTotal.Add(1)
}

// IncOCRFallback counts runs where structured extraction gave way to OCR.
func IncOCRFallback() {
	ocrFallbackTotal.Add(1)
}

// IncModelFallback counts a move from one model to the next in the ranked list.
func IncModelFallback() {
	modelFallbackTotal.Add(1)
}

// IncReminderSent counts reminder emails handed to the mailer.
func IncReminderSent() {
	reminderSentTotal.Add(1)
}

// IncReminderFailed counts reminder emails the mailer rejected.
func IncReminderFailed() {
	reminderFailedTotal.Add(1)
}

// ObservePipelineDurationMs records a pipeline duration in milliseconds.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_pipeline_started_total", "Total resume checks started", pipelineStartedTotal.Load())
	writeCounter(&buf, "resume_pipeline_completed_total", "Total resume checks completed", pipelineCompletedTotal.Load())
	writeCounter(&buf, "resume_pipeline_failed_total", "Total resume checks failed", pipelineFailedTotal.Load())
	writeCounter(&buf, "resume_ocr_fallback_total", "Total OCR fallbacks", ocrFallbackTotal.Load())
	writeCounter(&buf, "llm_model_fallback_total", "Total moves to the next ranked model", modelFallbackTotal.Load())
	writeCounter(&buf, "reminder_sent_total", "Total reminder emails sent", reminderSentTotal.Load())
	writeCounter(&buf, "reminder_failed_total", "Total reminder emails that failed", reminderFailedTotal.Load())
	writeHistogram(&buf, "resume_pipeline_duration_ms", "Resume check duration in milliseconds", pipelineDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
