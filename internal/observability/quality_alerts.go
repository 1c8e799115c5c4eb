package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/platform/envutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

const defaultAlertInterval = 5 * time.Minute

// QualityAlerts posts a webhook when generations fall back to built-in
// habits or a normalized set misses a category. Alerts are throttled per
// stage. A nil *QualityAlerts does nothing.
type QualityAlerts struct {
	log         *logger.Logger
	webhook     string
	minInterval time.Duration
	client      *http.Client
	now         func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
	wg   sync.WaitGroup
}

// NewQualityAlertsFromEnv reads QUALITY_ALERTS_ENABLED, QUALITY_ALERT_WEBHOOK_URL
// and QUALITY_ALERT_MIN_INTERVAL. It returns nil when alerts are off.
func NewQualityAlertsFromEnv(log *logger.Logger) *QualityAlerts {
	if !envutil.Bool("QUALITY_ALERTS_ENABLED", false) {
		return nil
	}
	webhook := envutil.String("QUALITY_ALERT_WEBHOOK_URL", "")
	if webhook == "" {
		log.Warn("QUALITY_ALERTS_ENABLED is set without QUALITY_ALERT_WEBHOOK_URL; alerts disabled")
		return nil
	}
	return NewQualityAlerts(log, webhook, envutil.Duration("QUALITY_ALERT_MIN_INTERVAL", defaultAlertInterval))
}

func NewQualityAlerts(log *logger.Logger, webhook string, minInterval time.Duration) *QualityAlerts {
	if log == nil {
		log = logger.Nop()
	}
	if minInterval <= 0 {
		minInterval = defaultAlertInterval
	}
	return &QualityAlerts{
		log:         log.With("component", "QualityAlerts"),
		webhook:     strings.TrimSpace(webhook),
		minInterval: minInterval,
		client:      &http.Client{Timeout: 5 * time.Second},
		now:         time.Now,
		last:        map[string]time.Time{},
	}
}

// ReportFallback alerts on unplanned fallbacks. Mock generation is configured
// on purpose and never alerts.
func (a *QualityAlerts) ReportFallback(ctx context.Context, source string) {
	if a == nil || source == "model" || source == "mock" {
		return
	}
	a.report(ctx, "generation", map[string]int{"fallback_" + source: 1})
}

func (a *QualityAlerts) ReportCategoryGap(ctx context.Context, missing []habits.Category) {
	if a == nil || len(missing) == 0 {
		return
	}
	issues := map[string]int{}
	for _, c := range missing {
		issues["missing_"+string(c)]++
	}
	a.report(ctx, "normalization", issues)
}

// Wait blocks until in-flight webhook posts finish.
func (a *QualityAlerts) Wait() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

func (a *QualityAlerts) report(ctx context.Context, stage string, issues map[string]int) {
	meta := map[string]any{}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			meta["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			meta["request_id"] = td.RequestID
		}
	}
	a.log.Warn("Habit quality issue detected", "stage", stage, "issues", issues, "meta", meta)

	now := a.now()
	a.mu.Lock()
	if last, ok := a.last[stage]; ok && now.Sub(last) < a.minInterval {
		a.mu.Unlock()
		return
	}
	a.last[stage] = now
	a.mu.Unlock()

	payload := map[string]any{
		"title":     "Habit quality issue",
		"stage":     stage,
		"issues":    issues,
		"meta":      meta,
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.post(stage, payload)
	}()
}

func (a *QualityAlerts) post(stage string, payload map[string]any) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, a.webhook, bytes.NewReader(body))
	if err != nil {
		a.log.Warn("Quality alert request build failed", "error", err, "stage", stage)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn("Quality alert post failed", "error", err, "stage", stage)
		return
	}
	_ = resp.Body.Close()
	a.log.Info("Quality alert sent", "stage", stage, "status", resp.StatusCode)
}
