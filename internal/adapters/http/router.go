package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/usecase"
	"github.com/hemoboard/hemoboard/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

type TrafficConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	MaxQueueWait   time.Duration
}

type Router struct {
	service string

	mapUC       *usecase.MapUseCase
	healthUC    *usecase.HealthUseCase
	clusterUC   *usecase.ClusteringUseCase
	campaignUC  *usecase.CampaignUseCase
	retentionUC *usecase.RetentionUseCase
	sentimentUC *usecase.SentimentUseCase
	predictSvc  *usecase.PredictionService
	exportUC    *usecase.ExportUseCase

	metrics *metrics.HTTPServerMetrics
	traffic TrafficConfig
}

func NewRouter(
	service string,
	mapUC *usecase.MapUseCase,
	healthUC *usecase.HealthUseCase,
	clusterUC *usecase.ClusteringUseCase,
	campaignUC *usecase.CampaignUseCase,
	retentionUC *usecase.RetentionUseCase,
	sentimentUC *usecase.SentimentUseCase,
	predictSvc *usecase.PredictionService,
	exportUC *usecase.ExportUseCase,
	m *metrics.HTTPServerMetrics,
	traffic TrafficConfig,
) *Router {
	if traffic.MaxQueueWait <= 0 {
		traffic.MaxQueueWait = 100 * time.Millisecond
	}
	return &Router{
		service:     service,
		mapUC:       mapUC,
		healthUC:    healthUC,
		clusterUC:   clusterUC,
		campaignUC:  campaignUC,
		retentionUC: retentionUC,
		sentimentUC: sentimentUC,
		predictSvc:  predictSvc,
		exportUC:    exportUC,
		metrics:     m,
		traffic:     traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/map", rt.mapReport)
	mux.HandleFunc("/v1/health-conditions", rt.healthReport)
	mux.HandleFunc("/v1/clustering", rt.clusteringReport)
	mux.HandleFunc("/v1/campaigns", rt.campaignReport)
	mux.HandleFunc("/v1/retention", rt.retentionReport)
	mux.HandleFunc("/v1/sentiment", rt.sentimentReport)
	mux.HandleFunc("/v1/predict", rt.predict)
	mux.HandleFunc("/v1/predict/importances", rt.importances)
	mux.HandleFunc("/v1/reports/export", rt.exportReports)
	mux.Handle("/dashboard/", dashboardHandler())
	mux.Handle("/dashboard", http.RedirectHandler("/dashboard/", http.StatusMovedPermanently))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, rt.traffic.MaxQueueWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) mapReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.mapUC.Report(r.Context(), from, to)
	rt.recordReport("map", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.SetPendingDistricts(len(report.PendingGeocoding))
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) healthReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.healthUC.Report(r.Context(), from, to)
	rt.recordReport("health", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) clusteringReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.clusterUC.Report(r.Context(), from, to)
	rt.recordReport("clustering", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) campaignReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.campaignUC.Report(r.Context(), from, to)
	rt.recordReport("campaign", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) retentionReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.retentionUC.Report(r.Context(), from, to)
	rt.recordReport("retention", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) sentimentReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}
	start := time.Now()
	report, err := rt.sentimentUC.Report(r.Context(), from, to)
	rt.recordReport("sentiment", err, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var input domain.PredictionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.predictSvc.Predict(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		outcome := "non_eligible"
		if result.Eligible {
			outcome = "eligible"
		}
		rt.metrics.RecordPrediction(rt.service, outcome)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) importances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"importances": rt.predictSvc.Importances(r.Context()),
	})
}

func (rt *Router) exportReports(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rt.reportWindow(w, r)
	if !ok {
		return
	}

	key, buf, err := rt.exportUC.Export(r.Context(), from, to)
	if rt.metrics != nil {
		rt.metrics.RecordExport(rt.service, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// reportWindow parses the optional from/to query parameters. Both default
// to zero, which report code treats as an unbounded window.
func (rt *Router) reportWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return time.Time{}, time.Time{}, false
	}

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'from' date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'to' date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

func (rt *Router) recordReport(report string, err error, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordReport(rt.service, report, err, time.Since(start))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
