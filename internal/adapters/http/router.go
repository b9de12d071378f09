package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/kiriman-ayam/internal/config"
	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
	"github.com/kirillkom/kiriman-ayam/internal/observability/metrics"
)

const (
	serviceName  = "api"
	maxBodyBytes = 1 << 20
)

type Router struct {
	cfg       config.Config
	submitter ports.BatchSubmitter
	history   ports.BatchHistory
	catalog   ports.CatalogReader
	exporter  ports.DetailExporter
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	submitter ports.BatchSubmitter,
	history ports.BatchHistory,
	catalog ports.CatalogReader,
	exporter ports.DetailExporter,
) *Router {
	return &Router{
		cfg:       cfg,
		submitter: submitter,
		history:   history,
		catalog:   catalog,
		exporter:  exporter,
	}
}

// WithMetrics enables request instrumentation and the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	validator, err := loadOpenAPIRouter()
	if err != nil {
		panic(fmt.Sprintf("embedded openapi document: %v", err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveOpenAPI)
	mux.HandleFunc("GET /api/master-kiriman", rt.listShipmentNames)
	mux.HandleFunc("GET /api/riwayat", rt.listRecentBatches)
	mux.HandleFunc("POST /api/riwayat", rt.submitBatch)
	mux.HandleFunc("GET /api/riwayat/search", rt.searchBatches)
	mux.HandleFunc("GET /api/riwayat/{id}", rt.getBatch)
	mux.HandleFunc("GET /api/riwayat/{id}/export", rt.exportBatch)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = openAPIValidationMiddleware(validator, handler)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listShipmentNames(w http.ResponseWriter, r *http.Request) {
	names, err := rt.catalog.ListShipmentNames(r.Context())
	if err != nil {
		writeDomainError(w, r, "list_shipment_names", err)
		return
	}
	if names == nil {
		names = []domain.ShipmentName{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (rt *Router) listRecentBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := rt.history.Recent(r.Context())
	if err != nil {
		writeDomainError(w, r, "list_recent_batches", err)
		return
	}
	if batches == nil {
		batches = []domain.ShipmentBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (rt *Router) submitBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.NewBatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	batch, err := rt.submitter.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, "submit_batch", err)
		return
	}

	if rt.metrics != nil {
		stats := batch.Stats()
		rt.metrics.RecordBatchSubmitted(serviceName, stats.Accepted, stats.Rejected)
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (rt *Router) searchBatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.BatchFilter{
		ShipmentName: query.Get("kiriman"),
		PONumber:     query.Get("po"),
	}
	page := 1
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = parsed
	}

	result, err := rt.history.Search(r.Context(), filter, page)
	if err != nil {
		writeDomainError(w, r, "search_batches", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := batchIDFromPath(w, r)
	if !ok {
		return
	}

	detail, err := rt.history.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "get_batch", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) exportBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := batchIDFromPath(w, r)
	if !ok {
		return
	}

	file, err := rt.exporter.ExportDetail(r.Context(), id)
	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, "detail", err)
	}
	if err != nil {
		writeDomainError(w, r, "export_batch", err)
		return
	}

	w.Header().Set("Content-Type", domain.WorkbookContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

func batchIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "batch id must be a positive integer")
		return 0, false
	}
	return id, true
}
