package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
	"github.com/AngelCh415/meta-dashboard-go/internal/models"
	"github.com/AngelCh415/meta-dashboard-go/internal/utils"
)

// Dashboarder produces the dashboard envelope for one request.
type Dashboarder interface {
	Dashboard(ctx context.Context, req models.MetricsRequest) models.DashboardResponse
}

type Options struct {
	CORSOrigins []string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// HTTPMetrics is optional request instrumentation.
	HTTPMetrics *utils.HTTPMetrics
}

const maxBodyBytes = 1 << 20

func NewRouter(log *slog.Logger, svc Dashboarder, o Options) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	if o.HTTPMetrics != nil {
		mux.Use(o.HTTPMetrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	if o.Gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Get("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, usage)
	})

	mux.Post("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		var req models.MetricsRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.Failure(models.ErrUnknownFormat, "Corpo da requisição inválido", err.Error()))
			return
		}
		resp := svc.Dashboard(r.Context(), req)
		if resp.Success && resp.Data != nil {
			q := r.URL.Query()
			limit := metrics.AtoiDef(q.Get("adsLimit"), 0)
			offset := metrics.AtoiDef(q.Get("adsOffset"), 0)
			if limit > 0 || offset > 0 {
				resp.Data.Ads = metrics.Page(resp.Data.Ads, limit, offset)
			}
		}
		if !resp.Success && resp.Error != nil {
			log.Warn("dashboard failed",
				slog.String("rid", utils.RID(r.Context())),
				slog.String("code", string(resp.Error.Code)),
				slog.String("user", req.UserID))
		}
		writeJSON(w, statusFor(resp), resp)
	})

	return mux
}

// statusFor maps the envelope to an HTTP status. NO_DATA is a valid answer.
func statusFor(resp models.DashboardResponse) int {
	if resp.Success || resp.Error == nil {
		return http.StatusOK
	}
	switch resp.Error.Code {
	case models.ErrNoData:
		return http.StatusOK
	case models.ErrMissingUserID, models.ErrMissingPeriod, models.ErrMissingAdAccountID,
		models.ErrMissingAccessToken, models.ErrMissingCustomPeriod, models.ErrUnknownFormat:
		return http.StatusBadRequest
	case models.ErrFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var usage = map[string]any{
	"success": true,
	"message": "API de métricas funcionando",
	"usage": map[string]any{
		"method": "POST",
		"query": map[string]string{
			"adsLimit":  "int (opcional) - limita a tabela de anúncios",
			"adsOffset": "int (opcional) - pula as primeiras linhas da tabela de anúncios",
		},
		"body": map[string]string{
			"userId":            "string (obrigatório)",
			"adAccountId":       "string (obrigatório) - ID da conta Meta, com ou sem prefixo act_",
			"accessToken":       "string (obrigatório) - Token de acesso da Meta API",
			"period":            "today | yesterday | last7 | last30 | thisMonth | lastMonth | custom",
			"customPeriod":      `{ startDate: "YYYY-MM-DD", endDate: "YYYY-MM-DD" } - apenas se period = custom`,
			"campaignId":        "string (opcional) - filtra uma campanha",
			"timezone":          "string (opcional) - IANA, ex. America/Sao_Paulo",
			"includeAds":        "boolean (default: true)",
			"includeInsights":   "boolean (default: true)",
			"includeAudience":   "boolean (default: false)",
			"includeComparison": "boolean (default: true)",
		},
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
