package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
	"github.com/AngelCh415/meta-dashboard-go/internal/models"
	"github.com/AngelCh415/meta-dashboard-go/internal/utils"
)

const (
	msgFetch    = "Não foi possível conectar ao servidor de métricas"
	msgInternal = "Erro ao processar requisição"
	msgFormat   = "Formato de resposta desconhecido"
)

// Service validates, fetches and assembles. Failures are reported inside the
// envelope, never as Go errors.
type Service struct {
	graph   *Orchestrator
	webhook *WebhookClient
	asm     *metrics.Assembler
	log     *slog.Logger
}

// NewGraphService reads Meta directly with per-request credentials.
func NewGraphService(o *Orchestrator, asm *metrics.Assembler, log *slog.Logger) *Service {
	return &Service{graph: o, asm: asm, log: log}
}

// NewWebhookService delegates fetching to a webhook holding the credentials.
func NewWebhookService(w *WebhookClient, asm *metrics.Assembler, log *slog.Logger) *Service {
	return &Service{webhook: w, asm: asm, log: log}
}

func (s *Service) Dashboard(ctx context.Context, req models.MetricsRequest) (resp models.DashboardResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("dashboard panic", slog.String("rid", utils.RID(ctx)), slog.Any("panic", r))
			resp = models.Failure(models.ErrInternal, msgInternal, fmt.Sprint(r))
		}
	}()

	if e := Validate(req, s.webhook == nil); e != nil {
		return models.DashboardResponse{Success: false, Error: e}
	}

	if s.webhook != nil {
		return s.fromWebhook(ctx, req)
	}

	batch, err := s.graph.Fetch(ctx, req)
	if err != nil {
		s.log.Error("insights fetch failed", slog.String("rid", utils.RID(ctx)), slog.String("err", err.Error()))
		if errors.Is(err, ErrPanic) {
			return models.Failure(models.ErrInternal, msgInternal, err.Error())
		}
		return models.Failure(models.ErrFetch, msgFetch, err.Error())
	}
	return s.asm.Assemble(batch.Input(req))
}

func (s *Service) fromWebhook(ctx context.Context, req models.MetricsRequest) models.DashboardResponse {
	res, err := s.webhook.Fetch(ctx, req)
	switch {
	case errors.Is(err, ErrUnknownFormat):
		return models.Failure(models.ErrUnknownFormat, msgFormat, "")
	case err != nil:
		return models.Failure(models.ErrFetch, msgFetch, err.Error())
	case res.Envelope != nil:
		return *res.Envelope
	}
	// presets are resolved by Meta, so only explicit ranges are echoed in meta
	return s.asm.Assemble(metrics.Input{
		Campaigns:    res.Records,
		Period:       BuildWebhookRequest(req).TimeRange,
		SkipAds:      !req.WantAds(),
		SkipInsights: !req.WantInsights(),
	})
}
