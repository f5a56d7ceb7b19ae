package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	pkgkafka "github.com/Ban68/LePret-sub001/pkg/kafka"
)

// DelinquencyNotice is the payload published by the receivables side when a
// funded request falls behind.
type DelinquencyNotice struct {
	CompanyID string `json:"company_id"`
	RequestID string `json:"request_id"`
	Priority  string `json:"priority,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// CaseOpener opens, or returns the already open, collection case of a request.
type CaseOpener interface {
	Execute(ctx context.Context, req dto.OpenCollectionCaseRequest) (dto.CollectionCaseResponse, error)
}

// DelinquencyHandler turns delinquency notices into collection cases.
type DelinquencyHandler struct {
	opener CaseOpener
	logger *slog.Logger
}

func NewDelinquencyHandler(opener CaseOpener, logger *slog.Logger) *DelinquencyHandler {
	return &DelinquencyHandler{opener: opener, logger: logger}
}

// Handle is a pkgkafka.Handler. Malformed notices and notices the core
// rejects are logged and acknowledged; only internal failures are returned,
// which leaves the offset uncommitted.
func (h *DelinquencyHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var notice DelinquencyNotice
	if err := json.Unmarshal(msg.Value, &notice); err != nil {
		h.logger.WarnContext(ctx, "discarding malformed delinquency notice",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	resp, err := h.opener.Execute(ctx, dto.OpenCollectionCaseRequest{
		CompanyID: strings.TrimSpace(notice.CompanyID),
		RequestID: strings.TrimSpace(notice.RequestID),
		Priority:  strings.ToLower(strings.TrimSpace(notice.Priority)),
		Reason:    notice.Reason,
		Actor:     model.SystemActor,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return err
		}
		h.logger.WarnContext(ctx, "delinquency notice rejected",
			"company_id", notice.CompanyID,
			"request_id", notice.RequestID,
			"code", apperr.CodeOf(err),
			"error", err,
		)
		return nil
	}

	h.logger.InfoContext(ctx, "collection case open",
		"company_id", resp.CompanyID,
		"request_id", resp.RequestID,
		"case_id", resp.ID,
		"status", resp.Status,
	)
	return nil
}
