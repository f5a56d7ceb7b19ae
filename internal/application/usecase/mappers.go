package usecase

import (
	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

func toFundingRequestResponse(r model.FundingRequest) dto.FundingRequestResponse {
	return dto.FundingRequestResponse{
		ID:                    r.ID(),
		CompanyID:             r.CompanyID(),
		Status:                r.Status().String(),
		RequestedAmount:       r.RequestedAmount().Amount(),
		Currency:              r.RequestedAmount().Currency().Code(),
		InvoiceIDs:            r.InvoiceIDs(),
		DisbursementAccountID: r.DisbursementAccountID(),
		DisbursedAt:           r.DisbursedAt(),
		Version:               r.Version(),
		CreatedAt:             r.CreatedAt(),
		UpdatedAt:             r.UpdatedAt(),
	}
}

func toOfferTermsResponse(t model.OfferTerms) dto.OfferTermsResponse {
	return dto.OfferTermsResponse{
		AnnualRate:    t.AnnualRate,
		AdvancePct:    t.AdvancePct,
		Fees:          t.Fees,
		AdvanceAmount: t.AdvanceAmount,
		NetAmount:     t.NetAmount,
		ValidUntil:    t.ValidUntil,
	}
}

func toOfferResponse(o model.Offer) dto.OfferResponse {
	return dto.OfferResponse{
		ID:         o.ID(),
		CompanyID:  o.CompanyID(),
		RequestID:  o.RequestID(),
		Status:     o.Status().String(),
		Terms:      toOfferTermsResponse(o.Terms()),
		CreatedBy:  o.CreatedBy(),
		AcceptedBy: o.AcceptedBy(),
		AcceptedAt: o.AcceptedAt(),
		CreatedAt:  o.CreatedAt(),
	}
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.ID(),
		CompanyID:     p.CompanyID(),
		RequestID:     p.RequestID(),
		Direction:     p.Direction().String(),
		BankAccountID: p.BankAccountID(),
		Amount:        p.Amount().Amount(),
		Currency:      p.Amount().Currency().Code(),
		Status:        p.Status().String(),
		Note:          p.Note(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toEffectiveParametersResponse(p service.EffectiveParameters) dto.EffectiveParametersResponse {
	return dto.EffectiveParametersResponse{
		CompanyID:        p.CompanyID,
		Segment:          string(p.Segment),
		DiscountRate:     p.DiscountRatePct,
		AdvancePct:       p.AdvancePct,
		CreditLimit:      p.CreditLimit,
		TenorLimitDays:   p.TenorLimitDays,
		MaxExposureRatio: p.MaxExposureRatio,
		TenorBufferDays:  p.TenorBufferDays,
		Overridden:       p.Overridden,
	}
}

func toCollectionCaseResponse(c model.CollectionCase) dto.CollectionCaseResponse {
	return dto.CollectionCaseResponse{
		ID:            c.ID(),
		CompanyID:     c.CompanyID(),
		RequestID:     c.RequestID(),
		Status:        c.Status().String(),
		Priority:      c.Priority().String(),
		PromiseAmount: c.PromiseAmount(),
		PromiseDate:   c.PromiseDate(),
		NextActionAt:  c.NextActionAt(),
		ClosedAt:      c.ClosedAt(),
		Resolution:    c.Resolution(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toCollectionActionResponse(a model.CollectionAction) dto.CollectionActionResponse {
	return dto.CollectionActionResponse{
		ID:          a.ID(),
		CaseID:      a.CaseID(),
		Kind:        a.Kind().String(),
		Notes:       a.Notes(),
		DueAt:       a.DueAt(),
		CompletedAt: a.CompletedAt(),
		CreatedBy:   a.CreatedBy(),
		CreatedAt:   a.CreatedAt(),
	}
}

func toSettingsDTO(s model.GlobalSettings) dto.GlobalSettings {
	segments := make(map[string]dto.SegmentSettings, len(s.Segments))
	for seg, v := range s.Segments {
		segments[string(seg)] = dto.SegmentSettings{
			CreditLimit:  v.CreditLimit,
			Terms:        v.TermsDays,
			DiscountRate: v.DiscountRate,
			AdvancePct:   v.AdvancePct,
		}
	}
	return dto.GlobalSettings{
		BaseDiscountRate:   s.BaseDiscountRate,
		DefaultAdvancePct:  s.DefaultAdvancePct,
		Segments:           segments,
		MaxExposureRatio:   s.AutoApproval.MaxExposureRatio,
		MaxTenorBufferDays: s.AutoApproval.MaxTenorBufferDays,
		UpdatedAt:          s.UpdatedAt,
		UpdatedBy:          s.UpdatedBy,
	}
}

func fromSettingsDTO(in dto.GlobalSettings) model.GlobalSettings {
	segments := make(map[valueobject.Segment]model.SegmentSettings, len(in.Segments))
	for name, v := range in.Segments {
		segments[valueobject.Segment(name)] = model.SegmentSettings{
			CreditLimit:  v.CreditLimit,
			TermsDays:    v.Terms,
			DiscountRate: v.DiscountRate,
			AdvancePct:   v.AdvancePct,
		}
	}
	return model.GlobalSettings{
		BaseDiscountRate:  in.BaseDiscountRate,
		DefaultAdvancePct: in.DefaultAdvancePct,
		Segments:          segments,
		AutoApproval: model.AutoApprovalThresholds{
			MaxExposureRatio:   in.MaxExposureRatio,
			MaxTenorBufferDays: in.MaxTenorBufferDays,
		},
	}
}

func toOverrideResponse(o model.ParameterOverride) dto.ParameterOverrideResponse {
	return dto.ParameterOverrideResponse{
		CompanyID:     o.CompanyID,
		DiscountRate:  o.DiscountRate,
		AdvancePct:    o.AdvancePct,
		OperationDays: o.OperationDays,
		UpdatedAt:     o.UpdatedAt,
		UpdatedBy:     o.UpdatedBy,
	}
}
