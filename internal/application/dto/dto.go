package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------
//
// Actor is filled by the transport from the caller's token and is never read
// from the payload.

// TransitionRequestRequest moves a funding request to TargetStatus.
type TransitionRequestRequest struct {
	CompanyID    string      `json:"company_id" validate:"required"`
	RequestID    string      `json:"request_id" validate:"required"`
	TargetStatus string      `json:"target_status" validate:"required"`
	Actor        model.Actor `json:"-"`
}

// CustomOfferInput carries staff-entered offer terms. Absent or non-finite
// values default to the standard terms.
type CustomOfferInput struct {
	AnnualRatePct *float64 `json:"annual_rate_pct,omitempty"`
	AdvancePct    *float64 `json:"advance_pct,omitempty"`
	ProcessingFee *float64 `json:"processing_fee,omitempty"`
	WireFee       *float64 `json:"wire_fee,omitempty"`
	ValidForDays  *float64 `json:"valid_for_days,omitempty"`
}

// ComputeOfferRequest prices an amount without persisting anything. When
// RequestID is set the request's amount is priced, otherwise Amount.
type ComputeOfferRequest struct {
	CompanyID string            `json:"company_id" validate:"required"`
	RequestID string            `json:"request_id,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	Mode      string            `json:"mode,omitempty" validate:"omitempty,oneof=standard custom"`
	Custom    *CustomOfferInput `json:"custom,omitempty"`
	Actor     model.Actor       `json:"-"`
}

// EvaluateAutoApprovalRequest asks the gate to auto-accept a review request.
type EvaluateAutoApprovalRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	RequestID string      `json:"request_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// DisburseRequest funds an accepted or signed request. BankAccountID is
// optional.
type DisburseRequest struct {
	CompanyID     string      `json:"company_id" validate:"required"`
	RequestID     string      `json:"request_id" validate:"required"`
	BankAccountID string      `json:"bank_account_id,omitempty"`
	Actor         model.Actor `json:"-"`
}

// GetNextStepsRequest identifies the request whose next step is wanted.
type GetNextStepsRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	RequestID string      `json:"request_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// CreateOfferRequest issues a new offer for a review request.
type CreateOfferRequest struct {
	CompanyID string            `json:"company_id" validate:"required"`
	RequestID string            `json:"request_id" validate:"required"`
	Mode      string            `json:"mode,omitempty" validate:"omitempty,oneof=standard custom"`
	Custom    *CustomOfferInput `json:"custom,omitempty"`
	Actor     model.Actor       `json:"-"`
}

// OfferDecisionRequest accepts or rejects an offer.
type OfferDecisionRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	RequestID string      `json:"request_id" validate:"required"`
	OfferID   string      `json:"offer_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// CancelRequestRequest cancels a review or offered request.
type CancelRequestRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	RequestID string      `json:"request_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// GetParametersRequest identifies the company whose parameters are wanted.
type GetParametersRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// UpsertParameterOverrideRequest replaces a company's overrides. Nil fields
// are stored as "not overridden".
type UpsertParameterOverrideRequest struct {
	CompanyID     string           `json:"company_id" validate:"required"`
	DiscountRate  *decimal.Decimal `json:"discount_rate,omitempty" validate:"omitempty,gte=0,lte=200"`
	AdvancePct    *decimal.Decimal `json:"advance_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	OperationDays *int             `json:"operation_days,omitempty" validate:"omitempty,gte=0"`
	Actor         model.Actor      `json:"-"`
}

// ResetParameterOverrideRequest deletes a company's overrides.
type ResetParameterOverrideRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// GetGlobalSettingsRequest reads the settings singleton.
type GetGlobalSettingsRequest struct {
	Actor model.Actor `json:"-"`
}

// SegmentSettings mirrors model.SegmentSettings on the wire.
type SegmentSettings struct {
	CreditLimit  decimal.Decimal  `json:"credit_limit"`
	Terms        int              `json:"terms"`
	DiscountRate *decimal.Decimal `json:"discount_rate,omitempty"`
	AdvancePct   *decimal.Decimal `json:"advance_pct,omitempty"`
}

// GlobalSettings mirrors model.GlobalSettings on the wire.
type GlobalSettings struct {
	BaseDiscountRate   decimal.Decimal            `json:"base_discount_rate"`
	DefaultAdvancePct  decimal.Decimal            `json:"default_advance_pct"`
	Segments           map[string]SegmentSettings `json:"segments"`
	MaxExposureRatio   decimal.Decimal            `json:"max_exposure_ratio"`
	MaxTenorBufferDays int                        `json:"max_tenor_buffer_days"`
	UpdatedAt          time.Time                  `json:"updated_at,omitempty"`
	UpdatedBy          string                     `json:"updated_by,omitempty"`
}

// UpdateGlobalSettingsRequest replaces the settings singleton.
type UpdateGlobalSettingsRequest struct {
	Settings GlobalSettings `json:"settings"`
	Actor    model.Actor    `json:"-"`
}

// OpenCollectionCaseRequest opens a case for a delinquent request.
type OpenCollectionCaseRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	RequestID string      `json:"request_id" validate:"required"`
	Priority  string      `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Reason    string      `json:"reason,omitempty" validate:"max=500"`
	Actor     model.Actor `json:"-"`
}

// RecordCollectionActionRequest appends an action to a case.
type RecordCollectionActionRequest struct {
	CompanyID   string      `json:"company_id" validate:"required"`
	CaseID      string      `json:"case_id" validate:"required"`
	Kind        string      `json:"kind" validate:"required,oneof=call email sms whatsapp visit reminder note"`
	Notes       string      `json:"notes,omitempty" validate:"max=2000"`
	DueAt       *time.Time  `json:"due_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Actor       model.Actor `json:"-"`
}

// UpdateCollectionPromiseRequest records a payment promise.
type UpdateCollectionPromiseRequest struct {
	CompanyID     string          `json:"company_id" validate:"required"`
	CaseID        string          `json:"case_id" validate:"required"`
	PromiseAmount decimal.Decimal `json:"promise_amount" validate:"gt=0"`
	PromiseDate   time.Time       `json:"promise_date" validate:"required"`
	Actor         model.Actor     `json:"-"`
}

// CloseCollectionCaseRequest resolves a case.
type CloseCollectionCaseRequest struct {
	CompanyID  string      `json:"company_id" validate:"required"`
	CaseID     string      `json:"case_id" validate:"required"`
	Resolution string      `json:"resolution" validate:"required,max=500"`
	Actor      model.Actor `json:"-"`
}

// ListCollectionActionsRequest identifies a case.
type ListCollectionActionsRequest struct {
	CompanyID string      `json:"company_id" validate:"required"`
	CaseID    string      `json:"case_id" validate:"required"`
	Actor     model.Actor `json:"-"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// FundingRequestResponse is the external representation of a request.
type FundingRequestResponse struct {
	ID                    string          `json:"id"`
	CompanyID             string          `json:"company_id"`
	Status                string          `json:"status"`
	RequestedAmount       decimal.Decimal `json:"requested_amount"`
	Currency              string          `json:"currency"`
	InvoiceIDs            []string        `json:"invoice_ids,omitempty"`
	DisbursementAccountID string          `json:"disbursement_account_id,omitempty"`
	DisbursedAt           *time.Time      `json:"disbursed_at,omitempty"`
	Version               int             `json:"version"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// OfferTermsResponse holds priced terms. AnnualRate is a fraction.
type OfferTermsResponse struct {
	AnnualRate    decimal.Decimal            `json:"annual_rate"`
	AdvancePct    decimal.Decimal            `json:"advance_pct"`
	Fees          map[string]decimal.Decimal `json:"fees"`
	AdvanceAmount decimal.Decimal            `json:"advance_amount"`
	NetAmount     decimal.Decimal            `json:"net_amount"`
	ValidUntil    time.Time                  `json:"valid_until"`
}

// OfferResponse is the external representation of an offer.
type OfferResponse struct {
	ID         string             `json:"id"`
	CompanyID  string             `json:"company_id"`
	RequestID  string             `json:"request_id"`
	Status     string             `json:"status"`
	Terms      OfferTermsResponse `json:"terms"`
	CreatedBy  string             `json:"created_by"`
	AcceptedBy string             `json:"accepted_by,omitempty"`
	AcceptedAt *time.Time         `json:"accepted_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// OfferWithRequestResponse is returned by operations that change an offer and
// its request together.
type OfferWithRequestResponse struct {
	Offer   OfferResponse          `json:"offer"`
	Request FundingRequestResponse `json:"request"`
}

// AutoApprovalResponse reports the gate's figures. Offer and Request are set
// only when the request was approved.
type AutoApprovalResponse struct {
	Approved       bool                    `json:"approved"`
	Reason         string                  `json:"reason,omitempty"`
	TotalExposure  decimal.Decimal         `json:"total_exposure"`
	CreditLimit    decimal.Decimal         `json:"credit_limit"`
	ExposureLimit  decimal.Decimal         `json:"exposure_limit"`
	MaxTenorDays   *int                    `json:"max_tenor_days,omitempty"`
	TenorLimitDays int                     `json:"tenor_limit_days"`
	Offer          *OfferResponse          `json:"offer,omitempty"`
	Request        *FundingRequestResponse `json:"request,omitempty"`
}

// PaymentResponse is the external representation of a payment.
type PaymentResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	RequestID     string          `json:"request_id"`
	Direction     string          `json:"direction"`
	BankAccountID string          `json:"bank_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DisburseResponse is the result of a disbursement. Retry is true when the
// request was already funded.
type DisburseResponse struct {
	Request FundingRequestResponse `json:"request"`
	Payment PaymentResponse        `json:"payment"`
	Retry   bool                   `json:"retry"`
}

// NextStepResponse is the borrower-facing next step.
type NextStepResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Label     string `json:"label"`
	Hint      string `json:"hint"`
}

// EffectiveParametersResponse holds the resolved parameters of a company.
// DiscountRate is an annual percentage.
type EffectiveParametersResponse struct {
	CompanyID        string          `json:"company_id"`
	Segment          string          `json:"segment"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	AdvancePct       decimal.Decimal `json:"advance_pct"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	TenorLimitDays   int             `json:"tenor_limit_days"`
	MaxExposureRatio decimal.Decimal `json:"max_exposure_ratio"`
	TenorBufferDays  int             `json:"tenor_buffer_days"`
	Overridden       bool            `json:"overridden"`
}

// CollectionCaseResponse is the external representation of a case.
type CollectionCaseResponse struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"company_id"`
	RequestID     string           `json:"request_id"`
	Status        string           `json:"status"`
	Priority      string           `json:"priority"`
	PromiseAmount *decimal.Decimal `json:"promise_amount,omitempty"`
	PromiseDate   *time.Time       `json:"promise_date,omitempty"`
	NextActionAt  *time.Time       `json:"next_action_at,omitempty"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
	Resolution    string           `json:"resolution,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CollectionActionResponse is the external representation of an action.
type CollectionActionResponse struct {
	ID          string     `json:"id"`
	CaseID      string     `json:"case_id"`
	Kind        string     `json:"kind"`
	Notes       string     `json:"notes,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RecordCollectionActionResponse returns the action and the updated case.
type RecordCollectionActionResponse struct {
	Action CollectionActionResponse `json:"action"`
	Case   CollectionCaseResponse   `json:"case"`
}

// CollectionActionsResponse lists a case's actions, oldest first.
type CollectionActionsResponse struct {
	CaseID  string                     `json:"case_id"`
	Actions []CollectionActionResponse `json:"actions"`
}

// ParameterOverrideResponse echoes the stored override.
type ParameterOverrideResponse struct {
	CompanyID     string           `json:"company_id"`
	DiscountRate  *decimal.Decimal `json:"discount_rate,omitempty"`
	AdvancePct    *decimal.Decimal `json:"advance_pct,omitempty"`
	OperationDays *int             `json:"operation_days,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
	UpdatedBy     string           `json:"updated_by"`
}

// ResetParameterOverrideResponse confirms a reset.
type ResetParameterOverrideResponse struct {
	CompanyID string `json:"company_id"`
	Reset     bool   `json:"reset"`
}
