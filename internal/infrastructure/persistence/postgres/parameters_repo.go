package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

// ---------------------------------------------------------------------------
// Per-company overrides
// ---------------------------------------------------------------------------

// OverrideRepo implements port.ParameterOverrideRepository.
type OverrideRepo struct {
	q pgpkg.Querier
}

func (r *OverrideRepo) Find(ctx context.Context, companyID string) (model.ParameterOverride, bool, error) {
	var (
		o             model.ParameterOverride
		rate, advance decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, `
		SELECT company_id, discount_rate, advance_pct, operation_days, updated_at, updated_by
		FROM hq_company_parameters
		WHERE company_id = $1
	`, companyID).Scan(&o.CompanyID, &rate, &advance, &o.OperationDays, &o.UpdatedAt, &o.UpdatedBy)
	if isNoRows(err) {
		return model.ParameterOverride{}, false, nil
	}
	if err != nil {
		return model.ParameterOverride{}, false, fmt.Errorf("scan parameter override: %w", err)
	}
	o.DiscountRate = decimalPtr(rate)
	o.AdvancePct = decimalPtr(advance)
	return o, true, nil
}

func (r *OverrideRepo) Upsert(ctx context.Context, o model.ParameterOverride) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO hq_company_parameters (company_id, discount_rate, advance_pct, operation_days, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id) DO UPDATE SET
			discount_rate  = EXCLUDED.discount_rate,
			advance_pct    = EXCLUDED.advance_pct,
			operation_days = EXCLUDED.operation_days,
			updated_at     = EXCLUDED.updated_at,
			updated_by     = EXCLUDED.updated_by
	`,
		o.CompanyID, nullDecimal(o.DiscountRate), nullDecimal(o.AdvancePct),
		o.OperationDays, o.UpdatedAt.UTC(), o.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert parameter override: %w", err)
	}
	return nil
}

func (r *OverrideRepo) Delete(ctx context.Context, companyID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM hq_company_parameters WHERE company_id = $1`, companyID); err != nil {
		return fmt.Errorf("delete parameter override: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Global settings singleton
// ---------------------------------------------------------------------------

// SettingsRepo implements port.SettingsStore. The settings live as one JSON
// document in a single-row table.
type SettingsRepo struct {
	q pgpkg.Querier
}

func (r *SettingsRepo) Get(ctx context.Context) (model.GlobalSettings, error) {
	var payload []byte
	err := r.q.QueryRow(ctx, `SELECT payload FROM hq_settings WHERE id = 1`).Scan(&payload)
	if isNoRows(err) {
		return model.DefaultGlobalSettings(), nil
	}
	if err != nil {
		return model.GlobalSettings{}, fmt.Errorf("load settings: %w", err)
	}
	var s model.GlobalSettings
	if err := json.Unmarshal(payload, &s); err != nil {
		return model.GlobalSettings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepo) Put(ctx context.Context, s model.GlobalSettings) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO hq_settings (id, payload, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, payload, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store settings: %w", err)
	}
	return nil
}
