package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

func TestDeriveNextStep(t *testing.T) {
	t.Run("signed without case waits for disbursement", func(t *testing.T) {
		step := service.DeriveNextStep(valueobject.RequestStatusSigned, nil)
		assert.Equal(t, "Esperar desembolso", step.Label)
	})

	t.Run("open case with promise date shows the promise", func(t *testing.T) {
		promise := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
		next := now.AddDate(0, 0, 2)
		amount := dec(1_000)
		c := model.ReconstructCollectionCase("case-1", "company-1", "r1",
			valueobject.CollectionCaseStatusPromise, valueobject.PriorityMedium,
			&amount, &promise, &next, nil, "", now, now)

		step := service.DeriveNextStep(valueobject.RequestStatusSigned, &c)
		assert.Equal(t, "Seguimiento de cobranza en curso", step.Label)
		assert.Equal(t, "Compromiso de pago para el 09/04/2026", step.Hint)
	})

	t.Run("open case without promise uses next action", func(t *testing.T) {
		next := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
		c := model.ReconstructCollectionCase("case-1", "company-1", "r1",
			valueobject.CollectionCaseStatusInProgress, valueobject.PriorityMedium,
			nil, nil, &next, nil, "", now, now)

		step := service.DeriveNextStep(valueobject.RequestStatusFunded, &c)
		assert.Equal(t, "Próxima gestión de cobranza el 01/12/2026", step.Hint)
	})

	t.Run("open case without dates uses the generic hint", func(t *testing.T) {
		c := model.ReconstructCollectionCase("case-1", "company-1", "r1",
			valueobject.CollectionCaseStatusOpen, valueobject.PriorityMedium,
			nil, nil, nil, nil, "", now, now)

		step := service.DeriveNextStep(valueobject.RequestStatusFunded, &c)
		assert.Equal(t, "Nuestro equipo de cobranza se comunicará contigo.", step.Hint)
	})

	t.Run("status labels", func(t *testing.T) {
		tests := map[string]string{
			"funded":    "Desembolso realizado",
			"accepted":  "Firmar contrato",
			"offered":   "Revisar oferta",
			"cancelled": "Solicitud cancelada",
			"review":    "Solicitud en revisión",
			"rejected":  "Solicitud en revisión",
		}
		for raw, label := range tests {
			status, err := valueobject.NewRequestStatus(raw)
			require.NoError(t, err)
			assert.Equal(t, label, service.DeriveNextStep(status, nil).Label, raw)
		}
	})
}
