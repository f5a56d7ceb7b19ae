package service

import (
	"time"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// NextStep is the single action shown to a borrower for a request.
type NextStep struct {
	Label string
	Hint  string
}

const (
	labelCollections = "Seguimiento de cobranza en curso"
	hintCollections  = "Nuestro equipo de cobranza se comunicará contigo."
	dateLayout       = "02/01/2006"
)

var stepsByStatus = map[string]NextStep{
	valueobject.RequestStatusFunded.String(): {
		Label: "Desembolso realizado",
		Hint:  "Los fondos fueron enviados a tu cuenta bancaria.",
	},
	valueobject.RequestStatusSigned.String(): {
		Label: "Esperar desembolso",
		Hint:  "Estamos procesando el desembolso de tu solicitud.",
	},
	valueobject.RequestStatusAccepted.String(): {
		Label: "Firmar contrato",
		Hint:  "Revisa tu correo para firmar el contrato de la operación.",
	},
	valueobject.RequestStatusOffered.String(): {
		Label: "Revisar oferta",
		Hint:  "Tienes una oferta disponible para aceptar o rechazar.",
	},
	valueobject.RequestStatusCancelled.String(): {
		Label: "Solicitud cancelada",
		Hint:  "Si necesitas ayuda, contacta a tu ejecutivo comercial.",
	},
}

var stepInReview = NextStep{
	Label: "Solicitud en revisión",
	Hint:  "Estamos analizando tu solicitud.",
}

// DeriveNextStep combines the request status with an optional open
// collection case, which takes precedence.
func DeriveNextStep(status valueobject.RequestStatus, openCase *model.CollectionCase) NextStep {
	if openCase != nil && openCase.IsOpen() {
		return NextStep{Label: labelCollections, Hint: collectionsHint(*openCase)}
	}
	if step, ok := stepsByStatus[status.String()]; ok {
		return step
	}
	return stepInReview
}

func collectionsHint(c model.CollectionCase) string {
	switch {
	case c.PromiseDate() != nil:
		return "Compromiso de pago para el " + formatDate(*c.PromiseDate())
	case c.NextActionAt() != nil:
		return "Próxima gestión de cobranza el " + formatDate(*c.NextActionAt())
	default:
		return hintCollections
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
