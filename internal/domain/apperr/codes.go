package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// Stable error codes.
const (
	CodeInternal                = "INTERNAL"
	CodeValidation              = "VALIDATION_FAILED"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeTransitionNotAllowed    = "TRANSITION_NOT_ALLOWED"
	CodeRequestNotFound         = "REQUEST_NOT_FOUND"
	CodeOfferNotFound           = "OFFER_NOT_FOUND"
	CodeCompanyNotFound         = "COMPANY_NOT_FOUND"
	CodeBankAccountNotFound     = "BANK_ACCOUNT_NOT_FOUND"
	CodeCollectionCaseNotFound  = "COLLECTION_CASE_NOT_FOUND"
	CodeParametersNotFound      = "PARAMETERS_NOT_FOUND"
	CodeNotInReview             = "NOT_IN_REVIEW"
	CodeExposureExceeded        = "EXPOSURE_EXCEEDED"
	CodeTenorExceeded           = "TENOR_EXCEEDED"
	CodeNoBankAccount           = "NO_BANK_ACCOUNT"
	CodeInvalidBankAccount      = "INVALID_BANK_ACCOUNT"
	CodeNotReadyForDisbursement = "NOT_READY_FOR_DISBURSEMENT"
	CodeOfferExpired            = "OFFER_EXPIRED"
	CodeOfferNotActive          = "OFFER_NOT_ACTIVE"
	CodeCollectionCaseClosed    = "COLLECTION_CASE_CLOSED"
	CodeForbiddenCompany        = "FORBIDDEN_COMPANY"
	CodeStaffOnly               = "STAFF_ONLY"
	CodePaymentAlreadyProcessed = "PAYMENT_ALREADY_PROCESSED"
	CodeDuplicatePayment        = "DUPLICATE_PAYMENT"
	CodeDuplicateCollectionCase = "DUPLICATE_COLLECTION_CASE"
	CodeStaleRequest            = "STALE_REQUEST"
	CodeNotificationFailed      = "NOTIFICATION_FAILED"
)

const msgInternal = "Ocurrió un error inesperado. Intenta de nuevo más tarde."

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, msgInternal, cause)
}

// ---- Not found ----

func RequestNotFound() *Error {
	return New(KindNotFound, CodeRequestNotFound, "No encontramos la solicitud.")
}

func OfferNotFound() *Error {
	return New(KindNotFound, CodeOfferNotFound, "No encontramos la oferta.")
}

func CompanyNotFound() *Error {
	return New(KindNotFound, CodeCompanyNotFound, "No encontramos la empresa.")
}

func BankAccountNotFound() *Error {
	return New(KindNotFound, CodeBankAccountNotFound, "No encontramos la cuenta bancaria.")
}

func CollectionCaseNotFound() *Error {
	return New(KindNotFound, CodeCollectionCaseNotFound, "No encontramos el caso de cobranza.")
}

func ParametersNotFound() *Error {
	return New(KindNotFound, CodeParametersNotFound, "La empresa no tiene parámetros personalizados.")
}

// ---- Validation ----

// Validation reports malformed input. fields maps field names to messages.
func Validation(fields map[string]string) *Error {
	e := New(KindValidation, CodeValidation, "Los datos enviados no son válidos.")
	e.Fields = fields
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Message = fmt.Sprintf("Los datos enviados no son válidos: %s.", strings.Join(names, ", "))
	}
	return e
}

// InvalidField is Validation for a single field.
func InvalidField(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

func InvalidStatus(raw string) *Error {
	e := New(KindValidation, CodeInvalidStatus, fmt.Sprintf("El estado %q no es válido.", raw))
	e.Fields = map[string]string{"status": "unknown"}
	return e
}

// ---- Transitions ----

func InvalidTransition(from, to string) *Error {
	return New(KindInvalidTransition, CodeInvalidTransition,
		fmt.Sprintf("No es posible pasar la solicitud de %q a %q.", from, to))
}

// TransitionNotAllowed reports a legal edge that only a dedicated operation
// may take, such as funding through Disburse.
func TransitionNotAllowed(to string) *Error {
	return New(KindInvalidTransition, CodeTransitionNotAllowed,
		fmt.Sprintf("El estado %q se asigna con su propia operación.", to))
}

// ---- Policy ----

func NotInReview() *Error {
	return New(KindPolicyViolation, CodeNotInReview, "La solicitud debe estar en revisión.")
}

func ExposureExceeded() *Error {
	return New(KindPolicyViolation, CodeExposureExceeded, "La exposición total supera el cupo aprobado para la empresa.")
}

func TenorExceeded() *Error {
	return New(KindPolicyViolation, CodeTenorExceeded, "El plazo de las facturas supera el máximo permitido.")
}

func NoBankAccount() *Error {
	return New(KindPolicyViolation, CodeNoBankAccount, "La empresa no tiene cuentas bancarias registradas.")
}

func InvalidBankAccount() *Error {
	return New(KindPolicyViolation, CodeInvalidBankAccount, "La cuenta bancaria seleccionada no pertenece a la empresa.")
}

func NotReadyForDisbursement() *Error {
	return New(KindPolicyViolation, CodeNotReadyForDisbursement, "La solicitud aún no está lista para desembolso.")
}

func OfferExpired() *Error {
	return New(KindPolicyViolation, CodeOfferExpired, "La oferta ha vencido.")
}

func OfferNotActive() *Error {
	return New(KindPolicyViolation, CodeOfferNotActive, "La oferta ya no está vigente.")
}

func CollectionCaseClosed() *Error {
	return New(KindPolicyViolation, CodeCollectionCaseClosed, "El caso de cobranza ya está cerrado.")
}

func ForbiddenCompany() *Error {
	return New(KindPolicyViolation, CodeForbiddenCompany, "No tienes acceso a esta empresa.")
}

func StaffOnly() *Error {
	return New(KindPolicyViolation, CodeStaffOnly, "Esta operación solo está disponible para el equipo interno.")
}

func PaymentAlreadyProcessed() *Error {
	return New(KindPolicyViolation, CodePaymentAlreadyProcessed, "El desembolso ya está en proceso o fue pagado.")
}

// ---- Conflict ----

func DuplicatePayment(cause error) *Error {
	return Wrap(KindConflict, CodeDuplicatePayment, "Ya existe un desembolso registrado para esta solicitud.", cause)
}

func DuplicateCollectionCase(cause error) *Error {
	return Wrap(KindConflict, CodeDuplicateCollectionCase, "Ya existe un caso de cobranza abierto para esta solicitud.", cause)
}

func StaleRequest() *Error {
	return New(KindConflict, CodeStaleRequest, "La solicitud fue modificada por otra operación. Intenta de nuevo.")
}

// ---- Upstream ----

func NotificationFailed(cause error) *Error {
	return Wrap(KindUpstream, CodeNotificationFailed, "No pudimos enviar la notificación.", cause)
}
