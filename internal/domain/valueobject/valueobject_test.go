package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

func TestNewRequestStatus(t *testing.T) {
	t.Run("parses every known status", func(t *testing.T) {
		for _, raw := range []string{"review", "offered", "accepted", "signed", "funded", "cancelled", "rejected", "archived"} {
			s, err := valueobject.NewRequestStatus(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, s.String())
		}
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		_, err := valueobject.NewRequestStatus("paid")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
	})
}

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	s := func(raw string) valueobject.RequestStatus {
		v, err := valueobject.NewRequestStatus(raw)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		from, to string
		want     bool
	}{
		{"review", "offered", true},
		{"review", "accepted", true},
		{"review", "cancelled", true},
		{"review", "rejected", true},
		{"review", "signed", false},
		{"review", "funded", false},
		{"offered", "accepted", true},
		{"offered", "review", true},
		{"offered", "cancelled", true},
		{"offered", "rejected", true},
		{"offered", "funded", false},
		{"accepted", "signed", true},
		{"accepted", "funded", true},
		{"accepted", "review", false},
		{"accepted", "cancelled", false},
		{"signed", "funded", true},
		{"signed", "accepted", false},
		{"funded", "archived", true},
		{"funded", "signed", false},
		{"cancelled", "archived", true},
		{"cancelled", "review", false},
		{"rejected", "archived", true},
		{"rejected", "offered", false},
		{"archived", "review", false},
		{"review", "review", false},
	}
	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, s(tt.from).CanTransitionTo(s(tt.to)))
		})
	}
}

func TestRequestStatus_IsActive(t *testing.T) {
	for _, s := range valueobject.ActiveRequestStatuses() {
		assert.True(t, s.IsActive(), s.String())
	}
	for _, s := range []valueobject.RequestStatus{
		valueobject.RequestStatusCancelled, valueobject.RequestStatusRejected, valueobject.RequestStatusArchived,
	} {
		assert.False(t, s.IsActive(), s.String())
	}
}

func TestSegmentFromCompanyType(t *testing.T) {
	tests := []struct {
		companyType string
		want        valueobject.Segment
	}{
		{"Corporación", valueobject.SegmentCorporativo},
		{"CORPORATE", valueobject.SegmentCorporativo},
		{"Startup SAS", valueobject.SegmentStartup},
		{"PyME", valueobject.SegmentPyme},
		{"SME retail", valueobject.SegmentPyme},
		{"persona natural", valueobject.SegmentDefault},
		{"", valueobject.SegmentDefault},
	}
	for _, tt := range tests {
		t.Run(tt.companyType, func(t *testing.T) {
			assert.Equal(t, tt.want, valueobject.SegmentFromCompanyType(tt.companyType))
		})
	}
}

func TestParseSegment(t *testing.T) {
	seg, ok := valueobject.ParseSegment("pyme")
	assert.True(t, ok)
	assert.Equal(t, valueobject.SegmentPyme, seg)

	_, ok = valueobject.ParseSegment("enterprise")
	assert.False(t, ok)
}

func TestSmallEnums(t *testing.T) {
	t.Run("offer mode defaults to standard", func(t *testing.T) {
		m, err := valueobject.NewOfferMode("")
		require.NoError(t, err)
		assert.True(t, m.Equal(valueobject.OfferModeStandard))
		_, err = valueobject.NewOfferMode("auction")
		assert.Error(t, err)
	})

	t.Run("priority defaults to medium", func(t *testing.T) {
		p, err := valueobject.NewPriority("")
		require.NoError(t, err)
		assert.True(t, p.Equal(valueobject.PriorityMedium))
		_, err = valueobject.NewPriority("urgent")
		assert.Error(t, err)
	})

	t.Run("action kinds", func(t *testing.T) {
		k, err := valueobject.NewActionKind("whatsapp")
		require.NoError(t, err)
		assert.True(t, k.Equal(valueobject.ActionKindWhatsApp))
		_, err = valueobject.NewActionKind("fax")
		assert.Error(t, err)
	})

	t.Run("statuses round trip", func(t *testing.T) {
		o, err := valueobject.NewOfferStatus("accepted")
		require.NoError(t, err)
		assert.True(t, o.Equal(valueobject.OfferStatusAccepted))

		p, err := valueobject.NewPaymentStatus("pending")
		require.NoError(t, err)
		assert.True(t, p.Equal(valueobject.PaymentStatusPending))

		d, err := valueobject.NewPaymentDirection("outbound")
		require.NoError(t, err)
		assert.True(t, d.Equal(valueobject.PaymentDirectionOutbound))

		c, err := valueobject.NewCollectionCaseStatus("promise")
		require.NoError(t, err)
		assert.True(t, c.Equal(valueobject.CollectionCaseStatusPromise))
	})
}
