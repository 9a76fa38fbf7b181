package services

import (
	"testing"

	"github.com/mishmeshmosh/backend/internal/models"
)

func TestShouldPromoteOnSign(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		status   string
		progress models.SignerProgress
		want     bool
	}{
		{
			name:     "last signer of draft assignment deed",
			kind:     models.DeedKindAssignment,
			status:   models.DeedStatusDraft,
			progress: models.SignerProgress{Signed: 5, Total: 5},
			want:     true,
		},
		{
			name:     "signers remaining",
			kind:     models.DeedKindAssignment,
			status:   models.DeedStatusDraft,
			progress: models.SignerProgress{Signed: 4, Total: 5},
			want:     false,
		},
		{
			name:     "need deed never auto-promotes",
			kind:     models.DeedKindNeed,
			status:   models.DeedStatusDraft,
			progress: models.SignerProgress{Signed: 1, Total: 1},
			want:     false,
		},
		{
			name:     "already executed",
			kind:     models.DeedKindAssignment,
			status:   models.DeedStatusExecuted,
			progress: models.SignerProgress{Signed: 5, Total: 5},
			want:     false,
		},
		{
			name:     "no signers at all",
			kind:     models.DeedKindAssignment,
			status:   models.DeedStatusDraft,
			progress: models.SignerProgress{},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deed := &models.Deed{DeedKind: tt.kind, Status: tt.status}
			if got := shouldPromoteOnSign(deed, tt.progress); got != tt.want {
				t.Errorf("shouldPromoteOnSign(%s/%s, %d/%d) = %v, want %v",
					tt.kind, tt.status, tt.progress.Signed, tt.progress.Total, got, tt.want)
			}
		})
	}
}
