package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mishmeshmosh/backend/internal/models"
)

func TestAssignmentSigners(t *testing.T) {
	deedID := uuid.New()
	b1, b2, b3 := uuid.New(), uuid.New(), uuid.New()
	supplier := uuid.New()
	initiator := uuid.New()

	t.Run("n backers plus supplier plus initiator", func(t *testing.T) {
		signers := assignmentSigners(deedID, []uuid.UUID{b1, b2, b3}, supplier, initiator)
		if len(signers) != 5 {
			t.Fatalf("expected 5 signers, got %d", len(signers))
		}

		kinds := make(map[uuid.UUID]string, len(signers))
		for _, s := range signers {
			if s.DeedID != deedID {
				t.Errorf("signer %s bound to deed %s, want %s", s.UserID, s.DeedID, deedID)
			}
			if s.Status != models.SignerStatusInvited {
				t.Errorf("signer %s status %q, want %q", s.UserID, s.Status, models.SignerStatusInvited)
			}
			kinds[s.UserID] = s.SignerKind
		}
		for _, b := range []uuid.UUID{b1, b2, b3} {
			if kinds[b] != models.SignerKindBacker {
				t.Errorf("backer %s has kind %q", b, kinds[b])
			}
		}
		if kinds[supplier] != models.SignerKindSupplier {
			t.Errorf("supplier has kind %q", kinds[supplier])
		}
		if kinds[initiator] != models.SignerKindInitiator {
			t.Errorf("initiator has kind %q", kinds[initiator])
		}
	})

	t.Run("initiator who is also a backer gets one row", func(t *testing.T) {
		signers := assignmentSigners(deedID, []uuid.UUID{b1, initiator}, supplier, initiator)
		if len(signers) != 3 {
			t.Fatalf("expected 3 signers, got %d", len(signers))
		}
		for _, s := range signers {
			if s.UserID == initiator && s.SignerKind != models.SignerKindBacker {
				t.Errorf("dual-role user kept kind %q, want first kind %q", s.SignerKind, models.SignerKindBacker)
			}
		}
	})

	t.Run("supplier equals initiator gets one row", func(t *testing.T) {
		signers := assignmentSigners(deedID, []uuid.UUID{b1}, supplier, supplier)
		if len(signers) != 2 {
			t.Fatalf("expected 2 signers, got %d", len(signers))
		}
		for _, s := range signers {
			if s.UserID == supplier && s.SignerKind != models.SignerKindSupplier {
				t.Errorf("dual-role user kept kind %q, want first kind %q", s.SignerKind, models.SignerKindSupplier)
			}
		}
	})
}
