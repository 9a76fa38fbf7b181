package deeddoc

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mishmeshmosh/backend/internal/models"
)

// Hash returns the hex SHA-256 digest of the canonical JSON serialization of
// v. Canonical means the struct-defined field order of the deeddoc types; the
// doc_json column is stored as json (not jsonb) so the serialized text
// survives a round trip byte for byte.
func Hash(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the content hash of a stored doc_json and compares it to
// the recorded digest. Self-referential fields are blanked the same way they
// were at signing time.
func Verify(deedKind string, docJSON []byte, wantHash string) (bool, string, error) {
	var computed string
	switch deedKind {
	case models.DeedKindNeed:
		var doc NeedDeedDoc
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return false, "", err
		}
		h, err := doc.ContentHash()
		if err != nil {
			return false, "", err
		}
		computed = h
	case models.DeedKindAssignment:
		var doc AssignmentDeedDoc
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return false, "", err
		}
		h, err := doc.ContentHash()
		if err != nil {
			return false, "", err
		}
		computed = h
	default:
		return false, "", fmt.Errorf("unsupported deed kind %q", deedKind)
	}
	return computed == wantHash, computed, nil
}
