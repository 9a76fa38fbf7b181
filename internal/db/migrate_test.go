package db

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mishmeshmosh/backend/internal/models"
)

func readInitMigration(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(b)
}

// checkValues extracts the quoted value list of a CHECK (col IN (...))
// constraint from the migration SQL.
func checkValues(t *testing.T, sql, column string) map[string]bool {
	t.Helper()
	re := regexp.MustCompile(column + `\s+TEXT[^,\n]*CHECK \(` + column + ` IN \(([^)]+)\)\)`)
	m := re.FindStringSubmatch(sql)
	if m == nil {
		t.Fatalf("no CHECK constraint found for column %s", column)
	}
	values := make(map[string]bool)
	for _, v := range strings.Split(m[1], ",") {
		values[strings.Trim(strings.TrimSpace(v), "'")] = true
	}
	return values
}

func assertSameSet(t *testing.T, column string, got map[string]bool, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s CHECK has %d values, want %d (%v)", column, len(got), len(want), got)
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("%s CHECK is missing %q; inserts with that value would be rejected", column, w)
		}
	}
}

// The CHECK constraints in the schema must accept exactly the values the
// model constants produce, or inserts fail at the database.
func TestSchemaEnumsMatchModelConstants(t *testing.T) {
	sql := readInitMigration(t)

	assertSameSet(t, "deed_kind", checkValues(t, sql, "deed_kind"), []string{
		models.DeedKindNeed,
		models.DeedKindFeed,
		models.DeedKindAssignment,
	})
	assertSameSet(t, "kind", checkValues(t, sql, "kind"), []string{
		models.CampaignKindNeed,
		models.CampaignKindFeed,
	})
	assertSameSet(t, "context_type", checkValues(t, sql, "context_type"), []string{
		models.DisputeContextDeed,
		models.DisputeContextCampaign,
		models.DisputeContextAssignment,
		models.DisputeContextOffer,
	})
}

// Campaign creation sets only the status column matching the campaign kind
// and leaves the other NULL, so neither column may carry NOT NULL.
func TestCampaignStatusColumnsNullable(t *testing.T) {
	sql := readInitMigration(t)

	for _, column := range []string{"status_need", "status_feed"} {
		re := regexp.MustCompile(`(?m)^\s*` + column + `\s+TEXT[^,\n]*`)
		line := re.FindString(sql)
		if line == "" {
			t.Fatalf("column %s not found in migration", column)
		}
		if strings.Contains(line, "NOT NULL") {
			t.Errorf("%s is NOT NULL; campaign creation inserts NULL for the non-applicable kind", column)
		}
	}
}
