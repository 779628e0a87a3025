package documents

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// The sequence allocator runs inside every document create; if its column
// list drifts from the shipped DDL, creation fails for all kinds at once.
func TestSequenceUpsertMatchesSchema(t *testing.T) {
	ddl := db.TableDDL("document_sequences")
	require.NotEmpty(t, ddl, "document_sequences missing from db.Schema")

	insert := regexp.MustCompile(`document_sequences \(([^)]+)\)`).FindStringSubmatch(sequenceUpsertSQL)
	require.Len(t, insert, 2, "allocator has no INSERT column list")
	for _, col := range strings.Split(insert[1], ",") {
		col = strings.TrimSpace(col)
		require.Contains(t, ddl, col+" ", "column %q not declared in document_sequences DDL", col)
	}

	conflict := regexp.MustCompile(`ON CONFLICT \(([^)]+)\)`).FindStringSubmatch(sequenceUpsertSQL)
	require.Len(t, conflict, 2, "allocator has no conflict target")
	require.Contains(t, ddl, "PRIMARY KEY ("+conflict[1]+")",
		"conflict target %q does not match the table's primary key", conflict[1])
}
