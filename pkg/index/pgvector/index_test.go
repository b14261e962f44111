package pgvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestNearestQueryOrdersByCosineDistance(t *testing.T) {
	db := dryRunDB(t)

	var chunks []*ragChunk
	stmt := nearestQuery(db, []float32{0.1, 0.2}, 3).Find(&chunks).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "ORDER BY embedding <=> ")
	assert.Contains(t, sql, "LIMIT")
}

func TestNearestQueryBindsTheQueryVector(t *testing.T) {
	db := dryRunDB(t)

	var chunks []*ragChunk
	stmt := nearestQuery(db, []float32{1, 0, 0}, 5).Find(&chunks).Statement

	require.NotEmpty(t, stmt.Vars)
}
