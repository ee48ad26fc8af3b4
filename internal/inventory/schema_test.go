package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eargollo/filelist/internal/record"
)

func TestBootstrapResetEmptiesAllTables(t *testing.T) {
	db := mustOpenDB(t)
	ctx := context.Background()
	runOnce(t, db, DefaultBatchSize, syntheticRecords(25))
	_, err := NewRecorder(db).Begin(ctx, "/vol", "*.bin", true)
	require.NoError(t, err)

	require.NoError(t, Bootstrap(ctx, db, testColumns, true))

	assert.Equal(t, 0, countRows(t, db, "filelist"))
	assert.Equal(t, 0, countRows(t, db, "dirlist"))
	ok, err := tableExists(ctx, db, "stats")
	require.NoError(t, err)
	assert.False(t, ok, "stats is recreated lazily by the next run")

	stats := runOnce(t, db, DefaultBatchSize, syntheticRecords(25))
	assert.Equal(t, int64(25), stats.Inserted)
}

func TestBootstrapUpdateKeepsRows(t *testing.T) {
	db := mustOpenDB(t)
	ctx := context.Background()
	runOnce(t, db, DefaultBatchSize, syntheticRecords(5))

	require.NoError(t, Bootstrap(ctx, db, testColumns, false))
	assert.Equal(t, 5, countRows(t, db, "filelist"))
}

func TestBootstrapRejectsDifferentColumns(t *testing.T) {
	db := mustOpenDB(t)
	other := append(append([]record.Column(nil), testColumns...),
		record.Column{Name: "hash", Type: record.TypeBlob})

	err := Bootstrap(context.Background(), db, other, false)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	require.NoError(t, Bootstrap(context.Background(), db, other, true))
}

func TestBootstrapNeedsPathAndFilename(t *testing.T) {
	db := mustOpenDB(t)
	err := Bootstrap(context.Background(), db, testColumns[:1], false)
	assert.Error(t, err)
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusMissing, StatusExisting, StatusNew} {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("deleted")
	assert.Error(t, err)
}
