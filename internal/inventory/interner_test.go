package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIsIdempotent(t *testing.T) {
	db := mustOpenDB(t)
	ctx := context.Background()
	p := NewPathInterner(db)

	a1, err := p.Resolve(ctx, "/data/a")
	require.NoError(t, err)
	a2, err := p.Resolve(ctx, "/data/a")
	require.NoError(t, err)
	b, err := p.Resolve(ctx, "/data/b")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Equal(t, 2, countRows(t, db, "dirlist"))
}

func TestResolveReusesIdsFromEarlierRuns(t *testing.T) {
	db := mustOpenDB(t)
	ctx := context.Background()

	first, err := NewPathInterner(db).Resolve(ctx, "/data/a")
	require.NoError(t, err)
	second, err := NewPathInterner(db).Resolve(ctx, "/data/a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, countRows(t, db, "dirlist"))
}
