package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func planVersion(followedFrom time.Time, followedTill *time.Time) PlanVersion {
	return PlanVersion{
		ID:           primitive.NewObjectID(),
		Type:         PlanTypeDiet,
		Title:        "Cutting phase",
		FollowedFrom: followedFrom,
		FollowedTill: followedTill,
	}
}

func TestResolveCurrent(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("picks the open version", func(t *testing.T) {
		closed := planVersion(jan, &mar)
		open := planVersion(mar, nil)
		versions := []PlanVersion{closed, open}

		current, err := ResolveCurrent(versions)
		require.NoError(t, err)
		assert.Equal(t, open.ID, current.ID)
		assert.True(t, current.IsCurrent())
	})

	t.Run("empty list has no current version", func(t *testing.T) {
		_, err := ResolveCurrent(nil)
		assert.ErrorIs(t, err, ErrNoCurrentVersion)
	})

	t.Run("falls back to latest start when none is open", func(t *testing.T) {
		apr := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		older := planVersion(jan, &mar)
		newer := planVersion(mar, &apr)
		versions := []PlanVersion{older, newer}

		current, err := ResolveCurrent(versions)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, current.ID)
	})
}

func TestSelectVersion(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	old := planVersion(jan, &mar)
	current := planVersion(mar, nil)
	versions := []PlanVersion{old, current}

	t.Run("finds a historical version by id", func(t *testing.T) {
		got, err := SelectVersion(versions, old.ID)
		require.NoError(t, err)
		assert.Equal(t, old.ID, got.ID)
	})

	t.Run("selection is read-only", func(t *testing.T) {
		_, err := SelectVersion(versions, old.ID)
		require.NoError(t, err)

		// The open version is untouched by history browsing.
		resolved, err := ResolveCurrent(versions)
		require.NoError(t, err)
		assert.Equal(t, current.ID, resolved.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := SelectVersion(versions, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrVersionNotFound)
	})
}

func TestSortVersions(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	v1 := planVersion(jan, &mar)
	v2 := planVersion(mar, &jun)
	v3 := planVersion(jun, nil)
	versions := []PlanVersion{v1, v3, v2}

	SortVersions(versions)

	require.Len(t, versions, 3)
	assert.Equal(t, v3.ID, versions[0].ID)
	assert.Equal(t, v2.ID, versions[1].ID)
	assert.Equal(t, v1.ID, versions[2].ID)
}

func TestPlanVersionRange(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("closed version covers its interval", func(t *testing.T) {
		v := planVersion(jan, &mar)
		r := v.Range()
		assert.True(t, r.Contains(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.Contains(mar)) // end bound is exclusive
	})

	t.Run("open version covers everything after its start", func(t *testing.T) {
		v := planVersion(mar, nil)
		r := v.Range()
		assert.True(t, r.IsOpen())
		assert.True(t, r.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.Contains(jan))
	})
}
