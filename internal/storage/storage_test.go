package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/logging"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUniqueSkipsExistingContent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	first := []models.Post{
		{Content: "alpha post", Likes: 3},
		{Content: "beta post", Likes: 9},
	}
	assert.Equal(t, 2, SaveUnique(ctx, repo, first, logging.Discard()))

	second := []models.Post{
		{Content: "alpha post", Likes: 99},
		{Content: "alpha post!", Likes: 1},
	}
	assert.Equal(t, 1, SaveUnique(ctx, repo, second, logging.Discard()))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

type flakyPostRepo struct {
	*MemoryPostRepository
	failContent string
}

func (r flakyPostRepo) Insert(ctx context.Context, post models.Post) (string, error) {
	if post.Content == r.failContent {
		return "", errors.New("connection reset")
	}
	return r.MemoryPostRepository.Insert(ctx, post)
}

func TestSaveUniqueContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo := flakyPostRepo{MemoryPostRepository: NewMemoryPostRepository(), failContent: "bad"}

	n := SaveUnique(ctx, repo, []models.Post{{Content: "bad"}, {Content: "good"}}, logging.Discard())
	assert.Equal(t, 1, n)

	exists, err := repo.ExistsByContent(ctx, "good")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryPostRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	for _, p := range []models.Post{
		{Content: "a", Likes: 5, Timestamp: 1000},
		{Content: "b", Likes: 50, Timestamp: 2000},
		{Content: "c", Likes: 20, Timestamp: 3000},
		{Content: "d", Likes: 80, Timestamp: 9000},
	} {
		id, err := repo.Insert(ctx, p)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	top, err := repo.ListTop(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int{80, 50, 20}, []int{top[0].Likes, top[1].Likes, top[2].Likes})

	all, err := repo.ListTop(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	window, err := repo.ListWindow(ctx, 1000, 3000, 0)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, "b", window[0].Content)
	assert.Equal(t, "a", window[2].Content)

	stats, err := repo.ListStats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 4)
}

func TestMemoryHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()

	oldID, err := repo.Insert(ctx, models.GeneratedRecord{Topic: "old", Timestamp: 10})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.GeneratedRecord{Topic: "new", Timestamp: 20})
	require.NoError(t, err)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Topic)

	require.NoError(t, repo.Delete(ctx, oldID))
	assert.ErrorIs(t, repo.Delete(ctx, oldID), ErrNotFound)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryActivityRepositoryFiltersByType(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryActivityRepository()

	require.NoError(t, repo.Log(ctx, models.ActivityLog{ActivityType: models.ActivityTypeHarvest, Message: "h1"}))
	require.NoError(t, repo.Log(ctx, models.ActivityLog{ActivityType: models.ActivityTypeGenerate, Message: "g1"}))
	require.NoError(t, repo.Log(ctx, models.ActivityLog{ActivityType: models.ActivityTypeHarvest, Message: "h2"}))

	harvest := models.ActivityTypeHarvest
	logs, err := repo.List(ctx, 10, &harvest)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "h2", logs[0].Message)

	all, err := repo.List(ctx, 2, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGroupSessionsByLocalHour(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	at := func(h, m int) float64 {
		return models.EpochSeconds(time.Date(2024, 3, 10, h, m, 0, 0, loc))
	}

	stats := []models.PostStat{
		{Likes: 10, Timestamp: at(9, 5)},
		{Likes: 30, Timestamp: at(9, 40)},
		{Likes: 7, Timestamp: at(11, 0)},
	}

	sessions := GroupSessions(stats, loc)
	require.Len(t, sessions, 2)

	assert.Equal(t, "2024-03-10 11:00", sessions[0].Label)
	assert.Equal(t, 1, sessions[0].Count)

	assert.Equal(t, "2024-03-10 09:00", sessions[1].Label)
	assert.Equal(t, 2, sessions[1].Count)
	assert.Equal(t, 20, sessions[1].AvgLikes)
	assert.Equal(t, at(9, 5), sessions[1].Timestamp)
}

func TestSessionWindow(t *testing.T) {
	from, to := SessionWindow(10_000)
	assert.Equal(t, 8_200.0, from)
	assert.Equal(t, 13_600.0, to)
}
