package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewStore(client, ttl)
}

func TestAppendAndListPreservesOrder(t *testing.T) {
	_, store := setupStore(t, 0)
	ctx := context.Background()

	turns := []Turn{
		{Role: RoleSystem, Content: "be helpful", CreatedAt: time.Now().UTC()},
		{Role: RoleUser, Content: "hello", CreatedAt: time.Now().UTC()},
		{Role: RoleAssistant, Content: "hi there", CreatedAt: time.Now().UTC()},
	}
	for _, turn := range turns {
		require.NoError(t, store.Append(ctx, "sess-1", turn))
	}

	got, err := store.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, turn := range turns {
		assert.Equal(t, turn.Role, got[i].Role)
		assert.Equal(t, turn.Content, got[i].Content)
	}
}

func TestListUnknownSessionIsEmptyNotError(t *testing.T) {
	_, store := setupStore(t, 0)

	got, err := store.List(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDurationRoundTrip(t *testing.T) {
	_, store := setupStore(t, 0)
	ctx := context.Background()

	d := 1.25
	require.NoError(t, store.Append(ctx, "sess-1", Turn{
		Role: RoleAssistant, Content: "done", CreatedAt: time.Now().UTC(), Duration: &d,
	}))
	require.NoError(t, store.Append(ctx, "sess-1", Turn{
		Role: RoleUser, Content: "thanks", CreatedAt: time.Now().UTC(),
	}))

	got, err := store.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Duration)
	assert.Equal(t, 1.25, *got[0].Duration)
	assert.Nil(t, got[1].Duration)
}

func TestSlidingTTLRefreshedOnAppend(t *testing.T) {
	mr, store := setupStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", Turn{Role: RoleUser, Content: "a"}))
	assert.Equal(t, time.Minute, mr.TTL("chat_history:sess-1"))

	mr.FastForward(30 * time.Second)
	require.NoError(t, store.Append(ctx, "sess-1", Turn{Role: RoleUser, Content: "b"}))
	assert.Equal(t, time.Minute, mr.TTL("chat_history:sess-1"))
}

func TestExpiredSessionListsAsFresh(t *testing.T) {
	mr, store := setupStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", Turn{Role: RoleUser, Content: "a"}))
	mr.FastForward(2 * time.Minute)

	got, err := store.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClear(t *testing.T) {
	_, store := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", Turn{Role: RoleUser, Content: "a"}))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	got, err := store.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTrimKeepsSystemAndRecentWindow(t *testing.T) {
	turns := []Turn{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "aaaaaaaaaa"},      // 10 chars, old
		{Role: RoleAssistant, Content: "bbbbbbbbbb"}, // 10 chars, old
		{Role: RoleUser, Content: "cccccccccc"},
		{Role: RoleAssistant, Content: "dddddddddd"},
	}

	got := Trim(turns, 25)

	require.Len(t, got, 3)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, "cccccccccc", got[1].Content)
	assert.Equal(t, "dddddddddd", got[2].Content)
}

func TestTrimWindowStartsOnUserTurn(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "question one is fairly long"},
		{Role: RoleAssistant, Content: "answer one"},
		{Role: RoleUser, Content: "q2"},
		{Role: RoleAssistant, Content: "a2"},
	}

	// Budget fits the assistant turn from the first pair but not the user
	// turn; the orphaned assistant turn must be dropped.
	got := Trim(turns, 15)

	require.NotEmpty(t, got)
	assert.Equal(t, RoleUser, got[0].Role)
	assert.Equal(t, "q2", got[0].Content)
}

func TestTrimNoBudgetReturnsInput(t *testing.T) {
	turns := []Turn{{Role: RoleUser, Content: "hello"}}
	assert.Equal(t, turns, Trim(turns, 0))
}

func TestTrimWithinBudgetKeepsEverything(t *testing.T) {
	turns := []Turn{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
	}
	got := Trim(turns, 1000)
	assert.Equal(t, turns, got)
}
