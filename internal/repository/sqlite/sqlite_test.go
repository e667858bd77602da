package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/pagination"
)

// newTestDB returns a fresh in-memory database closed at test end.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedPosts creates alice and bob and n tweets alternating between them,
// tweet i created i minutes after a fixed base time.
func seedPosts(t *testing.T, db *DB, n int) {
	t.Helper()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := Fixture{
		Users: []FixtureUser{
			{ID: "u-alice", Name: "Alice", Nickname: "alice", Photo: "image-abc-48x48-png", JoinedDate: "2023-01-15"},
			{ID: "u-bob", Name: "Bob", Nickname: "bob"},
		},
	}
	for i := 0; i < n; i++ {
		author := "alice"
		if i%2 == 1 {
			author = "bob"
		}
		f.Tweets = append(f.Tweets, FixtureTweet{
			ID:        fmt.Sprintf("t%d", i),
			Text:      fmt.Sprintf("tweet %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
			User:      author,
		})
	}
	require.NoError(t, db.Seed(context.Background(), f))
}

func TestList_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 5)

	tweets, err := db.List(context.Background(), pagination.Range{Start: 0, End: 2})
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "t4", tweets[0].ID)
	assert.Equal(t, "t3", tweets[1].ID)

	// author is expanded
	require.NotNil(t, tweets[0].User)
	assert.Equal(t, "Alice", tweets[0].User.Name)
	assert.Equal(t, "alice", tweets[0].User.Nickname.String())
	assert.Equal(t, "image-abc-48x48-png", tweets[0].User.Photo.AssetRef())
	assert.Equal(t, "2023-01-15", tweets[0].User.JoinedDate)
}

func TestList_LastPartialPage(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 5)

	tweets, err := db.List(context.Background(), pagination.Range{Start: 4, End: 6})
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "t0", tweets[0].ID)
}

func TestList_PastEnd(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 2)

	tweets, err := db.List(context.Background(), pagination.Range{Start: 6, End: 12})
	require.NoError(t, err)
	assert.NotNil(t, tweets)
	assert.Empty(t, tweets)
}

func TestListByNickname(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 5) // alice: t0 t2 t4, bob: t1 t3

	tweets, err := db.ListByNickname(context.Background(), "alice", pagination.Range{Start: 0, End: 3})
	require.NoError(t, err)
	require.Len(t, tweets, 3)
	assert.Equal(t, []string{"t4", "t2", "t0"}, []string{tweets[0].ID, tweets[1].ID, tweets[2].ID})

	tweets, err = db.ListByNickname(context.Background(), "nobody", pagination.Range{Start: 0, End: 3})
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestGetByNickname(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 5)

	u, err := db.GetByNickname(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "u-bob", u.ID)
	assert.Equal(t, 2, u.TotalTweets)
	assert.Nil(t, u.Photo)

	_, err = db.GetByNickname(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestGetCardByNickname(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Seed(context.Background(), Fixture{
		Cards: []FixtureCard{
			{Name: "Alice", Nickname: "alice", Text: "old", CreatedAt: "2024-01-01"},
			{Name: "Alice", Nickname: "alice", Text: "new", Photo: "image-x-1x1-png", CreatedAt: "2024-02-01"},
		},
	}))

	card, err := db.GetCardByNickname(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", card.Text)
	assert.NotEmpty(t, card.ID) // generated
	assert.Equal(t, "image-x-1x1-png", card.Photo.AssetRef())

	_, err = db.GetCardByNickname(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSeed_UnknownAuthor(t *testing.T) {
	db := newTestDB(t)
	err := db.Seed(context.Background(), Fixture{
		Tweets: []FixtureTweet{{Text: "orphan", User: "ghost"}},
	})
	require.Error(t, err)

	// transaction rolled back: nothing stored
	tweets, err := db.List(context.Background(), pagination.Range{Start: 0, End: 10})
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestSeed_AuthorFromEarlierSeed(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 0)

	require.NoError(t, db.Seed(context.Background(), Fixture{
		Tweets: []FixtureTweet{{ID: "late", Text: "hi", User: "bob", CreatedAt: "2024-06-01T00:00:00Z"}},
	}))

	u, err := db.GetByNickname(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, u.TotalTweets)
}

func TestSeed_InvalidTimestamp(t *testing.T) {
	db := newTestDB(t)
	err := db.Seed(context.Background(), Fixture{
		Users:  []FixtureUser{{Name: "Alice", Nickname: "alice"}},
		Tweets: []FixtureTweet{{Text: "hi", User: "alice", CreatedAt: "yesterday"}},
	})
	assert.Error(t, err)
}

func TestLoadFixtureFile(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - nickname: alice
    name: Alice
    bio: hello there
tweets:
  - user: alice
    text: first
    createdAt: 2024-05-01T10:00:00Z
    likes: 4
    retweets: 1
  - user: alice
    text: second
    createdAt: 2024-05-01T11:00:00+02:00
`), 0o644))

	require.NoError(t, db.LoadFixtureFile(context.Background(), path))

	tweets, err := db.List(context.Background(), pagination.Range{Start: 0, End: 6})
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	// 11:00+02:00 is 09:00Z, so "first" is the newer one
	assert.Equal(t, "first", tweets[0].Text)
	assert.Equal(t, "hello there", tweets[0].User.Bio)
	assert.Equal(t, 4, tweets[0].Likes)
	assert.Equal(t, 1, tweets[0].Retweets)
	assert.Equal(t, 0, tweets[1].Likes)
}

func TestBoundedContext(t *testing.T) {
	db := newTestDB(t)
	assert.Equal(t, DefaultQueryTimeout, db.queryTimeout)

	db.SetQueryTimeout(time.Minute)
	ctx, cancel := db.bounded(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	// a closer caller deadline wins
	parent, cancelParent := context.WithTimeout(context.Background(), time.Second)
	defer cancelParent()
	ctx2, cancel2 := db.bounded(parent)
	defer cancel2()
	d2, _ := ctx2.Deadline()
	pd, _ := parent.Deadline()
	assert.Equal(t, pd, d2)

	db.SetQueryTimeout(0)
	ctx3, cancel3 := db.bounded(context.Background())
	defer cancel3()
	_, ok = ctx3.Deadline()
	assert.False(t, ok)
}

func TestQueriesHonourCancelledContext(t *testing.T) {
	db := newTestDB(t)
	seedPosts(t, db, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.List(ctx, pagination.Range{Start: 0, End: 6})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = db.GetByNickname(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeTime(t *testing.T) {
	got, err := normalizeTime("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", got)

	got, err = normalizeTime("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T00:00:00.000Z", got)

	_, err = normalizeTime("not a date")
	assert.Error(t, err)
}
