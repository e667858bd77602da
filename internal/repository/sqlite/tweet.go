package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/repository"
)

// compile-time check that *DB implements repository.TweetRepository
var _ repository.TweetRepository = (*DB)(nil)

const tweetColumns = `
	t.id, t.text, t.created_at, t.likes, t.retweets,
	u.id, u.name, u.nickname, u.bio, u.photo_ref, u.joined_date`

// List returns the tweets in r, newest first.
// Ties on created_at are broken by id so pages never overlap.
func (db *DB) List(ctx context.Context, r pagination.Range) ([]model.Tweet, error) {
	ctx, cancel := db.bounded(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`,
		r.Len(), r.Start,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tweets: %w", err)
	}
	return scanTweets(rows)
}

// ListByNickname returns the tweets in r authored by nickname, newest first.
func (db *DB) ListByNickname(ctx context.Context, nickname string, r pagination.Range) ([]model.Tweet, error) {
	ctx, cancel := db.bounded(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets t
		JOIN users u ON u.id = t.user_id
		WHERE u.nickname = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`,
		nickname, r.Len(), r.Start,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tweets of %q: %w", nickname, err)
	}
	return scanTweets(rows)
}

// GetCardByNickname returns the most recent card for nickname.
func (db *DB) GetCardByNickname(ctx context.Context, nickname string) (*model.TweetCard, error) {
	ctx, cancel := db.bounded(ctx)
	defer cancel()

	var (
		card     model.TweetCard
		nick     string
		photoRef string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, nickname, text, photo_ref, created_at
		FROM tweet_cards
		WHERE nickname = ?
		ORDER BY created_at DESC
		LIMIT 1`,
		nickname,
	).Scan(&card.ID, &card.Name, &nick, &card.Text, &photoRef, &card.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("tweet", nickname)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetching tweet card %q: %w", nickname, err)
	}
	card.Nickname = model.Nickname(nick)
	card.Photo = model.NewImageRef(photoRef)
	return &card, nil
}

// scanTweets reads rows into tweets and always closes rows.
func scanTweets(rows *sql.Rows) ([]model.Tweet, error) {
	defer rows.Close()

	tweets := []model.Tweet{}
	for rows.Next() {
		var (
			t        model.Tweet
			u        model.User
			nick     string
			photoRef string
		)
		if err := rows.Scan(
			&t.ID, &t.Text, &t.CreatedAt, &t.Likes, &t.Retweets,
			&u.ID, &u.Name, &nick, &u.Bio, &photoRef, &u.JoinedDate,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tweet: %w", err)
		}
		u.Nickname = model.Nickname(nick)
		u.Photo = model.NewImageRef(photoRef)
		t.User = &u
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tweets: %w", err)
	}
	return tweets, nil
}
