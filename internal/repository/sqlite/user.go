package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// GetByNickname returns the user with totalTweets counted at query time.
func (db *DB) GetByNickname(ctx context.Context, nickname string) (*model.UserWithStats, error) {
	ctx, cancel := db.bounded(ctx)
	defer cancel()

	var (
		u        model.UserWithStats
		nick     string
		photoRef string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.nickname, u.bio, u.photo_ref, u.joined_date,
		       (SELECT COUNT(*) FROM tweets t WHERE t.user_id = u.id)
		FROM users u
		WHERE u.nickname = ?`,
		nickname,
	).Scan(&u.ID, &u.Name, &nick, &u.Bio, &photoRef, &u.JoinedDate, &u.TotalTweets)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", nickname)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetching user %q: %w", nickname, err)
	}
	u.Nickname = model.Nickname(nick)
	u.Photo = model.NewImageRef(photoRef)
	return &u, nil
}
