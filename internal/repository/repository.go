package repository

import (
	"context"

	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
)

// TweetRepository reads posts, newest first. Each post has its author expanded.
type TweetRepository interface {
	List(ctx context.Context, r pagination.Range) ([]model.Tweet, error)
	ListByNickname(ctx context.Context, nickname string, r pagination.Range) ([]model.Tweet, error)
	// GetCardByNickname returns apperror.NotFound when no card matches.
	GetCardByNickname(ctx context.Context, nickname string) (*model.TweetCard, error)
}

// UserRepository reads user profiles.
type UserRepository interface {
	// GetByNickname returns apperror.NotFound when no user matches.
	GetByNickname(ctx context.Context, nickname string) (*model.UserWithStats, error)
}
