// Package groq implements the repository interfaces with GROQ queries sent
// to the Sanity content store.
package groq

import (
	"context"
	"fmt"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/repository"
	"github.com/sakif/tweetfeed/internal/sanity"
)

// Store reads tweets, cards and users through a sanity.Fetcher.
type Store struct {
	fetcher sanity.Fetcher
}

// compile-time checks
var (
	_ repository.TweetRepository = (*Store)(nil)
	_ repository.UserRepository  = (*Store)(nil)
)

func New(fetcher sanity.Fetcher) *Store {
	return &Store{fetcher: fetcher}
}

func (s *Store) List(ctx context.Context, r pagination.Range) ([]model.Tweet, error) {
	var tweets []model.Tweet
	err := s.fetcher.Fetch(ctx, tweetsQuery, map[string]any{
		"start": r.Start,
		"end":   r.End,
	}, &tweets)
	if err != nil {
		return nil, fmt.Errorf("groq: listing tweets [%d,%d): %w", r.Start, r.End, err)
	}
	return nonNil(tweets), nil
}

func (s *Store) ListByNickname(ctx context.Context, nickname string, r pagination.Range) ([]model.Tweet, error) {
	var tweets []model.Tweet
	err := s.fetcher.Fetch(ctx, userTweetsQuery, map[string]any{
		"nickname": nickname,
		"start":    r.Start,
		"end":      r.End,
	}, &tweets)
	if err != nil {
		return nil, fmt.Errorf("groq: listing tweets of %q: %w", nickname, err)
	}
	return nonNil(tweets), nil
}

func (s *Store) GetCardByNickname(ctx context.Context, nickname string) (*model.TweetCard, error) {
	var card *model.TweetCard
	if err := s.fetcher.Fetch(ctx, tweetCardQuery, map[string]any{"nickname": nickname}, &card); err != nil {
		return nil, fmt.Errorf("groq: fetching tweet card %q: %w", nickname, err)
	}
	if card == nil {
		return nil, apperror.NotFound("tweet", nickname)
	}
	return card, nil
}

func (s *Store) GetByNickname(ctx context.Context, nickname string) (*model.UserWithStats, error) {
	var user *model.UserWithStats
	if err := s.fetcher.Fetch(ctx, userQuery, map[string]any{"nickname": nickname}, &user); err != nil {
		return nil, fmt.Errorf("groq: fetching user %q: %w", nickname, err)
	}
	if user == nil {
		return nil, apperror.NotFound("user", nickname)
	}
	return user, nil
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil(tweets []model.Tweet) []model.Tweet {
	if tweets == nil {
		return []model.Tweet{}
	}
	return tweets
}
