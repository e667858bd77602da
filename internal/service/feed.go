// Package service contains the business logic between the HTTP handlers and
// the repositories.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, paginates, joins, decorates
//	Repository (data layer)  → talks to the content store
//
// Services accept repository interfaces, so the Sanity store, the local
// SQLite dataset, the cache decorator and test mocks are interchangeable.
//
// ERROR POLICY:
// Validation and not-found errors are returned as is. Any other repository
// error is a content-store fault: it is logged here with full detail and
// returned as apperror.Upstream, which the handler turns into a generic 500.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/repository"
)

const (
	DefaultPerPage  = 6
	ProfilePageSize = 3

	avatarSize  = 48
	profileSize = 120
)

// ImageURLBuilder resolves image asset refs to URLs. *sanity.ImageBuilder
// implements it; a nil builder yields "".
type ImageURLBuilder interface {
	URL(ref string, width, height int) string
}

// FeedService serves the global feed and single tweet cards.
type FeedService struct {
	tweets repository.TweetRepository
	images ImageURLBuilder
	logger *slog.Logger
}

// NewFeedService creates a FeedService. images may be nil.
func NewFeedService(tweets repository.TweetRepository, images ImageURLBuilder, logger *slog.Logger) *FeedService {
	return &FeedService{
		tweets: tweets,
		images: images,
		logger: logger,
	}
}

// Page returns one page of the feed, newest first.
func (s *FeedService) Page(ctx context.Context, page, perPage int) (*model.FeedPage, error) {
	r, err := pagination.ComputeRange(page, perPage)
	if err != nil {
		return nil, err
	}

	tweets, err := s.tweets.List(ctx, r)
	if err != nil {
		return nil, upstream(s.logger, "fetching tweets", err,
			slog.Int("page", page), slog.Int("perPage", perPage))
	}

	decorateTweets(s.images, tweets)
	return &model.FeedPage{
		Tweets:  tweets,
		HasMore: pagination.HasMore(len(tweets), perPage),
	}, nil
}

// Card returns the tweet card stored for nickname.
func (s *FeedService) Card(ctx context.Context, nickname string) (*model.TweetCard, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperror.ValidationFailed("nickname", "nickname is required")
	}

	card, err := s.tweets.GetCardByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, upstream(s.logger, "fetching tweet", err, slog.String("nickname", nickname))
	}
	return card, nil
}

// upstream logs a content-store fault and wraps it for the handler.
func upstream(logger *slog.Logger, op string, err error, attrs ...any) error {
	logger.Error("content store fault",
		append([]any{slog.String("op", op), slog.String("error", err.Error())}, attrs...)...)
	return apperror.Upstream(op, err)
}

func decorateTweets(images ImageURLBuilder, tweets []model.Tweet) {
	if images == nil {
		return
	}
	for i := range tweets {
		if u := tweets[i].User; u != nil {
			u.PhotoURL = images.URL(u.Photo.AssetRef(), avatarSize, avatarSize)
		}
	}
}
