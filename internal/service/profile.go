package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/tweetfeed/internal/apperror"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/repository"
)

// ProfileService serves a user's profile with one page of their posts.
type ProfileService struct {
	users  repository.UserRepository
	tweets repository.TweetRepository
	images ImageURLBuilder
	logger *slog.Logger
}

// NewProfileService creates a ProfileService. images may be nil.
func NewProfileService(users repository.UserRepository, tweets repository.TweetRepository, images ImageURLBuilder, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		users:  users,
		tweets: tweets,
		images: images,
		logger: logger,
	}
}

// Page returns the user with stats and page tweetsPage of their posts.
//
// The user lookup and the posts fetch run concurrently and Page waits for
// both. A missing user yields apperror.NotFound and the posts are dropped.
// A store fault in either call fails the whole page and cancels the other.
// HasMore comes from the user's totalTweets, so a final full page reports
// no further page.
func (s *ProfileService) Page(ctx context.Context, nickname string, tweetsPage int) (*model.ProfilePage, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperror.ValidationFailed("nickname", "nickname is required")
	}
	r, err := pagination.ComputeRange(tweetsPage, ProfilePageSize)
	if err != nil {
		return nil, err
	}

	var (
		user     *model.UserWithStats
		tweets   []model.Tweet
		notFound error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.GetByNickname(gctx, nickname)
		if errors.Is(err, apperror.ErrNotFound) {
			notFound = err
			return nil
		}
		user = u
		return err
	})
	g.Go(func() error {
		t, err := s.tweets.ListByNickname(gctx, nickname, r)
		tweets = t
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, upstream(s.logger, "fetching user data", err,
			slog.String("nickname", nickname), slog.Int("tweetsPage", tweetsPage))
	}
	if notFound != nil || user == nil {
		return nil, apperror.NotFound("user", nickname)
	}

	if tweets == nil {
		tweets = []model.Tweet{}
	}
	if s.images != nil {
		user.PhotoURL = s.images.URL(user.Photo.AssetRef(), profileSize, profileSize)
	}
	decorateTweets(s.images, tweets)

	return &model.ProfilePage{
		User:    *user,
		Tweets:  tweets,
		HasMore: pagination.MoreAfter(r, user.TotalTweets),
	}, nil
}
