package feedclient

import (
	"context"
	"sync"

	"github.com/sakif/tweetfeed/internal/card"
	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/service"
)

// State is the controller's position in its load cycle.
type State int

const (
	Idle State = iota
	LoadingFirstPage
	Ready
	LoadingMore
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingFirstPage:
		return "loadingFirstPage"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loadingMore"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// PageFunc fetches page n and reports whether a further page exists.
type PageFunc[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// Controller accumulates pages of T.
//
//	Idle → LoadingFirstPage → Ready ⇄ LoadingMore
//	any loading state → Error on failure (items are kept)
//
// While a fetch is in flight, Load and LoadMore return immediately without
// issuing another request.
type Controller[T any] struct {
	fetch PageFunc[T]

	mu       sync.Mutex
	state    State
	items    []T
	hasMore  bool
	nextPage int
	err      error
}

// NewController creates a Controller in the Idle state.
func NewController[T any](fetch PageFunc[T]) *Controller[T] {
	return &Controller[T]{fetch: fetch}
}

// Load fetches the first page. It replaces nothing that is already loaded:
// calling it after a successful first load is a no-op.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loading() || c.nextPage > 0 {
		c.mu.Unlock()
		return nil
	}
	c.state = LoadingFirstPage
	c.mu.Unlock()

	return c.run(ctx, 0)
}

// LoadMore fetches the next page and appends it. It is a no-op while a
// fetch is in flight, before the first page has loaded, and once the last
// page has been seen.
func (c *Controller[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading() || c.nextPage == 0 || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	page := c.nextPage
	c.state = LoadingMore
	c.mu.Unlock()

	return c.run(ctx, page)
}

func (c *Controller[T]) run(ctx context.Context, page int) error {
	items, hasMore, err := c.fetch(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Error
		c.err = err
		return err
	}
	c.items = append(c.items, items...)
	c.hasMore = hasMore
	c.nextPage = page + 1
	c.state = Ready
	c.err = nil
	return nil
}

// must hold mu
func (c *Controller[T]) loading() bool {
	return c.state == LoadingFirstPage || c.state == LoadingMore
}

// Items returns a copy of everything loaded so far.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller[T]) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the error of the last failed fetch, nil after a success.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// NewFeedController pages through the global feed.
func NewFeedController(client *Client, perPage int) *Controller[model.Tweet] {
	return NewController(func(ctx context.Context, page int) ([]model.Tweet, bool, error) {
		p, err := client.Feed(ctx, page, perPage)
		if err != nil {
			return nil, false, err
		}
		return p.Tweets, p.HasMore, nil
	})
}

// ProfileController pages through one user's posts and keeps the latest
// copy of the user.
type ProfileController struct {
	*Controller[model.Tweet]

	mu   sync.Mutex
	user *model.UserWithStats
}

// NewProfileController pages through the posts of nickname.
func NewProfileController(client *Client, nickname string) *ProfileController {
	pc := &ProfileController{}
	pc.Controller = NewController(func(ctx context.Context, page int) ([]model.Tweet, bool, error) {
		p, err := client.Profile(ctx, nickname, page)
		if err != nil {
			return nil, false, err
		}
		pc.mu.Lock()
		u := p.User
		pc.user = &u
		pc.mu.Unlock()
		return p.Tweets, p.HasMore, nil
	})
	return pc
}

// User returns the user from the most recent successful fetch, or nil.
func (pc *ProfileController) User() *model.UserWithStats {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.user
}

// Joined returns the "January 2006" label of the user's join date, or "".
func (pc *ProfileController) Joined() string {
	if u := pc.User(); u != nil {
		return card.JoinedLabel(u.JoinedDate)
	}
	return ""
}

// Cards builds the display cards of the loaded tweets, in order. images may
// be nil; photo URLs already set by the server are used as they are.
func Cards(c *Controller[model.Tweet], images service.ImageURLBuilder) []card.Card {
	items := c.Items()
	out := make([]card.Card, 0, len(items))
	for _, t := range items {
		out = append(out, card.FromTweet(t, images))
	}
	return out
}
