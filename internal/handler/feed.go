package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/service"
)

// FeedService is what FeedHandler needs from the service layer.
type FeedService interface {
	Page(ctx context.Context, page, perPage int) (*model.FeedPage, error)
	Card(ctx context.Context, nickname string) (*model.TweetCard, error)
}

// FeedHandler serves the global feed and single tweet cards.
type FeedHandler struct {
	feed   FeedService
	logger *slog.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, logger: logger}
}

// HandleList returns one page of the feed.
//
// HTTP: GET /api/tweets?page=0&perPage=6
//
// Non-numeric page or perPage values fall back to the defaults; negative
// pages and out-of-range page sizes are rejected with 400.
//
// RESPONSE FORMAT:
//
//	{"tweets": [{"_id": "...", "text": "...", "createdAt": "...", "user": {...}}], "hasMore": true}
func (h *FeedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.ParseInt(q.Get("page"), 0)
	perPage := pagination.ParseInt(q.Get("perPage"), service.DefaultPerPage)

	result, err := h.feed.Page(r.Context(), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCard returns the tweet card of one user.
//
// HTTP: GET /api/tweets/{nickname}
func (h *FeedHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.feed.Card(r.Context(), chi.URLParam(r, "nickname"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
