package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
)

// ProfileService is what ProfileHandler needs from the service layer.
type ProfileService interface {
	Page(ctx context.Context, nickname string, tweetsPage int) (*model.ProfilePage, error)
}

// ProfileHandler serves user profiles.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns a user with stats and one page of their posts.
//
// HTTP: GET /api/users/{nickname}?tweetsPage=0
//
// RESPONSE FORMAT:
//
//	{"user": {"_id": "...", "name": "...", "totalTweets": 4, ...}, "tweets": [...], "hasMore": true}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	tweetsPage := pagination.ParseInt(r.URL.Query().Get("tweetsPage"), 0)

	result, err := h.profiles.Page(r.Context(), nickname, tweetsPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
