// Package card builds the display model of a tweet card: everything a
// template or client needs, with the fallbacks already applied.
package card

import (
	"net/url"
	"strings"
	"time"

	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/service"
)

const (
	// UnknownName is shown when a tweet has no resolvable author.
	UnknownName = "Unknown"

	// AvatarSize is the square size, in pixels, of the card's profile image.
	AvatarSize = 48

	dateLayout   = "02.01.2006"
	joinedLayout = "January 2006"
)

// Card is the display model of one tweet.
type Card struct {
	Name        string
	Nickname    string
	ProfileURL  string
	ImageURL    string
	Text        string
	PublishedAt string // dd.MM.yyyy, empty when unknown
	Likes       int
	Retweets    int
}

// ShowStats reports whether the likes/retweets row is displayed.
func (c Card) ShowStats() bool {
	return c.Likes > 0 || c.Retweets > 0
}

// Handle returns "@nickname".
func (c Card) Handle() string {
	return "@" + c.Nickname
}

// FromTweet builds the card of a feed or profile tweet. images may be nil;
// a PhotoURL already set on the author wins over the builder.
func FromTweet(t model.Tweet, images service.ImageURLBuilder) Card {
	c := Card{
		Name:        UnknownName,
		Nickname:    model.UnknownNickname,
		Text:        t.Text,
		PublishedAt: FormatDate(t.CreatedAt),
		Likes:       t.Likes,
		Retweets:    t.Retweets,
	}
	if u := t.User; u != nil {
		if strings.TrimSpace(u.Name) != "" {
			c.Name = u.Name
		}
		c.Nickname = u.Nickname.String()
		c.ImageURL = u.PhotoURL
		if c.ImageURL == "" && images != nil {
			c.ImageURL = images.URL(u.Photo.AssetRef(), AvatarSize, AvatarSize)
		}
	}
	c.ProfileURL = ProfileURL(c.Nickname)
	return c
}

// FromTweetCard builds the card of a standalone tweet-card document.
func FromTweetCard(tc model.TweetCard, images service.ImageURLBuilder) Card {
	c := Card{
		Name:        tc.Name,
		Nickname:    tc.Nickname.String(),
		Text:        tc.Text,
		PublishedAt: FormatDate(tc.CreatedAt),
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = UnknownName
	}
	if images != nil {
		c.ImageURL = images.URL(tc.Photo.AssetRef(), AvatarSize, AvatarSize)
	}
	c.ProfileURL = ProfileURL(c.Nickname)
	return c
}

// ProfileURL is the page link encoding a handle.
func ProfileURL(nickname string) string {
	return "/user/" + url.PathEscape(nickname)
}

// FormatDate renders a stored timestamp as dd.MM.yyyy. Unparseable or empty
// input yields "".
func FormatDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return ""
	}
	return t.Format(dateLayout)
}

// JoinedLabel renders a join date as "January 2006".
func JoinedLabel(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return ""
	}
	return t.Format(joinedLayout)
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
