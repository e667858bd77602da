package card

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/tweetfeed/internal/model"
)

type fakeImages struct{}

func (fakeImages) URL(ref string, w, h int) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("img:%s:%dx%d", ref, w, h)
}

func TestFromTweet(t *testing.T) {
	tw := model.Tweet{
		ID:        "t1",
		Text:      "hello",
		CreatedAt: "2024-05-03T18:30:00Z",
		User: &model.User{
			Name:     "Alice",
			Nickname: "alice",
			Photo:    model.NewImageRef("image-abc-48x48-png"),
		},
	}

	c := FromTweet(tw, fakeImages{})
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "alice", c.Nickname)
	assert.Equal(t, "@alice", c.Handle())
	assert.Equal(t, "/user/alice", c.ProfileURL)
	assert.Equal(t, "img:image-abc-48x48-png:48x48", c.ImageURL)
	assert.Equal(t, "03.05.2024", c.PublishedAt)
	assert.False(t, c.ShowStats())
}

func TestFromTweet_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		tweet      model.Tweet
		wantName   string
		wantNick   string
		wantImage  string
	}{
		{
			name:     "no author",
			tweet:    model.Tweet{Text: "orphan"},
			wantName: UnknownName,
			wantNick: model.UnknownNickname,
		},
		{
			name:     "author without name",
			tweet:    model.Tweet{User: &model.User{Nickname: "bob"}},
			wantName: UnknownName,
			wantNick: "bob",
		},
		{
			name: "precomputed photo url wins",
			tweet: model.Tweet{User: &model.User{
				Name: "Bob", Nickname: "bob", PhotoURL: "https://cdn/bob.png",
				Photo: model.NewImageRef("image-x-1x1-png"),
			}},
			wantName:  "Bob",
			wantNick:  "bob",
			wantImage: "https://cdn/bob.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FromTweet(tt.tweet, fakeImages{})
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantNick, c.Nickname)
			assert.Equal(t, tt.wantImage, c.ImageURL)
			assert.Equal(t, "/user/"+tt.wantNick, c.ProfileURL)
		})
	}
}

func TestFromTweetCard(t *testing.T) {
	c := FromTweetCard(model.TweetCard{
		Name:      "",
		Nickname:  "carol",
		Text:      "card text",
		Photo:     model.NewImageRef("image-c-10x10-jpg"),
		CreatedAt: "2024-01-02",
	}, nil)

	assert.Equal(t, UnknownName, c.Name)
	assert.Equal(t, "/user/carol", c.ProfileURL)
	assert.Equal(t, "", c.ImageURL)
	assert.Equal(t, "02.01.2024", c.PublishedAt)
}

func TestFromTweet_Stats(t *testing.T) {
	c := FromTweet(model.Tweet{Likes: 3, User: &model.User{Nickname: "alice"}}, nil)
	assert.Equal(t, 3, c.Likes)
	assert.Equal(t, 0, c.Retweets)
	assert.True(t, c.ShowStats())
}

func TestShowStats(t *testing.T) {
	assert.True(t, Card{Likes: 1}.ShowStats())
	assert.True(t, Card{Retweets: 2}.ShowStats())
	assert.False(t, Card{}.ShowStats())
}

func TestProfileURLEscapes(t *testing.T) {
	assert.Equal(t, "/user/a%2Fb", ProfileURL("a/b"))
	assert.Equal(t, "/user/j%C3%BCrgen", ProfileURL("jürgen"))
}

func TestDates(t *testing.T) {
	assert.Equal(t, "", FormatDate(""))
	assert.Equal(t, "", FormatDate("garbage"))
	assert.Equal(t, "March 2023", JoinedLabel("2023-03-15"))
	assert.Equal(t, "March 2023", JoinedLabel("2023-03-15T08:00:00Z"))
	assert.Equal(t, "", JoinedLabel(""))
}
