package model

import "encoding/json"

// Tweet is a post. User is always expanded to the author document by the
// store query; it is nil only when the author reference dangles.
type Tweet struct {
	ID        string `json:"_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	User      *User  `json:"user"`
	Likes     int    `json:"likes,omitempty"`
	Retweets  int    `json:"retweets,omitempty"`
}

// TweetCard is the standalone card document looked up by nickname.
type TweetCard struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Nickname  Nickname  `json:"nickname"`
	Text      string    `json:"text"`
	Photo     *ImageRef `json:"photo,omitempty"`
	CreatedAt string    `json:"_createdAt,omitempty"`
}

// FeedPage is the response of the feed endpoint.
type FeedPage struct {
	Tweets  []Tweet `json:"tweets"`
	HasMore bool    `json:"hasMore"`
}

// ProfilePage is the response of the user endpoint.
type ProfilePage struct {
	User    UserWithStats `json:"user"`
	Tweets  []Tweet       `json:"tweets"`
	HasMore bool          `json:"hasMore"`
}

// UnmarshalJSON decodes a card document; a missing nickname resolves to
// UnknownNickname.
func (c *TweetCard) UnmarshalJSON(data []byte) error {
	type plain TweetCard
	p := plain{Nickname: UnknownNickname}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = TweetCard(p)
	return nil
}
