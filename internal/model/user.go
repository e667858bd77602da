// Package model defines the documents read from the content store and the
// response shapes built from them.
//
// JSON keys follow the store documents (_id, joinedDate, photo.asset._ref) so
// a decoded document can be re-encoded for API clients without a mapping layer.
package model

import "encoding/json"

// ImageRef is a reference to an image asset held by the content store.
// The asset ref looks like "image-<id>-<width>x<height>-<ext>".
type ImageRef struct {
	Asset struct {
		Ref string `json:"_ref" yaml:"ref"`
	} `json:"asset" yaml:"asset"`
}

// NewImageRef returns an ImageRef for the given asset ref, or nil when ref is empty.
func NewImageRef(ref string) *ImageRef {
	if ref == "" {
		return nil
	}
	img := &ImageRef{}
	img.Asset.Ref = ref
	return img
}

// AssetRef returns the asset ref or "" for a nil image.
func (i *ImageRef) AssetRef() string {
	if i == nil {
		return ""
	}
	return i.Asset.Ref
}

// User is an author profile. Users are edited in the content store; this
// service only reads them.
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Nickname   Nickname  `json:"nickname"`
	Bio        string    `json:"bio,omitempty"`
	Photo      *ImageRef `json:"photo,omitempty"`
	PhotoURL   string    `json:"photoUrl,omitempty"` // derived, set by the service layer
	JoinedDate string    `json:"joinedDate,omitempty"`
}

// UserWithStats is a User plus aggregates computed by the store at query time.
type UserWithStats struct {
	User
	TotalTweets int `json:"totalTweets"`
}

// UnmarshalJSON decodes a user document. A missing nickname resolves to
// UnknownNickname, the same as one with an unusable shape.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	p := plain{Nickname: UnknownNickname}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User(p)
	return nil
}

// UnmarshalJSON is needed because User's method would otherwise be promoted
// and drop totalTweets.
func (u *UserWithStats) UnmarshalJSON(data []byte) error {
	var stats struct {
		TotalTweets int `json:"totalTweets"`
	}
	if err := u.User.UnmarshalJSON(data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return err
	}
	u.TotalTweets = stats.TotalTweets
	return nil
}
