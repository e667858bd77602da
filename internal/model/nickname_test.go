package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNickname(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "plain string", in: "alice", want: "alice"},
		{name: "empty string", in: "", want: ""},
		{name: "slug with empty current", in: map[string]any{"current": ""}, want: ""},
		{name: "slug object", in: map[string]any{"current": "bob"}, want: "bob"},
		{name: "string map", in: map[string]string{"current": "carol"}, want: "carol"},
		{name: "nil", in: nil, want: UnknownNickname},
		{name: "number", in: 42, want: UnknownNickname},
		{name: "float from json", in: float64(42), want: UnknownNickname},
		{name: "slug without current", in: map[string]any{"_type": "slug"}, want: UnknownNickname},
		{name: "slug with non-string current", in: map[string]any{"current": 7}, want: UnknownNickname},
		{name: "bool", in: true, want: UnknownNickname},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNickname(tt.in))
		})
	}
}

func TestNicknameUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "string", raw: `{"nickname":"alice"}`, want: "alice"},
		{name: "slug", raw: `{"nickname":{"_type":"slug","current":"bob"}}`, want: "bob"},
		{name: "null", raw: `{"nickname":null}`, want: UnknownNickname},
		{name: "number", raw: `{"nickname":42}`, want: UnknownNickname},
		{name: "missing", raw: `{}`, want: UnknownNickname},
		{name: "empty string", raw: `{"nickname":""}`, want: ""},
		{name: "slug with empty current", raw: `{"nickname":{"current":""}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &u))
			assert.Equal(t, tt.want, u.Nickname.String())
		})
	}
}

func TestNicknameMarshalJSON(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","nickname":{"current":"alice"}}`), &u))

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nickname":"alice"`)

	// a document without a nickname re-encodes with the fallback
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u2"}`), &u))
	out, err = json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"nickname":"unknown"`)
}

func TestTweetCardMissingNickname(t *testing.T) {
	var c TweetCard
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","name":"Alice"}`), &c))
	assert.Equal(t, Nickname(UnknownNickname), c.Nickname)
	assert.Equal(t, "Alice", c.Name)
}

func TestUserWithStatsDecodesFlat(t *testing.T) {
	raw := `{"_id":"u1","name":"Alice","nickname":{"current":"alice"},"totalTweets":4,
		"photo":{"asset":{"_ref":"image-abc-48x48-png"}}}`

	var u UserWithStats
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, Nickname("alice"), u.Nickname)
	assert.Equal(t, 4, u.TotalTweets)
	assert.Equal(t, "image-abc-48x48-png", u.Photo.AssetRef())

	// nested in a tweet, a user without a nickname still gets the fallback
	var tw Tweet
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","user":{"_id":"u1"}}`), &tw))
	require.NotNil(t, tw.User)
	assert.Equal(t, Nickname(UnknownNickname), tw.User.Nickname)
}
