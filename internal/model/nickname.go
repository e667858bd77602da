package model

import "encoding/json"

// UnknownNickname is the handle used when the stored value has no usable shape.
const UnknownNickname = "unknown"

// Nickname is a user handle. In the store it is either a plain string or a
// slug object {"current": "..."}; decoding resolves both to the string, so
// nothing past the data-access boundary ever sees the slug shape. Documents
// that omit the field decode to UnknownNickname (see User.UnmarshalJSON).
type Nickname string

// UnmarshalJSON accepts any JSON value and never fails.
func (n *Nickname) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*n = UnknownNickname
		return nil
	}
	*n = Nickname(NormalizeNickname(v))
	return nil
}

func (n Nickname) String() string {
	return string(n)
}

// NormalizeNickname resolves a decoded nickname value to a single string:
// a string is returned as is, an object with a string "current" yields that
// string, and anything else yields UnknownNickname.
func NormalizeNickname(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case Nickname:
		return string(val)
	case map[string]any:
		if current, ok := val["current"].(string); ok {
			return current
		}
	case map[string]string:
		if current, ok := val["current"]; ok {
			return current
		}
	}
	return UnknownNickname
}
