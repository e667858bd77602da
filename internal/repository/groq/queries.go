package groq

// A nickname is either a string or a slug object, so every match tests both.
const nicknameMatch = `(nickname == $nickname || nickname.current == $nickname)`

const authorProjection = `user-> {
    _id,
    name,
    nickname,
    photo { asset { _ref } },
    bio,
    joinedDate
  }`

const tweetsQuery = `*[_type == "tweet"] | order(createdAt desc)[$start...$end] {
  _id,
  text,
  createdAt,
  likes,
  retweets,
  ` + authorProjection + `
}`

const userTweetsQuery = `*[
  _type == "tweet"
  && (user->nickname == $nickname || user->nickname.current == $nickname)
] | order(createdAt desc)[$start...$end] {
  _id,
  text,
  createdAt,
  likes,
  retweets,
  ` + authorProjection + `
}`

const userQuery = `*[_type == "user" && ` + nicknameMatch + `][0] {
  _id,
  name,
  nickname,
  bio,
  photo { asset { _ref } },
  joinedDate,
  "totalTweets": count(*[_type == "tweet" && user._ref == ^._id])
}`

const tweetCardQuery = `*[_type == "tweetCard" && ` + nicknameMatch + `][0] {
  _id,
  name,
  nickname,
  text,
  photo,
  _createdAt
}`
