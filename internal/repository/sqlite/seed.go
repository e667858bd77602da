package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/xid"
	"gopkg.in/yaml.v3"
)

// timeLayout is fixed-width so that lexical order on created_at matches time order.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Fixture is the YAML layout of a local dataset.
//
//	users:
//	  - nickname: alice
//	    name: Alice
//	    photo: image-abc-48x48-png
//	tweets:
//	  - user: alice
//	    text: hello
//	    createdAt: 2024-05-01T10:00:00Z
type Fixture struct {
	Users  []FixtureUser  `yaml:"users"`
	Tweets []FixtureTweet `yaml:"tweets"`
	Cards  []FixtureCard  `yaml:"cards"`
}

type FixtureUser struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Nickname   string `yaml:"nickname"`
	Bio        string `yaml:"bio"`
	Photo      string `yaml:"photo"` // image asset ref
	JoinedDate string `yaml:"joinedDate"`
}

type FixtureTweet struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	CreatedAt string `yaml:"createdAt"`
	User      string `yaml:"user"` // author nickname
	Likes     int    `yaml:"likes"`
	Retweets  int    `yaml:"retweets"`
}

type FixtureCard struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Nickname  string `yaml:"nickname"`
	Text      string `yaml:"text"`
	Photo     string `yaml:"photo"`
	CreatedAt string `yaml:"createdAt"`
}

// LoadFixtureFile reads a YAML fixture file and seeds it.
func (db *DB) LoadFixtureFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sqlite: reading fixture file: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("sqlite: parsing fixture file: %w", err)
	}
	return db.Seed(ctx, f)
}

// Seed inserts the fixture in one transaction. Missing ids are generated;
// tweets reference their author by nickname.
func (db *DB) Seed(ctx context.Context, f Fixture) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning seed: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	userIDs := make(map[string]string, len(f.Users))
	for _, u := range f.Users {
		nick := strings.TrimSpace(u.Nickname)
		if nick == "" {
			return fmt.Errorf("sqlite: fixture user %q has no nickname", u.Name)
		}
		id := orNewID(u.ID)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, nickname, bio, photo_ref, joined_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, u.Name, nick, u.Bio, u.Photo, u.JoinedDate,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user %q: %w", nick, err)
		}
		userIDs[nick] = id
	}

	for _, t := range f.Tweets {
		userID, err := resolveUser(ctx, tx, userIDs, t.User)
		if err != nil {
			return err
		}
		createdAt, err := normalizeTime(t.CreatedAt)
		if err != nil {
			return fmt.Errorf("sqlite: tweet %q: %w", t.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tweets (id, text, created_at, user_id, likes, retweets)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			orNewID(t.ID), t.Text, createdAt, userID, t.Likes, t.Retweets,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting tweet by %q: %w", t.User, err)
		}
	}

	for _, c := range f.Cards {
		createdAt, err := normalizeTime(c.CreatedAt)
		if err != nil {
			return fmt.Errorf("sqlite: card %q: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tweet_cards (id, name, nickname, text, photo_ref, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			orNewID(c.ID), c.Name, c.Nickname, c.Text, c.Photo, createdAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting card %q: %w", c.Nickname, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing seed: %w", err)
	}
	return nil
}

// resolveUser finds the author id, first among users seeded in this call,
// then among users already stored.
func resolveUser(ctx context.Context, tx *sql.Tx, seeded map[string]string, nickname string) (string, error) {
	if id, ok := seeded[nickname]; ok {
		return id, nil
	}
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE nickname = ?`, nickname).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("sqlite: tweet references unknown user %q", nickname)
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: looking up user %q: %w", nickname, err)
	}
	return id, nil
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return xid.New().String()
}

// normalizeTime accepts RFC 3339 or a bare date; empty means now.
func normalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC().Format(timeLayout), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(timeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid timestamp %q", s)
}
