// Package sqlite stores the club snapshot in normalized SQLite tables using
// the pure-Go modernc driver. The schema is managed by embedded goose
// migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/bjax13/CookbookClub/internal/persistence"
	"github.com/bjax13/CookbookClub/internal/reminder"
	"github.com/bjax13/CookbookClub/internal/state"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// entityTables lists the snapshot collections in load order.
var entityTables = []string{
	"clubs",
	"users",
	"memberships",
	"meetups",
	"recipes",
	"favorites",
	"personal_collections",
	"collection_items",
	"cookbook_access_grants",
	"notifications",
}

const timeLayout = time.RFC3339Nano

// Store is a snapshot store backed by one SQLite database.
type Store struct {
	db       *sql.DB
	path     string
	provider *goose.Provider
	now      func() time.Time
}

// Open connects to the database described by cfg and applies pending
// migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if !cfg.inMemory() {
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve database path %q: %w", cfg.Path, err)
		}
		cfg.Path = abs
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db, path: cfg.Path, provider: provider, now: time.Now}, nil
}

// Path returns the absolute database location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces every table with the contents of snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snapshot *state.Snapshot) error {
	if err := persistence.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	return withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range append([]string{"counters"}, entityTables...) {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return writeSnapshot(ctx, tx, snapshot)
	})
}

// Load reads every table back into a snapshot. Rows come back in insertion
// order, which Save keeps equal to slice order.
func (s *Store) Load(ctx context.Context) (*state.Snapshot, error) {
	snap := &state.Snapshot{Version: state.CurrentVersion, Counters: map[string]int64{}}
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return readSnapshot(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}
	snap.Normalize()
	return snap, nil
}

func writeSnapshot(ctx context.Context, tx *sql.Tx, snap *state.Snapshot) error {
	ins := inserter{ctx: ctx, tx: tx}

	for _, kind := range sortedCounterKeys(snap.Counters) {
		ins.exec("counters", "INSERT INTO counters (key, value) VALUES (?, ?)", kind, snap.Counters[kind])
	}
	for _, c := range snap.Clubs {
		policy, err := json.Marshal(c.ReminderPolicy)
		if err != nil {
			return fmt.Errorf("encode reminder policy for %s: %w", c.ID, err)
		}
		templates, err := json.Marshal(templatesOrEmpty(c.ReminderTemplates))
		if err != nil {
			return fmt.Errorf("encode reminder templates for %s: %w", c.ID, err)
		}
		ins.exec("clubs",
			"INSERT INTO clubs (id, name, host_user_id, membership_policy, reminder_policy_json, reminder_templates_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			c.ID, c.Name, c.HostUserID, string(c.MembershipPolicy), string(policy), string(templates), formatTime(c.CreatedAt))
	}
	for _, u := range snap.Users {
		ins.exec("users",
			"INSERT INTO users (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)",
			u.ID, u.Name, nullString(u.Email), nullString(u.Phone), formatTime(u.CreatedAt))
	}
	for _, m := range snap.Memberships {
		ins.exec("memberships",
			"INSERT INTO memberships (id, club_id, user_id, role, joined_at, cookbook_access_from) VALUES (?, ?, ?, ?, ?, ?)",
			m.ID, m.ClubID, m.UserID, string(m.Role), formatTime(m.JoinedAt), nullString(m.CookbookAccessFrom))
	}
	for _, m := range snap.Meetups {
		ins.exec("meetups",
			"INSERT INTO meetups (id, seq, club_id, host_user_id, scheduled_for, theme, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			m.ID, m.Seq, m.ClubID, m.HostUserID, nullTime(m.ScheduledFor), m.Theme, string(m.Status), formatTime(m.CreatedAt))
	}
	for _, r := range snap.Recipes {
		ins.exec("recipes",
			"INSERT INTO recipes (id, club_id, meetup_id, author_user_id, title, content, image_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			r.ID, r.ClubID, r.MeetupID, r.AuthorUserID, r.Title, r.Content, r.ImagePath, formatTime(r.CreatedAt))
	}
	for _, f := range snap.Favorites {
		ins.exec("favorites",
			"INSERT INTO favorites (id, user_id, recipe_id, created_at) VALUES (?, ?, ?, ?)",
			f.ID, f.UserID, f.RecipeID, formatTime(f.CreatedAt))
	}
	for _, c := range snap.PersonalCollections {
		ins.exec("personal_collections",
			"INSERT INTO personal_collections (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
			c.ID, c.UserID, c.Name, formatTime(c.CreatedAt))
	}
	for _, item := range snap.CollectionItems {
		ins.exec("collection_items",
			"INSERT INTO collection_items (id, collection_id, recipe_id, created_at) VALUES (?, ?, ?, ?)",
			item.ID, item.CollectionID, item.RecipeID, formatTime(item.CreatedAt))
	}
	for _, g := range snap.CookbookAccessGrants {
		ins.exec("cookbook_access_grants",
			"INSERT INTO cookbook_access_grants (id, club_id, user_id, meetup_id, granted_by_user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			g.ID, g.ClubID, g.UserID, g.MeetupID, g.GrantedByUserID, formatTime(g.CreatedAt))
	}
	for _, n := range snap.Notifications {
		payload, err := json.Marshal(n.Payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", n.ID, err)
		}
		ins.exec("notifications",
			"INSERT INTO notifications (id, club_id, user_id, type, key, payload_json, due_at, created_at, delivered_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			n.ID, n.ClubID, n.UserID, string(n.Type), nullString(n.Key), string(payload),
			nullTime(n.DueAt), formatTime(n.CreatedAt), nullTime(n.DeliveredAt))
	}
	return ins.err
}

// inserter keeps the first failure so the write loop above stays flat.
type inserter struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (i *inserter) exec(table, query string, args ...any) {
	if i.err != nil {
		return
	}
	if _, err := i.tx.ExecContext(i.ctx, query, args...); err != nil {
		i.err = fmt.Errorf("insert into %s: %w", table, err)
	}
}

func readSnapshot(ctx context.Context, tx *sql.Tx, snap *state.Snapshot) error {
	readers := []struct {
		query string
		scan  func(rowScanner) error
	}{
		{"SELECT key, value FROM counters ORDER BY rowid", func(r rowScanner) error {
			var key string
			var value int64
			if err := r.Scan(&key, &value); err != nil {
				return err
			}
			snap.Counters[key] = value
			return nil
		}},
		{"SELECT id, name, host_user_id, membership_policy, reminder_policy_json, reminder_templates_json, created_at FROM clubs ORDER BY rowid", func(r rowScanner) error {
			var c state.Club
			var policy, templates, created string
			if err := r.Scan(&c.ID, &c.Name, &c.HostUserID, &c.MembershipPolicy, &policy, &templates, &created); err != nil {
				return err
			}
			if err := decodeJSONColumn(policy, &c.ReminderPolicy); err != nil {
				return fmt.Errorf("club %s reminder_policy_json: %w", c.ID, err)
			}
			if err := decodeJSONColumn(templates, &c.ReminderTemplates); err != nil {
				return fmt.Errorf("club %s reminder_templates_json: %w", c.ID, err)
			}
			var err error
			if c.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.Clubs = append(snap.Clubs, c)
			return nil
		}},
		{"SELECT id, name, email, phone, created_at FROM users ORDER BY rowid", func(r rowScanner) error {
			var u state.User
			var email, phone sql.NullString
			var created string
			if err := r.Scan(&u.ID, &u.Name, &email, &phone, &created); err != nil {
				return err
			}
			u.Email, u.Phone = stringPtr(email), stringPtr(phone)
			var err error
			if u.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.Users = append(snap.Users, u)
			return nil
		}},
		{"SELECT id, club_id, user_id, role, joined_at, cookbook_access_from FROM memberships ORDER BY rowid", func(r rowScanner) error {
			var m state.Membership
			var joined string
			var from sql.NullString
			if err := r.Scan(&m.ID, &m.ClubID, &m.UserID, &m.Role, &joined, &from); err != nil {
				return err
			}
			m.CookbookAccessFrom = stringPtr(from)
			var err error
			if m.JoinedAt, err = parseTime(joined); err != nil {
				return err
			}
			snap.Memberships = append(snap.Memberships, m)
			return nil
		}},
		{"SELECT id, seq, club_id, host_user_id, scheduled_for, theme, status, created_at FROM meetups ORDER BY rowid", func(r rowScanner) error {
			var m state.Meetup
			var scheduled sql.NullString
			var created string
			if err := r.Scan(&m.ID, &m.Seq, &m.ClubID, &m.HostUserID, &scheduled, &m.Theme, &m.Status, &created); err != nil {
				return err
			}
			var err error
			if m.ScheduledFor, err = parseNullTime(scheduled); err != nil {
				return err
			}
			if m.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.Meetups = append(snap.Meetups, m)
			return nil
		}},
		{"SELECT id, club_id, meetup_id, author_user_id, title, content, image_path, created_at FROM recipes ORDER BY rowid", func(r rowScanner) error {
			var rec state.Recipe
			var created string
			if err := r.Scan(&rec.ID, &rec.ClubID, &rec.MeetupID, &rec.AuthorUserID, &rec.Title, &rec.Content, &rec.ImagePath, &created); err != nil {
				return err
			}
			var err error
			if rec.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.Recipes = append(snap.Recipes, rec)
			return nil
		}},
		{"SELECT id, user_id, recipe_id, created_at FROM favorites ORDER BY rowid", func(r rowScanner) error {
			var f state.Favorite
			var created string
			if err := r.Scan(&f.ID, &f.UserID, &f.RecipeID, &created); err != nil {
				return err
			}
			var err error
			if f.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.Favorites = append(snap.Favorites, f)
			return nil
		}},
		{"SELECT id, user_id, name, created_at FROM personal_collections ORDER BY rowid", func(r rowScanner) error {
			var c state.PersonalCollection
			var created string
			if err := r.Scan(&c.ID, &c.UserID, &c.Name, &created); err != nil {
				return err
			}
			var err error
			if c.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.PersonalCollections = append(snap.PersonalCollections, c)
			return nil
		}},
		{"SELECT id, collection_id, recipe_id, created_at FROM collection_items ORDER BY rowid", func(r rowScanner) error {
			var item state.CollectionItem
			var created string
			if err := r.Scan(&item.ID, &item.CollectionID, &item.RecipeID, &created); err != nil {
				return err
			}
			var err error
			if item.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.CollectionItems = append(snap.CollectionItems, item)
			return nil
		}},
		{"SELECT id, club_id, user_id, meetup_id, granted_by_user_id, created_at FROM cookbook_access_grants ORDER BY rowid", func(r rowScanner) error {
			var g state.CookbookAccessGrant
			var created string
			if err := r.Scan(&g.ID, &g.ClubID, &g.UserID, &g.MeetupID, &g.GrantedByUserID, &created); err != nil {
				return err
			}
			var err error
			if g.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			snap.CookbookAccessGrants = append(snap.CookbookAccessGrants, g)
			return nil
		}},
		{"SELECT id, club_id, user_id, type, key, payload_json, due_at, created_at, delivered_at FROM notifications ORDER BY rowid", func(r rowScanner) error {
			var n state.Notification
			var key, due, delivered sql.NullString
			var payload, created string
			if err := r.Scan(&n.ID, &n.ClubID, &n.UserID, &n.Type, &key, &payload, &due, &created, &delivered); err != nil {
				return err
			}
			n.Key = stringPtr(key)
			if err := decodeJSONColumn(payload, &n.Payload); err != nil {
				return fmt.Errorf("notification %s payload_json: %w", n.ID, err)
			}
			var err error
			if n.DueAt, err = parseNullTime(due); err != nil {
				return err
			}
			if n.CreatedAt, err = parseTime(created); err != nil {
				return err
			}
			if n.DeliveredAt, err = parseNullTime(delivered); err != nil {
				return err
			}
			snap.Notifications = append(snap.Notifications, n)
			return nil
		}},
	}

	for _, reader := range readers {
		if err := queryEach(ctx, tx, reader.query, reader.scan); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func queryEach(ctx context.Context, tx *sql.Tx, query string, scan func(rowScanner) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %q: %w", query, err)
		}
	}
	return rows.Err()
}

func decodeJSONColumn(raw string, dest any) error {
	if raw == "" {
		raw = "{}"
	}
	return json.Unmarshal([]byte(raw), dest)
}

func templatesOrEmpty(templates map[string]reminder.Policy) map[string]reminder.Policy {
	if templates == nil {
		return map[string]reminder.Policy{}
	}
	return templates
}

func sortedCounterKeys(counters map[string]int64) []string {
	keys := make([]string, 0, len(counters))
	seen := make(map[string]bool, len(counters))
	for _, kind := range state.Kinds {
		if _, ok := counters[string(kind)]; ok {
			keys = append(keys, string(kind))
			seen[string(kind)] = true
		}
	}
	var extra []string
	for key := range counters {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
