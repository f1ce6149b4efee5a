package config

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure-Go SQLite3 driver

	"lampcode-go/types"
)

// Preference keys, one row each in the prefs table.
const (
	keyDefBrightness = "def_bri"
	keyDefColor      = "def_color"
	keySunMinutes    = "sun_min"
	keySunBrightness = "sun_bri"
	keyMinPWM        = "min_pwm"
	keyMaxPWM        = "max_pwm"
	keyFavName       = "fav_anim"
	keyFavParams     = "fav_params"
	keyFavColor      = "fav_color"
	keyVersion       = "cfg_ver"
)

// SQLiteStore keeps the configuration as key/value rows in a SQLite file.
type SQLiteStore struct {
	db       *sql.DB
	defaults Device
}

// OpenSQLite opens (creating if needed) the database at path. An empty
// path or ":memory:" gives a private in-memory database.
func OpenSQLite(path string, defaults Device) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database is per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create prefs table: %w", err)
	}
	return &SQLiteStore{db: db, defaults: defaults.Clone()}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every stored key over the defaults. Missing or unreadable
// keys keep their default; the result is clamped.
func (s *SQLiteStore) Load(ctx context.Context) (Device, error) {
	d := s.defaults.Clone()
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs`)
	if err != nil {
		return d, fmt.Errorf("failed to query prefs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return d, fmt.Errorf("failed to scan prefs: %w", err)
		}
		applyPref(&d, k, v)
	}
	if err := rows.Err(); err != nil {
		return d, fmt.Errorf("failed to read prefs: %w", err)
	}
	d.Clamp()
	return d, nil
}

func (s *SQLiteStore) Save(ctx context.Context, d *Device) error {
	next := d.Version + 1
	kv, err := prefsOf(d, next)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()
	for k, v := range kv {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prefs (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	d.Version = next
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context) (Device, error) {
	cur, err := s.Load(ctx)
	if err != nil {
		return Device{}, err
	}
	d := s.defaults.Clone()
	d.Version = cur.Version + 1
	if err := s.Save(ctx, &d); err != nil {
		return Device{}, err
	}
	return d, nil
}

func prefsOf(d *Device, version uint32) (map[string]string, error) {
	params, err := json.Marshal(d.Favorite.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favourite params: %w", err)
	}
	favColor := ""
	if d.Favorite.Color != nil {
		favColor = d.Favorite.Color.String()
	}
	return map[string]string{
		keyDefBrightness: strconv.Itoa(int(d.DefaultBrightness)),
		keyDefColor:      d.DefaultColor.String(),
		keySunMinutes:    strconv.Itoa(d.SunriseMinutes),
		keySunBrightness: strconv.Itoa(int(d.SunriseFinalBrightness)),
		keyMinPWM:        strconv.Itoa(int(d.MinPWM)),
		keyMaxPWM:        strconv.Itoa(int(d.MaxPWM)),
		keyFavName:       d.Favorite.Name,
		keyFavParams:     string(params),
		keyFavColor:      favColor,
		keyVersion:       strconv.FormatUint(uint64(version), 10),
	}, nil
}

func applyPref(d *Device, k, v string) {
	u8 := func(dst *uint8) {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 255 {
			*dst = uint8(n)
		}
	}
	switch k {
	case keyDefBrightness:
		u8(&d.DefaultBrightness)
	case keyDefColor:
		if c, err := types.ParseColor(v); err == nil {
			d.DefaultColor = c
		}
	case keySunMinutes:
		if n, err := strconv.Atoi(v); err == nil {
			d.SunriseMinutes = n
		}
	case keySunBrightness:
		u8(&d.SunriseFinalBrightness)
	case keyMinPWM:
		u8(&d.MinPWM)
	case keyMaxPWM:
		u8(&d.MaxPWM)
	case keyFavName:
		d.Favorite.Name = v
	case keyFavParams:
		var p []*int
		if json.Unmarshal([]byte(v), &p) == nil {
			d.Favorite.Params = p
		}
	case keyFavColor:
		if v == "" {
			d.Favorite.Color = nil
		} else if c, err := types.ParseColor(v); err == nil {
			d.Favorite.Color = &c
		}
	case keyVersion:
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			d.Version = uint32(n)
		}
	}
}
