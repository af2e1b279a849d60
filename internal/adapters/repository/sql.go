package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/errkind"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// SQLStore reads chart facts from a relational database through database/sql.
// Queries use $n placeholders, which both the sqlite and pgx drivers accept.
type SQLStore struct {
	db *sql.DB

	maxOpenConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database named by driver and dsn and pings it.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	const op = "repository.open"

	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, errkind.WrapKind(op, ErrUnknownDriver, fmt.Errorf("%q", driver))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errkind.WrapKind(op, ErrQuery, err)
	}

	s := NewSQLStore(db, opts...)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errkind.WrapKind(op, ErrQuery, fmt.Errorf("ping %s: %w", driver, err))
	}

	return s, nil
}

// NewSQLStore wraps an already opened handle.
func NewSQLStore(db *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
		db.SetMaxIdleConns(s.maxOpenConns)
	}
	if s.connMaxLifetime > 0 {
		db.SetConnMaxLifetime(s.connMaxLifetime)
	}
	if s.connMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(s.connMaxIdleTime)
	}
	return s
}

// DB exposes the handle for seeding and administration.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return errkind.WrapKind("repository.ping", ErrQuery, s.db.PingContext(ctx))
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS artists (
		artist_id   INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		biography   TEXT,
		photo_url   TEXT,
		wiki_url    TEXT,
		website_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		song_id      INTEGER PRIMARY KEY,
		artist_id    INTEGER NOT NULL REFERENCES artists (artist_id),
		title        TEXT NOT NULL,
		release_year INTEGER,
		image_url    TEXT,
		lyrics       TEXT,
		youtube_url  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		song_id  INTEGER NOT NULL REFERENCES songs (song_id) ON DELETE CASCADE,
		year     INTEGER NOT NULL,
		position INTEGER NOT NULL CHECK (position >= 1),
		PRIMARY KEY (song_id, year),
		UNIQUE (year, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs (artist_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_year ON entries (year, position)`,
}

// EnsureSchema creates the chart tables when they are missing. It is meant
// for development databases and tests; production schemas are managed
// elsewhere.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errkind.WrapKind("repository.ensure_schema", ErrQuery, err)
		}
	}
	return nil
}

const songColumns = `song_id, artist_id, title, release_year, image_url, lyrics, youtube_url`

const rowSelect = `SELECT e.song_id, e.year, e.position, s.title, s.artist_id, a.name, s.release_year, s.image_url
	FROM entries e
	JOIN songs s ON s.song_id = e.song_id
	JOIN artists a ON a.artist_id = s.artist_id`

// Song implements Store.
func (s *SQLStore) Song(ctx context.Context, id int) (model.Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE song_id = $1`, id)
	song, err := scanSong(row)
	return song, classify("repository.song", err)
}

// SongByTitle implements Store. Candidates are narrowed by character count
// in SQL and compared with strings.ToLower, so non-ASCII titles fold the same
// way on every driver and in MemoryStore.
func (s *SQLStore) SongByTitle(ctx context.Context, title string) (model.Song, error) {
	const op = "repository.song_by_title"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE LENGTH(title) = $1 ORDER BY song_id`,
		utf8.RuneCountInString(title))
	if err != nil {
		return model.Song{}, classify(op, err)
	}
	defer rows.Close()

	want := strings.ToLower(title)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return model.Song{}, classify(op, err)
		}
		if strings.ToLower(song.Title) == want {
			return song, nil
		}
	}
	if err := rows.Err(); err != nil {
		return model.Song{}, classify(op, err)
	}
	return model.Song{}, classify(op, sql.ErrNoRows)
}

// Artist implements Store.
func (s *SQLStore) Artist(ctx context.Context, id int) (model.Artist, error) {
	var (
		a                         model.Artist
		bio, photo, wiki, website sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT artist_id, name, biography, photo_url, wiki_url, website_url FROM artists WHERE artist_id = $1`, id).
		Scan(&a.ID, &a.Name, &bio, &photo, &wiki, &website)
	if err != nil {
		return model.Artist{}, classify("repository.artist", err)
	}
	a.Biography = nullString(bio)
	a.PhotoURL = nullString(photo)
	a.WikiURL = nullString(wiki)
	a.WebsiteURL = nullString(website)
	return a, nil
}

// ArtistSongs implements Store.
func (s *SQLStore) ArtistSongs(ctx context.Context, artistID int) ([]model.Song, error) {
	const op = "repository.artist_songs"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE artist_id = $1 ORDER BY song_id`, artistID)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, song)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	// Titles are ordered here rather than in SQL: database collations differ
	// between drivers and MemoryStore orders by bytes.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ArtistEntryCounts implements Store.
func (s *SQLStore) ArtistEntryCounts(ctx context.Context) ([]model.ArtistSongCount, error) {
	const op = "repository.artist_entry_counts"
	rows, err := s.db.QueryContext(ctx, `SELECT a.artist_id, a.name, COUNT(e.song_id) AS entry_count
		FROM artists a
		LEFT JOIN songs s ON s.artist_id = a.artist_id
		LEFT JOIN entries e ON e.song_id = s.song_id
		GROUP BY a.artist_id, a.name
		ORDER BY a.artist_id`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]model.ArtistSongCount, 0)
	for rows.Next() {
		var c model.ArtistSongCount
		if err := rows.Scan(&c.ArtistID, &c.Name, &c.SongCount); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SongCount != out[j].SongCount {
			return out[i].SongCount > out[j].SongCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context, year int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE year = $1`, year).Scan(&n)
	return n, classify("repository.count", err)
}

// Rows implements Store. A negative limit returns every row from offset on.
func (s *SQLStore) Rows(ctx context.Context, year, offset, limit int) ([]model.ChartRow, error) {
	const op = "repository.rows"
	if offset < 0 {
		offset = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if limit >= 0 {
		rows, err = s.db.QueryContext(ctx, rowSelect+` WHERE e.year = $1 ORDER BY e.position LIMIT $2 OFFSET $3`,
			year, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, rowSelect+` WHERE e.year = $1 ORDER BY e.position`, year)
	}
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out, err := scanChartRows(rows)
	if err != nil {
		return nil, classify(op, err)
	}
	if limit < 0 {
		if offset >= len(out) {
			return []model.ChartRow{}, nil
		}
		out = out[offset:]
	}
	return out, nil
}

// Positions implements Store.
func (s *SQLStore) Positions(ctx context.Context, year int, songIDs []int) (map[int]int, error) {
	const op = "repository.positions"
	out := make(map[int]int, len(songIDs))
	if len(songIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(songIDs)+1)
	args = append(args, year)
	marks := make([]string, 0, len(songIDs))
	for i, id := range songIDs {
		marks = append(marks, "$"+strconv.Itoa(i+2))
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id, position FROM entries WHERE year = $1 AND song_id IN (`+strings.Join(marks, ", ")+`)`,
		args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, pos int
		if err := rows.Scan(&id, &pos); err != nil {
			return nil, classify(op, err)
		}
		out[id] = pos
	}
	return out, classify(op, rows.Err())
}

// SongEntries implements Store.
func (s *SQLStore) SongEntries(ctx context.Context, songID, fromYear, toYear int) ([]model.Entry, error) {
	const op = "repository.song_entries"
	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id, year, position FROM entries WHERE song_id = $1 AND year BETWEEN $2 AND $3 ORDER BY year`,
		songID, fromYear, toYear)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]model.Entry, 0)
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.SongID, &e.Year, &e.Position); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, e)
	}
	return out, classify(op, rows.Err())
}

// ChartedBefore implements Store.
func (s *SQLStore) ChartedBefore(ctx context.Context, year int) (map[int]struct{}, error) {
	const op = "repository.charted_before"
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT song_id FROM entries WHERE year < $1`, year)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, classify(op, err)
		}
		out[id] = struct{}{}
	}
	return out, classify(op, rows.Err())
}

// Years implements Store.
func (s *SQLStore) Years(ctx context.Context) ([]int, error) {
	const op = "repository.years"
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM entries ORDER BY year`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]int, 0)
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, y)
	}
	return out, classify(op, rows.Err())
}

// AllRows implements Store.
func (s *SQLStore) AllRows(ctx context.Context) ([]model.ChartRow, error) {
	const op = "repository.all_rows"
	rows, err := s.db.QueryContext(ctx, rowSelect+` ORDER BY e.year, e.position`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out, err := scanChartRows(rows)
	return out, classify(op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(sc scanner) (model.Song, error) {
	var (
		song                   model.Song
		release                sql.NullInt64
		image, lyrics, youtube sql.NullString
	)
	if err := sc.Scan(&song.ID, &song.ArtistID, &song.Title, &release, &image, &lyrics, &youtube); err != nil {
		return model.Song{}, err
	}
	song.ReleaseYear = nullInt(release)
	song.ImageURL = nullString(image)
	song.Lyrics = nullString(lyrics)
	song.YoutubeURL = nullString(youtube)
	return song, nil
}

func scanChartRows(rows *sql.Rows) ([]model.ChartRow, error) {
	out := make([]model.ChartRow, 0)
	for rows.Next() {
		var (
			r       model.ChartRow
			release sql.NullInt64
			image   sql.NullString
		)
		if err := rows.Scan(&r.SongID, &r.Year, &r.Position, &r.Title, &r.ArtistID, &r.ArtistName, &release, &image); err != nil {
			return nil, err
		}
		r.ReleaseYear = nullInt(release)
		r.ImageURL = nullString(image)
		out = append(out, r)
	}
	return out, rows.Err()
}

// classify maps database errors onto the package's sentinel kinds.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return errkind.NewKind(op, ErrNotFound)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrQuery):
		return err
	default:
		return errkind.WrapKind(op, ErrQuery, err)
	}
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
