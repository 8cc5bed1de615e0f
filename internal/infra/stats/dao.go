package stats

import (
	"database/sql"
	"fmt"
	"time"
)

// SongStats is the accumulated play record for one catalog index.
type SongStats struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	PaidPlays   int    `json:"paidPlays"`
	RandomPlays int    `json:"randomPlays"`
	LastPlayed  string `json:"lastPlayed,omitempty"`
}

// TotalPlays returns the combined play count.
func (s SongStats) TotalPlays() int {
	return s.PaidPlays + s.RandomPlays
}

// DAO provides data access operations for play statistics.
type DAO struct {
	db *DB
}

// NewDAO creates a new DAO instance.
func NewDAO(db *DB) *DAO {
	return &DAO{db: db}
}

// RecordPlay increments the paid or random counter for a song. playType is
// "Paid" or "Random"; anything else is an error.
func (dao *DAO) RecordPlay(index int, title, artist, playType string) error {
	db := dao.db.DB()
	if db == nil {
		return fmt.Errorf("database not open")
	}

	var paidInc, randomInc int
	switch playType {
	case "Paid":
		paidInc = 1
	case "Random":
		randomInc = 1
	default:
		return fmt.Errorf("unknown play type %q", playType)
	}

	now := time.Now().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO song_plays (song_index, title, artist, paid_plays, random_plays, last_played, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(song_index) DO UPDATE SET
			title = ?, artist = ?,
			paid_plays = song_plays.paid_plays + ?,
			random_plays = song_plays.random_plays + ?,
			last_played = ?, updated_at = ?
	`,
		index, title, artist, paidInc, randomInc, now, now,
		title, artist, paidInc, randomInc, now, now,
	)
	return err
}

// Get returns the stats for one song, or nil when it has never played.
func (dao *DAO) Get(index int) (*SongStats, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, fmt.Errorf("database not open")
	}

	s := &SongStats{}
	var lastPlayed sql.NullString
	err := db.QueryRow(`
		SELECT song_index, title, artist, paid_plays, random_plays, last_played
		FROM song_plays WHERE song_index = ?
	`, index).Scan(&s.Index, &s.Title, &s.Artist, &s.PaidPlays, &s.RandomPlays, &lastPlayed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastPlayed.Valid {
		s.LastPlayed = lastPlayed.String
	}
	return s, nil
}

// TopPlayed returns up to limit songs ordered by total play count.
func (dao *DAO) TopPlayed(limit int) ([]SongStats, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, fmt.Errorf("database not open")
	}

	rows, err := db.Query(`
		SELECT song_index, title, artist, paid_plays, random_plays, last_played
		FROM song_plays
		ORDER BY paid_plays + random_plays DESC, song_index ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SongStats
	for rows.Next() {
		var s SongStats
		var lastPlayed sql.NullString
		if err := rows.Scan(&s.Index, &s.Title, &s.Artist, &s.PaidPlays, &s.RandomPlays, &lastPlayed); err != nil {
			return nil, err
		}
		if lastPlayed.Valid {
			s.LastPlayed = lastPlayed.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TotalPlays returns the total number of recorded plays.
func (dao *DAO) TotalPlays() (int, error) {
	db := dao.db.DB()
	if db == nil {
		return 0, fmt.Errorf("database not open")
	}

	var total sql.NullInt64
	err := db.QueryRow(`SELECT SUM(paid_plays + random_plays) FROM song_plays`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}
