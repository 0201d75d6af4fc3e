package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tourstats/internal/models"
	"tourstats/internal/setlist"
)

// Dialect selects placeholder syntax for the supported SQL drivers.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

func (d Dialect) placeholder(n int) string {
	if d == DialectMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

const selectTourDates = `
		SELECT date, tour_name, country, city, venue, venue_capacity, setlist
		FROM tour_dates
		ORDER BY date ASC, id ASC
	`

// LoadSQL reads every row of the tour_dates table.
func LoadSQL(ctx context.Context, db *sql.DB) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, selectTourDates)
	if err != nil {
		return nil, fmt.Errorf("query tour dates: %w", err)
	}
	defer rows.Close()

	var records []models.TourDate
	for rows.Next() {
		var (
			date     time.Time
			tourName sql.NullString
			country  sql.NullString
			city     sql.NullString
			venue    sql.NullString
			capacity sql.NullInt64
			rawSongs sql.NullString
		)
		if err := rows.Scan(&date, &tourName, &country, &city, &venue, &capacity, &rawSongs); err != nil {
			return nil, fmt.Errorf("scan tour date: %w", err)
		}

		record := models.NewTourDate(date)
		record.TourName = strings.TrimSpace(tourName.String)
		record.Country = strings.TrimSpace(country.String)
		record.City = strings.TrimSpace(city.String)
		record.Venue = strings.TrimSpace(venue.String)
		if capacity.Valid {
			v := int(capacity.Int64)
			record.VenueCapacity = &v
		}

		songs, err := setlist.Decode(rawSongs.String)
		if err != nil {
			log.Warn().
				Time("date", date).
				Str("venue", record.Venue).
				Err(err).
				Msg("Skipping undecodable setlist")
		} else {
			record.Setlist = songs
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tour dates: %w", err)
	}

	return NewDataset(records), nil
}

// SQLSource reloads the dataset from db.
func SQLSource(db *sql.DB) Source {
	return SourceFunc(func(ctx context.Context) (*Dataset, error) {
		return LoadSQL(ctx, db)
	})
}

// InsertTourDates writes records into tour_dates inside a single transaction.
// progress, when non-nil, is called after each inserted row.
func InsertTourDates(ctx context.Context, db *sql.DB, dialect Dialect, records []models.TourDate, progress func()) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	placeholders := make([]string, len(Columns))
	for i := range placeholders {
		placeholders[i] = dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf(`
		INSERT INTO tour_dates (%s)
		VALUES (%s)
	`, strings.Join(Columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		encoded, err := setlist.Encode(r.Setlist)
		if err != nil {
			return inserted, err
		}

		var capacity any
		if r.VenueCapacity != nil {
			capacity = *r.VenueCapacity
		}

		if _, err := stmt.ExecContext(ctx,
			r.Date, nullString(r.TourName), nullString(r.Country), nullString(r.City),
			nullString(r.Venue), capacity, nullString(encoded),
		); err != nil {
			return inserted, fmt.Errorf("insert tour date %s: %w", r.Date.Format("2006-01-02"), err)
		}
		inserted++
		if progress != nil {
			progress()
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import tx: %w", err)
	}
	tx = nil

	return inserted, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
