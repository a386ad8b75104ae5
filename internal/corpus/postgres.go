package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
)

// Querier is the subset of *sql.DB the Postgres loader needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresLoader reads documents from a table with an id and a body column:
//
//	CREATE TABLE documents (
//	    id   TEXT PRIMARY KEY,
//	    body TEXT NOT NULL
//	);
type PostgresLoader struct {
	db     Querier
	table  string
	logger *slog.Logger
}

// NewPostgresLoader creates a loader reading from table.
func NewPostgresLoader(db Querier, table string) *PostgresLoader {
	return &PostgresLoader{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "corpus-loader", "table", table),
	}
}

// Query returns the SELECT statement issued by Load.
func (l *PostgresLoader) Query() string {
	return fmt.Sprintf(`SELECT id, body FROM %s ORDER BY id`, pq.QuoteIdentifier(l.table))
}

// Load reads every row, ordered by id.
func (l *PostgresLoader) Load(ctx context.Context) (*Corpus, error) {
	rows, err := l.db.QueryContext(ctx, l.Query())
	if err != nil {
		return nil, apperrors.CorpusReadf("querying table %s: %v", l.table, err)
	}
	defer rows.Close()

	docs := make([]Document, 0, 64)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Text); err != nil {
			return nil, apperrors.CorpusReadf("scanning row of %s: %v", l.table, err)
		}
		if !utf8.ValidString(d.Text) {
			return nil, apperrors.CorpusReadf("document %s is not valid UTF-8", d.ID)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.CorpusReadf("iterating rows of %s: %v", l.table, err)
	}
	if len(docs) == 0 {
		return nil, apperrors.Newf(apperrors.ErrEmptyCorpus, 0, "table %s has no documents", l.table)
	}
	l.logger.Debug("corpus table read", "documents", len(docs))
	return New(docs...)
}
