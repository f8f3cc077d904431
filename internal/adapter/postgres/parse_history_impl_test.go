package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/recipe-service/internal/entity"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestParseHistory_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewParseHistoryRepo(mock)
	parsedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &entity.ParseRecord{
		URL:      "https://www.ica.se/recept/morotssoppa-722533/",
		Domain:   "ica.se",
		Title:    "Morotssoppa",
		Image:    "tmp/5f0c.jpg",
		Status:   entity.ParseStatusSuccess,
		ParsedAt: parsedAt,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO parse_history")).
		WithArgs(rec.URL, rec.Domain, rec.Title, []string{}, rec.Image, rec.Status, parsedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repo.Save(context.Background(), rec))
	assert.Equal(t, int64(42), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseHistory_SaveError(t *testing.T) {
	mock := newMock(t)
	repo := NewParseHistoryRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO parse_history")).
		WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), &entity.ParseRecord{URL: "https://www.arla.se/recept/x/"})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseHistory_ListRecent(t *testing.T) {
	mock := newMock(t)
	repo := NewParseHistoryRepo(mock)
	t1 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "url", "domain", "title", "failed_fields", "image", "status", "parsed_at"}).
		AddRow(int64(2), "https://www.koket.se/pannkakor", "koket.se", "Pannkakor", []string{"portions"}, "", entity.ParseStatusSuccess, t1).
		AddRow(int64(1), "http://www.example-recipes.test/recipe/123", "example-recipes.test", "", []string{}, "", entity.ParseStatusNoParser, t2)
	mock.ExpectQuery(regexp.QuoteMeta("FROM parse_history")).WithArgs(10).WillReturnRows(rows)

	got, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Pannkakor", got[0].Title)
	assert.Equal(t, []string{"portions"}, got[0].FailedFields)
	assert.Equal(t, entity.ParseStatusNoParser, got[1].Status)
	assert.Equal(t, t2, got[1].ParsedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseHistory_Migrate(t *testing.T) {
	mock := newMock(t)
	repo := NewParseHistoryRepo(mock)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS parse_history")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, repo.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
