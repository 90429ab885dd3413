package impl

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/model"
)

func newMockRepo(t *testing.T) (*GormContactRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewGormContactRepository(gdb), mock
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "ann", escapeLike("ann"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b\\c`, escapeLike(`a_b\c`))
}

func TestSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `contacts` WHERE name LIKE \\? ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Ann", "ann@example.org").
			AddRow(4, "Joanna", "jo@example.org"))

	got, err := repo.Search(context.Background(), "ann", 0, 11)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Joanna", got[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchWithoutTerm(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `contacts` ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	got, err := repo.Search(context.Background(), "", 10, 11)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEach(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `contacts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Ann", "ann@example.org").
			AddRow(2, "Bob", "bob@example.org"))

	var names []string
	err := repo.Each(context.Background(), func(c model.Contact) error {
		names = append(names, c.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `contacts` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
	_, err := repo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIDByEmailError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT `id` FROM `contacts` WHERE email = \\?").
		WillReturnError(errors.New("bad connection"))
	_, _, err := repo.FindIDByEmail(context.Background(), "a@example.org")
	assert.ErrorIs(t, err, apperrors.ErrDatabaseInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `contacts`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.Insert(context.Background(), "Ann", "ann@example.org")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `contacts` WHERE `contacts`.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(context.Background(), 3))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `contacts`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	assert.ErrorIs(t, repo.Delete(context.Background(), 3), apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
