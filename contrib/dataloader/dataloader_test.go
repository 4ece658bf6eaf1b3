package dataloader

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/sample"
	"github.com/syssam/rowmap/query"
	"github.com/syssam/rowmap/session"
)

type item struct {
	ID   int
	Name string
}

func TestOrderByKeys(t *testing.T) {
	keyFn := func(e *item) int { return e.ID }

	t.Run("all keys found", func(t *testing.T) {
		values := []*item{{ID: 3, Name: "third"}, {ID: 1, Name: "first"}, {ID: 2, Name: "second"}}
		result, errs := OrderByKeys([]int{1, 2, 3}, values, keyFn)
		require.Len(t, result, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "second", result[1].Name)
		assert.Equal(t, "third", result[2].Name)
		assert.Equal(t, []error{nil, nil, nil}, errs)
	})

	t.Run("missing and duplicate keys", func(t *testing.T) {
		values := []*item{{ID: 1, Name: "first"}}
		result, errs := OrderByKeys([]int{1, 4, 1}, values, keyFn)
		assert.Same(t, result[0], result[2])
		assert.Nil(t, result[1])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
	})
}

func TestGroups(t *testing.T) {
	values := []*item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 1, Name: "c"}}
	groups := GroupByKey(values, func(e *item) int { return e.ID })
	assert.Len(t, groups[1], 2)
	ordered := OrderGroupsByKeys([]int{2, 3, 1}, groups)
	assert.Equal(t, []*item{values[1]}, ordered[0])
	assert.Nil(t, ordered[1])
	assert.Equal(t, []*item{values[0], values[2]}, ordered[2])
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, Unique([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Unique[string](nil))
}

func seed(t *testing.T) (*query.Builder, []*sample.User) {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	s := session.New(drv, sample.Registry())
	ctx := context.Background()
	require.NoError(t, s.CreateTables(ctx))
	users, err := sample.Seed(ctx, s)
	require.NoError(t, err)
	return query.New(s), users
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	qb, users := seed(t)
	ada, linus := users[0].ID, users[1].ID

	got, errs, err := Load(ctx, qb, "ID", []int64{linus, 999, ada, linus}, func(u *sample.User) int64 { return u.ID })
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Linus", got[0].Name)
	assert.Nil(t, got[1])
	assert.ErrorIs(t, errs[1], ErrNotFound)
	assert.Equal(t, "Ada", got[2].Name)
	assert.Same(t, got[0], got[3])

	got, errs, err = Load(ctx, qb, "ID", []int64{}, func(u *sample.User) int64 { return u.ID })
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, errs)
}

func TestLoadGroups(t *testing.T) {
	ctx := context.Background()
	qb, users := seed(t)

	groups, err := LoadGroups(ctx, qb, "Author.ID", []int64{users[1].ID, users[0].ID, 42}, func(p *sample.Post) int64 {
		return p.Author.ID
	})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	require.Len(t, groups[0], 1)
	assert.Equal(t, "Kernels", groups[0][0].Title)
	require.Len(t, groups[1], 2)
	assert.Equal(t, "Engines", groups[1][0].Title)
	assert.Equal(t, "Notes", groups[1][1].Title)
	assert.Nil(t, groups[2])
}

func TestLoadStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := session.New(sql.OpenDB(dialect.Postgres, db), sample.Registry())

	const cols = "user.id user_id,user.created_at user_created_at,user.updated_at user_updated_at,user.name user_name," +
		"user.email user_email,user.role user_role,user.address_street user_address_street," +
		"user.address_city user_address_city,user.address_zip_code user_address_zip_code"
	created := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+cols+" FROM users user WHERE user.id IN ($1,$2) ORDER BY user.id ASC")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows(strings.Split(strings.NewReplacer("user.", "").Replace(cols), ",")).
			AddRow(int64(1), created, created, "Ada", "ada@example.com", "admin", nil, "London", nil))

	got, errs, err := Load(context.Background(), query.New(s), "ID", []int64{2, 1, 2}, func(u *sample.User) int64 { return u.ID })
	require.NoError(t, err)
	assert.Nil(t, got[0])
	assert.ErrorIs(t, errs[0], ErrNotFound)
	assert.Equal(t, "Ada", got[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
