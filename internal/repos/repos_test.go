package repos_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/domain"
	"github.com/jms1308/kitobim/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repos.SeedIfEmpty(context.Background(), db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := memdb(t)
	require.NoError(t, repos.SeedIfEmpty(context.Background(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM books`))
	assert.Equal(t, 8, n)
}

func TestBookRepo_ListNewestFirstWithSeller(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	books, err := r.List(context.Background(), repos.BookQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []string{"8", "7", "5"}, []string{books[0].ID, books[1].ID, books[2].ID})
	require.NotNil(t, books[0].SellerContact)
	assert.Equal(t, "Sanjar", books[0].SellerContact.Name)
	assert.Equal(t, "934567890", books[0].SellerContact.Phone)
}

func TestBookRepo_ListFilters(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	ctx := context.Background()

	byCity, err := r.List(ctx, repos.BookQuery{City: "Toshkent"})
	require.NoError(t, err)
	assert.Len(t, byCity, 2)

	bySearch, err := r.List(ctx, repos.BookQuery{Search: "QODIR"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 3) // two by Qodiriy, one by Qodirov

	bySeller, err := r.List(ctx, repos.BookQuery{SellerID: "user-1", Category: "Badiiy adabiyot"})
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)
}

func TestBookRepo_SearchWildcardsAreLiteral(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	ctx := context.Background()

	for _, term := range []string{"_", "%", `\`} {
		got, err := r.List(ctx, repos.BookQuery{Search: term})
		require.NoError(t, err)
		assert.Empty(t, got, "term %q", term)
	}

	b := domain.Book{ID: "lit", Title: "Go_dasturlash 100%", Author: "Muallif", Price: 5,
		Condition: domain.ConditionGood, Category: "Ilmiy", City: "Xiva", SellerID: "user-1"}
	require.NoError(t, r.Create(ctx, &b))

	for _, term := range []string{"go_d", "100%"} {
		got, err := r.List(ctx, repos.BookQuery{Search: term})
		require.NoError(t, err)
		require.Len(t, got, 1, "term %q", term)
		assert.Equal(t, "lit", got[0].ID)
	}
}

func TestBookRepo_UpdateAndDeleteAreOwnerGuarded(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	ctx := context.Background()

	b, err := r.Get(ctx, "1")
	require.NoError(t, err)

	b.SellerID = "user-2"
	b.Price = 1
	assert.ErrorIs(t, r.Update(ctx, b), repos.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "1", "user-2"), repos.ErrNotFound)

	b.SellerID = "user-1"
	require.NoError(t, r.Update(ctx, b))
	got, err := r.Get(ctx, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Price)
	assert.NotEmpty(t, got.UpdatedAt)

	require.NoError(t, r.Delete(ctx, "1", "user-1"))
	_, err = r.Get(ctx, "1")
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestBookRepo_CountAndDistinct(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	ctx := context.Background()

	n, err := r.CountBySeller(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cats, err := r.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Badiiy adabiyot", "Bolalar adabiyoti", "Boshqa", "Tarixiy roman"}, cats)

	cities, err := r.Cities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 7)
}

func TestBookRepo_CreateRejectsBadCondition(t *testing.T) {
	r := repos.NewBookRepo(memdb(t))
	b := domain.Book{ID: "x", Title: "t", Author: "a", Price: 5, Condition: "mint",
		Category: "Ilmiy", City: "Xiva", SellerID: "user-1"}
	assert.Error(t, r.Create(context.Background(), &b))
}

func TestUserRepo_DuplicatePhone(t *testing.T) {
	r := repos.NewUserRepo(memdb(t))
	u := domain.User{ID: "dup", Username: "Dup", Phone: "901234567", Hash: "x"}
	assert.ErrorIs(t, r.Create(context.Background(), &u), repos.ErrDuplicate)
}

func TestUserRepo_Sessions(t *testing.T) {
	r := repos.NewUserRepo(memdb(t))
	ctx := context.Background()

	_, err := r.SessionUser(ctx, "sid-1")
	assert.ErrorIs(t, err, repos.ErrNotFound)

	require.NoError(t, r.BindSession(ctx, "sid-1", "user-2"))
	u, err := r.SessionUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Nodira", u.Username)

	require.NoError(t, r.UnbindSession(ctx, "sid-1"))
	_, err = r.SessionUser(ctx, "sid-1")
	assert.ErrorIs(t, err, repos.ErrNotFound)

	require.NoError(t, r.BindSession(ctx, "sid-2", "user-3"))
	n, err := r.PruneSessions(ctx, "0000")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only the logged-out session goes")

	n, err = r.PruneSessions(ctx, "9999")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
