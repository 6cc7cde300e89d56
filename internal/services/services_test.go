package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jms1308/kitobim/internal/auth"
	"github.com/jms1308/kitobim/internal/catalog"
	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/repos"
	"github.com/jms1308/kitobim/internal/services"
	"github.com/jms1308/kitobim/internal/validate"
)

type fixture struct {
	db       *sqlx.DB
	auth     *services.AuthService
	listings *services.ListingService
	catalog  *services.CatalogService
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := repos.OpenDB(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repos.SeedIfEmpty(context.Background(), db))
	t.Cleanup(func() { _ = db.Close() })

	users := repos.NewUserRepo(db)
	books := repos.NewBookRepo(db)
	listings := services.NewListingService(books, users)
	return fixture{
		db:       db,
		auth:     services.NewAuthService(users, auth.NewIssuer("test-secret", time.Hour)),
		listings: listings,
		catalog:  services.NewCatalogService(listings),
	}
}

func form() validate.ListingForm {
	return validate.ListingForm{
		Title:       "Alkimyogar",
		Author:      "Paulo Coelho",
		Condition:   "new",
		Price:       42000,
		Category:    "Badiiy adabiyot",
		City:        "Xiva",
		Description: "Orzular ortidan ketgan cho'pon haqida roman.",
		ImageURL:    "https://placehold.co/600x800.png",
	}
}

func TestSignup_LogsInAndNormalizesPhone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, "sid-1", "Bobur", "+998 97 111 22 33", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "971112233", u.Phone)

	s := f.auth.Resolve(ctx, "sid-1")
	assert.Equal(t, services.StatusAuthenticated, s.Status)
	assert.Equal(t, u.ID, s.User.ID)
}

func TestSignup_DuplicatePhone(t *testing.T) {
	f := setup(t)
	_, err := f.auth.Signup(context.Background(), "sid-1", "Boshqa", "+998901234567", "secret1")
	assert.ErrorIs(t, err, services.ErrPhoneTaken)
	assert.Equal(t, "Bu telefon raqami allaqachon ro'yxatdan o'tgan.", err.Error())
}

func TestSignup_BadPhone(t *testing.T) {
	f := setup(t)
	_, err := f.auth.Signup(context.Background(), "sid-1", "Bobur", "12345", "secret1")
	assert.ErrorIs(t, err, services.ErrBadPhone)

	_, err = f.auth.Signup(context.Background(), "sid-1", "Bo", "971112233", "123")
	var ve *services.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "Username")
	assert.Contains(t, ve.Fields, "Password")
}

func TestSignup_MultibytePasswordOverBcryptLimit(t *testing.T) {
	f := setup(t)
	_, err := f.auth.Signup(context.Background(), "sid-1", "Bobur", "+998 97 111 22 33", strings.Repeat("ш", 40))
	var ve *services.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "Parol juda uzun.", ve.Fields["Password"])
	assert.Equal(t, "Parol juda uzun.", services.Message(err, "generic"))
}

func TestSignup_TrimsUsername(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "sid-1", "     ", "+998 97 111 22 33", "secret1")
	var ve *services.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Fields, "Username")

	u, err := f.auth.Signup(ctx, "sid-2", "  Bobur  ", "+998 97 111 22 33", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Bobur", u.Username)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "sid-1", "901234567", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = f.auth.Login(ctx, "sid-1", "999999999", repos.SeedPassword)
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, err := f.auth.Login(ctx, "sid-1", "+998 90 123 45 67", repos.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}

func TestResolve_States(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var zero services.Session
	assert.Equal(t, services.StatusPending, zero.Status)
	assert.False(t, zero.Authenticated())

	assert.Equal(t, services.StatusAnonymous, f.auth.Resolve(ctx, "").Status)
	assert.Equal(t, services.StatusAnonymous, f.auth.Resolve(ctx, "unknown").Status)

	_, err := f.auth.Login(ctx, "sid-1", "901234567", repos.SeedPassword)
	require.NoError(t, err)
	assert.True(t, f.auth.Resolve(ctx, "sid-1").Authenticated())

	require.NoError(t, f.auth.Logout(ctx, "sid-1"))
	assert.Equal(t, services.StatusAnonymous, f.auth.Resolve(ctx, "sid-1").Status)
}

func TestPruneSessions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "keep", "901234567", repos.SeedPassword)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "gone", "912345678", repos.SeedPassword)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, "gone"))

	n, err := f.auth.PruneSessions(ctx, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.True(t, f.auth.Resolve(ctx, "keep").Authenticated())
}

func TestTokens(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, err := f.auth.Login(ctx, "", "901234567", repos.SeedPassword)
	require.NoError(t, err)
	tok, err := f.auth.IssueToken(u)
	require.NoError(t, err)

	got, err := f.auth.ParseToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "Alisher", got.Username)

	_, err = f.auth.ParseToken(ctx, tok+"x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestListing_CreateAttachesSeller(t *testing.T) {
	f := setup(t)
	b, err := f.listings.Create(context.Background(), "user-2", form())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	require.NotNil(t, b.SellerContact)
	assert.Equal(t, "Nodira", b.SellerContact.Name)
	assert.Equal(t, "912345678", b.SellerContact.Phone)

	recent, err := f.listings.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, services.RecentLimit)
	assert.Equal(t, b.ID, recent[0].ID)
}

func TestListing_CreateRejectsInvalidForm(t *testing.T) {
	f := setup(t)
	bad := form()
	bad.Price = -5
	_, err := f.listings.Create(context.Background(), "user-2", bad)
	assert.Equal(t, "Narx manfiy bo'lishi mumkin emas.", services.Message(err, "x"))

	_, err = f.listings.Create(context.Background(), "nobody", form())
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestListing_OwnerOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.listings.Update(ctx, "1", "user-2", form())
	assert.ErrorIs(t, err, services.ErrNotOwner)
	assert.ErrorIs(t, f.listings.Delete(ctx, "1", "user-2"), services.ErrNotOwner)
	assert.ErrorIs(t, f.listings.Delete(ctx, "missing", "user-1"), services.ErrNotFound)

	b, err := f.listings.Update(ctx, "1", "user-1", form())
	require.NoError(t, err)
	assert.Equal(t, "Alkimyogar", b.Title)
	assert.NotEmpty(t, b.UpdatedAt)

	require.NoError(t, f.listings.Delete(ctx, "1", "user-1"))
	_, err = f.listings.Get(ctx, "1")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListing_SearchAndProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	found, err := f.listings.Search(ctx, "qodiriy")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	u, err := f.listings.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, u.PostsCount)

	mine, err := f.listings.BySeller(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestCatalog_Browse(t *testing.T) {
	f := setup(t)
	max := int64(45000)
	view, err := f.catalog.Browse(context.Background(), catalog.Filter{MaxPrice: &max}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Page.Total)
	assert.Equal(t, "8", view.Page.Items[0].ID)
	assert.Contains(t, view.Categories, "Tarixiy roman")
	assert.NotContains(t, view.Cities, "Xiva")
	assert.Len(t, view.Cities, 7)
}
