package repos

import (
	"context"
	"embed"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/domain"
	applog "github.com/jms1308/kitobim/internal/log"
)

//go:embed migrations
var migrations embed.FS

// OpenDB connects with the named driver and applies pending migrations.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case config.DriverSQLite:
		db, err = sqlx.Open("sqlite", sqliteDSN(dsn))
		if err == nil && strings.Contains(dsn, ":memory:") {
			// every pooled connection would otherwise get its own empty database
			db.SetMaxOpenConns(1)
		}
	case config.DriverPostgres:
		db, err = sqlx.Open("pgx", dsn)
	default:
		return nil, errors.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping db")
	}
	if err := Migrate(db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate runs the embedded goose migrations for driver.
func Migrate(db *sqlx.DB, driver string) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if driver == config.DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{applog.L().Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	if err := goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

type gooseLogger struct{ *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(strings.TrimSpace(format), v...)
}

// builder picks the placeholder style the driver understands.
func builder(db *sqlx.DB) sq.StatementBuilderType {
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// SeedPassword is the password of every seeded seller.
const SeedPassword = "Parol123!"

// SeedIfEmpty inserts the demo sellers and listings into an empty database.
func SeedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return errors.Wrap(err, "seed count")
	}
	if n > 0 {
		return nil
	}
	applog.L().Info("seed.insert", zap.String("what", "demo sellers and books"))

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	users := []domain.User{
		{ID: "user-1", Username: "Alisher", Phone: "901234567"},
		{ID: "user-2", Username: "Nodira", Phone: "912345678"},
		{ID: "user-3", Username: "Sanjar", Phone: "934567890"},
		{ID: "user-4", Username: "Madina", Phone: "945678901"},
	}
	books := []domain.Book{
		{ID: "1", Title: "O'tkan kunlar", Author: "Abdulla Qodiriy", Description: "O'zbek adabiyotining durdona asari. O'tgan asr voqealari haqida hikoya qiladi.", Price: 50000, Condition: domain.ConditionGood, Category: "Badiiy adabiyot", City: "Toshkent", SellerID: "user-1", CreatedAt: "2024-05-19T10:00:00.000000Z"},
		{ID: "2", Title: "Ufq romani", Author: "Said Ahmad", Description: "Ikkinchi jahon urushi davridagi o'zbek xalqining matonati haqidagi roman.", Price: 45000, Condition: domain.ConditionNew, Category: "Tarixiy roman", City: "Samarqand", SellerID: "user-2", CreatedAt: "2024-05-20T12:30:00.000000Z"},
		{ID: "3", Title: "Yulduzli tunlar", Author: "Pirimqul Qodirov", Description: "Bobur hayotiga bag'ishlangan tarixiy roman.", Price: 55000, Condition: domain.ConditionBad, Category: "Tarixiy roman", City: "Buxoro", SellerID: "user-1", CreatedAt: "2024-05-18T09:00:00.000000Z"},
		{ID: "4", Title: "Shum Bola", Author: "G'afur G'ulom", Description: "Sho'x bola sarguzashtlari haqida qiziqarli qissa.", Price: 30000, Condition: domain.ConditionGood, Category: "Bolalar adabiyoti", City: "Farg'ona", SellerID: "user-3", CreatedAt: "2024-05-21T15:00:00.000000Z"},
		{ID: "5", Title: "Sariq devni minib", Author: "Xudoyberdi To'xtaboyev", Description: "Sehrli sarguzashtlar haqida ajoyib ertak-qissa.", Price: 35000, Condition: domain.ConditionNew, Category: "Bolalar adabiyoti", City: "Andijon", SellerID: "user-2", CreatedAt: "2024-05-22T11:00:00.000000Z"},
		{ID: "6", Title: "Kecha va Kunduz", Author: "Cho'lpon", Description: "Jadidchilik davri haqidagi mashhur roman.", Price: 60000, Condition: domain.ConditionGood, Category: "Badiiy adabiyot", City: "Toshkent", SellerID: "user-1", CreatedAt: "2024-05-21T18:00:00.000000Z"},
		{ID: "7", Title: "Mehrobdan Chayon", Author: "Abdulla Qodiriy", Description: "Anvar va Ra'noning sevgi qissasi.", Price: 52000, Condition: domain.ConditionGood, Category: "Badiiy adabiyot", City: "Qo'qon", SellerID: "user-4", CreatedAt: "2024-05-22T14:20:00.000000Z"},
		{ID: "8", Title: "Dunyoning ishlari", Author: "O'tkir Hoshimov", Description: "Ona haqidagi ta'sirli hikoyalar to'plami.", Price: 40000, Condition: domain.ConditionNew, Category: "Boshqa", City: "Namangan", SellerID: "user-3", CreatedAt: "2024-05-23T08:45:00.000000Z"},
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := domain.Now()
	for _, u := range users {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users(id, username, phone, password_hash, created_at)
			VALUES(?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`), u.ID, u.Username, u.Phone, string(hash), now); err != nil {
			return errors.Wrap(err, "seed user")
		}
	}
	for _, b := range books {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO books(id, title, author, description, price, condition, category, city, image_url, seller_id, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`), b.ID, b.Title, b.Author, b.Description, b.Price, string(b.Condition), b.Category, b.City,
			"https://placehold.co/600x800.png", b.SellerID, b.CreatedAt); err != nil {
			return errors.Wrap(err, "seed book")
		}
	}
	return tx.Commit()
}
