package repos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/domain"
)

type BookRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
	// LOWER() folds all of Unicode on Postgres, ASCII only on SQLite.
	unicodeLower bool
}

func NewBookRepo(db *sqlx.DB) *BookRepo {
	return &BookRepo{
		db:           db,
		qb:           builder(db),
		unicodeLower: sqlx.BindType(db.DriverName()) == sqlx.DOLLAR,
	}
}

// BookQuery narrows List on the database side. Zero fields are ignored.
type BookQuery struct {
	Category string
	City     string
	SellerID string
	Search   string // title or author, case-insensitive
	Limit    int
}

type bookRow struct {
	domain.Book
	SellerName  string `db:"seller_name"`
	SellerPhone string `db:"seller_phone"`
}

func (r bookRow) book() domain.Book {
	b := r.Book
	c := domain.SellerContact{Name: r.SellerName, Phone: r.SellerPhone}
	if c.Name == "" {
		c.Name = domain.UnknownContact
	}
	if c.Phone == "" {
		c.Phone = domain.UnknownContact
	}
	b.SellerContact = &c
	return b
}

func (r *BookRepo) selectBooks() sq.SelectBuilder {
	return r.qb.Select(
		"b.id", "b.title", "b.author", "b.description", "b.price", "b.condition",
		"b.category", "b.city", "b.image_url", "b.seller_id", "b.created_at",
		"COALESCE(b.updated_at,'') AS updated_at",
		"COALESCE(u.username,'') AS seller_name",
		"COALESCE(u.phone,'') AS seller_phone",
	).
		From("books b").
		LeftJoin("users u ON u.id = b.seller_id")
}

// List returns matching books newest first with seller contact attached.
func (r *BookRepo) List(ctx context.Context, q BookQuery) ([]domain.Book, error) {
	sb := r.selectBooks()
	if q.Category != "" {
		sb = sb.Where(sq.Eq{"b.category": q.Category})
	}
	if q.City != "" {
		sb = sb.Where(sq.Eq{"b.city": q.City})
	}
	if q.SellerID != "" {
		sb = sb.Where(sq.Eq{"b.seller_id": q.SellerID})
	}
	if q.Search != "" {
		pattern := likePattern(q.Search, r.unicodeLower)
		sb = sb.Where(sq.Or{
			sq.Expr(`LOWER(b.title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(b.author) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	sb = sb.OrderBy("b.created_at DESC", "b.id DESC")
	if q.Limit > 0 {
		sb = sb.Limit(uint64(q.Limit))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "books.list build")
	}
	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, translate(err, "books.list")
	}
	out := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.book())
	}
	return out, nil
}

func (r *BookRepo) Get(ctx context.Context, id string) (domain.Book, error) {
	query, args, err := r.selectBooks().Where(sq.Eq{"b.id": id}).Limit(1).ToSql()
	if err != nil {
		return domain.Book{}, errors.Wrap(err, "books.get build")
	}
	var row bookRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return domain.Book{}, translate(err, "books.get")
	}
	return row.book(), nil
}

// Create stores b, filling ID and CreatedAt when empty.
func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	if b.CreatedAt == "" {
		b.CreatedAt = domain.Now()
	}
	query, args, err := r.qb.Insert("books").
		Columns("id", "title", "author", "description", "price", "condition",
			"category", "city", "image_url", "seller_id", "created_at").
		Values(b.ID, b.Title, b.Author, b.Description, b.Price, string(b.Condition),
			b.Category, b.City, b.ImageURL, b.SellerID, b.CreatedAt).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "books.create build")
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return translate(err, "books.create")
}

// Update rewrites the editable fields of b. The seller guard is part of the
// statement, so a non-owner update touches nothing and yields ErrNotFound.
func (r *BookRepo) Update(ctx context.Context, b domain.Book) error {
	b.UpdatedAt = domain.Now()
	query, args, err := r.qb.Update("books").
		SetMap(map[string]any{
			"title":       b.Title,
			"author":      b.Author,
			"description": b.Description,
			"price":       b.Price,
			"condition":   string(b.Condition),
			"category":    b.Category,
			"city":        b.City,
			"image_url":   b.ImageURL,
			"updated_at":  b.UpdatedAt,
		}).
		Where(sq.Eq{"id": b.ID, "seller_id": b.SellerID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "books.update build")
	}
	return r.execOne(ctx, "books.update", query, args...)
}

// Delete removes the book only when sellerID owns it.
func (r *BookRepo) Delete(ctx context.Context, id, sellerID string) error {
	query, args, err := r.qb.Delete("books").
		Where(sq.Eq{"id": id, "seller_id": sellerID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "books.delete build")
	}
	return r.execOne(ctx, "books.delete", query, args...)
}

func (r *BookRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBySeller backs the derived postsCount.
func (r *BookRepo) CountBySeller(ctx context.Context, sellerID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM books WHERE seller_id = ?`), sellerID)
	return n, translate(err, "books.count")
}

func (r *BookRepo) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *BookRepo) Cities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "city")
}

// distinct lists the values in use for a column of the books table.
func (r *BookRepo) distinct(ctx context.Context, column string) ([]string, error) {
	query, args, err := r.qb.Select(column).Distinct().From("books").OrderBy(column).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "books.distinct build")
	}
	out := []string{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, translate(err, "books.distinct")
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a literal substring LIKE pattern,
// lowercased the same way the database's LOWER() does.
func likePattern(term string, unicodeLower bool) string {
	term = strings.TrimSpace(term)
	if unicodeLower {
		term = strings.ToLower(term)
	} else {
		term = asciiLower(term)
	}
	return "%" + likeEscaper.Replace(term) + "%"
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
