package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/domain"
	"github.com/jms1308/kitobim/internal/repos"
	"github.com/jms1308/kitobim/internal/validate"
)

// RecentLimit is how many listings the home page shows.
const RecentLimit = 8

type ListingService struct {
	Books *repos.BookRepo
	Users *repos.UserRepo
}

func NewListingService(books *repos.BookRepo, users *repos.UserRepo) *ListingService {
	return &ListingService{Books: books, Users: users}
}

func (s *ListingService) Recent(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	return s.Books.List(ctx, repos.BookQuery{Limit: limit})
}

// Search matches term against title and author, newest first.
func (s *ListingService) Search(ctx context.Context, term string) ([]domain.Book, error) {
	q, ok := validate.Q(term)
	if !ok {
		return []domain.Book{}, nil
	}
	return s.Books.List(ctx, repos.BookQuery{Search: q})
}

func (s *ListingService) All(ctx context.Context) ([]domain.Book, error) {
	return s.Books.List(ctx, repos.BookQuery{})
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Book, error) {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Book{}, ErrNotFound
	}
	b, err := s.Books.Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Book{}, ErrNotFound
	}
	return b, err
}

func (s *ListingService) BySeller(ctx context.Context, userID string) ([]domain.Book, error) {
	return s.Books.List(ctx, repos.BookQuery{SellerID: userID})
}

// Create publishes a listing for sellerID, who must exist.
func (s *ListingService) Create(ctx context.Context, sellerID string, form validate.ListingForm) (domain.Book, error) {
	form.Normalize()
	if err := invalid(form.Validate()); err != nil {
		return domain.Book{}, err
	}
	if _, err := s.Users.ByID(ctx, sellerID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return domain.Book{}, ErrUserNotFound
		}
		return domain.Book{}, err
	}
	b := bookFromForm(form)
	b.ID = uuid.NewString()
	b.SellerID = sellerID
	if err := s.Books.Create(ctx, &b); err != nil {
		return domain.Book{}, err
	}
	return s.Books.Get(ctx, b.ID)
}

// Update rewrites a listing owned by userID.
func (s *ListingService) Update(ctx context.Context, id, userID string, form validate.ListingForm) (domain.Book, error) {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return domain.Book{}, err
	}
	form.Normalize()
	if err := invalid(form.Validate()); err != nil {
		return domain.Book{}, err
	}
	b := bookFromForm(form)
	b.ID = id
	b.SellerID = userID
	if err := s.Books.Update(ctx, b); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return domain.Book{}, ErrNotFound
		}
		return domain.Book{}, err
	}
	return s.Books.Get(ctx, id)
}

func (s *ListingService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Books.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Editable loads a listing for its edit form.
func (s *ListingService) Editable(ctx context.Context, id, userID string) (domain.Book, error) {
	return s.owned(ctx, id, userID)
}

func (s *ListingService) owned(ctx context.Context, id, userID string) (domain.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if b.SellerID != userID {
		return domain.Book{}, ErrNotOwner
	}
	return b, nil
}

func (s *ListingService) Categories(ctx context.Context) ([]string, error) {
	return s.Books.Categories(ctx)
}

func (s *ListingService) Cities(ctx context.Context) ([]string, error) {
	return s.Books.Cities(ctx)
}

// Profile loads the user with postsCount filled in.
func (s *ListingService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	n, err := s.Books.CountBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PostsCount = n
	return u, nil
}

func bookFromForm(f validate.ListingForm) domain.Book {
	return domain.Book{
		Title:       f.Title,
		Author:      f.Author,
		Description: f.Description,
		Price:       f.Price,
		Condition:   domain.Condition(f.Condition),
		Category:    f.Category,
		City:        f.City,
		ImageURL:    f.ImageURL,
	}
}

// FormFromBook prefills the edit form.
func FormFromBook(b domain.Book) validate.ListingForm {
	return validate.ListingForm{
		Title:       b.Title,
		Author:      b.Author,
		Condition:   string(b.Condition),
		Price:       b.Price,
		Category:    b.Category,
		City:        b.City,
		Description: b.Description,
		ImageURL:    b.ImageURL,
	}
}
