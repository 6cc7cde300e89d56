package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jms1308/kitobim/internal/catalog"
	"github.com/jms1308/kitobim/internal/domain"
)

type CatalogService struct {
	Listings *ListingService
}

func NewCatalogService(listings *ListingService) *CatalogService {
	return &CatalogService{Listings: listings}
}

// CatalogView is everything the catalog page renders.
type CatalogView struct {
	Filter     catalog.Filter
	Page       catalog.Page
	Categories []string
	Cities     []string
}

// Browse loads books and the filter choices in parallel, then filters and
// paginates in memory.
func (s *CatalogService) Browse(ctx context.Context, f catalog.Filter, page int) (CatalogView, error) {
	var (
		books      []domain.Book
		categories []string
		cities     []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		books, err = s.Listings.All(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.Listings.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		cities, err = s.Listings.Cities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CatalogView{}, err
	}

	matched := catalog.Apply(books, f)
	return CatalogView{
		Filter:     f,
		Page:       catalog.Paginate(matched, page, catalog.DefaultPageSize),
		Categories: categories,
		Cities:     cities,
	}, nil
}
