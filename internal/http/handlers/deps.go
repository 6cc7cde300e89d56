package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/jms1308/kitobim/internal/auth"
	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/repos"
	"github.com/jms1308/kitobim/internal/services"
)

type Deps struct {
	Auth     *services.AuthService
	Listings *services.ListingService
	Catalog  *services.CatalogService

	AuthHandler    *AuthHandler
	HomeHandler    *HomeHandler
	CatalogHandler *CatalogHandler
	BookHandler    *BookHandler
	ListingHandler *ListingHandler
	APIHandler     *APIHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	bookRepo := repos.NewBookRepo(db)

	authSvc := services.NewAuthService(userRepo, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))
	listingSvc := services.NewListingService(bookRepo, userRepo)
	catalogSvc := services.NewCatalogService(listingSvc)

	return &Deps{
		Auth:     authSvc,
		Listings: listingSvc,
		Catalog:  catalogSvc,

		AuthHandler:    &AuthHandler{Auth: authSvc, SecureCookies: cfg.SecureCookies, SessionTTL: cfg.SessionTTL},
		HomeHandler:    &HomeHandler{Listings: listingSvc},
		CatalogHandler: &CatalogHandler{Service: catalogSvc},
		BookHandler:    &BookHandler{Listings: listingSvc},
		ListingHandler: &ListingHandler{Listings: listingSvc},
		APIHandler:     &APIHandler{Auth: authSvc, Catalog: catalogSvc, Listings: listingSvc},
	}
}
