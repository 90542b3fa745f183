// Package httpapi exposes the backend over HTTP/JSON and maps domain errors
// to status codes. It owns no business logic.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/expreshop/expreshop/internal/logging"
	"github.com/expreshop/expreshop/internal/server/models"
	"github.com/expreshop/expreshop/internal/server/services"
)

// AuthService is the authentication surface the handlers call into.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.SessionToken, error)
	Register(ctx context.Context, username, fullName, email, password, role string) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ProductService is the catalog surface the handlers call into.
type ProductService interface {
	List(ctx context.Context, category, brand string, skip, limit int) ([]models.Product, error)
	ListPaginated(ctx context.Context, category, brand string, page, limit int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	CreateBatch(ctx context.Context, batch []*models.Product) ([]*models.Product, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	UpdateBatch(ctx context.Context, patches []models.ProductPatch) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Filters(ctx context.Context, category string) (*services.CatalogFilters, error)
}

type Server struct {
	addr     string
	logger   logging.Logger
	auth     AuthService
	products ProductService
	mux      *http.ServeMux
}

func NewServer(addr string, l logging.Logger, as AuthService, ps ProductService) *Server {
	s := &Server{
		addr:     addr,
		logger:   l.With("module", "httpapi"),
		auth:     as,
		products: ps,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /users", s.handleRegister)
	s.mux.HandleFunc("DELETE /users/{username}", s.handleDeleteUser)
	s.mux.HandleFunc("POST /password-recovery", s.handlePasswordRecovery)
	s.mux.HandleFunc("POST /reset-password", s.handleResetPassword)

	s.mux.HandleFunc("GET /products", s.handleProductsList)
	s.mux.HandleFunc("GET /products/paginated", s.handleProductsPaginated)
	s.mux.HandleFunc("POST /products", s.handleProductCreate)
	s.mux.HandleFunc("POST /products/batch", s.handleProductsCreateBatch)
	s.mux.HandleFunc("PUT /products/batch", s.handleProductsUpdateBatch)
	s.mux.HandleFunc("PUT /products/{id}", s.handleProductUpdate)
	s.mux.HandleFunc("GET /categories", s.handleCategories)
	s.mux.HandleFunc("GET /filters", s.handleFilters)
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = loggingMiddleware(s.logger, h)
	h = recoverMiddleware(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping http server")
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "starting http server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
