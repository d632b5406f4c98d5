// Package api содержит HTTP-сервер витрины: каталог, корзина,
// оформление и поиск заказов.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"vapelux/internal/cache"
	"vapelux/internal/cart"
	"vapelux/internal/checkout"
	"vapelux/internal/database"
	"vapelux/internal/kvstore"
)

const sessionCookieName = "vapelux_session"

type ctxKey int

const sessionCtxKey ctxKey = iota

// Server представляет HTTP-сервер витрины.
type Server struct {
	port     string
	router   *chi.Mux
	logger   *zap.Logger
	carts    *cart.Manager
	checkout *checkout.Service
	storage  database.Storage
	cache    cache.Cache
	kv       kvstore.Store
}

// NewServer создает и настраивает новый экземпляр сервера.
func NewServer(port string, carts *cart.Manager, checkoutSvc *checkout.Service,
	storage database.Storage, orderCache cache.Cache, kv kvstore.Store, logger *zap.Logger) *Server {

	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		port:     port,
		logger:   logger,
		carts:    carts,
		checkout: checkoutSvc,
		storage:  storage,
		cache:    orderCache,
		kv:       kv,
	}
	server.router = server.setupRouter()
	return server
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.port),
		Handler: otelhttp.NewHandler(s.router, "http.server"),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP-сервер запущен", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// setupRouter настраивает маршрутизацию.
func (s *Server) setupRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(sessionMiddleware)

	catalogHandler := NewCatalogHandler(s.logger)
	cartHandler := NewCartHandler(s.carts, s.logger)
	checkoutHandler := NewCheckoutHandler(s.checkout, s.carts, s.logger)
	orderHandler := NewOrderHandler(s.storage, s.cache, s.logger)
	promptHandler := NewInstallPromptHandler(s.kv, s.logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/products", catalogHandler.List)
		r.Get("/products/{id}", catalogHandler.GetByID)
		r.Get("/filters", catalogHandler.Filters)

		r.Get("/cart", cartHandler.Get)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Patch("/cart/items/{id}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{id}", cartHandler.RemoveItem)

		r.Post("/checkout", checkoutHandler.Submit)

		r.Get("/order/{orderUID}", orderHandler.GetByUID)

		r.Get("/install-prompt", promptHandler.Get)
		r.Post("/install-prompt/dismiss", promptHandler.Dismiss)
	})

	router.Handle("/metrics", promhttp.Handler())

	return router
}

// sessionMiddleware выдает покупателю cookie сессии, по которой
// выбирается его корзина.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				MaxAge:   60 * 60 * 24 * 30,
			})
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID достает идентификатор сессии из контекста запроса.
func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionCtxKey).(string)
	return sid
}

// requestLogger пишет структурированный лог по каждому запросу.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("запрос обработан",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
