package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/handlers"
	"github.com/safar/storefront/internal/payment"
	"github.com/safar/storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("Connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Connected to database")

	sessions := handlers.NewSessions(&cfg.Session)
	gateway := payment.New(&cfg.Payment)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.LoggingMiddleware(routes(db, sessions, gateway, cfg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweepExpiredCarts(sweepCtx, db, cfg.Cart.SweepInterval)

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

func routes(db *sql.DB, sessions *handlers.Sessions, gateway *payment.Client, cfg *config.Config) *http.ServeMux {
	auth := &handlers.Auth{DB: db, Sessions: sessions}

	authHandler := &handlers.AuthHandler{DB: db, Sessions: sessions}
	productHandler := &handlers.ProductHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db, Sessions: sessions, CartTTL: cfg.Cart.TTL}
	orderHandler := &handlers.OrderHandler{DB: db}
	paymentHandler := &handlers.PaymentHandler{DB: db, Gateway: gateway}
	wishlistHandler := &handlers.WishlistHandler{DB: db}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	contactHandler := &handlers.ContactHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/me", auth.RequireUser(authHandler.Me))

	mux.HandleFunc("GET /products", productHandler.List)
	mux.HandleFunc("GET /products/{id}", productHandler.Get)
	mux.HandleFunc("GET /products/{id}/reviews", productHandler.Reviews)

	mux.HandleFunc("GET /cart", cartHandler.Get)
	mux.HandleFunc("POST /cart", cartHandler.Add)
	mux.HandleFunc("DELETE /cart/{productID}", cartHandler.Remove)

	mux.HandleFunc("POST /order", auth.RequireUser(orderHandler.Create))
	mux.HandleFunc("GET /order", auth.RequireUser(orderHandler.List))
	mux.HandleFunc("GET /order/{id}", auth.RequireUser(orderHandler.Get))
	mux.HandleFunc("DELETE /order/{id}", auth.RequireUser(orderHandler.Delete))

	mux.HandleFunc("POST /payment/initiate", auth.RequireUser(paymentHandler.Initiate))
	mux.HandleFunc("GET /payment/status", auth.RequireUser(paymentHandler.Status))

	mux.HandleFunc("GET /wishlist", auth.RequireUser(wishlistHandler.List))
	mux.HandleFunc("POST /wishlist", auth.RequireUser(wishlistHandler.Add))
	mux.HandleFunc("DELETE /wishlist/{productID}", auth.RequireUser(wishlistHandler.Remove))

	mux.HandleFunc("POST /review", auth.RequireUser(reviewHandler.Create))
	mux.HandleFunc("POST /contact", contactHandler.Create)

	mux.HandleFunc("GET /admin/products", auth.RequireAdmin(adminHandler.ListProducts))
	mux.HandleFunc("POST /admin/products", auth.RequireAdmin(adminHandler.CreateProduct))
	mux.HandleFunc("PUT /admin/products/{id}", auth.RequireAdmin(adminHandler.UpdateProduct))
	mux.HandleFunc("DELETE /admin/products/{id}", auth.RequireAdmin(adminHandler.DeleteProduct))

	mux.HandleFunc("GET /admin/orders", auth.RequireAdmin(adminHandler.ListOrders))
	mux.HandleFunc("PUT /admin/orders/{id}/status", auth.RequireAdmin(adminHandler.SetOrderStatus))
	mux.HandleFunc("PUT /admin/orders/{id}/payment-status", auth.RequireAdmin(adminHandler.SetPaymentStatus))
	mux.HandleFunc("POST /admin/orders/{id}/cancel", auth.RequireAdmin(adminHandler.CancelOrder))
	mux.HandleFunc("POST /admin/orders/{id}/refund", auth.RequireAdmin(adminHandler.RefundOrder))

	mux.HandleFunc("GET /admin/users", auth.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("PUT /admin/users/{id}/role", auth.RequireAdmin(adminHandler.SetUserRole))
	mux.HandleFunc("GET /admin/contacts", auth.RequireAdmin(adminHandler.ListContacts))

	return mux
}

// sweepExpiredCarts stands in for the document store's TTL index: expired
// carts are deleted on an interval.
func sweepExpiredCarts(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.SweepExpired(ctx, db)
			if err != nil {
				slog.Error("Sweep expired carts", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("Swept expired carts", "removed", removed)
			}
		}
	}
}
