package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/receptek/backend/internal/categories"
	"github.com/receptek/backend/internal/config"
	"github.com/receptek/backend/internal/middleware"
	"github.com/receptek/backend/internal/recipes"
	"github.com/receptek/backend/internal/store"
	"github.com/receptek/backend/internal/users"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logrus.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		logrus.Fatalf("mongo indexes: %v", err)
	}

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logrus.Fatalf("minio connect: %v", err)
	}

	// ── Services and handlers ────────────────────────────────
	recipeHandler := recipes.NewHandler(recipes.NewService(store.NewRecipeStore(db), minioStore))
	userHandler := users.NewHandler(users.NewService(store.NewUserStore(db), cfg.JWTSecret))
	categoryHandler := categories.NewHandler(store.NewCategoryStore(db))

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.With(middleware.RequireAuth(cfg.JWTSecret)).Put("/update", userHandler.Update)
		r.Delete("/delete/{id}", userHandler.Delete)
		r.Get("/{id}", userHandler.Get)
		r.Get("/", userHandler.List)
	})

	r.Route("/api/recipes", func(r chi.Router) {
		r.Post("/create", recipeHandler.Create)
		r.Get("/", recipeHandler.List)
		r.Get("/search/{name}", recipeHandler.Search)
		r.Get("/category/{categoryId}", recipeHandler.ByCategory)
		r.Get("/{id}", recipeHandler.Get)
		r.Put("/{id}", recipeHandler.Update)
		r.Delete("/{id}", recipeHandler.Delete)
		r.Put("/{id}/like", recipeHandler.Like)
		r.Put("/{id}/save", recipeHandler.Save)
		r.Put("/{id}/enable", recipeHandler.Enable)
		r.Put("/{id}/disable", recipeHandler.Disable)
		r.Put("/{id}/categories", recipeHandler.SetCategories)
		r.Post("/{id}/comment", recipeHandler.AddComment)
		r.Delete("/{id}/comment/{commentId}", recipeHandler.RemoveComment)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.List)
		r.Post("/", categoryHandler.Create)
	})

	// Uploaded recipe images, keyed by store-generated filename
	r.Get("/images/recipes/{filename}", recipeHandler.Image)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		logrus.Infof("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
