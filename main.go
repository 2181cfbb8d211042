package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"

	"poolside-catalog/internal/admin"
	"poolside-catalog/internal/auth"
	"poolside-catalog/internal/catalog"
	"poolside-catalog/internal/db"
	"poolside-catalog/internal/featureflags"
	mw "poolside-catalog/internal/http/middleware"
	"poolside-catalog/internal/logger"
	"poolside-catalog/internal/view"
)

func main() {
	// 1) DB init
	sqlDB, err := db.Init()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer sqlDB.Close()

	// 2) Feature flags init (non-fatal)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := featureflags.Init(ctx, ""); err != nil {
		log.Printf("feature flags init warning: %v", err)
	} else {
		log.Printf("feature flags ready: offline=%v, logLevel=%s",
			featureflags.Values().Offline.IsEnabled(nil),
			featureflags.Values().LogLevel.GetValue(nil))
	}
	defer featureflags.Shutdown()

	// 2a) Initialize levelled logger from flag & watch for flips
	logger.Init(featureflags.Values().LogLevel.GetValue(nil))
	logger.Infof("log level set to %s", logger.GetLevel())

	go func() {
		prev := featureflags.Values().LogLevel.GetValue(nil)
		for {
			time.Sleep(5 * time.Second)
			cur := featureflags.Values().LogLevel.GetValue(nil)
			if cur != prev {
				logger.SetLevel(cur)
				logger.Infof("log level changed to %s", logger.GetLevel())
				prev = cur
			}
		}
	}()

	// 3) Authentication gate with session-change bus
	bus := EventBus.New()
	gate, err := auth.NewGate(bus)
	if err != nil {
		log.Fatalf("auth gate init failed: %v", err)
	}

	// 4) Router
	r := mux.NewRouter()

	// 4a) Offline kill-switch middleware (placed immediately after router creation)
	offlineGate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// always allow health checks
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}
			// block all other requests when Offline flag is ON
			if featureflags.Values().Offline.IsEnabled(nil) {
				http.Error(w, "service temporarily offline", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	r.Use(offlineGate)

	// 4b) Request logger (skip noisy health endpoints)
	r.Use(mw.LogRequests(mw.WithSkips("/health", "/ready")))

	// 5) Health endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := sqlDB.Ping(); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	// 6) Inspect current flag values
	r.HandleFunc("/_flags", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"offline":  featureflags.Values().Offline.IsEnabled(nil),
			"logLevel": featureflags.Values().LogLevel.GetValue(nil),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	// 7) Public storefront endpoints (no authentication required)
	store := catalog.NewStore(sqlDB)
	catalogHandler := catalog.NewHandler(store)
	viewHandler := view.NewHandler(store)

	r.HandleFunc("/api/services", catalogHandler.ListServices).Methods(http.MethodGet)
	r.HandleFunc("/api/services/{id}", catalogHandler.GetService).Methods(http.MethodGet)
	r.HandleFunc("/api/storefront", viewHandler.Storefront).Methods(http.MethodGet)

	// 8) Session endpoints
	r.HandleFunc("/api/auth/login", gate.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", gate.RequireAdmin(gate.HandleLogout)).Methods(http.MethodPost)

	// 9) Admin editor endpoints (require JWT with admin role)
	editor := admin.NewEditor(store, bus)
	adminHandler := admin.NewHandler(editor)

	r.HandleFunc("/api/admin/services", gate.RequireAdmin(adminHandler.ListServices)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/services/new", gate.RequireAdmin(adminHandler.StartCreate)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/services/{id}/edit", gate.RequireAdmin(adminHandler.StartEdit)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/services/{id}/move", gate.RequireAdmin(adminHandler.MoveService)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/services/{id}", gate.RequireAdmin(adminHandler.DeleteService)).Methods(http.MethodDelete)

	r.HandleFunc("/api/admin/state", gate.RequireAdmin(adminHandler.GetState)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/draft", gate.RequireAdmin(adminHandler.PatchDraft)).Methods(http.MethodPatch)
	r.HandleFunc("/api/admin/draft/save", gate.RequireAdmin(adminHandler.SaveDraft)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/draft/cancel", gate.RequireAdmin(adminHandler.CancelDraft)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/draft/size-options", gate.RequireAdmin(adminHandler.AddSizeOption)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/draft/size-options/{index}", gate.RequireAdmin(adminHandler.UpdateSizeOption)).Methods(http.MethodPut)
	r.HandleFunc("/api/admin/draft/size-options/{index}", gate.RequireAdmin(adminHandler.RemoveSizeOption)).Methods(http.MethodDelete)
	r.HandleFunc("/api/admin/draft/features", gate.RequireAdmin(adminHandler.AddFeature)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/draft/features/{index}", gate.RequireAdmin(adminHandler.SetFeature)).Methods(http.MethodPut)
	r.HandleFunc("/api/admin/draft/features/{index}", gate.RequireAdmin(adminHandler.RemoveFeature)).Methods(http.MethodDelete)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	s := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("poolside-catalog listening on %s", s.Addr)
	log.Fatal(s.ListenAndServe())
}
