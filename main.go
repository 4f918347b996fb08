package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/handlers"
	"p9e.in/transportpro/pkg/logger"
	"p9e.in/transportpro/pkg/storage"
	"p9e.in/transportpro/prometheus"
	"p9e.in/transportpro/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	logger.Init(config.Getenv("APP_ENV", "development"), config.Getenv("LOG_LEVEL", "info"))
	defer zap.L().Sync()

	config.Connect()
	prometheus.InitMetrics("transportpro")

	store, err := storage.FromEnv()
	if err != nil {
		zap.L().Fatal("document store init failed", zap.Error(err))
	}
	handlers.SetDocumentStore(store)

	port := config.Getenv("PORT", "8080")

	handler := routes.RegisterRoutes()
	handlerWithCORS := enableCORS(handler)
	zap.L().Info("server starting", zap.String("port", port), zap.String("version", Version))
	if err := http.ListenAndServe(":"+port, handlerWithCORS); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
