package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/handlers"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.Getenv("UPLOAD_DIR", "./uploads")))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.RequestLogger)

	api.HandleFunc("/profile", handlers.Profile).Methods("GET")

	registerBranchRoutes(api)
	registerEntryRoutes(api)
	registerCORoutes(api)
	registerReportRoutes(api)

	// =====================================================
	// Admin Routes (ultra-admin only)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	registerAdminRoutes(admin)

	return r
}

func registerBranchRoutes(api *mux.Router) {
	api.HandleFunc("/branches", handlers.ListBranches).Methods("GET")
	api.HandleFunc("/branches/{id}/vendors", handlers.GetBranchVendors).Methods("GET")
}

func registerEntryRoutes(api *mux.Router) {
	adminOnly := []string{models.RoleAdmin}

	api.Handle("/entries",
		middleware.RequireRole(adminOnly, http.HandlerFunc(handlers.CreateEntry))).Methods("POST")
	api.HandleFunc("/entries", handlers.ListEntries).Methods("GET")
	api.HandleFunc("/entries/{id}", handlers.GetEntry).Methods("GET")
	api.Handle("/entries/{id}",
		middleware.RequireRole(adminOnly, http.HandlerFunc(handlers.UpdateEntry))).Methods("PUT")
	api.Handle("/entries/{id}",
		middleware.RequireRole([]string{models.RoleAdmin, models.RoleUltraAdmin},
			http.HandlerFunc(handlers.DeleteEntry))).Methods("DELETE")
	api.HandleFunc("/entries/{id}/slip", handlers.EntrySlip).Methods("GET")
}

func registerCORoutes(api *mux.Router) {
	coOffice := []string{models.RoleSubSuperAdmin}

	api.Handle("/entries/{id}/co/apply",
		middleware.RequireRole([]string{models.RoleAdmin},
			http.HandlerFunc(handlers.ApplyCO))).Methods("POST")
	api.Handle("/entries/{id}/co/upload",
		middleware.RequireRole(coOffice, http.HandlerFunc(handlers.UploadCOPdf))).Methods("POST")
	api.Handle("/co/pending",
		middleware.RequireRole(coOffice, http.HandlerFunc(handlers.PendingCO))).Methods("GET")
	api.Handle("/co/completed",
		middleware.RequireRole(coOffice, http.HandlerFunc(handlers.CompletedCO))).Methods("GET")
}

func registerReportRoutes(api *mux.Router) {
	api.HandleFunc("/analytics", handlers.Analytics).Methods("GET")
	api.HandleFunc("/reports/export", handlers.ExportReport).Methods("GET")
}

// registerAdminRoutes wires the management surface. Every route here
// is ultra-admin only.
func registerAdminRoutes(admin *mux.Router) {
	ultra := []string{models.RoleUltraAdmin}
	guard := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(ultra, h)
	}

	admin.Handle("/branches", guard(handlers.CreateBranch)).Methods("POST")
	admin.Handle("/branches/{id}", guard(handlers.DeleteBranch)).Methods("DELETE")
	admin.Handle("/branches/{id}/vendors", guard(handlers.AddVendor)).Methods("POST")
	admin.Handle("/branches/{id}/vendors/{vendorId}", guard(handlers.DeleteVendor)).Methods("DELETE")

	admin.Handle("/users", guard(handlers.CreateUser)).Methods("POST")
	admin.Handle("/users", guard(handlers.ListUsers)).Methods("GET")
	admin.Handle("/users/{id}", guard(handlers.DeleteUser)).Methods("DELETE")
	admin.Handle("/users/{id}/branches", guard(handlers.UpdateUserBranches)).Methods("PUT")

	admin.Handle("/audit-logs", guard(handlers.ListAuditLogs)).Methods("GET")
}
