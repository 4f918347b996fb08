package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"p9e.in/transportpro/config"
	"p9e.in/transportpro/middleware"
	"p9e.in/transportpro/models"
)

// setupTestDB points the shared connection at a per-test in-memory
// database so handlers run unchanged.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Branch{}, &models.Vendor{},
		&models.Entry{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	return db
}

func createBranch(t *testing.T, name string, vendors ...string) models.Branch {
	t.Helper()
	branch := models.Branch{Name: name}
	if err := config.DB.Create(&branch).Error; err != nil {
		t.Fatalf("create branch: %v", err)
	}
	for _, v := range vendors {
		vendor := models.Vendor{Name: v, BranchID: branch.ID}
		if err := config.DB.Create(&vendor).Error; err != nil {
			t.Fatalf("create vendor: %v", err)
		}
		branch.Vendors = append(branch.Vendors, vendor)
	}
	return branch
}

func createUser(t *testing.T, username, role string, branchID *uuid.UUID, assigned ...string) models.User {
	t.Helper()
	user := models.User{Username: username, Role: role, BranchID: branchID}
	if len(assigned) > 0 {
		user.AssignedBranchIDs = models.StringArray(assigned)
	}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// authedRequest builds a request carrying a valid session token for
// the given user.
func authedRequest(t *testing.T, method, target string, body io.Reader, user models.User) *http.Request {
	t.Helper()
	token, err := middleware.GenerateToken(user.ID.String(), user.Username, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// apiRouter mirrors the production route wiring for the handlers
// under test, token check included.
func apiRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", Profile).Methods("GET")
	api.HandleFunc("/branches", ListBranches).Methods("GET")
	api.HandleFunc("/branches/{id}/vendors", GetBranchVendors).Methods("GET")

	api.HandleFunc("/entries", CreateEntry).Methods("POST")
	api.HandleFunc("/entries", ListEntries).Methods("GET")
	api.HandleFunc("/entries/{id}", GetEntry).Methods("GET")
	api.HandleFunc("/entries/{id}", UpdateEntry).Methods("PUT")
	api.HandleFunc("/entries/{id}", DeleteEntry).Methods("DELETE")
	api.HandleFunc("/entries/{id}/slip", EntrySlip).Methods("GET")

	api.HandleFunc("/entries/{id}/co/apply", ApplyCO).Methods("POST")
	api.HandleFunc("/entries/{id}/co/upload", UploadCOPdf).Methods("POST")
	api.HandleFunc("/co/pending", PendingCO).Methods("GET")
	api.HandleFunc("/co/completed", CompletedCO).Methods("GET")

	api.HandleFunc("/analytics", Analytics).Methods("GET")
	api.HandleFunc("/reports/export", ExportReport).Methods("GET")

	api.HandleFunc("/admin/branches", CreateBranch).Methods("POST")
	api.HandleFunc("/admin/branches/{id}", DeleteBranch).Methods("DELETE")
	api.HandleFunc("/admin/branches/{id}/vendors", AddVendor).Methods("POST")
	api.HandleFunc("/admin/branches/{id}/vendors/{vendorId}", DeleteVendor).Methods("DELETE")
	api.HandleFunc("/admin/users", CreateUser).Methods("POST")
	api.HandleFunc("/admin/users", ListUsers).Methods("GET")
	api.HandleFunc("/admin/users/{id}", DeleteUser).Methods("DELETE")
	api.HandleFunc("/admin/users/{id}/branches", UpdateUserBranches).Methods("PUT")
	api.HandleFunc("/admin/audit-logs", ListAuditLogs).Methods("GET")

	return r
}

func serve(t *testing.T, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	apiRouter().ServeHTTP(w, r)
	return w
}
