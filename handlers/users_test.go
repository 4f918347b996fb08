package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"p9e.in/transportpro/models"
)

func TestCreateUser(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "Mumbai")
	ultra := createUser(t, "boss", models.RoleUltraAdmin, nil)

	post := func(body string) (*models.User, int) {
		t.Helper()
		w := serve(t, authedRequest(t, "POST", "/api/v1/admin/users", strings.NewReader(body), ultra))
		var u models.User
		json.Unmarshal(w.Body.Bytes(), &u)
		return &u, w.Code
	}

	t.Run("admin bound to branch", func(t *testing.T) {
		u, code := post(fmt.Sprintf(
			`{"username": "amit", "password": "pw123456", "role": "admin", "branchId": "%s"}`, branch.ID))
		if code != http.StatusCreated {
			t.Fatalf("status = %d", code)
		}
		if u.BranchID == nil || *u.BranchID != branch.ID {
			t.Errorf("branch binding missing: %+v", u)
		}
	})

	t.Run("admin without branch rejected", func(t *testing.T) {
		if _, code := post(`{"username": "stray", "password": "pw123456", "role": "admin"}`); code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", code)
		}
	})

	t.Run("admin with unknown branch rejected", func(t *testing.T) {
		_, code := post(`{"username": "ghost", "password": "pw123456", "role": "admin", "branchId": "11111111-2222-3333-4444-555555555555"}`)
		if code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", code)
		}
	})

	t.Run("username unique case-insensitively", func(t *testing.T) {
		_, code := post(fmt.Sprintf(
			`{"username": "AMIT", "password": "pw123456", "role": "admin", "branchId": "%s"}`, branch.ID))
		if code != http.StatusConflict {
			t.Errorf("status = %d, want 409", code)
		}
	})

	t.Run("super admin with validated branches", func(t *testing.T) {
		u, code := post(fmt.Sprintf(
			`{"username": "superv", "password": "pw123456", "role": "super-admin", "assignedBranchIds": ["%s"]}`, branch.ID))
		if code != http.StatusCreated {
			t.Fatalf("status = %d", code)
		}
		if len(u.AssignedBranchIDs) != 1 {
			t.Errorf("assigned branches not stored: %+v", u)
		}
	})

	t.Run("only one sub super admin", func(t *testing.T) {
		if _, code := post(`{"username": "cooffice", "password": "pw123456", "role": "sub-super-admin"}`); code != http.StatusCreated {
			t.Fatalf("first: status = %d", code)
		}
		if _, code := post(`{"username": "cooffice2", "password": "pw123456", "role": "sub-super-admin"}`); code != http.StatusConflict {
			t.Errorf("second: status = %d, want 409", code)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		if _, code := post(`{"username": "x", "password": "pw123456", "role": "viewer"}`); code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", code)
		}
	})
}

func TestListUsersExcludesUltraAdmin(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "Mumbai")
	ultra := createUser(t, "boss", models.RoleUltraAdmin, nil)
	createUser(t, "amit", models.RoleAdmin, &branch.ID)

	w := serve(t, authedRequest(t, "GET", "/api/v1/admin/users", nil, ultra))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var users []models.User
	json.Unmarshal(w.Body.Bytes(), &users)
	if len(users) != 1 || users[0].Username != "amit" {
		t.Errorf("unexpected listing: %+v", users)
	}
}

func TestDeleteUser(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "Mumbai")
	ultra := createUser(t, "boss", models.RoleUltraAdmin, nil)
	amit := createUser(t, "amit", models.RoleAdmin, &branch.ID)

	w := serve(t, authedRequest(t, "DELETE", "/api/v1/admin/users/"+amit.ID.String(), nil, ultra))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// the ultra admin account is not deletable
	w = serve(t, authedRequest(t, "DELETE", "/api/v1/admin/users/"+ultra.ID.String(), nil, ultra))
	if w.Code != http.StatusForbidden {
		t.Errorf("delete ultra: status = %d, want 403", w.Code)
	}
}

func TestUpdateUserBranches(t *testing.T) {
	setupTestDB(t)
	mumbai := createBranch(t, "Mumbai")
	delhi := createBranch(t, "Delhi")
	ultra := createUser(t, "boss", models.RoleUltraAdmin, nil)
	superv := createUser(t, "superv", models.RoleSuperAdmin, nil, mumbai.ID.String())
	amit := createUser(t, "amit", models.RoleAdmin, &mumbai.ID)

	put := func(userID, body string) int {
		t.Helper()
		w := serve(t, authedRequest(t, "PUT", "/api/v1/admin/users/"+userID+"/branches",
			strings.NewReader(body), ultra))
		return w.Code
	}

	body := fmt.Sprintf(`{"assignedBranchIds": ["%s", "%s"]}`, mumbai.ID, delhi.ID)
	if code := put(superv.ID.String(), body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	// only super admins carry branch assignments
	if code := put(amit.ID.String(), body); code != http.StatusUnprocessableEntity {
		t.Errorf("assign to admin: status = %d, want 422", code)
	}

	// every id must be a real branch
	bad := `{"assignedBranchIds": ["11111111-2222-3333-4444-555555555555"]}`
	if code := put(superv.ID.String(), bad); code != http.StatusNotFound {
		t.Errorf("unknown branch: status = %d, want 404", code)
	}
}
