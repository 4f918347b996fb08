package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"p9e.in/transportpro/config"
	"p9e.in/transportpro/models"
	"p9e.in/transportpro/pkg/storage"
)

func createTestEntry(t *testing.T, admin models.User) models.Entry {
	t.Helper()
	w := serve(t, authedRequest(t, "POST", "/api/v1/entries", entryBody(t, nil), admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("create entry: status = %d, body %s", w.Code, w.Body.String())
	}
	var e models.Entry
	json.Unmarshal(w.Body.Bytes(), &e)
	return e
}

func useLocalDocStore(t *testing.T) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	SetDocumentStore(store)
}

func pdfUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 test"))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCOLifecycle(t *testing.T) {
	setupTestDB(t)
	useLocalDocStore(t)
	branch := createBranch(t, "Mumbai", "Vendor A")
	admin := createUser(t, "amit", models.RoleAdmin, &branch.ID)
	coOffice := createUser(t, "cooffice", models.RoleSubSuperAdmin, nil)
	entry := createTestEntry(t, admin)

	// pending entries are invisible to the CO office
	w := serve(t, authedRequest(t, "GET", "/api/v1/co/pending", nil, coOffice))
	var queue struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &queue)
	if queue.Total != 0 {
		t.Errorf("unapplied entry visible in CO queue")
	}

	// apply
	w = serve(t, authedRequest(t, "POST", "/api/v1/entries/"+entry.ID.String()+"/co/apply",
		strings.NewReader(`{"vendor": "Vendor A"}`), admin))
	if w.Code != http.StatusOK {
		t.Fatalf("apply: status = %d, body %s", w.Code, w.Body.String())
	}
	var applied models.Entry
	json.Unmarshal(w.Body.Bytes(), &applied)
	if applied.COStatus() != models.COStatusApplied || applied.COVendor != "Vendor A" || applied.COAppliedAt == nil {
		t.Errorf("apply did not transition: %+v", applied)
	}

	// now the CO office sees it
	w = serve(t, authedRequest(t, "GET", "/api/v1/co/pending", nil, coOffice))
	json.Unmarshal(w.Body.Bytes(), &queue)
	if queue.Total != 1 {
		t.Errorf("applied entry missing from pending queue")
	}

	// upload completes the lifecycle
	body, contentType := pdfUpload(t, "clearance.pdf")
	r := authedRequest(t, "POST", "/api/v1/entries/"+entry.ID.String()+"/co/upload", body, coOffice)
	r.Header.Set("Content-Type", contentType)
	w = serve(t, r)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: status = %d, body %s", w.Code, w.Body.String())
	}
	var done models.Entry
	json.Unmarshal(w.Body.Bytes(), &done)
	if done.COStatus() != models.COStatusUploaded || done.COPdfURL == "" || done.COPdfUploadedAt == nil {
		t.Errorf("upload did not complete: %+v", done)
	}

	// queues swap
	w = serve(t, authedRequest(t, "GET", "/api/v1/co/pending", nil, coOffice))
	json.Unmarshal(w.Body.Bytes(), &queue)
	if queue.Total != 0 {
		t.Errorf("completed entry still pending")
	}
	w = serve(t, authedRequest(t, "GET", "/api/v1/co/completed", nil, coOffice))
	json.Unmarshal(w.Body.Bytes(), &queue)
	if queue.Total != 1 {
		t.Errorf("completed entry missing from completed queue")
	}
}

func TestApplyCOConflictsAndValidation(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "Mumbai", "Vendor A")
	admin := createUser(t, "amit", models.RoleAdmin, &branch.ID)
	entry := createTestEntry(t, admin)

	apply := func(body string) int {
		t.Helper()
		w := serve(t, authedRequest(t, "POST",
			"/api/v1/entries/"+entry.ID.String()+"/co/apply", strings.NewReader(body), admin))
		return w.Code
	}

	// a vendor of another branch is rejected
	if code := apply(`{"vendor": "Vendor Z"}`); code != http.StatusUnprocessableEntity {
		t.Errorf("unknown vendor: status = %d, want 422", code)
	}
	if code := apply(`{"vendor": ""}`); code != http.StatusUnprocessableEntity {
		t.Errorf("empty vendor: status = %d, want 422", code)
	}

	if code := apply(`{"vendor": "Vendor A"}`); code != http.StatusOK {
		t.Fatalf("apply: status = %d", code)
	}
	// applying is one-way
	if code := apply(`{"vendor": "Vendor A"}`); code != http.StatusConflict {
		t.Errorf("re-apply: status = %d, want 409", code)
	}
}

func TestApplyCOUnreachableForCOOffice(t *testing.T) {
	setupTestDB(t)
	branch := createBranch(t, "Mumbai", "Vendor A")
	admin := createUser(t, "amit", models.RoleAdmin, &branch.ID)
	coOffice := createUser(t, "cooffice", models.RoleSubSuperAdmin, nil)
	entry := createTestEntry(t, admin)

	// the CO office only sees applied entries, so a pending entry
	// cannot be applied from that role even without the route guard
	w := serve(t, authedRequest(t, "POST",
		"/api/v1/entries/"+entry.ID.String()+"/co/apply",
		strings.NewReader(`{"vendor": "Vendor A"}`), coOffice))
	if w.Code != http.StatusNotFound {
		t.Errorf("co office applying on pending entry: status = %d, want 404", w.Code)
	}

	var stored models.Entry
	config.DB.First(&stored, "id = ?", entry.ID)
	if stored.COApplied {
		t.Error("entry transitioned without an authorized apply")
	}
}

func TestUploadCOPdfGuards(t *testing.T) {
	setupTestDB(t)
	useLocalDocStore(t)
	branch := createBranch(t, "Mumbai", "Vendor A")
	admin := createUser(t, "amit", models.RoleAdmin, &branch.ID)
	ultra := createUser(t, "boss", models.RoleUltraAdmin, nil)
	entry := createTestEntry(t, admin)

	upload := func(u models.User, filename string) int {
		t.Helper()
		body, contentType := pdfUpload(t, filename)
		r := authedRequest(t, "POST", "/api/v1/entries/"+entry.ID.String()+"/co/upload", body, u)
		r.Header.Set("Content-Type", contentType)
		return serve(t, r).Code
	}

	// upload before apply conflicts
	if code := upload(ultra, "doc.pdf"); code != http.StatusConflict {
		t.Errorf("upload before apply: status = %d, want 409", code)
	}

	serve(t, authedRequest(t, "POST", "/api/v1/entries/"+entry.ID.String()+"/co/apply",
		strings.NewReader(`{"vendor": "Vendor A"}`), admin))

	// only pdf files are accepted
	if code := upload(ultra, "doc.png"); code != http.StatusUnprocessableEntity {
		t.Errorf("non-pdf upload: status = %d, want 422", code)
	}

	if code := upload(ultra, "doc.pdf"); code != http.StatusOK {
		t.Fatalf("upload: status = %d", code)
	}
	// uploading twice conflicts
	if code := upload(ultra, "doc.pdf"); code != http.StatusConflict {
		t.Errorf("second upload: status = %d, want 409", code)
	}
}
