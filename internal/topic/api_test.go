package topic

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/medialist/rest/internal/auth"
	"github.com/medialist/rest/internal/model"
	"github.com/medialist/rest/internal/sqldb"
)

func testServer(t *testing.T) (*sqldb.DB, http.Handler) {
	t.Helper()
	raw, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatal(err)
	}
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	db, err := sqldb.New(raw)
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Mount("/topics", Resource{DB: db, Log: zap.NewNop().Sugar()}.Routes())
	return db, r
}

// newAuthor seeds an author directly in storage and returns them with
// a freshly minted token.
func newAuthor(t *testing.T, db *sqldb.DB, username string) (*model.Author, string) {
	t.Helper()
	a := &model.Author{
		Username:  username,
		Email:     username + "@example.com",
		SecretKey: auth.NewSecretKey(),
	}
	if err := db.Authors.Insert(a, "x"); err != nil {
		t.Fatal(err)
	}
	token, err := db.Tokens.Key(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	return a, token
}

func doJSON(t *testing.T, h http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}
	return body.Detail
}

func topicPayload(name string) map[string]string {
	return map[string]string{
		"name":          name,
		"description":   "all about " + name,
		"thumbnail_url": "https://img.example.com/t.png",
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	_, h := testServer(t)

	w := doJSON(t, h, "POST", "/topics/create", "", topicPayload("Space"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
	if got := detail(t, w); got != "Authentication credentials were not provided." {
		t.Errorf("detail %q", got)
	}

	w = doJSON(t, h, "POST", "/topics/create", "bogus", topicPayload("Space"))
	if w.Code != http.StatusUnauthorized || detail(t, w) != "Invalid token." {
		t.Errorf("bad token: status %d detail %q", w.Code, detail(t, w))
	}
}

func TestCreate(t *testing.T) {
	db, h := testServer(t)
	a, token := newAuthor(t, db, "ada")

	w := doJSON(t, h, "POST", "/topics/create", token, topicPayload("Space"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var body struct {
		PK        int64  `json:"pk"`
		Name      string `json:"name"`
		Slug      string `json:"slug"`
		Thumbnail string `json:"thumbnail"`
		Author    string `json:"author"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Name != "Space" || body.Slug != "space" || body.Author != a.Username {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Thumbnail != "https://img.example.com/t.png" {
		t.Errorf("thumbnail %q", body.Thumbnail)
	}
}

func TestCreateValidation(t *testing.T) {
	db, h := testServer(t)
	_, token := newAuthor(t, db, "ada")

	w := doJSON(t, h, "POST", "/topics/create", token, map[string]string{"description": "d"})
	if w.Code != http.StatusUnprocessableEntity || detail(t, w) != "Field 'name' not provided." {
		t.Errorf("missing name: status %d detail %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, "POST", "/topics/create", token, map[string]string{"name": "Space"})
	if w.Code != http.StatusUnprocessableEntity || detail(t, w) != "Field 'description' not provided." {
		t.Errorf("missing description: status %d detail %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, "POST", "/topics/create", token, map[string]string{"name": "Space", "description": "d"})
	if w.Code != http.StatusUnprocessableEntity || detail(t, w) != "Either provide a url for a thumbnail or an image upload." {
		t.Errorf("missing thumbnail: status %d detail %q", w.Code, detail(t, w))
	}
}

func TestCreateDuplicateName(t *testing.T) {
	db, h := testServer(t)
	_, token := newAuthor(t, db, "ada")

	if w := doJSON(t, h, "POST", "/topics/create", token, topicPayload("Space")); w.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", w.Code)
	}

	w := doJSON(t, h, "POST", "/topics/create", token, topicPayload("Space"))
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
	if got := detail(t, w); got != "Topic 'Space' already exists." {
		t.Errorf("detail %q", got)
	}

	// Names collate case-insensitively.
	w = doJSON(t, h, "POST", "/topics/create", token, topicPayload("sPaCe"))
	if w.Code != http.StatusConflict {
		t.Errorf("case variant: status %d, want 409", w.Code)
	}
}

func TestCreateSlugSuffix(t *testing.T) {
	db, h := testServer(t)
	_, token := newAuthor(t, db, "ada")

	// Distinct names that reduce to the same slug.
	w := doJSON(t, h, "POST", "/topics/create", token, topicPayload("Go Lang"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var first struct {
		PK   int64  `json:"pk"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Slug != "go-lang" {
		t.Fatalf("slug %q, want go-lang", first.Slug)
	}

	w = doJSON(t, h, "POST", "/topics/create", token, topicPayload("Go_Lang"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var second struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	want := "go-lang-" + strconv.FormatInt(first.PK, 10)
	if second.Slug != want {
		t.Errorf("slug %q, want %q", second.Slug, want)
	}
}

func TestDetailAndList(t *testing.T) {
	db, h := testServer(t)
	_, token := newAuthor(t, db, "ada")
	doJSON(t, h, "POST", "/topics/create", token, topicPayload("Space"))

	w := doJSON(t, h, "GET", "/topics/detail/space", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Name != "Space" {
		t.Errorf("name %q", body.Name)
	}

	w = doJSON(t, h, "GET", "/topics/detail/nope", "", nil)
	if w.Code != http.StatusNotFound || detail(t, w) != "Topic does not exist." {
		t.Errorf("unknown slug: status %d detail %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, "GET", "/topics/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("list has %d entries, want 1", len(list))
	}
}

func TestUpdate(t *testing.T) {
	db, h := testServer(t)
	_, owner := newAuthor(t, db, "ada")
	_, other := newAuthor(t, db, "grace")

	doJSON(t, h, "POST", "/topics/create", owner, topicPayload("Space"))
	doJSON(t, h, "POST", "/topics/create", owner, topicPayload("Math"))

	w := doJSON(t, h, "PATCH", "/topics/detail/space", other, map[string]string{"description": "mine now"})
	if w.Code != http.StatusForbidden || detail(t, w) != "Updation not authorized." {
		t.Errorf("non-owner: status %d detail %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, "PATCH", "/topics/detail/space", owner, map[string]string{"name": "Cosmos", "description": "wider"})
	if w.Code != http.StatusOK {
		t.Fatalf("owner: status %d body %s", w.Code, w.Body.String())
	}
	var body struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Name != "Cosmos" || body.Description != "wider" {
		t.Errorf("body %+v", body)
	}
	if body.Slug != "space" {
		t.Errorf("slug changed to %q on rename", body.Slug)
	}

	w = doJSON(t, h, "PATCH", "/topics/detail/space", owner, map[string]string{"name": "Math"})
	if w.Code != http.StatusConflict || detail(t, w) != "Topic with name 'Math' already exists." {
		t.Errorf("taken name: status %d detail %q", w.Code, detail(t, w))
	}
}

func TestDelete(t *testing.T) {
	db, h := testServer(t)
	_, owner := newAuthor(t, db, "ada")
	_, other := newAuthor(t, db, "grace")

	doJSON(t, h, "POST", "/topics/create", owner, topicPayload("Space"))

	w := doJSON(t, h, "DELETE", "/topics/detail/space", other, nil)
	if w.Code != http.StatusForbidden || detail(t, w) != "Deletion is not authorized." {
		t.Errorf("non-owner: status %d detail %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, "DELETE", "/topics/detail/space", owner, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner: status %d, want 204", w.Code)
	}

	if _, err := db.Topics.GetBySlug("space"); err != sqldb.ErrNotFound {
		t.Errorf("topic still present: err = %v", err)
	}
}
