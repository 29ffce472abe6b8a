package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medialist/rest/internal/model"
)

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

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}

func TestSecretKeys(t *testing.T) {
	key := NewSecretKey()
	if !ValidSecretKey(key) {
		t.Errorf("minted key %q does not validate", key)
	}
	if ValidSecretKey("not-a-key") {
		t.Error("malformed key validated")
	}
	if key == NewSecretKey() {
		t.Error("two minted keys collided")
	}
}

func TestTokenFromHeader(t *testing.T) {
	cases := map[string]string{
		"Token abc123":  "abc123",
		"token abc123":  "abc123",
		"Bearer abc123": "",
		"Token":         "",
		"":              "",
	}
	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := TokenFromHeader(r); got != want {
			t.Errorf("TokenFromHeader(%q) = %q, want %q", header, got, want)
		}
	}
}

type staticSource map[string]*model.Author

func (s staticSource) AuthorByToken(key string) (*model.Author, error) {
	if a, ok := s[key]; ok {
		return a, nil
	}
	return nil, ErrAuth
}

func TestRequired(t *testing.T) {
	src := staticSource{"goodkey": {ID: 1, Username: "ada", Verified: true}}

	var seen *model.Author
	h := Required(src)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = From(r.Context())
	}))

	// No header at all.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status %d, want 401", w.Code)
	}
	if got := detail(t, w); got != "Authentication credentials were not provided." {
		t.Errorf("no header: detail %q", got)
	}

	// Bad token.
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Token nope")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", w.Code)
	}
	if got := detail(t, w); got != "Invalid token." {
		t.Errorf("bad token: detail %q", got)
	}

	// Valid token.
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Token goodkey")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("good token: status %d, want 200", w.Code)
	}
	if seen == nil || seen.Username != "ada" {
		t.Errorf("author not placed on context: %+v", seen)
	}
}

func TestVerified(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(With(r.Context(), &model.Author{Username: "ada"}))
	w := httptest.NewRecorder()
	Verified(next).ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("unverified: status %d, want 403", w.Code)
	}
	if got := detail(t, w); got != "Author is not verified." {
		t.Errorf("unverified: detail %q", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(With(r.Context(), &model.Author{Username: "ada", Verified: true}))
	w = httptest.NewRecorder()
	Verified(next).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("verified: status %d, want 200", w.Code)
	}
}

func TestStaff(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(With(r.Context(), &model.Author{Username: "ada", Verified: true}))
	w := httptest.NewRecorder()
	Staff(next).ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-staff: status %d, want 403", w.Code)
	}
	if got := detail(t, w); got != "You do not have permission to perform this action." {
		t.Errorf("non-staff: detail %q", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(With(r.Context(), &model.Author{Username: "ada", Staff: true}))
	w = httptest.NewRecorder()
	Staff(next).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("staff: status %d, want 200", w.Code)
	}
}
