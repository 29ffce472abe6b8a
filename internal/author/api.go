package author

import (
	"net/http"
	"net/mail"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/medialist/rest/internal/auth"
	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
	"github.com/medialist/rest/internal/sqldb"
)

// usernameRe is the accepted username shape; 150 characters at most.
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

const usernameMax = 150

type Resource struct {
	DB  *sqldb.DB
	Log *zap.SugaredLogger
}

func (rs Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(auth.Required(rs.DB), auth.Staff).Get("/", rs.List)
	r.Post("/create", rs.Create)
	r.Post("/authenticate", rs.Authenticate)
	r.Get("/detail/{username}", rs.Detail)
	r.Get("/activate/{secretKey}", rs.Activate)

	r.Group(func(r chi.Router) {
		r.Use(auth.Required(rs.DB))
		r.Patch("/update", rs.Update)
		r.Delete("/delete", rs.Delete)
	})

	return r
}

// Response echoes an author along with their token, for registration
// and profile updates.
type Response struct {
	*model.Author

	Token string `json:"token,omitempty"`
}

func NewResponse(a *model.Author, token string) *Response {
	return &Response{Author: a, Token: token}
}

func (rd *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (rd *tokenResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name"`
}

func (data *registerRequest) Bind(r *http.Request) error {
	return nil
}

// Create registers a new author. Checks run in a fixed order so the
// first problem is the one reported: username present, email valid
// and free, username well-formed and free, then the remaining
// required fields.
func (rs Resource) Create(w http.ResponseWriter, r *http.Request) {
	data := &registerRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Username == "" {
		rs.render(w, r, errresponse.MissingField("username"))

		return
	}

	if data.Email == "" || !validEmail(data.Email) {
		rs.render(w, r, errresponse.MissingField("email"))

		return
	}
	if _, err := rs.DB.Authors.GetByEmail(data.Email); err == nil {
		rs.render(w, r, errresponse.Conflict("Author with email '"+data.Email+"' already exists."))

		return
	} else if err != sqldb.ErrNotFound {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if len(data.Username) > usernameMax || !usernameRe.MatchString(data.Username) {
		rs.render(w, r, errresponse.Invalid("Requires 150 characters or fewer. Letters, digits and @/./+/-/_ only."))

		return
	}
	if _, err := rs.DB.Authors.GetByUsername(data.Username); err == nil {
		rs.render(w, r, errresponse.Conflict("User '"+data.Username+"' already exists."))

		return
	} else if err != sqldb.ErrNotFound {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	for _, f := range []struct {
		name, value string
	}{
		{"password", data.Password},
		{"bio", data.Bio},
		{"first_name", data.FirstName},
	} {
		if f.value == "" {
			rs.render(w, r, errresponse.MissingField(f.name))

			return
		}
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	a := &model.Author{
		Username:  data.Username,
		Email:     data.Email,
		FirstName: data.FirstName,
		Bio:       data.Bio,
		SecretKey: auth.NewSecretKey(),
	}

	if err := rs.DB.Authors.Insert(a, hash); err != nil {
		if err == sqldb.ErrConflict {
			// The UNIQUE constraints caught a race the pre-checks
			// missed.
			rs.render(w, r, errresponse.Conflict("User '"+data.Username+"' already exists."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	token, err := rs.DB.Tokens.Key(a.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	rs.render(w, r, NewResponse(a, token))
}

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (data *authenticateRequest) Bind(r *http.Request) error {
	return nil
}

// Authenticate exchanges a username/password combo for the author's
// token.
func (rs Resource) Authenticate(w http.ResponseWriter, r *http.Request) {
	data := &authenticateRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Username == "" {
		rs.render(w, r, errresponse.MissingField("username"))

		return
	}
	if data.Password == "" {
		rs.render(w, r, errresponse.MissingField("password"))

		return
	}

	id, hash, err := rs.DB.Authors.Credentials(data.Username)
	if err != nil && err != sqldb.ErrNotFound {
		rs.render(w, r, errresponse.Internal(err))

		return
	}
	if err == sqldb.ErrNotFound || !auth.CheckPassword(hash, data.Password) {
		rs.render(w, r, errresponse.Unauthorized("Invalid credentials."))

		return
	}

	token, err := rs.DB.Tokens.Key(id)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	rs.render(w, r, &tokenResponse{Token: token})
}

// List is the staff-only author index.
func (rs Resource) List(w http.ResponseWriter, r *http.Request) {
	authors, err := rs.DB.Authors.All(100, 0)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	list := []render.Renderer{}
	for _, a := range authors {
		list = append(list, NewResponse(a, ""))
	}
	if err := render.RenderList(w, r, list); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// Detail is the public author profile.
func (rs Resource) Detail(w http.ResponseWriter, r *http.Request) {
	a, err := rs.DB.Authors.GetByUsername(chi.URLParam(r, "username"))
	if err != nil {
		rs.render(w, r, errresponse.ErrNotFound)

		return
	}

	rs.render(w, r, NewResponse(a, ""))
}

// Activate completes email verification: the secret key from the
// emailed link flips the author to verified, then the browser is sent
// back to the feed.
func (rs Resource) Activate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "secretKey")
	if !auth.ValidSecretKey(key) {
		rs.render(w, r, errresponse.ErrNotFound)

		return
	}

	a, err := rs.DB.Authors.GetBySecretKey(key)
	if err != nil {
		rs.render(w, r, errresponse.ErrNotFound)

		return
	}

	if err := rs.DB.Authors.Verify(a.ID); err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

type updateRequest struct {
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	FirstName *string `json:"first_name"`
}

func (data *updateRequest) Bind(r *http.Request) error {
	return nil
}

// Update changes the requester's profile fields. A username change
// goes through the same availability check as registration.
func (rs Resource) Update(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	data := &updateRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Username != nil && *data.Username != author.Username {
		if _, err := rs.DB.Authors.GetByUsername(*data.Username); err == nil {
			rs.render(w, r, errresponse.Conflict("User '"+*data.Username+"' already exists."))

			return
		} else if err != sqldb.ErrNotFound {
			rs.render(w, r, errresponse.Internal(err))

			return
		}
		author.Username = *data.Username
	}
	if data.Bio != nil {
		author.Bio = *data.Bio
	}
	if data.FirstName != nil {
		author.FirstName = *data.FirstName
	}

	if err := rs.DB.Authors.Update(author); err != nil {
		if err == sqldb.ErrConflict {
			rs.render(w, r, errresponse.Conflict("User '"+author.Username+"' already exists."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	token, err := rs.DB.Tokens.Key(author.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	rs.render(w, r, NewResponse(author, token))
}

// Delete removes the requester's account. Authored articles and
// topics stay behind with a null author; bookmarks and the token go
// with the account.
func (rs Resource) Delete(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	if err := rs.DB.Authors.Delete(author.ID); err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	render.NoContent(w, r)
}

func (rs Resource) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
