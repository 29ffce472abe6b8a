package bookmark

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/medialist/rest/internal/article"
	"github.com/medialist/rest/internal/auth"
	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/sqldb"
)

type Resource struct {
	DB  *sqldb.DB
	Log *zap.SugaredLogger
}

func (rs Resource) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Required(rs.DB))

	r.Post("/", rs.Toggle)
	r.Get("/list", rs.List)
	r.Get("/pk_list", rs.IDs)

	return r
}

type toggleRequest struct {
	ArticleID int64 `json:"article_id"`
}

func (data *toggleRequest) Bind(r *http.Request) error {
	return nil
}

// actionResponse is the toggle acknowledgement:
// {"detail": {"action": "created"}} with 201, or "deleted" with 200.
type actionResponse struct {
	Detail struct {
		Action string `json:"action"`
	} `json:"detail"`

	created bool
}

func newActionResponse(created bool) *actionResponse {
	ar := &actionResponse{created: created}
	if created {
		ar.Detail.Action = "created"
	} else {
		ar.Detail.Action = "deleted"
	}
	return ar
}

func (ar *actionResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if ar.created {
		render.Status(r, http.StatusCreated)
	}

	return nil
}

// Toggle flips the bookmark for (requester, article). Draft and
// missing articles both report not found.
func (rs Resource) Toggle(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	data := &toggleRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.ArticleID == 0 {
		rs.render(w, r, errresponse.MissingField("article_id"))

		return
	}

	a, err := rs.DB.Articles.Get(data.ArticleID)
	if err != nil {
		if err == sqldb.ErrNotFound {
			rs.render(w, r, errresponse.NotFound("Article does not exist."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	created, err := rs.DB.Bookmarks.Toggle(author.ID, a.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	rs.render(w, r, newActionResponse(created))
}

// List returns the requester's bookmarked articles, most recently
// bookmarked first.
func (rs Resource) List(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	articles, err := rs.DB.Bookmarks.Articles(author.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if err := render.RenderList(w, r, article.NewListResponse(articles)); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// IDs returns the bare article ids the requester has bookmarked.
func (rs Resource) IDs(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	ids, err := rs.DB.Bookmarks.ArticleIDs(author.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	render.JSON(w, r, ids)
}

func (rs Resource) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		rs.Log.Errorw(err.Error())
	}
}
