package article

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/medialist/rest/internal/auth"
	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
	"github.com/medialist/rest/internal/sentiment"
	"github.com/medialist/rest/internal/slug"
	"github.com/medialist/rest/internal/sqldb"
)

const (
	recentDefault = 12
	recentMax     = 20
)

type Resource struct {
	DB       *sqldb.DB
	Analyzer sentiment.Analyzer
	Log      *zap.SugaredLogger
}

func (rs Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", rs.Recent)
	r.Get("/tagged", rs.Tagged)

	r.Group(func(r chi.Router) {
		r.Use(auth.Required(rs.DB))
		r.Use(auth.Verified)
		r.Post("/create", rs.Create)
	})

	r.With(rs.Context).Get("/detail/{articleSlug}", rs.Get)

	return r
}

// Recent returns the n newest published articles, capped at 20.
func (rs Resource) Recent(w http.ResponseWriter, r *http.Request) {
	n := recentDefault
	if raw := r.URL.Query().Get("n"); raw != "" {
		var err error
		n, err = strconv.Atoi(raw)
		if err != nil || n < 0 {
			rs.render(w, r, errresponse.NotAcceptable("Invalid value for n provided."))

			return
		}
		if n > recentMax {
			rs.render(w, r, errresponse.NotAcceptable("Can't retrieve more than 20 articles."))

			return
		}
	}

	articles, err := rs.DB.Articles.Recent(n)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if err := render.RenderList(w, r, NewListResponse(articles)); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// Tagged returns published articles carrying every tag in the
// comma-separated tags parameter. No parameter means an empty list,
// not an error.
func (rs Resource) Tagged(w http.ResponseWriter, r *http.Request) {
	tags := splitTags(r.URL.Query().Get("tags"))
	if len(tags) == 0 {
		if err := render.RenderList(w, r, NewListResponse(nil)); err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	articles, err := rs.DB.Articles.Tagged(tags)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if err := render.RenderList(w, r, NewListResponse(articles)); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

type createRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	TopicID      int64  `json:"topic_id"`
	Tags         string `json:"tags"`
	Draft        bool   `json:"draft"`
	Thumbnail    string `json:"thumbnail"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (data *createRequest) Bind(r *http.Request) error {
	return nil
}

// Create validates the payload, resolves the topic, then runs the
// lifecycle pass (unique slug from the title, objectivity from the
// content) before persisting. Only verified authors get this far.
func (rs Resource) Create(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	data := &createRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Title == "" {
		rs.render(w, r, errresponse.MissingField("title"))

		return
	}

	taken, err := rs.DB.Articles.TitleTaken(data.Title)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}
	if taken {
		rs.render(w, r, errresponse.Conflict("Article '"+data.Title+"' already exists."))

		return
	}

	if data.Content == "" {
		rs.render(w, r, errresponse.MissingField("content"))

		return
	}
	if data.TopicID == 0 {
		rs.render(w, r, errresponse.MissingField("topic_id"))

		return
	}

	topic, err := rs.DB.Topics.Get(data.TopicID)
	if err != nil {
		if err == sqldb.ErrNotFound {
			rs.render(w, r, errresponse.NotFound("Topic does not exist."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	tags := splitTags(data.Tags)
	if len(tags) == 0 {
		rs.render(w, r, errresponse.MissingField("tags"))

		return
	}

	thumbnail := data.ThumbnailURL
	if thumbnail == "" {
		thumbnail = data.Thumbnail
	}
	if thumbnail == "" {
		rs.render(w, r, errresponse.Invalid("Either provide a url for a thumbnail or an image upload."))

		return
	}

	s, err := slug.Generate(data.Title, rs.DB.Articles.LastIDBySlug)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	a := &model.Article{
		Title:        data.Title,
		Slug:         s,
		Content:      data.Content,
		Draft:        data.Draft,
		Objectivity:  sentiment.Objectivity(rs.Analyzer, data.Content),
		ThumbnailURL: thumbnail,
		TopicID:      &topic.ID,
		AuthorID:     &author.ID,
		Topic:        &topic.Name,
		Author:       &author.Username,
		Tags:         tags,
	}

	if err := rs.DB.Articles.Insert(a); err != nil {
		if err == sqldb.ErrConflict {
			rs.render(w, r, errresponse.Conflict("Article '"+data.Title+"' already exists."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	render.Status(r, http.StatusCreated)
	rs.render(w, r, NewResponse(a))
}

// Get returns the article loaded by the Context middleware.
func (rs Resource) Get(w http.ResponseWriter, r *http.Request) {
	rs.render(w, r, NewResponse(fromContext(r.Context())))
}

func (rs Resource) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// splitTags normalizes a comma-separated tag string: spaces and quotes
// are stripped before splitting, empty entries dropped.
func splitTags(s string) []string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\'', '"', '\t':
			return -1
		}
		return r
	}, s)

	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
