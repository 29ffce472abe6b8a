package topic

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/medialist/rest/internal/article"
	"github.com/medialist/rest/internal/auth"
	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
	"github.com/medialist/rest/internal/slug"
	"github.com/medialist/rest/internal/sqldb"
)

type Resource struct {
	DB  *sqldb.DB
	Log *zap.SugaredLogger
}

func (rs Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", rs.List)
	r.With(auth.Required(rs.DB)).Post("/create", rs.Create)

	r.Route("/detail/{topicSlug}", func(r chi.Router) {
		r.Use(rs.Context)
		r.Get("/", rs.Get)
		r.Get("/articles", rs.Articles)

		r.Group(func(r chi.Router) {
			r.Use(auth.Required(rs.DB))
			r.Patch("/", rs.Update)
			r.Delete("/", rs.Delete)
		})
	})

	return r
}

// Response is the topic payload; the topic model renders as-is.
type Response struct {
	*model.Topic
}

func NewResponse(t *model.Topic) *Response {
	return &Response{Topic: t}
}

func (rd *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewListResponse(topics []*model.Topic) []render.Renderer {
	list := []render.Renderer{}
	for _, t := range topics {
		list = append(list, NewResponse(t))
	}

	return list
}

func (rs Resource) List(w http.ResponseWriter, r *http.Request) {
	topics, err := rs.DB.Topics.All()
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if err := render.RenderList(w, r, NewListResponse(topics)); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

func (rs Resource) Get(w http.ResponseWriter, r *http.Request) {
	rs.render(w, r, NewResponse(fromContext(r.Context())))
}

// Articles lists the topic's published articles.
func (rs Resource) Articles(w http.ResponseWriter, r *http.Request) {
	t := fromContext(r.Context())

	articles, err := rs.DB.Articles.ByTopic(t.ID)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	if err := render.RenderList(w, r, article.NewListResponse(articles)); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

type createRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (data *createRequest) Bind(r *http.Request) error {
	return nil
}

// Create validates the payload, generates the unique slug from the
// name and persists the topic owned by the requesting author.
func (rs Resource) Create(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())

	data := &createRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Name == "" {
		rs.render(w, r, errresponse.MissingField("name"))

		return
	}

	taken, err := rs.DB.Topics.NameTaken(data.Name)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}
	if taken {
		rs.render(w, r, errresponse.Conflict("Topic '"+data.Name+"' already exists."))

		return
	}

	if data.Description == "" {
		rs.render(w, r, errresponse.MissingField("description"))

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

	s, err := slug.Generate(data.Name, rs.DB.Topics.LastIDBySlug)
	if err != nil {
		rs.render(w, r, errresponse.Internal(err))

		return
	}

	t := &model.Topic{
		Name:         data.Name,
		Description:  data.Description,
		Slug:         s,
		ThumbnailURL: thumbnail,
		AuthorID:     &author.ID,
		Author:       &author.Username,
	}

	if err := rs.DB.Topics.Insert(t); err != nil {
		if err == sqldb.ErrConflict {
			rs.render(w, r, errresponse.Conflict("Topic '"+data.Name+"' already exists."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	render.Status(r, http.StatusCreated)
	rs.render(w, r, NewResponse(t))
}

type updateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func (data *updateRequest) Bind(r *http.Request) error {
	return nil
}

// Update lets the owner change name, description or thumbnail. The
// slug stays what creation made it.
func (rs Resource) Update(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())
	t := fromContext(r.Context())

	if t.AuthorID == nil || *t.AuthorID != author.ID {
		rs.render(w, r, errresponse.Forbidden("Updation not authorized."))

		return
	}

	data := &updateRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.render(w, r, errresponse.Invalid(err.Error()))

		return
	}

	if data.Name != nil && *data.Name != t.Name {
		taken, err := rs.DB.Topics.NameTaken(*data.Name)
		if err != nil {
			rs.render(w, r, errresponse.Internal(err))

			return
		}
		if taken {
			rs.render(w, r, errresponse.Conflict("Topic with name '"+*data.Name+"' already exists."))

			return
		}
		t.Name = *data.Name
	}
	if data.Description != nil {
		t.Description = *data.Description
	}
	if data.ThumbnailURL != nil {
		t.ThumbnailURL = *data.ThumbnailURL
	}

	if err := rs.DB.Topics.Update(t); err != nil {
		if err == sqldb.ErrConflict {
			rs.render(w, r, errresponse.Conflict("Topic with name '"+t.Name+"' already exists."))
		} else {
			rs.render(w, r, errresponse.Internal(err))
		}

		return
	}

	rs.render(w, r, NewResponse(t))
}

// Delete removes the topic if the requester owns it. Its articles
// survive with a null topic.
func (rs Resource) Delete(w http.ResponseWriter, r *http.Request) {
	author, _ := auth.From(r.Context())
	t := fromContext(r.Context())

	if t.AuthorID == nil || *t.AuthorID != author.ID {
		rs.render(w, r, errresponse.Forbidden("Deletion is not authorized."))

		return
	}

	if err := rs.DB.Topics.Delete(t.ID); err != nil {
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
