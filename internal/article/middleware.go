package article

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
)

type ctxKey int8

const articleKey ctxKey = iota

// Context loads the published article named by the articleSlug URL
// parameter onto the request context. Drafts and unknown slugs both
// stop here with a 404.
func (rs Resource) Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, err := rs.DB.Articles.GetBySlug(chi.URLParam(r, "articleSlug"))
		if err != nil {
			if err := render.Render(w, r, errresponse.NotFound("Article does not exist.")); err != nil {
				rs.Log.Errorw(err.Error())
			}

			return
		}

		ctx := context.WithValue(r.Context(), articleKey, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func fromContext(ctx context.Context) *model.Article {
	// The handlers using this are children of the Context middleware,
	// so the article must be there. The Recoverer middleware catches
	// the panic if a route is ever miswired.
	return ctx.Value(articleKey).(*model.Article)
}
