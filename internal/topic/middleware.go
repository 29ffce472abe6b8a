package topic

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
)

type ctxKey int8

const topicKey ctxKey = iota

// Context loads the topic named by the topicSlug URL parameter onto
// the request context; slug matching ignores case.
func (rs Resource) Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, err := rs.DB.Topics.GetBySlug(chi.URLParam(r, "topicSlug"))
		if err != nil {
			if err := render.Render(w, r, errresponse.NotFound("Topic does not exist.")); err != nil {
				rs.Log.Errorw(err.Error())
			}

			return
		}

		ctx := context.WithValue(r.Context(), topicKey, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func fromContext(ctx context.Context) *model.Topic {
	return ctx.Value(topicKey).(*model.Topic)
}
