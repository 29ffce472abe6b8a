package article

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/medialist/rest/internal/model"
)

// timestampLayout matches the date format the frontend renders under
// each article card.
const timestampLayout = "Jan. 02, 2006"

const truncateWords = 20

// Response is the detail payload for an article.
type Response struct {
	*model.Article

	Objective bool   `json:"objective"`
	Timestamp string `json:"timestamp"`
}

func NewResponse(a *model.Article) *Response {
	return &Response{Article: a}
}

func (rd *Response) Render(w http.ResponseWriter, r *http.Request) error {
	rd.Objective = rd.Article.Objective()
	rd.Timestamp = rd.Article.Timestamp().Format(timestampLayout)

	return nil
}

// ListItem is the list payload: the full content is shadowed out and a
// truncated preview is sent instead.
type ListItem struct {
	*model.Article

	Content          string `json:"content,omitempty"`
	TruncatedContent string `json:"truncated_content"`
	Objective        bool   `json:"objective"`
	Timestamp        string `json:"timestamp"`
}

func NewListItem(a *model.Article) *ListItem {
	return &ListItem{Article: a}
}

func (rd *ListItem) Render(w http.ResponseWriter, r *http.Request) error {
	rd.TruncatedContent = rd.Article.TruncatedContent(truncateWords)
	rd.Objective = rd.Article.Objective()
	rd.Timestamp = rd.Article.Timestamp().Format(timestampLayout)

	return nil
}

// NewListResponse wraps articles for render.RenderList.
func NewListResponse(articles []*model.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, a := range articles {
		list = append(list, NewListItem(a))
	}

	return list
}
