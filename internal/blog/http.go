// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package blog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/apperr"
	requestutil "github.com/evkarin/lumen/internal/platform/request"
	"github.com/evkarin/lumen/internal/platform/respond"
	"github.com/evkarin/lumen/pkg/convert"
	"github.com/evkarin/lumen/pkg/pagination"
	"github.com/evkarin/lumen/pkg/query"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listPosts)
	router.Post("/", handler.createPost)

	router.Get("/popular", handler.popularPosts)
	router.Get("/recent", handler.recentPosts)
	router.Get("/date-range", handler.postsByDateRange)

	router.Get("/categories", handler.categories)
	router.Get("/tags", handler.tags)
	router.Get("/authors", handler.authors)
	router.Get("/stats/categories", handler.categoryStats)
	router.Get("/stats/tags", handler.tagStats)
	router.Get("/stats/monthly/{year}", handler.monthlyStats)

	router.Post("/bulk/status", handler.bulkSetStatus)
	router.Post("/bulk/delete", handler.bulkDelete)

	router.Get("/slug/{slug}", handler.getPostBySlug)
	router.Get("/{id}", handler.getPost)
	router.Patch("/{id}", handler.updatePost)
	router.Delete("/{id}", handler.deletePost)
	router.Get("/{id}/related", handler.relatedPosts)
	router.Post("/{id}/views", handler.incrementViews)
	router.Post("/{id}/likes", handler.incrementLikes)
}

// listOptionsFromRequest maps the query string onto the generic pipeline:
// pagination, sorting, free-text search, and the scalar/tag filters.
func listOptionsFromRequest(request *http.Request) entity.ListOptions {
	params := pagination.FromRequest(request)
	queryValues := request.URL.Query()

	opts := entity.ListOptions{
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    queryValues.Get("sort_by"),
		SortOrder: queryValues.Get("sort_order"),
		Search:    queryValues.Get("q"),
	}

	for _, field := range []string{FieldCategory, FieldAuthor, FieldStatus} {
		if value := queryValues.Get(field); value != "" {
			opts.Filters = append(opts.Filters, entity.Equals{Field: field, Value: value})
		}
	}
	if tag := queryValues.Get("tag"); tag != "" {
		opts.Filters = append(opts.Filters, entity.Equals{Field: FieldTags, Value: tag})
	}
	if tags := query.StringSlice(queryValues.Get("tags")); len(tags) > 0 {
		opts.Filters = append(opts.Filters, entity.AnyOf{Field: FieldTags, Values: tags})
	}

	return opts
}

func (handler *Handler) listPosts(writer http.ResponseWriter, request *http.Request) {
	posts, meta, err := handler.repo.List(request.Context(), listOptionsFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, posts, meta)
}

func (handler *Handler) getPost(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.repo.Get(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) getPostBySlug(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.repo.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	var input BlogPost
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.repo.Create(request.Context(), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, post)
}

func (handler *Handler) updatePost(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch PostPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.repo.Update(request.Context(), postID, &patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.repo.Delete(request.Context(), postID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) popularPosts(writer http.ResponseWriter, request *http.Request) {
	posts, err := handler.repo.Popular(request.Context(), limitFromQuery(request, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, posts)
}

func (handler *Handler) recentPosts(writer http.ResponseWriter, request *http.Request) {
	posts, err := handler.repo.Recent(request.Context(), limitFromQuery(request, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, posts)
}

func (handler *Handler) postsByDateRange(writer http.ResponseWriter, request *http.Request) {
	from, err := time.Parse(time.RFC3339, request.URL.Query().Get("from"))
	if err != nil {
		respond.Error(writer, request, apperr.Unprocessable("Invalid 'from' date, expected RFC 3339"))
		return
	}
	to, err := time.Parse(time.RFC3339, request.URL.Query().Get("to"))
	if err != nil {
		respond.Error(writer, request, apperr.Unprocessable("Invalid 'to' date, expected RFC 3339"))
		return
	}

	posts, err := handler.repo.ListByDateRange(request.Context(), from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, posts)
}

func (handler *Handler) relatedPosts(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	posts, err := handler.repo.Related(request.Context(), postID, limitFromQuery(request, 0))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, posts)
}

func (handler *Handler) incrementViews(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.repo.IncrementViews(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) incrementLikes(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.repo.IncrementLikes(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

func (handler *Handler) categories(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.repo.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

func (handler *Handler) tags(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.repo.Tags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

func (handler *Handler) authors(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.repo.Authors(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

func (handler *Handler) categoryStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.repo.CategoryStats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) tagStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.repo.TagStats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) monthlyStats(writer http.ResponseWriter, request *http.Request) {
	year, err := requestutil.IntParam(request, "year")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.repo.MonthlyStats(request.Context(), year)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

type bulkStatusInput struct {
	IDs    []int  `json:"ids"`
	Status Status `json:"status"`
}

func (handler *Handler) bulkSetStatus(writer http.ResponseWriter, request *http.Request) {
	var input bulkStatusInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Status != StatusDraft && input.Status != StatusPublished && input.Status != StatusArchived {
		respond.Error(writer, request, apperr.Unprocessable("Unknown status"))
		return
	}

	result, err := handler.repo.BulkSetStatus(request.Context(), input.IDs, input.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

type bulkDeleteInput struct {
	IDs []int `json:"ids"`
}

func (handler *Handler) bulkDelete(writer http.ResponseWriter, request *http.Request) {
	var input bulkDeleteInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.repo.BulkDelete(request.Context(), input.IDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func limitFromQuery(request *http.Request, fallback int) int {
	limit := convert.ToIntD(request.URL.Query().Get("limit"), fallback)
	if limit < 1 {
		return fallback
	}
	if limit > pagination.MaxLimit {
		return pagination.MaxLimit
	}
	return limit
}
