// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package gallery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evkarin/lumen/internal/entity"
	requestutil "github.com/evkarin/lumen/internal/platform/request"
	"github.com/evkarin/lumen/internal/platform/respond"
	"github.com/evkarin/lumen/pkg/convert"
	"github.com/evkarin/lumen/pkg/pagination"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listCollections)
	router.Post("/", handler.createCollection)

	router.Get("/public", handler.publicCollections)
	router.Get("/featured", handler.featuredCollections)
	router.Get("/recent", handler.recentCollections)
	router.Get("/categories", handler.categories)

	router.Get("/image-tags", handler.imageTags)
	router.Get("/image-tags/{tag}", handler.collectionsByImageTag)
	router.Get("/image-tags/{tag}/images", handler.imagesByTag)
	router.Get("/stats/image-tags", handler.imageTagStats)

	router.Get("/slug/{slug}", handler.getCollectionBySlug)
	router.Get("/{id}", handler.getCollection)
	router.Patch("/{id}", handler.updateCollection)
	router.Delete("/{id}", handler.deleteCollection)

	router.Post("/{id}/images", handler.addImage)
	router.Put("/{id}/images/reorder", handler.reorderImages)
	router.Put("/{id}/images/{imageID}", handler.updateImage)
	router.Delete("/{id}/images/{imageID}", handler.removeImage)
}

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

	if category := queryValues.Get(FieldCategory); category != "" {
		opts.Filters = append(opts.Filters, entity.Equals{Field: FieldCategory, Value: category})
	}
	if visibility := queryValues.Get("public"); visibility != "" {
		opts.Filters = append(opts.Filters, entity.Equals{Field: FieldIsPublic, Value: convert.ToBool(visibility)})
	}
	if tag := queryValues.Get("image_tag"); tag != "" {
		opts.Filters = append(opts.Filters, entity.Equals{Field: "image_tags", Value: tag})
	}

	return opts
}

func (handler *Handler) listCollections(writer http.ResponseWriter, request *http.Request) {
	collections, meta, err := handler.repo.List(request.Context(), listOptionsFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, collections, meta)
}

func (handler *Handler) getCollection(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.Get(request.Context(), collectionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) getCollectionBySlug(writer http.ResponseWriter, request *http.Request) {
	collection, err := handler.repo.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) createCollection(writer http.ResponseWriter, request *http.Request) {
	var input GalleryCollection
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Images == nil {
		input.Images = []*GalleryImage{}
	}

	collection, err := handler.repo.Create(request.Context(), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, collection)
}

func (handler *Handler) updateCollection(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch CollectionPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.Update(request.Context(), collectionID, &patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) deleteCollection(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.repo.Delete(request.Context(), collectionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) publicCollections(writer http.ResponseWriter, request *http.Request) {
	collections, meta, err := handler.repo.PublicCollections(request.Context(), pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, collections, meta)
}

func (handler *Handler) featuredCollections(writer http.ResponseWriter, request *http.Request) {
	collections, err := handler.repo.Featured(request.Context(), limitFromQuery(request, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collections)
}

func (handler *Handler) recentCollections(writer http.ResponseWriter, request *http.Request) {
	collections, err := handler.repo.Recent(request.Context(), limitFromQuery(request, 10))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collections)
}

func (handler *Handler) categories(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.repo.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

func (handler *Handler) imageTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.repo.ImageTags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) collectionsByImageTag(writer http.ResponseWriter, request *http.Request) {
	collections, err := handler.repo.FindByImageTag(request.Context(), requestutil.Param(request, "tag"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collections)
}

func (handler *Handler) imagesByTag(writer http.ResponseWriter, request *http.Request) {
	images, err := handler.repo.ImagesByTag(request.Context(), requestutil.Param(request, "tag"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, images)
}

func (handler *Handler) imageTagStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.repo.ImageTagStats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) addImage(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var image GalleryImage
	if err := requestutil.DecodeJSON(request, &image); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.AddImage(request.Context(), collectionID, &image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, collection)
}

func (handler *Handler) updateImage(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	imageID, err := requestutil.IntParam(request, "imageID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var image GalleryImage
	if err := requestutil.DecodeJSON(request, &image); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.UpdateImage(request.Context(), collectionID, imageID, image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) removeImage(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	imageID, err := requestutil.IntParam(request, "imageID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.RemoveImage(request.Context(), collectionID, imageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

type reorderInput struct {
	Orders []ImageOrder `json:"orders"`
}

func (handler *Handler) reorderImages(writer http.ResponseWriter, request *http.Request) {
	collectionID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reorderInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.repo.ReorderImages(request.Context(), collectionID, input.Orders)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
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
