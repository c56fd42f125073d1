// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/evkarin/lumen/internal/platform/request"
	"github.com/evkarin/lumen/internal/platform/respond"
	"github.com/evkarin/lumen/pkg/convert"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/recent", handler.recentContent)
	router.Get("/stats", handler.contentStats)

	router.Get("/export", handler.exportContent)
	router.Post("/import", handler.importContent)
	router.Get("/backup", handler.backupContent)
	router.Post("/restore", handler.restoreContent)
}

func (handler *Handler) recentContent(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToIntD(request.URL.Query().Get("limit"), 10)
	if limit < 1 {
		limit = 10
	}

	items, err := handler.service.RecentContent(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (handler *Handler) contentStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.ContentStats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) exportContent(writer http.ResponseWriter, request *http.Request) {
	doc, err := handler.service.Export(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, doc)
}

func (handler *Handler) importContent(writer http.ResponseWriter, request *http.Request) {
	var doc ExportDocument
	if err := requestutil.DecodeJSON(request, &doc); err != nil {
		respond.Error(writer, request, err)
		return
	}

	replace := request.URL.Query().Get("mode") == "replace"

	result, err := handler.service.Import(request.Context(), &doc, replace)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OKMessage(writer, result, "Import completed")
}

func (handler *Handler) backupContent(writer http.ResponseWriter, request *http.Request) {
	doc, err := handler.service.Backup(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, doc)
}

func (handler *Handler) restoreContent(writer http.ResponseWriter, request *http.Request) {
	var doc BackupDocument
	if err := requestutil.DecodeJSON(request, &doc); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Restore(request.Context(), &doc); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OKMessage(writer, struct{}{}, "Restore completed")
}
