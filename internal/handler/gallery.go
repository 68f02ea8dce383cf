package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/service"
	"github.com/Sunny-pro22/Dashboard/internal/service/gallery"
)

// GalleryHandler returns the gallery newest first with the selection.
func GalleryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, logger, http.StatusOK, manager.GalleryData())
	}
}

// SelectPictureHandler marks the image given by "id" as selected.
func SelectPictureHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Id parameter is required", http.StatusBadRequest)
			return
		}
		img, ok := manager.GetGalleryService().Select(id)
		if !ok {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		writeJSON(w, logger, http.StatusOK, dto.NewGalleryItem(img))
	}
}

// ClearSelectionHandler drops the current selection.
func ClearSelectionHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		manager.GetGalleryService().ClearSelection()
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReleasePictureHandler removes an image from the gallery and frees its bytes.
func ReleasePictureHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Id parameter is required", http.StatusBadRequest)
			return
		}

		err := manager.ReleaseImage(r.Context(), id)
		switch {
		case err == nil:
			logger.Info("Released picture: %s", id)
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, gallery.ErrNotFound):
			http.Error(w, "Image not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotRunning):
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		default:
			logger.Error("Failed to release picture %s: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// ViewPictureHandler serves the encoded bytes of the image given by "id".
func ViewPictureHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Id parameter is required", http.StatusBadRequest)
			return
		}
		img, ok := manager.GetGalleryService().Get(id)
		if !ok || img.Artifact == nil {
			http.NotFound(w, r)
			return
		}
		data, contentType, err := manager.GetArtifactStore().Get(img.Artifact.Key())
		if err != nil {
			// Released between lookup and read.
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Write(data)
	}
}
