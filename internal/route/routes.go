package route

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/Sunny-pro22/Dashboard/internal/handler"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/middleware"
	"github.com/Sunny-pro22/Dashboard/internal/service"
)

// StaticDir holds the browser dashboard, when deployed alongside the server.
const StaticDir = "static"

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(StaticDir, filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the dashboard API, the live feed, the log
// endpoints and static files, and wraps the mux with access logging.
func SetupRoutes(manager *service.Manager, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(StaticDir))))

	// API endpoints
	mux.HandleFunc("/api/counters", handler.CountersHandler(manager, logger))
	mux.HandleFunc("/api/history", handler.HistoryHandler(manager, logger))
	mux.HandleFunc("/api/stats", handler.StatsHandler(manager, logger))
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(manager, logger))

	mux.HandleFunc("/api/gallery", handler.GalleryHandler(manager, logger))
	mux.HandleFunc("/api/gallery/select", handler.SelectPictureHandler(manager, logger))
	mux.HandleFunc("/api/gallery/selection", handler.ClearSelectionHandler(manager))
	mux.HandleFunc("/api/gallery/release", handler.ReleasePictureHandler(manager, logger))
	mux.HandleFunc("/api/gallery/view", handler.ViewPictureHandler(manager))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		file := level + ".log"
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Automatic HTML handler mapping for example: /settings -> /static/settings.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.LoggingMiddleware(logger, mux)
}
