package v1

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

//go:embed web
var webFiles embed.FS

// _uiMaxAge keeps browsers from pinning an old client across deploys.
const _uiMaxAge = 300

// uiHandler serves the browser client. Unknown paths fall through to the next handler.
func uiHandler() (fiber.Handler, error) {
	root, err := fs.Sub(webFiles, "web")
	if err != nil {
		return nil, fmt.Errorf("uiHandler - fs.Sub: %w", err)
	}

	return filesystem.New(filesystem.Config{
		Root:   http.FS(root),
		Index:  "index.html",
		MaxAge: _uiMaxAge,
	}), nil
}
