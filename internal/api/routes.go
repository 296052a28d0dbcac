package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"

	"todo-web/internal/api/handlers"
	"todo-web/internal/config"
	"todo-web/internal/middleware"
)

//go:embed views/*.html views/layouts/*.html
var viewsFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewApp menyusun aplikasi fiber lengkap dengan view, middleware dan route.
func NewApp(deps *config.Dependencies) *fiber.App {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "todo-web",
		Views:        html.NewFileSystem(http.FS(views), ".html"),
		ErrorHandler: middleware.FiberErrorHandler,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(static)}))
	app.Use(middleware.LoadUser(deps.Sessions, deps.Auth))

	RegisterRoutes(app, handlers.New(deps))
	return app
}

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/healthz", h.Health)

	// Auth
	app.Get("/register", h.RegisterPage)
	app.Post("/register", h.Register)
	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Get("/logout", h.Logout)

	// Task
	app.Get("/", h.Index)
	app.Post("/", h.AddTask)
	app.Get("/delete/:taskId<int>", h.DeleteTask)
	app.Post("/delete/:taskId<int>", h.DeleteTask)
	app.Patch("/edit_task/:taskId<int>", middleware.RequireUser, h.EditTask)
}
