package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"todo-web/internal/config"
	"todo-web/internal/middleware"
	"todo-web/internal/service"
	"todo-web/internal/session"
)

const (
	layout      = "layouts/main"
	flashCookie = "flash"
)

// Handler menyatukan dependency yang dipakai semua route.
type Handler struct {
	db       *sql.DB
	validate *validator.Validate
	sessions *session.Manager
	auth     *service.AuthService
	tasks    *service.TaskService
	now      func() time.Time
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{
		db:       deps.DB,
		validate: deps.Validate,
		sessions: deps.Sessions,
		auth:     deps.Auth,
		tasks:    deps.Tasks,
		now:      time.Now,
	}
}

// render menambahkan data umum layout lalu merender view.
func (h *Handler) render(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["User"] = middleware.CurrentUser(c)
	data["Flash"] = popFlash(c)
	data["Year"] = h.now().UTC().Year()
	return c.Render(view, data, layout)
}

// setFlash menyimpan pesan satu kali tampil untuk request berikutnya.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func popFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}

// formError mengubah error validator menjadi satu pesan untuk flash.
func formError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required.", fe.Field())
		case "email":
			return "Please enter a valid email address."
		case "datetime":
			return msgInvalidDueDate
		case "max":
			if fe.Field() == "Task" {
				return msgInvalidDescription
			}
			return fmt.Sprintf("%s is too long.", fe.Field())
		default:
			return fmt.Sprintf("%s is invalid.", fe.Field())
		}
	}
	return msgInvalidForm
}
