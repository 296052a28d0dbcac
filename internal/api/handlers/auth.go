package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/service"
	"todo-web/pkg/logger"
)

const (
	msgAlreadyRegistered = "You've already signed up with that email, log in instead!"
	msgEmailNotFound     = "That email does not exist, please try again."
	msgPasswordIncorrect = "Password incorrect, please try again."
)

type registerForm struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (h *Handler) RegisterPage(c *fiber.Ctx) error {
	return h.render(c, "register", "Register", nil)
}

// Register membuat akun baru lalu langsung login.
func (h *Handler) Register(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		setFlash(c, msgInvalidForm)
		return c.Redirect("/register")
	}
	if err := h.validate.Struct(form); err != nil {
		setFlash(c, formError(err))
		return c.Redirect("/register")
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    form.Email,
		Name:     form.Name,
		Password: form.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			setFlash(c, msgAlreadyRegistered)
			return c.Redirect("/login")
		}
		return err
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (h *Handler) LoginPage(c *fiber.Ctx) error {
	return h.render(c, "login", "Log in", nil)
}

// Login memeriksa kredensial; kegagalan kembali ke form dengan pesan flash.
func (h *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		setFlash(c, msgInvalidForm)
		return c.Redirect("/login")
	}
	if err := h.validate.Struct(form); err != nil {
		setFlash(c, formError(err))
		return c.Redirect("/login")
	}

	user, err := h.auth.Login(c.UserContext(), form.Email, form.Password)
	switch {
	case errors.Is(err, service.ErrEmailNotFound):
		setFlash(c, msgEmailNotFound)
		return c.Redirect("/login")
	case errors.Is(err, service.ErrPasswordIncorrect):
		setFlash(c, msgPasswordIncorrect)
		return c.Redirect("/login")
	case err != nil:
		return err
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return err
	}
	return c.Redirect("/")
}

// Logout selalu berhasil, juga untuk request anonymous.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c); err != nil {
		logger.ErrorLogger.Error("Error revoking session", zap.Error(err))
	}
	return c.Redirect("/")
}
