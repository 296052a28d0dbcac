package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-web/internal/middleware"
	"todo-web/internal/models"
	"todo-web/internal/service"
	"todo-web/pkg/logger"
)

const (
	msgInvalidForm        = "Invalid form submission."
	msgInvalidCategory    = "Category is invalid."
	msgInvalidDescription = "Task description is required and must be at most 250 characters."
	msgInvalidDueDate     = "Due date must be formatted as YYYY-MM-DD."
)

type addTaskForm struct {
	Category string `form:"category" validate:"required,oneof=1 2 3"`
	Task     string `form:"task" validate:"required,max=250"`
	DueDate  string `form:"due_date" validate:"required,datetime=2006-01-02"`
	Selected string `form:"selected"`
}

// editTaskRequest memakai pointer: field yang tidak dikirim tidak diubah.
type editTaskRequest struct {
	TaskText *string `json:"task_text"`
	DueDate  *string `json:"due_date"`
}

// Index menampilkan task user per kategori, atau landing page untuk anonymous.
func (h *Handler) Index(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return h.render(c, "index", "To-Do List", nil)
	}

	groups, err := h.tasks.ListGroupedByCategory(c.UserContext(), user)
	if err != nil {
		return err
	}
	return h.render(c, "index", "To-Do List", fiber.Map{
		"Groups":  groups,
		"Choices": models.CategoryChoices,
		"Today":   h.now().Format(models.DateLayout),
	})
}

// AddTask memproses form tambah task lalu kembali ke halaman utama.
func (h *Handler) AddTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect("/")
	}

	var form addTaskForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in add task", zap.Error(err))
		setFlash(c, msgInvalidForm)
		return c.Redirect("/")
	}
	if err := h.validate.Struct(form); err != nil {
		setFlash(c, formError(err))
		return c.Redirect("/")
	}

	categoryID, err := strconv.Atoi(form.Category)
	if err != nil {
		setFlash(c, msgInvalidCategory)
		return c.Redirect("/")
	}
	due, err := models.ParseDate(form.DueDate)
	if err != nil {
		setFlash(c, msgInvalidDueDate)
		return c.Redirect("/")
	}

	_, err = h.tasks.AddTask(c.UserContext(), user, service.NewTaskInput{
		CategoryID:  categoryID,
		Description: form.Task,
		DueDate:     due,
		Starred:     checkboxValue(form.Selected),
	})
	switch {
	case errors.Is(err, service.ErrUnknownCategory):
		setFlash(c, msgInvalidCategory)
	case errors.Is(err, service.ErrInvalidDescription):
		setFlash(c, msgInvalidDescription)
	case errors.Is(err, service.ErrInvalidDueDate):
		setFlash(c, msgInvalidDueDate)
	case errors.Is(err, service.ErrInvalidFormat):
		setFlash(c, msgInvalidForm)
	case err != nil:
		return err
	}
	return c.Redirect("/")
}

// checkboxValue mengikuti BooleanField: kosong, "false", "0", "off" dan "n" berarti tidak dicentang.
func checkboxValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "on":
		return true
	case "", "n", "no", "off":
		return false
	}
	checked, err := strconv.ParseBool(raw)
	return err == nil && checked
}

// DeleteTask menghapus task lalu kembali ke halaman utama. Id yang tidak ada
// menghasilkan 404.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect("/")
	}

	taskID, err := c.ParamsInt("taskId")
	if err != nil {
		return fiber.ErrNotFound
	}

	removed, err := h.tasks.DeleteTask(c.UserContext(), user, taskID)
	if err != nil {
		return err
	}
	if !removed {
		return fiber.ErrNotFound
	}
	return c.Redirect("/")
}

// EditTask menerima JSON {task_text?, due_date?} dan menjawab JSON.
// Keberadaan task diperiksa sebelum body dibaca.
func (h *Handler) EditTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	taskID, err := c.ParamsInt("taskId")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	if _, err := h.tasks.EditableTask(c.UserContext(), user, taskID); err != nil {
		return editError(c, taskID, err)
	}

	var req editTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in edit task", zap.Int("task_id", taskID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	_, err = h.tasks.EditTask(c.UserContext(), user, taskID, service.EditTaskInput{
		Description: req.TaskText,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return editError(c, taskID, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func editError(c *fiber.Ctx, taskID int, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, service.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	case errors.Is(err, service.ErrInvalidDescription):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task description"})
	case errors.Is(err, service.ErrInvalidDueDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format"})
	default:
		logger.ErrorLogger.Error("Error updating task", zap.Int("task_id", taskID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
