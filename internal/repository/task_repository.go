package repository

import (
	"context"
	"database/sql"
	"fmt"

	"todo-web/internal/models"
)

const taskColumns = "id, author_id, task, due_date, selected, category_id"

// TaskRepository handles CRUD for rows in to_do_list.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task     models.Task
		selected sql.NullBool
	)
	if err := row.Scan(&task.ID, &task.AuthorID, &task.Task, &task.DueDate, &selected, &task.CategoryID); err != nil {
		return nil, err
	}
	task.Selected = selected.Valid && selected.Bool
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO to_do_list (author_id, task, due_date, selected, category_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		task.AuthorID, task.Task, task.DueDate, task.Selected, task.CategoryID,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM to_do_list WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, notFound(err))
	}
	return task, nil
}

// ListByAuthorAndCategory mengembalikan tasks milik author pada satu kategori,
// diurutkan dari due date paling awal.
func (r *TaskRepository) ListByAuthorAndCategory(ctx context.Context, authorID, categoryID int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM to_do_list WHERE author_id = $1 AND category_id = $2 ORDER BY due_date ASC, id ASC",
		authorID, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update mengubah task dan due_date sebagian dalam satu transaksi.
// Field nil pada patch tidak diubah.
func (r *TaskRepository) Update(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error) {
	var text, due any
	if patch.Task != nil {
		text = *patch.Task
	}
	if patch.DueDate != nil {
		due = patch.DueDate.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE to_do_list
		SET task = COALESCE($1, task),
			due_date = COALESCE($2, due_date)
		WHERE id = $3`,
		text, due, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}

	task, err := scanTask(tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM to_do_list WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("reload task %d: %w", id, notFound(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return task, nil
}

// Delete mengembalikan true bila ada baris yang terhapus.
func (r *TaskRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM to_do_list WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return affected > 0, nil
}
