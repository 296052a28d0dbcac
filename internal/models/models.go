package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// MaxTaskLength sama dengan kolom to_do_list.task VARCHAR(250), dihitung per karakter.
	MaxTaskLength = 250
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Name     string `json:"name"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id"`
	Task       string `json:"task"`
	DueDate    Date   `json:"due_date"`
	Selected   bool   `json:"selected"`
	CategoryID int    `json:"category_id"`
}

// TaskPatch berisi field yang boleh diubah; nil berarti tidak berubah.
type TaskPatch struct {
	Task    *string
	DueDate *Date
}

// CategoryTasks adalah satu kelompok pada halaman utama.
type CategoryTasks struct {
	Category Category `json:"category"`
	Tasks    []Task   `json:"tasks"`
}

// TaskGroups berurutan sesuai id kategori.
type TaskGroups []CategoryTasks

// Lookup mencari tasks berdasarkan nama kategori.
func (g TaskGroups) Lookup(name string) ([]Task, bool) {
	for _, group := range g {
		if group.Category.Name == name {
			return group.Tasks, true
		}
	}
	return nil, false
}

// ByName mengembalikan mapping nama kategori -> tasks.
func (g TaskGroups) ByName() map[string][]Task {
	out := make(map[string][]Task, len(g))
	for _, group := range g {
		out[group.Category.Name] = group.Tasks
	}
	return out
}

// DefaultCategories dibuat saat startup bila belum ada.
var DefaultCategories = []string{"Work", "Personal", "Other"}

// CategoryChoice adalah pilihan kategori pada form tambah task.
type CategoryChoice struct {
	ID   int
	Name string
}

var CategoryChoices = []CategoryChoice{
	{ID: 1, Name: "Work"},
	{ID: 2, Name: "Personal"},
	{ID: 3, Name: "Other"},
}

func ChoiceName(id int) (string, bool) {
	for _, c := range CategoryChoices {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// Date adalah tanggal kalender tanpa jam, disimpan sebagai "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
