package menu

import "github.com/Sarika191/Teacher-student-appointment/internal/models"

// EntryPage — страница входа; сюда отправляем при любой ошибке авторизации.
const EntryPage = "index.html"

// HomePage возвращает стартовую страницу кабинета в зависимости от роли.
func HomePage(role models.Role) (string, bool) {
	switch role {
	case models.Student:
		return "student.html", true
	case models.Teacher:
		return "teacher.html", true
	case models.Admin:
		return "admin.html", true
	default:
		return "", false
	}
}

// Item — пункт меню кабинета.
type Item struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// ForRole возвращает меню кабинета в зависимости от роли пользователя.
func ForRole(role models.Role) []Item {
	switch role {
	case models.Student:
		return []Item{
			{Title: "Book appointment", Path: "/api/student/appointments"},
			{Title: "My appointments", Path: "/api/student/appointments"},
		}
	case models.Teacher:
		return []Item{
			{Title: "Schedule appointment", Path: "/api/teacher/appointments"},
			{Title: "Pending appointments", Path: "/api/teacher/appointments?view=pending"},
			{Title: "All appointments", Path: "/api/teacher/appointments?view=all"},
			{Title: "Export to Excel", Path: "/api/teacher/appointments/export"},
		}
	case models.Admin:
		return []Item{
			{Title: "Teachers", Path: "/api/admin/teachers"},
			{Title: "Pending students", Path: "/api/admin/students"},
			{Title: "Action log", Path: "/api/admin/actions"},
		}
	default:
		return nil
	}
}
