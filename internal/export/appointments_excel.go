package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const appointmentsSheet = "Appointments"

var appointmentHeader = []string{"Date", "Time", "Student", "Student email", "Department", "Purpose", "Status", "Created by", "Created at"}

// WriteAppointments пишет xlsx с записями учителя в w. Время — в поясе школы.
func WriteAppointments(w io.Writer, teacherName string, list []models.Appointment, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", appointmentsSheet); err != nil {
		return err
	}

	title := fmt.Sprintf("Appointments of %s as of %s", cleanName(teacherName), now.In(loc).Format("02.01.2006 15:04"))
	_ = f.SetCellValue(appointmentsSheet, "A1", title)

	const headerRow = 3
	for i, h := range appointmentHeader {
		_ = f.SetCellValue(appointmentsSheet, fmt.Sprintf("%s%d", columnName(i+1), headerRow), h)
	}

	rn := headerRow + 1
	for _, a := range list {
		at := a.AppointmentTime.In(loc)
		row := []any{
			at.Format("02.01.2006"),
			at.Format("15:04"),
			a.StudentName,
			a.StudentEmail,
			a.Department,
			a.Purpose,
			string(a.Status),
			string(a.CreatedBy),
			a.CreatedAt.In(loc).Format("02.01.2006 15:04"),
		}
		if err := f.SetSheetRow(appointmentsSheet, fmt.Sprintf("A%d", rn), &row); err != nil {
			return err
		}
		rn++
	}

	if err := applySheetFormatting(f, appointmentsSheet, headerRow); err != nil {
		return err
	}
	return f.Write(w)
}
