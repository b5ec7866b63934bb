package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Table is a rendered export: one header row plus data rows, with per-column
// widths for the PDF layout.
type Table struct {
	Header []string
	Widths []float64
	Rows   [][]string
}

// AttendanceExport builds the attendance table for the given scope, one row
// per attendance record.
func (s *Service) AttendanceExport(ctx context.Context, scope Scope) (Table, error) {
	where, args := scope.whereClause()
	rows, err := s.DB.Query(ctx, `
    SELECT u.employee_id, u.name, a.date, a.check_in_time, a.check_out_time, a.status, a.total_hours
    FROM attendance_records a
    JOIN users u ON a.user_id = u.id
    `+where+`
    ORDER BY a.date, u.employee_id
  `, args...)
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	table := Table{
		Header: []string{"Employee ID", "Name", "Date", "Check In", "Check Out", "Status", "Total Hours"},
		Widths: []float64{35, 60, 30, 25, 25, 30, 25},
	}
	for rows.Next() {
		var (
			employeeID, name, status string
			date                     time.Time
			checkIn, checkOut        *time.Time
			totalHours               *float64
		)
		if err := rows.Scan(&employeeID, &name, &date, &checkIn, &checkOut, &status, &totalHours); err != nil {
			return Table{}, err
		}
		table.Rows = append(table.Rows, []string{
			employeeID, name, date.Format("2006-01-02"),
			formatClock(checkIn), formatClock(checkOut), status, formatHours(totalHours),
		})
	}
	return table, rows.Err()
}

// LeaveExport builds the leave table for the given scope, one row per leave
// request overlapping the range.
func (s *Service) LeaveExport(ctx context.Context, scope Scope) (Table, error) {
	where := "WHERE 1=1"
	args := []any{}
	if !scope.StartDate.IsZero() && !scope.EndDate.IsZero() {
		args = append(args, scope.StartDate, scope.EndDate)
		where += fmt.Sprintf(" AND lr.start_date <= $%d AND lr.end_date >= $%d", len(args), len(args)-1)
	}
	if scope.UserID != "" {
		args = append(args, scope.UserID)
		where += fmt.Sprintf(" AND lr.user_id = $%d", len(args))
	}
	if scope.Department != "" {
		args = append(args, scope.Department)
		where += fmt.Sprintf(" AND u.department = $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, `
    SELECT u.employee_id, u.name, COALESCE(u.department, ''),
           lr.leave_type, lr.start_date, lr.end_date, lr.days_requested,
           lr.reason, lr.status, COALESCE(approver.name, ''), COALESCE(lr.rejection_reason, '')
    FROM leave_requests lr
    JOIN users u ON lr.user_id = u.id
    LEFT JOIN users approver ON lr.approved_by = approver.id
    `+where+`
    ORDER BY lr.start_date, u.employee_id
  `, args...)
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	table := Table{
		Header: []string{"Employee ID", "Name", "Department", "Type", "Start", "End", "Days", "Reason", "Status", "Approved By", "Rejection Reason"},
		Widths: []float64{25, 40, 25, 20, 22, 22, 12, 40, 20, 30, 40},
	}
	for rows.Next() {
		var (
			employeeID, name, department, leaveType  string
			reason, status, approvedBy, rejectReason string
			startDate, endDate                       time.Time
			days                                     int
		)
		if err := rows.Scan(&employeeID, &name, &department, &leaveType, &startDate, &endDate,
			&days, &reason, &status, &approvedBy, &rejectReason); err != nil {
			return Table{}, err
		}
		table.Rows = append(table.Rows, []string{
			employeeID, name, department, leaveType,
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"),
			strconv.Itoa(days), reason, status, approvedBy, rejectReason,
		})
	}
	return table, rows.Err()
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', 2, 64)
}

func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePDF(w io.Writer, title string, table Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range table.Header {
		pdf.CellFormat(table.Widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for i, cell := range row {
			pdf.CellFormat(table.Widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.Ln(4)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s, %d records", time.Now().Format("2006-01-02 15:04"), len(table.Rows)), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
