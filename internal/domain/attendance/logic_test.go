package attendance

import (
	"strings"
	"testing"
	"time"
)

func clock(h, m, s int) time.Time {
	return time.Date(2026, 8, 3, h, m, s, 0, time.UTC)
}

func TestStatusForCheckInLateAfterScheduledStart(t *testing.T) {
	if got := StatusForCheckIn(clock(9, 15, 0), "09:00"); got != StatusLate {
		t.Fatalf("expected late for 09:15 against 09:00 start, got %q", got)
	}
}

func TestStatusForCheckInPresentAtScheduledStart(t *testing.T) {
	if got := StatusForCheckIn(clock(9, 0, 0), "09:00"); got != StatusPresent {
		t.Fatalf("expected present at exactly the scheduled start, got %q", got)
	}
}

func TestStatusForCheckInPresentBeforeScheduledStart(t *testing.T) {
	if got := StatusForCheckIn(clock(8, 45, 0), "09:00"); got != StatusPresent {
		t.Fatalf("expected present before the scheduled start, got %q", got)
	}
}

func TestStatusForCheckInSecondsCountAsLate(t *testing.T) {
	if got := StatusForCheckIn(clock(9, 0, 30), "09:00:00"); got != StatusLate {
		t.Fatalf("expected 09:00:30 to be late against a 09:00:00 start, got %q", got)
	}
}

func TestStatusForCheckInNoScheduleDefaultsPresent(t *testing.T) {
	if got := StatusForCheckIn(clock(13, 0, 0), ""); got != StatusPresent {
		t.Fatalf("expected present without a schedule entry, got %q", got)
	}
}

func TestTotalHoursRoundsToTwoDecimals(t *testing.T) {
	got := TotalHours(clock(9, 15, 0), clock(17, 0, 0))
	if got != 7.75 {
		t.Fatalf("expected 7.75 hours for 09:15-17:00, got %v", got)
	}
}

func TestTotalHoursDropsSubMinuteRemainder(t *testing.T) {
	got := TotalHours(clock(9, 0, 30), clock(17, 0, 0))
	// 479 whole minutes -> 7.9833... -> 7.98
	if got != 7.98 {
		t.Fatalf("expected 7.98 hours, got %v", got)
	}
}

func TestTotalHoursNeverNegative(t *testing.T) {
	if got := TotalHours(clock(17, 0, 0), clock(9, 0, 0)); got != 0 {
		t.Fatalf("expected 0 for reversed times, got %v", got)
	}
}

func TestHistoryWhereAppliesFiltersIndependently(t *testing.T) {
	where, args := historyWhere("u1", 0, 0)
	if where != "WHERE a.user_id = $1" || len(args) != 1 {
		t.Fatalf("unfiltered clause wrong: %q %v", where, args)
	}

	where, args = historyWhere("u1", 3, 0)
	if !strings.Contains(where, "EXTRACT(MONTH FROM a.date) = $2") || strings.Contains(where, "YEAR") {
		t.Fatalf("month-only clause wrong: %q", where)
	}
	if len(args) != 2 || args[1] != 3 {
		t.Fatalf("month-only args wrong: %v", args)
	}

	where, args = historyWhere("u1", 0, 2026)
	if strings.Contains(where, "MONTH") || !strings.Contains(where, "EXTRACT(YEAR FROM a.date) = $2") {
		t.Fatalf("year-only clause wrong: %q", where)
	}
	if len(args) != 2 || args[1] != 2026 {
		t.Fatalf("year-only args wrong: %v", args)
	}

	where, args = historyWhere("u1", 3, 2026)
	if !strings.Contains(where, "MONTH FROM a.date) = $2") || !strings.Contains(where, "YEAR FROM a.date) = $3") {
		t.Fatalf("combined clause wrong: %q", where)
	}
	if len(args) != 3 {
		t.Fatalf("combined args wrong: %v", args)
	}
}

func TestAppendNotes(t *testing.T) {
	if got := AppendNotes("", "left early"); got != "left early" {
		t.Fatalf("unexpected notes: %q", got)
	}
	if got := AppendNotes("on site", "left early"); got != "on site | Check-out: left early" {
		t.Fatalf("unexpected merged notes: %q", got)
	}
	if got := AppendNotes("on site", "  "); got != "on site" {
		t.Fatalf("blank addition must keep existing notes, got %q", got)
	}
}
