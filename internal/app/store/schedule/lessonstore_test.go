package lessonstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	lessonstore "github.com/dalemusser/eduflow/internal/app/store/schedule"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"go.uber.org/zap"
)

func lesson(group, teacher, day, start, end string) models.Lesson {
	return models.Lesson{GroupID: group, TeacherID: teacher, DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestStore_AddDefaultsAndFilters(t *testing.T) {
	ctx := context.Background()
	store := lessonstore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	mon, err := store.Add(ctx, "org_1", lesson("g1", "t1", "MON", "09:00", "10:30"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if mon.Status != models.LessonPlanned {
		t.Errorf("status: got %q, want %q", mon.Status, models.LessonPlanned)
	}
	if _, err := store.Add(ctx, "org_1", lesson("g2", "t2", "TUE", "11:00", "12:00")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, "org_2", lesson("g1", "t1", "MON", "09:00", "10:30")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	byTeacher, err := store.ForTeacher(ctx, "org_1", "t1")
	if err != nil {
		t.Fatalf("ForTeacher failed: %v", err)
	}
	if len(byTeacher) != 1 || byTeacher[0].ID != mon.ID {
		t.Errorf("ForTeacher: got %+v, want only %s", byTeacher, mon.ID)
	}
	byGroup, err := store.ForGroup(ctx, "org_1", "g2")
	if err != nil {
		t.Fatalf("ForGroup failed: %v", err)
	}
	if len(byGroup) != 1 || byGroup[0].DayOfWeek != "TUE" {
		t.Errorf("ForGroup: got %+v, want the TUE lesson", byGroup)
	}
}

func TestStore_AddRejectsBadTimes(t *testing.T) {
	store := lessonstore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	tests := []struct {
		name  string
		in    models.Lesson
		field string
	}{
		{"end before start", lesson("g1", "", "MON", "10:00", "09:00"), "end_time"},
		{"bad clock", lesson("g1", "", "MON", "9am", "10:00"), "start_time"},
		{"bad day", lesson("g1", "", "MONDAY", "09:00", "10:00"), "day_of_week"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Add(context.Background(), "org_1", tc.in)
			var ve *scoped.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err: got %v, want *ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field: got %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestStore_WatchTeacher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := lessonstore.New(records.NewMemory(zap.NewNop()), zap.NewNop())

	live, err := store.WatchTeacher(ctx, "org_1", "t1")
	if err != nil {
		t.Fatalf("WatchTeacher failed: %v", err)
	}
	defer live.Cancel()

	first, err := live.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(first) != 0 {
		t.Errorf("initial: got %d lessons, want 0", len(first))
	}

	if _, err := store.Add(ctx, "org_1", lesson("g1", "t1", "WED", "14:00", "15:00")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	next, err := live.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(next) != 1 || next[0].TeacherID != "t1" {
		t.Errorf("after add: got %+v, want one lesson for t1", next)
	}
}
