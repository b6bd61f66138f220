package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golfcompete/golfcompete/models"
)

type courseServiceFixture struct {
	svc        CourseService
	courseRepo *fakeCourseRepo
	users      *fakeUserRepo
}

func newCourseServiceFixture() *courseServiceFixture {
	f := &courseServiceFixture{
		courseRepo: newFakeCourseRepo(),
		users: newFakeUserRepo(
			&models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin},
			&models.User{ID: 2, Email: "player@example.com", Role: models.RolePlayer},
		),
	}
	guard := NewGuard(f.users, newFakeSeriesParticipantRepo())
	f.svc = NewCourseService(&fakeTxRunner{}, f.courseRepo, guard, nil, testLogger())
	return f
}

func standardTees() []CreateTeeInput {
	return []CreateTeeInput{
		{Name: "Blue", Rating: 72.3, Slope: 130},
		{Name: "White", Rating: 70.1, Slope: 124},
		{Name: "Red", Rating: 68.4, Slope: 118},
	}
}

func nineHoles() []CreateHoleInput {
	holes := make([]CreateHoleInput, 0, 9)
	for i := 1; i <= 9; i++ {
		holes = append(holes, CreateHoleInput{Number: i, Par: 4, HandicapIndex: i, Yards: 350 + i*10})
	}
	return holes
}

func TestCreateCourse(t *testing.T) {
	f := newCourseServiceFixture()

	course, err := f.svc.CreateCourse(context.Background(), 1, CreateCourseInput{
		Name:     "Pebble Creek",
		NumHoles: 9,
		Tees:     standardTees(),
		Holes:    nineHoles(),
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.ID == 0 {
		t.Error("course id not assigned")
	}
	if len(course.Tees) != 3 {
		t.Fatalf("tees = %d, want 3", len(course.Tees))
	}
	// Concurrent tee inserts must land in input order.
	wantTees := []string{"Blue", "White", "Red"}
	for i, tee := range course.Tees {
		if tee.Name != wantTees[i] {
			t.Errorf("tee[%d] = %q, want %q", i, tee.Name, wantTees[i])
		}
		if tee.ID == 0 {
			t.Errorf("tee %q id not assigned", tee.Name)
		}
	}
	if len(course.Holes) != 9 {
		t.Errorf("holes = %d, want 9", len(course.Holes))
	}

	stored, _ := f.courseRepo.ListTeesByCourse(context.Background(), course.ID)
	if len(stored) != 3 {
		t.Errorf("persisted tees = %d, want 3", len(stored))
	}
}

func TestCreateCourseRequiresSiteAdmin(t *testing.T) {
	f := newCourseServiceFixture()
	_, err := f.svc.CreateCourse(context.Background(), 2, CreateCourseInput{Name: "Pebble Creek", NumHoles: 9})
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("CreateCourse by player error = %v, want ErrForbiddenOperation", err)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	f := newCourseServiceFixture()
	tests := []struct {
		name    string
		input   CreateCourseInput
		wantErr error
	}{
		{"missing name", CreateCourseInput{NumHoles: 18}, ErrValidationFailed},
		{"twelve holes", CreateCourseInput{Name: "Odd", NumHoles: 12}, ErrValidationFailed},
		{"bad tee slope", CreateCourseInput{Name: "Steep", NumHoles: 9, Tees: []CreateTeeInput{{Name: "Black", Rating: 75, Slope: 200}}}, ErrInvalidSlope},
		{"unnamed tee", CreateCourseInput{Name: "Anon", NumHoles: 9, Tees: []CreateTeeInput{{Rating: 70, Slope: 120}}}, ErrValidationFailed},
		{"bad hole number", CreateCourseInput{Name: "Long", NumHoles: 18, Holes: []CreateHoleInput{{Number: 19, Par: 4}}}, ErrInvalidHoleNumber},
		{"bad par", CreateCourseInput{Name: "Short", NumHoles: 9, Holes: []CreateHoleInput{{Number: 1, Par: 2}}}, ErrInvalidPar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateCourse(context.Background(), 1, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateCourseDuplicateName(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	if _, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 9}); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if _, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 18}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate name error = %v, want ErrConflict", err)
	}
}

func TestAddHoleConflicts(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 9})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if _, err := f.svc.AddHole(ctx, 1, course.ID, CreateHoleInput{Number: 1, Par: 4, HandicapIndex: 1, Yards: 380}); err != nil {
		t.Fatalf("AddHole: %v", err)
	}
	if _, err := f.svc.AddHole(ctx, 1, course.ID, CreateHoleInput{Number: 1, Par: 5, HandicapIndex: 2, Yards: 520}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate hole number error = %v, want ErrConflict", err)
	}
	if _, err := f.svc.AddHole(ctx, 2, course.ID, CreateHoleInput{Number: 2, Par: 4, HandicapIndex: 2, Yards: 400}); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("AddHole by player error = %v, want ErrForbiddenOperation", err)
	}
}

func TestReplaceHoles(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{
		Name:     "Pebble Creek",
		NumHoles: 9,
		Holes:    nineHoles(),
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	replacement := []CreateHoleInput{
		{Number: 1, Par: 5, HandicapIndex: 3, Yards: 540},
		{Number: 2, Par: 3, HandicapIndex: 9, Yards: 165},
	}
	holes, err := f.svc.ReplaceHoles(ctx, 1, course.ID, replacement)
	if err != nil {
		t.Fatalf("ReplaceHoles: %v", err)
	}
	if len(holes) != 2 {
		t.Fatalf("holes = %d, want 2", len(holes))
	}
	stored, _ := f.courseRepo.ListHolesByCourse(ctx, course.ID)
	if len(stored) != 2 {
		t.Errorf("persisted holes = %d, want the old nine gone", len(stored))
	}
}

func TestReplaceHolesEmptyClearsCourse(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{
		Name:     "Pebble Creek",
		NumHoles: 9,
		Holes:    nineHoles(),
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	holes, err := f.svc.ReplaceHoles(ctx, 1, course.ID, nil)
	if err != nil {
		t.Fatalf("ReplaceHoles with empty set: %v", err)
	}
	if len(holes) != 0 {
		t.Errorf("holes = %d, want 0", len(holes))
	}
	stored, _ := f.courseRepo.ListHolesByCourse(ctx, course.ID)
	if len(stored) != 0 {
		t.Errorf("persisted holes = %d, want 0", len(stored))
	}
}

func TestReplaceHolesUnknownCourse(t *testing.T) {
	f := newCourseServiceFixture()
	if _, err := f.svc.ReplaceHoles(context.Background(), 1, 42, nil); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("error = %v, want ErrCourseNotFound", err)
	}
}

func TestTeeLifecycle(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 18})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	tee, err := f.svc.AddTee(ctx, 1, course.ID, CreateTeeInput{Name: "Blue", Rating: 72.3, Slope: 130})
	if err != nil {
		t.Fatalf("AddTee: %v", err)
	}

	updated, err := f.svc.UpdateTee(ctx, 1, tee.ID, CreateTeeInput{Name: "Blue", Rating: 72.8, Slope: 132})
	if err != nil {
		t.Fatalf("UpdateTee: %v", err)
	}
	if updated.Rating != 72.8 || updated.Slope != 132 {
		t.Errorf("tee = %+v, want rating 72.8 slope 132", updated)
	}

	if _, err := f.svc.UpdateTee(ctx, 1, tee.ID, CreateTeeInput{Name: "Blue", Rating: 72.8, Slope: 10}); !errors.Is(err, ErrInvalidSlope) {
		t.Errorf("bad slope error = %v, want ErrInvalidSlope", err)
	}

	if err := f.svc.DeleteTee(ctx, 1, tee.ID); err != nil {
		t.Fatalf("DeleteTee: %v", err)
	}
	if err := f.svc.DeleteTee(ctx, 1, tee.ID); !errors.Is(err, ErrTeeNotFound) {
		t.Errorf("second delete error = %v, want ErrTeeNotFound", err)
	}
}

func TestUpdateCourse(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 9})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	name := "Pebble Creek North"
	eighteen := 18
	updated, err := f.svc.UpdateCourse(ctx, 1, course.ID, UpdateCourseInput{Name: &name, NumHoles: &eighteen})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Name != name || updated.NumHoles != 18 {
		t.Errorf("course = %+v, want renamed 18-hole course", updated)
	}

	twelve := 12
	if _, err := f.svc.UpdateCourse(ctx, 1, course.ID, UpdateCourseInput{NumHoles: &twelve}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("twelve holes error = %v, want ErrValidationFailed", err)
	}
	if _, err := f.svc.UpdateCourse(ctx, 2, course.ID, UpdateCourseInput{Name: &name}); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("update by player error = %v, want ErrForbiddenOperation", err)
	}
}

func TestUploadCourseImageWithoutUploader(t *testing.T) {
	f := newCourseServiceFixture()
	ctx := context.Background()
	course, err := f.svc.CreateCourse(ctx, 1, CreateCourseInput{Name: "Pebble Creek", NumHoles: 9})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if _, err := f.svc.UploadCourseImage(ctx, 1, course.ID, "image/png", nil); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("upload without storage error = %v, want ErrValidationFailed", err)
	}
}
