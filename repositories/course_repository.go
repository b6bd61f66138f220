package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golfcompete/golfcompete/models"
	"github.com/lib/pq"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNameConflict = errors.New("course name is already in use")
	ErrHoleNotFound       = errors.New("hole not found")
	ErrHoleNumberConflict = errors.New("a hole with this number already exists on the course")
	ErrCourseTeeNotFound  = errors.New("course tee not found")
	ErrCourseTeeConflict  = errors.New("a tee with this name already exists on the course")
	ErrCourseChildInvalid = errors.New("hole or tee references a missing course")
)

type CourseRepository interface {
	WithTx(tx *sql.Tx) CourseRepository

	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int) (*models.Course, error)
	List(ctx context.Context, limit, offset int) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	UpdateImageKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error

	CreateHole(ctx context.Context, hole *models.Hole) error
	GetHoleByID(ctx context.Context, id int) (*models.Hole, error)
	ListHolesByCourse(ctx context.Context, courseID int) ([]models.Hole, error)
	UpdateHole(ctx context.Context, hole *models.Hole) error
	DeleteHole(ctx context.Context, id int) error
	DeleteHolesByCourse(ctx context.Context, courseID int) error

	CreateTee(ctx context.Context, tee *models.CourseTee) error
	GetTeeByID(ctx context.Context, id int) (*models.CourseTee, error)
	ListTeesByCourse(ctx context.Context, courseID int) ([]models.CourseTee, error)
	UpdateTee(ctx context.Context, tee *models.CourseTee) error
	DeleteTee(ctx context.Context, id int) error
}

type postgresCourseRepository struct {
	exec DBTX
}

func NewPostgresCourseRepository(db DBTX) CourseRepository {
	return &postgresCourseRepository{exec: db}
}

func (r *postgresCourseRepository) WithTx(tx *sql.Tx) CourseRepository {
	return &postgresCourseRepository{exec: tx}
}

func (r *postgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (name, city, state, num_holes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		course.Name,
		course.City,
		course.State,
		course.NumHoles,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCourseNameConflict
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *postgresCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `SELECT id, name, city, state, num_holes, image_key, created_at FROM courses WHERE id = $1`
	c := &models.Course{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.City, &c.State, &c.NumHoles, &c.ImageKey, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresCourseRepository) List(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	query := `SELECT id, name, city, state, num_holes, image_key, created_at FROM courses ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.exec.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c := &models.Course{}
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.State, &c.NumHoles, &c.ImageKey, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, nil
}

func (r *postgresCourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `UPDATE courses SET name = $1, city = $2, state = $3, num_holes = $4 WHERE id = $5`
	result, err := r.exec.ExecContext(ctx, query, course.Name, course.City, course.State, course.NumHoles, course.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCourseNameConflict
		}
		return fmt.Errorf("failed to update course %d: %w", course.ID, err)
	}
	return checkAffectedRows(result, ErrCourseNotFound)
}

func (r *postgresCourseRepository) UpdateImageKey(ctx context.Context, id int, key *string) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE courses SET image_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update image of course %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourseNotFound)
}

func (r *postgresCourseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourseNotFound)
}

func (r *postgresCourseRepository) CreateHole(ctx context.Context, hole *models.Hole) error {
	query := `
		INSERT INTO course_holes (course_id, number, par, handicap_index, yards)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		hole.CourseID,
		hole.Number,
		hole.Par,
		hole.HandicapIndex,
		hole.Yards,
	).Scan(&hole.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrHoleNumberConflict
			case "23503":
				return ErrCourseChildInvalid
			}
		}
		return fmt.Errorf("failed to create hole: %w", err)
	}
	return nil
}

func (r *postgresCourseRepository) GetHoleByID(ctx context.Context, id int) (*models.Hole, error) {
	query := `SELECT id, course_id, number, par, handicap_index, yards FROM course_holes WHERE id = $1`
	h := &models.Hole{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(&h.ID, &h.CourseID, &h.Number, &h.Par, &h.HandicapIndex, &h.Yards)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoleNotFound
		}
		return nil, fmt.Errorf("failed to get hole %d: %w", id, err)
	}
	return h, nil
}

func (r *postgresCourseRepository) ListHolesByCourse(ctx context.Context, courseID int) ([]models.Hole, error) {
	query := `SELECT id, course_id, number, par, handicap_index, yards FROM course_holes WHERE course_id = $1 ORDER BY number ASC`
	rows, err := r.exec.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holes for course %d: %w", courseID, err)
	}
	defer rows.Close()

	holes := make([]models.Hole, 0)
	for rows.Next() {
		var h models.Hole
		if err := rows.Scan(&h.ID, &h.CourseID, &h.Number, &h.Par, &h.HandicapIndex, &h.Yards); err != nil {
			return nil, fmt.Errorf("failed to scan hole row: %w", err)
		}
		holes = append(holes, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hole rows: %w", err)
	}
	return holes, nil
}

func (r *postgresCourseRepository) UpdateHole(ctx context.Context, hole *models.Hole) error {
	query := `UPDATE course_holes SET number = $1, par = $2, handicap_index = $3, yards = $4 WHERE id = $5`
	result, err := r.exec.ExecContext(ctx, query, hole.Number, hole.Par, hole.HandicapIndex, hole.Yards, hole.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrHoleNumberConflict
		}
		return fmt.Errorf("failed to update hole %d: %w", hole.ID, err)
	}
	return checkAffectedRows(result, ErrHoleNotFound)
}

func (r *postgresCourseRepository) DeleteHole(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM course_holes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hole %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrHoleNotFound)
}

func (r *postgresCourseRepository) DeleteHolesByCourse(ctx context.Context, courseID int) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM course_holes WHERE course_id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete holes of course %d: %w", courseID, err)
	}
	return nil
}

func (r *postgresCourseRepository) CreateTee(ctx context.Context, tee *models.CourseTee) error {
	query := `
		INSERT INTO course_tees (course_id, name, gender, rating, slope)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		tee.CourseID,
		tee.Name,
		tee.Gender,
		tee.Rating,
		tee.Slope,
	).Scan(&tee.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrCourseTeeConflict
			case "23503":
				return ErrCourseChildInvalid
			}
		}
		return fmt.Errorf("failed to create course tee: %w", err)
	}
	return nil
}

func (r *postgresCourseRepository) GetTeeByID(ctx context.Context, id int) (*models.CourseTee, error) {
	query := `SELECT id, course_id, name, gender, rating, slope FROM course_tees WHERE id = $1`
	t := &models.CourseTee{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.CourseID, &t.Name, &t.Gender, &t.Rating, &t.Slope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseTeeNotFound
		}
		return nil, fmt.Errorf("failed to get course tee %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresCourseRepository) ListTeesByCourse(ctx context.Context, courseID int) ([]models.CourseTee, error) {
	query := `SELECT id, course_id, name, gender, rating, slope FROM course_tees WHERE course_id = $1 ORDER BY rating DESC`
	rows, err := r.exec.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tees for course %d: %w", courseID, err)
	}
	defer rows.Close()

	tees := make([]models.CourseTee, 0)
	for rows.Next() {
		var t models.CourseTee
		if err := rows.Scan(&t.ID, &t.CourseID, &t.Name, &t.Gender, &t.Rating, &t.Slope); err != nil {
			return nil, fmt.Errorf("failed to scan course tee row: %w", err)
		}
		tees = append(tees, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course tee rows: %w", err)
	}
	return tees, nil
}

func (r *postgresCourseRepository) UpdateTee(ctx context.Context, tee *models.CourseTee) error {
	query := `UPDATE course_tees SET name = $1, gender = $2, rating = $3, slope = $4 WHERE id = $5`
	result, err := r.exec.ExecContext(ctx, query, tee.Name, tee.Gender, tee.Rating, tee.Slope, tee.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCourseTeeConflict
		}
		return fmt.Errorf("failed to update course tee %d: %w", tee.ID, err)
	}
	return checkAffectedRows(result, ErrCourseTeeNotFound)
}

func (r *postgresCourseRepository) DeleteTee(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM course_tees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course tee %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourseTeeNotFound)
}
