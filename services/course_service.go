package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
	"github.com/golfcompete/golfcompete/storage"
)

type CreateCourseInput struct {
	Name     string            `json:"name"`
	City     *string           `json:"city"`
	State    *string           `json:"state"`
	NumHoles int               `json:"num_holes"`
	Tees     []CreateTeeInput  `json:"tees"`
	Holes    []CreateHoleInput `json:"holes"`
}

type UpdateCourseInput struct {
	Name     *string `json:"name"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	NumHoles *int    `json:"num_holes"`
}

type CreateTeeInput struct {
	Name   string  `json:"name"`
	Gender *string `json:"gender"`
	Rating float64 `json:"rating"`
	Slope  int     `json:"slope"`
}

type CreateHoleInput struct {
	Number        int `json:"number"`
	Par           int `json:"par"`
	HandicapIndex int `json:"handicap_index"`
	Yards         int `json:"yards"`
}

// CourseService manages the course catalog. Every mutation is restricted to
// site admins; reads are open.
type CourseService interface {
	CreateCourse(ctx context.Context, actorID int, input CreateCourseInput) (*models.Course, error)
	GetCourse(ctx context.Context, id int, includeHoles, includeTees bool) (*models.Course, error)
	ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, actorID, id int, input UpdateCourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, actorID, id int) error

	AddHole(ctx context.Context, actorID, courseID int, input CreateHoleInput) (*models.Hole, error)
	UpdateHole(ctx context.Context, actorID, holeID int, input CreateHoleInput) (*models.Hole, error)
	DeleteHole(ctx context.Context, actorID, holeID int) error
	ReplaceHoles(ctx context.Context, actorID, courseID int, inputs []CreateHoleInput) ([]models.Hole, error)

	AddTee(ctx context.Context, actorID, courseID int, input CreateTeeInput) (*models.CourseTee, error)
	UpdateTee(ctx context.Context, actorID, teeID int, input CreateTeeInput) (*models.CourseTee, error)
	DeleteTee(ctx context.Context, actorID, teeID int) error

	UploadCourseImage(ctx context.Context, actorID, courseID int, contentType string, file io.Reader) (*models.Course, error)
}

type courseService struct {
	tx         TxRunner
	courseRepo repositories.CourseRepository
	guard      *Guard
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewCourseService(
	tx TxRunner,
	courseRepo repositories.CourseRepository,
	guard *Guard,
	uploader storage.FileUploader,
	logger *slog.Logger,
) CourseService {
	return &courseService{
		tx:         tx,
		courseRepo: courseRepo,
		guard:      guard,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *courseService) requireSiteAdmin(ctx context.Context, actorID int) error {
	admin, err := s.guard.IsSiteAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbiddenOperation
	}
	return nil
}

func validateHoleInput(input CreateHoleInput) error {
	if input.Number < 1 || input.Number > 18 {
		return ErrInvalidHoleNumber
	}
	if input.Par < 3 || input.Par > 6 {
		return ErrInvalidPar
	}
	return nil
}

func validateTeeInput(input CreateTeeInput) error {
	if input.Name == "" {
		return ErrValidationFailed
	}
	if input.Slope < 55 || input.Slope > 155 {
		return ErrInvalidSlope
	}
	return nil
}

// CreateCourse inserts the course row, then its tees concurrently and its
// holes sequentially. Tee inserts are independent of each other, so they
// fan out in an errgroup.
func (s *courseService) CreateCourse(ctx context.Context, actorID int, input CreateCourseInput) (*models.Course, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.NumHoles != 9 && input.NumHoles != 18 {
		return nil, ErrValidationFailed
	}
	for _, t := range input.Tees {
		if err := validateTeeInput(t); err != nil {
			return nil, err
		}
	}
	for _, h := range input.Holes {
		if err := validateHoleInput(h); err != nil {
			return nil, err
		}
	}

	course := &models.Course{
		Name:     input.Name,
		City:     input.City,
		State:    input.State,
		NumHoles: input.NumHoles,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseNameConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	if len(input.Tees) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		tees := make([]models.CourseTee, len(input.Tees))
		for i, t := range input.Tees {
			i, t := i, t
			g.Go(func() error {
				tee := models.CourseTee{
					CourseID: course.ID,
					Name:     t.Name,
					Gender:   t.Gender,
					Rating:   t.Rating,
					Slope:    t.Slope,
				}
				if err := s.courseRepo.CreateTee(gctx, &tee); err != nil {
					return err
				}
				tees[i] = tee
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			if errors.Is(err, repositories.ErrCourseTeeConflict) {
				return nil, ErrConflict
			}
			return nil, fmt.Errorf("failed to create tees for course %d: %w", course.ID, err)
		}
		course.Tees = tees
	}

	for _, h := range input.Holes {
		hole := models.Hole{
			CourseID:      course.ID,
			Number:        h.Number,
			Par:           h.Par,
			HandicapIndex: h.HandicapIndex,
			Yards:         h.Yards,
		}
		if err := s.courseRepo.CreateHole(ctx, &hole); err != nil {
			return nil, fmt.Errorf("failed to create hole %d of course %d: %w", h.Number, course.ID, err)
		}
		course.Holes = append(course.Holes, hole)
	}
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id int, includeHoles, includeTees bool) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}

	if includeHoles {
		holes, err := s.courseRepo.ListHolesByCourse(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load holes of course %d: %w", id, err)
		}
		course.Holes = holes
	}
	if includeTees {
		tees, err := s.courseRepo.ListTeesByCourse(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load tees of course %d: %w", id, err)
		}
		course.Tees = tees
	}
	s.fillImageURL(course)
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	courses, err := s.courseRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		s.fillImageURL(c)
	}
	return courses, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, actorID, id int, input UpdateCourseInput) (*models.Course, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrValidationFailed
		}
		course.Name = *input.Name
	}
	if input.City != nil {
		course.City = input.City
	}
	if input.State != nil {
		course.State = input.State
	}
	if input.NumHoles != nil {
		if *input.NumHoles != 9 && *input.NumHoles != 18 {
			return nil, ErrValidationFailed
		}
		course.NumHoles = *input.NumHoles
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course %d: %w", id, err)
	}
	s.fillImageURL(course)
	return course, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, actorID, id int) error {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return err
	}
	err := s.courseRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrCourseNotFound) {
		return ErrCourseNotFound
	}
	return err
}

func (s *courseService) AddHole(ctx context.Context, actorID, courseID int, input CreateHoleInput) (*models.Hole, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateHoleInput(input); err != nil {
		return nil, err
	}

	hole := &models.Hole{
		CourseID:      courseID,
		Number:        input.Number,
		Par:           input.Par,
		HandicapIndex: input.HandicapIndex,
		Yards:         input.Yards,
	}
	if err := s.courseRepo.CreateHole(ctx, hole); err != nil {
		switch {
		case errors.Is(err, repositories.ErrHoleNumberConflict):
			return nil, ErrConflict
		case errors.Is(err, repositories.ErrCourseChildInvalid):
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to add hole to course %d: %w", courseID, err)
	}
	return hole, nil
}

func (s *courseService) UpdateHole(ctx context.Context, actorID, holeID int, input CreateHoleInput) (*models.Hole, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateHoleInput(input); err != nil {
		return nil, err
	}

	hole, err := s.courseRepo.GetHoleByID(ctx, holeID)
	if err != nil {
		if errors.Is(err, repositories.ErrHoleNotFound) {
			return nil, ErrHoleNotFound
		}
		return nil, fmt.Errorf("failed to get hole %d: %w", holeID, err)
	}

	hole.Number = input.Number
	hole.Par = input.Par
	hole.HandicapIndex = input.HandicapIndex
	hole.Yards = input.Yards

	if err := s.courseRepo.UpdateHole(ctx, hole); err != nil {
		if errors.Is(err, repositories.ErrHoleNumberConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update hole %d: %w", holeID, err)
	}
	return hole, nil
}

func (s *courseService) DeleteHole(ctx context.Context, actorID, holeID int) error {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return err
	}
	err := s.courseRepo.DeleteHole(ctx, holeID)
	if errors.Is(err, repositories.ErrHoleNotFound) {
		return ErrHoleNotFound
	}
	return err
}

// ReplaceHoles swaps the course's full hole set in one transaction. An empty
// input is valid and leaves the course with no holes.
func (s *courseService) ReplaceHoles(ctx context.Context, actorID, courseID int, inputs []CreateHoleInput) ([]models.Hole, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	for _, h := range inputs {
		if err := validateHoleInput(h); err != nil {
			return nil, err
		}
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", courseID, err)
	}

	holes := make([]models.Hole, 0, len(inputs))
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		cr := s.courseRepo.WithTx(tx)
		if err := cr.DeleteHolesByCourse(ctx, courseID); err != nil {
			return err
		}
		for _, h := range inputs {
			hole := models.Hole{
				CourseID:      courseID,
				Number:        h.Number,
				Par:           h.Par,
				HandicapIndex: h.HandicapIndex,
				Yards:         h.Yards,
			}
			if err := cr.CreateHole(ctx, &hole); err != nil {
				return err
			}
			holes = append(holes, hole)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrHoleNumberConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to replace holes of course %d: %w", courseID, err)
	}
	return holes, nil
}

func (s *courseService) AddTee(ctx context.Context, actorID, courseID int, input CreateTeeInput) (*models.CourseTee, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateTeeInput(input); err != nil {
		return nil, err
	}

	tee := &models.CourseTee{
		CourseID: courseID,
		Name:     input.Name,
		Gender:   input.Gender,
		Rating:   input.Rating,
		Slope:    input.Slope,
	}
	if err := s.courseRepo.CreateTee(ctx, tee); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourseTeeConflict):
			return nil, ErrConflict
		case errors.Is(err, repositories.ErrCourseChildInvalid):
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to add tee to course %d: %w", courseID, err)
	}
	return tee, nil
}

func (s *courseService) UpdateTee(ctx context.Context, actorID, teeID int, input CreateTeeInput) (*models.CourseTee, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateTeeInput(input); err != nil {
		return nil, err
	}

	tee, err := s.courseRepo.GetTeeByID(ctx, teeID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseTeeNotFound) {
			return nil, ErrTeeNotFound
		}
		return nil, fmt.Errorf("failed to get course tee %d: %w", teeID, err)
	}

	tee.Name = input.Name
	tee.Gender = input.Gender
	tee.Rating = input.Rating
	tee.Slope = input.Slope

	if err := s.courseRepo.UpdateTee(ctx, tee); err != nil {
		if errors.Is(err, repositories.ErrCourseTeeConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update course tee %d: %w", teeID, err)
	}
	return tee, nil
}

func (s *courseService) DeleteTee(ctx context.Context, actorID, teeID int) error {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return err
	}
	err := s.courseRepo.DeleteTee(ctx, teeID)
	if errors.Is(err, repositories.ErrCourseTeeNotFound) {
		return ErrTeeNotFound
	}
	return err
}

func (s *courseService) UploadCourseImage(ctx context.Context, actorID, courseID int, contentType string, file io.Reader) (*models.Course, error) {
	if err := s.requireSiteAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrValidationFailed
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", courseID, err)
	}

	key := fmt.Sprintf("courses/%d/image-%d", courseID, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload course image: %w", err)
	}

	oldKey := course.ImageKey
	if err := s.courseRepo.UpdateImageKey(ctx, courseID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store image key of course %d: %w", courseID, err)
	}
	course.ImageKey = &result.Key
	course.ImageURL = &result.Location

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous course image",
				slog.Int("course_id", courseID), slog.String("key", *oldKey), slog.Any("error", err))
		}
	}
	return course, nil
}

func (s *courseService) fillImageURL(course *models.Course) {
	if s.uploader != nil && course.ImageKey != nil {
		url := s.uploader.GetPublicURL(*course.ImageKey)
		course.ImageURL = &url
	}
}
