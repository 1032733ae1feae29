package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
	"github.com/openlearn/lms-api/internal/repository"
)

type courseRepository struct {
	BaseRepository
}

func NewCourseRepository(base BaseRepository) repository.CourseRepository {
	return &courseRepository{base}
}

func (r *courseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	query := `
		SELECT * FROM courses
		WHERE id = $1
	`

	var course model.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &course, nil
}

func (r *courseRepository) ListEnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT u.*
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		WHERE e.course_id = $1 AND u.status = $2
		ORDER BY u.created_at
	`

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, courseID, model.UserStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}

	return users, nil
}
