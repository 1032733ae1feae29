package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openlearn/lms-api/internal/model"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
)

// Events are the entry points called inline by other domain
// operations (enrollment completing, content publishing, ratings,
// admin actions). They never fail the triggering operation: every
// error here is logged and swallowed.
type Events interface {
	EnrollmentConfirmed(ctx context.Context, studentID, courseID uuid.UUID)
	NewContentAdded(ctx context.Context, courseID, sectionID uuid.UUID, sectionTitle string, subSectionCount int)
	ProgressMilestone(ctx context.Context, studentID, courseID uuid.UUID, percentComplete int)
	NewRating(ctx context.Context, courseID uuid.UUID, rating, reviewCount int)
	CourseStatusChanged(ctx context.Context, courseID uuid.UUID, oldStatus, newStatus model.CourseStatus)
	NewCourseCreated(ctx context.Context, courseID uuid.UUID)
	UserRegistered(ctx context.Context, userID uuid.UUID)
	InstructorApproved(ctx context.Context, instructorID uuid.UUID)
}

// notify persists one event-driven record, logging instead of
// propagating failures.
func (s *service) notify(ctx context.Context, n *model.Notification) {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	if n.Priority == "" {
		n.Priority = priorityForEvent(n.Type, n.Metadata)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().
			Err(err).
			Str("type", string(n.Type)).
			Str("recipient_id", n.RecipientID.String()).
			Msg("failed to create event notification")
	}
}

func (s *service) logDependencyFailure(dependency string, eventType model.NotificationType, err error) {
	depErr := apperrors.NewDependency(dependency, err)
	log.Error().
		Err(depErr).
		Str("type", string(eventType)).
		Msg("skipping notification, dependency lookup failed")
}

func (s *service) EnrollmentConfirmed(ctx context.Context, studentID, courseID uuid.UUID) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationEnrollmentConfirmed, err)
		return
	}
	student, err := s.users.Get(ctx, studentID)
	if err != nil {
		s.logDependencyFailure("user directory", model.NotificationEnrollmentConfirmed, err)
		return
	}

	s.notify(ctx, &model.Notification{
		RecipientID:     studentID,
		Type:            model.NotificationEnrollmentConfirmed,
		Title:           "Enrollment confirmed",
		Message:         fmt.Sprintf("You are now enrolled in %s", course.Title),
		RelatedCourseID: &course.ID,
		ActionURL:       fmt.Sprintf("/courses/%s", course.ID),
		Metadata: &model.EnrollmentMetadata{
			CourseTitle: course.Title,
			EnrolledAt:  time.Now(),
		},
	})

	s.notify(ctx, &model.Notification{
		RecipientID:     course.InstructorID,
		Type:            model.NotificationNewStudentEnrollment,
		Title:           "New student enrolled",
		Message:         fmt.Sprintf("%s %s enrolled in %s", student.FirstName, student.LastName, course.Title),
		RelatedCourseID: &course.ID,
		RelatedUserID:   &student.ID,
		Metadata: &model.StudentEnrollmentMetadata{
			StudentName: fmt.Sprintf("%s %s", student.FirstName, student.LastName),
		},
	})
}

func (s *service) NewContentAdded(ctx context.Context, courseID, sectionID uuid.UUID, sectionTitle string, subSectionCount int) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationNewContent, err)
		return
	}
	students, err := s.courses.ListEnrolledStudents(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationNewContent, err)
		return
	}

	for _, student := range students {
		s.notify(ctx, &model.Notification{
			RecipientID:      student.ID,
			Type:             model.NotificationNewContent,
			Title:            "New content available",
			Message:          fmt.Sprintf("%s has new content: %s", course.Title, sectionTitle),
			RelatedCourseID:  &course.ID,
			RelatedSectionID: &sectionID,
			ActionURL:        fmt.Sprintf("/courses/%s", course.ID),
			Metadata: &model.NewContentMetadata{
				SectionTitle:    sectionTitle,
				SubSectionCount: subSectionCount,
			},
		})
	}
}

func (s *service) ProgressMilestone(ctx context.Context, studentID, courseID uuid.UUID, percentComplete int) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationProgressMilestone, err)
		return
	}

	s.notify(ctx, &model.Notification{
		RecipientID:     studentID,
		Type:            model.NotificationProgressMilestone,
		Title:           "Milestone reached",
		Message:         fmt.Sprintf("You completed %d%% of %s", percentComplete, course.Title),
		RelatedCourseID: &course.ID,
		Metadata: &model.ProgressMilestoneMetadata{
			PercentComplete: percentComplete,
		},
	})
}

func (s *service) NewRating(ctx context.Context, courseID uuid.UUID, rating, reviewCount int) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationNewRating, err)
		return
	}

	s.notify(ctx, &model.Notification{
		RecipientID:     course.InstructorID,
		Type:            model.NotificationNewRating,
		Title:           "New rating received",
		Message:         fmt.Sprintf("%s received a %d-star rating", course.Title, rating),
		RelatedCourseID: &course.ID,
		Metadata: &model.RatingMetadata{
			Rating:      rating,
			ReviewCount: reviewCount,
		},
	})
}

func (s *service) CourseStatusChanged(ctx context.Context, courseID uuid.UUID, oldStatus, newStatus model.CourseStatus) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationCourseStatusChange, err)
		return
	}

	s.notify(ctx, &model.Notification{
		RecipientID:     course.InstructorID,
		Type:            model.NotificationCourseStatusChange,
		Title:           "Course status changed",
		Message:         fmt.Sprintf("%s is now %s", course.Title, newStatus),
		RelatedCourseID: &course.ID,
		Metadata: &model.CourseStatusMetadata{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
}

func (s *service) NewCourseCreated(ctx context.Context, courseID uuid.UUID) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		s.logDependencyFailure("course directory", model.NotificationNewCourseCreation, err)
		return
	}
	instructor, err := s.users.Get(ctx, course.InstructorID)
	if err != nil {
		s.logDependencyFailure("user directory", model.NotificationNewCourseCreation, err)
		return
	}

	admins, err := s.resolver.Resolve(ctx, RecipientRule{Audience: AudienceAdmins})
	if err != nil {
		s.logDependencyFailure("user directory", model.NotificationNewCourseCreation, err)
		return
	}

	for _, admin := range admins {
		s.notify(ctx, &model.Notification{
			RecipientID:     admin.ID,
			Type:            model.NotificationNewCourseCreation,
			Title:           "New course created",
			Message:         fmt.Sprintf("%s %s created %s", instructor.FirstName, instructor.LastName, course.Title),
			RelatedCourseID: &course.ID,
			RelatedUserID:   &instructor.ID,
			Metadata: &model.CourseCreationMetadata{
				InstructorName: fmt.Sprintf("%s %s", instructor.FirstName, instructor.LastName),
			},
		})
	}
}

func (s *service) UserRegistered(ctx context.Context, userID uuid.UUID) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.logDependencyFailure("user directory", model.NotificationNewUserRegistration, err)
		return
	}

	admins, err := s.resolver.Resolve(ctx, RecipientRule{Audience: AudienceAdmins})
	if err != nil {
		s.logDependencyFailure("user directory", model.NotificationNewUserRegistration, err)
		return
	}

	for _, admin := range admins {
		s.notify(ctx, &model.Notification{
			RecipientID:   admin.ID,
			Type:          model.NotificationNewUserRegistration,
			Title:         "New user registered",
			Message:       fmt.Sprintf("%s %s signed up as %s", user.FirstName, user.LastName, user.AccountType),
			RelatedUserID: &user.ID,
			Metadata: &model.UserRegistrationMetadata{
				AccountType: user.AccountType,
			},
		})
	}
}

func (s *service) InstructorApproved(ctx context.Context, instructorID uuid.UUID) {
	s.notify(ctx, &model.Notification{
		RecipientID: instructorID,
		Type:        model.NotificationInstructorApproval,
		Title:       "Instructor application approved",
		Message:     "Your instructor application has been approved. You can now create courses.",
		ActionURL:   "/instructor/dashboard",
		Metadata: &model.InstructorApprovalMetadata{
			ApprovedAt: time.Now(),
		},
	})
}
