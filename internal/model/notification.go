package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationEnrollmentConfirmed  NotificationType = "enrollment_confirmed"
	NotificationNewContent           NotificationType = "new_content"
	NotificationProgressMilestone    NotificationType = "progress_milestone"
	NotificationNewRating            NotificationType = "new_rating"
	NotificationCourseStatusChange   NotificationType = "course_status_change"
	NotificationNewStudentEnrollment NotificationType = "new_student_enrollment"
	NotificationNewCourseCreation    NotificationType = "new_course_creation"
	NotificationNewUserRegistration  NotificationType = "new_user_registration"
	NotificationCourseModification   NotificationType = "course_modification"
	NotificationInstructorApproval   NotificationType = "instructor_approval"
	NotificationAdminAnnouncement    NotificationType = "admin_announcement"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationEnrollmentConfirmed, NotificationNewContent,
		NotificationProgressMilestone, NotificationNewRating,
		NotificationCourseStatusChange, NotificationNewStudentEnrollment,
		NotificationNewCourseCreation, NotificationNewUserRegistration,
		NotificationCourseModification, NotificationInstructorApproval,
		NotificationAdminAnnouncement:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Notification is one per-recipient record. Broadcasting to N users
// produces N independent rows sharing a bulk ID, never one shared row.
type Notification struct {
	ID                  uuid.UUID        `json:"id" db:"id"`
	RecipientID         uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	Type                NotificationType `json:"type" db:"type"`
	Title               string           `json:"title" db:"title"`
	Message             string           `json:"message" db:"message"`
	Read                bool             `json:"read" db:"read"`
	Priority            Priority         `json:"priority" db:"priority"`
	RelatedCourseID     *uuid.UUID       `json:"related_course_id,omitempty" db:"related_course_id"`
	RelatedUserID       *uuid.UUID       `json:"related_user_id,omitempty" db:"related_user_id"`
	RelatedSectionID    *uuid.UUID       `json:"related_section_id,omitempty" db:"related_section_id"`
	RelatedSubSectionID *uuid.UUID       `json:"related_subsection_id,omitempty" db:"related_subsection_id"`
	ActionURL           string           `json:"action_url,omitempty" db:"action_url"`
	Metadata            Metadata         `json:"metadata,omitempty" db:"-"`
	BulkID              *uuid.UUID       `json:"bulk_id,omitempty" db:"bulk_id"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
}

// NotificationWithRelated carries display names for the weak
// references so listings can render without extra lookups.
type NotificationWithRelated struct {
	Notification
	RelatedCourseTitle     *string `json:"related_course_title,omitempty" db:"related_course_title"`
	RelatedUserName        *string `json:"related_user_name,omitempty" db:"related_user_name"`
	RelatedSectionTitle    *string `json:"related_section_title,omitempty" db:"related_section_title"`
	RelatedSubSectionTitle *string `json:"related_subsection_title,omitempty" db:"related_subsection_title"`
}

// Metadata is the event-specific payload attached to a notification.
// Each notification type has its own variant; the type column decides
// which variant a stored payload decodes into.
type Metadata interface {
	EventType() NotificationType
}

type EnrollmentMetadata struct {
	CourseTitle string    `json:"course_title"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

func (EnrollmentMetadata) EventType() NotificationType { return NotificationEnrollmentConfirmed }

type NewContentMetadata struct {
	SectionTitle    string `json:"section_title"`
	SubSectionCount int    `json:"subsection_count"`
}

func (NewContentMetadata) EventType() NotificationType { return NotificationNewContent }

type ProgressMilestoneMetadata struct {
	PercentComplete int `json:"percent_complete"`
}

func (ProgressMilestoneMetadata) EventType() NotificationType { return NotificationProgressMilestone }

type RatingMetadata struct {
	Rating      int `json:"rating"`
	ReviewCount int `json:"review_count"`
}

func (RatingMetadata) EventType() NotificationType { return NotificationNewRating }

type CourseStatusMetadata struct {
	OldStatus CourseStatus `json:"old_status"`
	NewStatus CourseStatus `json:"new_status"`
}

func (CourseStatusMetadata) EventType() NotificationType { return NotificationCourseStatusChange }

type StudentEnrollmentMetadata struct {
	StudentName   string `json:"student_name"`
	TotalEnrolled int    `json:"total_enrolled"`
}

func (StudentEnrollmentMetadata) EventType() NotificationType {
	return NotificationNewStudentEnrollment
}

type CourseCreationMetadata struct {
	InstructorName string `json:"instructor_name"`
}

func (CourseCreationMetadata) EventType() NotificationType { return NotificationNewCourseCreation }

type UserRegistrationMetadata struct {
	AccountType AccountType `json:"account_type"`
}

func (UserRegistrationMetadata) EventType() NotificationType { return NotificationNewUserRegistration }

type CourseModificationMetadata struct {
	ChangedFields []string `json:"changed_fields"`
}

func (CourseModificationMetadata) EventType() NotificationType {
	return NotificationCourseModification
}

type InstructorApprovalMetadata struct {
	ApprovedAt time.Time `json:"approved_at"`
}

func (InstructorApprovalMetadata) EventType() NotificationType {
	return NotificationInstructorApproval
}

type BroadcastMetadata struct {
	Audience       string `json:"audience"`
	RecipientCount int    `json:"recipient_count"`
}

func (BroadcastMetadata) EventType() NotificationType { return NotificationAdminAnnouncement }

// EncodeMetadata serializes a metadata variant for storage.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// DecodeMetadata deserializes a stored payload into the variant for
// the given notification type. Unknown types and empty payloads
// decode to nil.
func DecodeMetadata(t NotificationType, raw []byte) (Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var m Metadata
	switch t {
	case NotificationEnrollmentConfirmed:
		m = &EnrollmentMetadata{}
	case NotificationNewContent:
		m = &NewContentMetadata{}
	case NotificationProgressMilestone:
		m = &ProgressMilestoneMetadata{}
	case NotificationNewRating:
		m = &RatingMetadata{}
	case NotificationCourseStatusChange:
		m = &CourseStatusMetadata{}
	case NotificationNewStudentEnrollment:
		m = &StudentEnrollmentMetadata{}
	case NotificationNewCourseCreation:
		m = &CourseCreationMetadata{}
	case NotificationNewUserRegistration:
		m = &UserRegistrationMetadata{}
	case NotificationCourseModification:
		m = &CourseModificationMetadata{}
	case NotificationInstructorApproval:
		m = &InstructorApprovalMetadata{}
	case NotificationAdminAnnouncement:
		m = &BroadcastMetadata{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s metadata: %w", t, err)
	}
	return m, nil
}

type CreateNotificationRequest struct {
	RecipientID     string           `json:"recipient_id" binding:"required,uuid"`
	Type            NotificationType `json:"type" binding:"required,notificationtype"`
	Title           string           `json:"title" binding:"required"`
	Message         string           `json:"message" binding:"required"`
	RelatedCourseID *string          `json:"related_course_id,omitempty" binding:"omitempty,uuid"`
}

type AdvancedNotificationRequest struct {
	RecipientID         string           `json:"recipient_id" binding:"required,uuid"`
	Type                NotificationType `json:"type" binding:"required,notificationtype"`
	Title               string           `json:"title" binding:"required"`
	Message             string           `json:"message" binding:"required"`
	Priority            Priority         `json:"priority,omitempty"`
	RelatedCourseID     *string          `json:"related_course_id,omitempty" binding:"omitempty,uuid"`
	RelatedUserID       *string          `json:"related_user_id,omitempty" binding:"omitempty,uuid"`
	RelatedSectionID    *string          `json:"related_section_id,omitempty" binding:"omitempty,uuid"`
	RelatedSubSectionID *string          `json:"related_subsection_id,omitempty" binding:"omitempty,uuid"`
	ActionURL           string           `json:"action_url,omitempty"`
	Metadata            json.RawMessage  `json:"metadata,omitempty"`
}

type BroadcastRequest struct {
	Title           string   `json:"title" binding:"required"`
	Message         string   `json:"message" binding:"required"`
	Recipients      string   `json:"recipients" binding:"required,oneof=all students instructors admins specific"`
	SelectedUserIDs []string `json:"selected_user_ids,omitempty" binding:"omitempty,dive,uuid"`
	Priority        Priority `json:"priority,omitempty"`
}

type BroadcastResult struct {
	NotificationID uuid.UUID `json:"notification_id"`
	RecipientCount int       `json:"recipient_count"`
	FailedCount    int       `json:"failed_count,omitempty"`
}

type NotificationPage struct {
	Items       []*NotificationWithRelated `json:"items"`
	TotalCount  int                        `json:"total_count"`
	UnreadCount int                        `json:"unread_count"`
	Page        int                        `json:"page"`
	PageSize    int                        `json:"page_size"`
	TotalPages  int                        `json:"total_pages"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deleted_count"`
}
