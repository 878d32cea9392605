package models

import (
	"time"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
)

// Role is the access tag on a profile. The zero value means no privileges.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleWorker    Role = "worker"
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleWorker:
		return true
	}
	return false
}

// CanManage reports whether r may author or delete shared content and edit roles.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleModerator
}

// UserProfile is the per-account document in the Users collection.
type UserProfile struct {
	UID       string    `firestore:"uid" json:"uid"`
	Name      string    `firestore:"name" json:"name"`
	Email     string    `firestore:"email" json:"email"`
	Role      Role      `firestore:"role,omitempty" json:"role,omitempty"`
	FCMToken  string    `firestore:"fcmToken,omitempty" json:"-"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`

	NewsCount       *int64 `firestore:"newsCount,omitempty" json:"newsCount,omitempty"`
	EventsCreated   *int64 `firestore:"eventsCreated,omitempty" json:"eventsCreated,omitempty"`
	NumberOfChanges *int64 `firestore:"numberOfChanges,omitempty" json:"numberOfChanges,omitempty"`
	TasksCount      *int64 `firestore:"tasksCount,omitempty" json:"tasksCount,omitempty"`
	MessagesSeen    *int64 `firestore:"messagesSeen,omitempty" json:"messagesSeen,omitempty"`

	LatestNewCount        *int64 `firestore:"latestNewCount,omitempty" json:"latestNewCount,omitempty"`
	LatestEventsCreated   *int64 `firestore:"latestEventsCreated,omitempty" json:"latestEventsCreated,omitempty"`
	LatestNumberOfChanges *int64 `firestore:"latestNumberOfChanges,omitempty" json:"latestNumberOfChanges,omitempty"`
	LatestTaskCount       *int64 `firestore:"latestTaskCount,omitempty" json:"latestTaskCount,omitempty"`
}

// Counters extracts the activity counters of the profile.
func (u *UserProfile) Counters() activity.Counters {
	return activity.Counters{
		NewsCount:             u.NewsCount,
		EventsCreated:         u.EventsCreated,
		NumberOfChanges:       u.NumberOfChanges,
		TasksCount:            u.TasksCount,
		LatestNewCount:        u.LatestNewCount,
		LatestEventsCreated:   u.LatestEventsCreated,
		LatestNumberOfChanges: u.LatestNumberOfChanges,
		LatestTaskCount:       u.LatestTaskCount,
		MessagesSeen:          u.MessagesSeen,
	}
}

// TeamMember is a roster entry.
type TeamMember struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name      string `json:"nome" binding:"required,min=1,max=35"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Password2 string `json:"password2" binding:"required,min=8"`
}

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Role      Role      `json:"role,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UpdateFCMTokenRequest registers a device for push notifications.
type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// UpdateRoleRequest is the team screen's role editor.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,role"`
}
