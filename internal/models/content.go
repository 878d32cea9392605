package models

import "time"

// News is a post in the News collection.
type News struct {
	ID          string    `firestore:"id" json:"id"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description" json:"description"`
	ImageURL    string    `firestore:"imageUrl" json:"imageUrl"`
	ImagePath   string    `firestore:"imagePath,omitempty" json:"-"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	Creator     string    `firestore:"creator" json:"creator"`
	CreatorUID  string    `firestore:"creatorUid" json:"creatorUid"`
}

// CreateNewsRequest is the text part of the multipart news form; the image
// arrives as the "image" file.
type CreateNewsRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=100"`
	Description string `form:"description" binding:"required"`
}

// Event is a calendar entry in the Events collection.
type Event struct {
	ID            string    `firestore:"id" json:"id"`
	Name          string    `firestore:"eventName" json:"eventName"`
	Date          time.Time `firestore:"eventDate" json:"eventDate"`
	Details       string    `firestore:"eventDetails" json:"eventDetails"`
	Participants  string    `firestore:"eventParticipants" json:"eventParticipants"`
	Field         string    `firestore:"eventField" json:"eventField"`
	StartingTime  string    `firestore:"eventStartingTime" json:"eventStartingTime"`
	FinishingTime string    `firestore:"eventFinishingTime" json:"eventFinishingTime"`
	Creator       string    `firestore:"eventCreator" json:"eventCreator"`
	CreatorUID    string    `firestore:"eventCreatorUid" json:"eventCreatorUid"`
}

// CreateEventRequest is the event form.
type CreateEventRequest struct {
	Date          time.Time `json:"doe" binding:"required"`
	Name          string    `json:"name" binding:"required,min=1,max=35"`
	Details       string    `json:"details"`
	Participants  string    `json:"participants"`
	Field         string    `json:"field" binding:"required"`
	StartingTime  string    `json:"startingTime"`
	FinishingTime string    `json:"finishingTime"`
}

// Task is an entry on the task board.
type Task struct {
	ID            string    `firestore:"id" json:"id"`
	Name          string    `firestore:"taskName" json:"taskName"`
	StartingDate  time.Time `firestore:"taskStartingDate" json:"taskStartingDate"`
	FinishingDate time.Time `firestore:"taskFinishingDate" json:"taskFinishingDate"`
	Details       string    `firestore:"taskdetails" json:"taskdetails"`
	Creator       string    `firestore:"taskCreator" json:"taskCreator"`
	CreatorUID    string    `firestore:"taskCreatorUid" json:"taskCreatorUid"`
	AssignedUsers []string  `firestore:"assignedUsers" json:"assignedUsers"`
	Completed     bool      `firestore:"completed" json:"completed"`
}

// AssignedTo reports whether uid may confirm the task: an assignee, or
// anyone when the task is unassigned.
func (t *Task) AssignedTo(uid string) bool {
	if len(t.AssignedUsers) == 0 {
		return true
	}
	for _, id := range t.AssignedUsers {
		if id == uid {
			return true
		}
	}
	return false
}

// CreateTaskRequest is the task form.
type CreateTaskRequest struct {
	StartingDate  time.Time `json:"startingDate" binding:"required"`
	FinishingDate time.Time `json:"finishingDate" binding:"required,gtefield=StartingDate"`
	Name          string    `json:"name" binding:"required,min=1,max=35"`
	Details       string    `json:"details"`
	AssignedUsers []string  `json:"assignedUsers" binding:"omitempty,dive,required"`
}

// TaskView is a task with assignee names resolved for display.
type TaskView struct {
	*Task
	AssigneeNames []string `json:"assigneeNames"`
	CanComplete   bool     `json:"canComplete"`
}

// Change is a logged schedule swap in the Changes collection.
type Change struct {
	ID          string    `firestore:"id" json:"id"`
	UserName    string    `firestore:"userName" json:"userName"`
	UserUID     string    `firestore:"userUid,omitempty" json:"userUid,omitempty"`
	Colaborador string    `firestore:"colaborador" json:"colaborador"`
	Mudancas    string    `firestore:"mudancas" json:"mudancas"`
	Timestamp   time.Time `firestore:"timestamp" json:"timestamp"`
}

// CreateChangeRequest is the schedule swap form.
type CreateChangeRequest struct {
	Colaborador string `json:"colaborador" binding:"required"`
	Mudancas    string `json:"mudancas" binding:"required"`
}

// Message is a group chat message in the messages collection.
type Message struct {
	ID        string    `firestore:"id" json:"id"`
	Text      string    `firestore:"text" json:"text"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	User      string    `firestore:"user" json:"user"`
	UserName  string    `firestore:"-" json:"userName"`
}

// SendMessageRequest is the chat input.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
