package models

import "github.com/tommyfonseca7/teams-coms-public/internal/activity"

// HomeResponse is everything the home screen renders.
type HomeResponse struct {
	Profile        *UserProfile            `json:"profile"`
	Notifications  []activity.Notification `json:"notifications"`
	UnreadMessages int64                   `json:"unreadMessages"`
	UnreadMessage  string                  `json:"unreadMessage,omitempty"`
	CanManage      bool                    `json:"canManage"`
}

// PushMessage is a device notification sent when content is created.
type PushMessage struct {
	Title    string
	Body     string
	Category activity.Category
	// Recipients limits the push to these uids; empty means everyone.
	Recipients []string
}
