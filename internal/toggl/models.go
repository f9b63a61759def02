package toggl

import "time"

type Me struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
}

// TimeEntry is a worked interval as reported by the Toggl Track API.
// Duration is in seconds; running entries report a negative duration.
type TimeEntry struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	Duration    int64     `json:"duration"`
}
