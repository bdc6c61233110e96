package models

// UsersWatch is a directed edge: FollowerID watches FollowedID.
// The pair is the primary key so a user cannot watch the same target twice.
type UsersWatch struct {
	FollowerID uint `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index:idx_users_watch_followed"`
}

// TableName overrides the table name used by GORM
func (UsersWatch) TableName() string {
	return "users_watch_list"
}

// WatchRequest is the body of the programmatic watch endpoint
type WatchRequest struct {
	User  string `json:"user" form:"user" validate:"required,max=255"`
	// Watch "no" unwatches; any other value, or none, watches
	Watch string `json:"watch" form:"watch" validate:"max=16"`
}

// RawListRequest carries the newline separated list of the raw edit form
type RawListRequest struct {
	Titles string `json:"titles" form:"titles" validate:"max=65535"`
}

// RemoveRequest carries the names checked in the normal edit form
type RemoveRequest struct {
	Users []string `json:"users" validate:"required,min=1,dive,required,max=255"`
}

// PreferenceRequest updates the allow-follow opt-in
type PreferenceRequest struct {
	AllowFollow *bool `json:"allow_follow" validate:"required"`
}
