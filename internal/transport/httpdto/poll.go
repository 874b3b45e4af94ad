package httpdto

// CreatePollRequest is used for POST /v1/polls
type CreatePollRequest struct {
	Title   string   `json:"title" binding:"required,min=3,max=300"`
	Options []string `json:"options" binding:"required,min=2,max=10,dive,min=1,max=200"`
}

// OptionPatch is one option-text change inside an update request. The
// version is the option's own version, checked independently of the poll's.
type OptionPatch struct {
	UUID    string `json:"uuid" binding:"required,uuid"`
	Version int    `json:"version" binding:"required,min=1"`
	Text    string `json:"text" binding:"required,min=1,max=200"`
}

// UpdatePollRequest is used for PATCH /v1/polls/:uuid
type UpdatePollRequest struct {
	Version int           `json:"version" binding:"required,min=1"`
	Title   *string       `json:"title" binding:"omitempty,min=3,max=300"`
	Options []OptionPatch `json:"options" binding:"omitempty,max=10,dive"`
}

// AddOptionsRequest is used for POST /v1/polls/:uuid/options
type AddOptionsRequest struct {
	Version int      `json:"version" binding:"required,min=1"`
	Options []string `json:"options" binding:"required,min=1,max=10,dive,min=1,max=200"`
}

// DeleteOptionsRequest is used for DELETE /v1/polls/:uuid/options
type DeleteOptionsRequest struct {
	Version     int      `json:"version" binding:"required,min=1"`
	OptionUUIDs []string `json:"option_uuids" binding:"required,min=1,max=10,dive,uuid"`
}

// VoteRequest is used for POST /v1/polls/:uuid/vote
type VoteRequest struct {
	OptionUUID string `json:"option_uuid" binding:"required,uuid"`
}

// UserVoteResponse is one row of a user's voting history
type UserVoteResponse struct {
	PollUUID   string `json:"poll_uuid"`
	OptionUUID string `json:"option_uuid"`
}
