package events

// Event type constants, format: domain.action

// Poll lifecycle events
const (
	EventTypePollCreated        = "poll.created"
	EventTypePollUpdated        = "poll.updated"
	EventTypePollDeleted        = "poll.deleted"
	EventTypePollOptionsAdded   = "poll.options_added"
	EventTypePollOptionsDeleted = "poll.options_deleted"
)

// Engagement events
const (
	EventTypePollVoted   = "poll.voted"
	EventTypePollLiked   = "poll.liked"
	EventTypePollUnliked = "poll.unliked"
)

// Aggregate type constants
const (
	AggregateTypePoll = "poll"
)

// Redis channel carrying every poll event across instances
const (
	ChannelPolls = "channel:polls"
)
