package api

// Notification channel constants.
const (
	TopicPosts = "posts"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one frame on the notification websocket.
type Event struct {
	Data  any    `json:"data"`
	Event string `json:"event"`
}

// PostEvent is the payload of a TopicPosts event.
// Post holds a Post for create and update, and the post id for delete.
type PostEvent struct {
	Post   any    `json:"post"`
	Action string `json:"action"`
}
