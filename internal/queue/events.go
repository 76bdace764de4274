package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventPostCommented  = "post_commented"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// ActivityEvent is a committed social action published for downstream
// consumers. Only the ids relevant to Type are set.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred
	ActorID   int64  `json:"actor_id"`

	PostID    int64 `json:"post_id,omitempty"`
	AuthorID  int64 `json:"author_id,omitempty"`
	CommentID int64 `json:"comment_id,omitempty"`

	// Follow events
	TargetUserID int64 `json:"target_user_id,omitempty"`
}

func newEvent(eventType string, actorID int64) ActivityEvent {
	return ActivityEvent{Type: eventType, Timestamp: time.Now().Unix(), ActorID: actorID}
}

func NewPostCreatedEvent(postID, authorID int64) ActivityEvent {
	e := newEvent(EventPostCreated, authorID)
	e.PostID, e.AuthorID = postID, authorID
	return e
}

func NewPostDeletedEvent(postID, authorID int64) ActivityEvent {
	e := newEvent(EventPostDeleted, authorID)
	e.PostID, e.AuthorID = postID, authorID
	return e
}

func NewUserFollowedEvent(followerID, followeeID int64) ActivityEvent {
	e := newEvent(EventUserFollowed, followerID)
	e.TargetUserID = followeeID
	return e
}

func NewUserUnfollowedEvent(followerID, followeeID int64) ActivityEvent {
	e := newEvent(EventUserUnfollowed, followerID)
	e.TargetUserID = followeeID
	return e
}

// NewLikeToggledEvent picks post_liked or post_unliked from the resulting state.
func NewLikeToggledEvent(postID, authorID, actorID int64, liked bool) ActivityEvent {
	eventType := EventPostUnliked
	if liked {
		eventType = EventPostLiked
	}
	e := newEvent(eventType, actorID)
	e.PostID, e.AuthorID = postID, authorID
	return e
}

func NewPostCommentedEvent(postID, authorID, actorID, commentID int64) ActivityEvent {
	e := newEvent(EventPostCommented, actorID)
	e.PostID, e.AuthorID, e.CommentID = postID, authorID, commentID
	return e
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent is the inverse of ToMap for stream consumers reading
// stream:activity.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
