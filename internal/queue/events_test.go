package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityEvent_MapRoundTrip(t *testing.T) {
	event := NewPostCommentedEvent(10, 1, 2, 99)

	values, err := event.ToMap()
	require.NoError(t, err)
	assert.Equal(t, EventPostCommented, values["type"])

	parsed, err := ParseActivityEvent(values)
	require.NoError(t, err)
	assert.Equal(t, event, parsed)
}

func TestNewLikeToggledEvent(t *testing.T) {
	assert.Equal(t, EventPostLiked, NewLikeToggledEvent(1, 2, 3, true).Type)
	assert.Equal(t, EventPostUnliked, NewLikeToggledEvent(1, 2, 3, false).Type)
}

func TestParseActivityEvent_MissingData(t *testing.T) {
	_, err := ParseActivityEvent(map[string]interface{}{"type": EventPostLiked})
	assert.Error(t, err)

	_, err = ParseActivityEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}
