package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/posts/{id}", "404"))

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/posts/{id}", "404"))
	assert.Equal(t, 3.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	liked := testutil.ToFloat64(likeToggles.WithLabelValues("liked"))
	RecordLikeToggle(true)
	assert.Equal(t, liked+1, testutil.ToFloat64(likeToggles.WithLabelValues("liked")))

	unfollows := testutil.ToFloat64(followChanges.WithLabelValues("unfollow"))
	RecordFollow(false)
	assert.Equal(t, unfollows+1, testutil.ToFloat64(followChanges.WithLabelValues("unfollow")))

	comments := testutil.ToFloat64(commentsAdded)
	RecordComment()
	assert.Equal(t, comments+1, testutil.ToFloat64(commentsAdded))
}

func TestHandler_ServesRegistry(t *testing.T) {
	RecordPostChange("created")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snapshare_posts_changes_total")
}
