package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthzDenialsCounter(t *testing.T) {
	before := testutil.ToFloat64(AuthzDenials.WithLabelValues("comment", "edit"))
	AuthzDenials.WithLabelValues("comment", "edit").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDenials.WithLabelValues("comment", "edit")))
}

func TestTrackQuery_Observes(t *testing.T) {
	done := TrackQuery("select", "posts")
	done()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency), 1)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "blogicum-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartServiceSpan(context.Background(), "posts", "list")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}
