package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerRoundTrip(t *testing.T) {
	lg := zap.NewNop()
	ctx := WithLogger(context.Background(), lg)

	assert.Same(t, lg, FromContext(ctx))
	assert.Same(t, zap.L(), FromContext(context.Background()))

	base := context.Background()
	assert.Equal(t, base, WithLogger(base, nil))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "01HZX")
	assert.Equal(t, "01HZX", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	base := context.Background()
	assert.Equal(t, base, WithRequestID(base, ""))
}

func TestNew(t *testing.T) {
	for _, prod := range []bool{true, false} {
		lg, err := New(prod)
		require.NoError(t, err)
		require.NotNil(t, lg)
	}
}
