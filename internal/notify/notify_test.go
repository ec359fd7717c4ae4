package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FallsBackToLog(t *testing.T) {
	n := New("", "from@x.dev", zap.NewNop())
	require.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, n.Publish(context.Background(), Message{To: "a@b.dev"}))

	assert.IsType(t, &ResendNotifier{}, New("re_123", "from@x.dev", zap.NewNop()))
}

func TestLoginLink(t *testing.T) {
	msg, err := LoginLink("a@b.dev", "https://prep.dev/auth/callback?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "a@b.dev", msg.To)
	assert.Contains(t, msg.HTML, `href="https://prep.dev/auth/callback?token=abc"`)
}

func TestFeedbackReady_EscapesRole(t *testing.T) {
	msg, err := FeedbackReady("a@b.dev", "<script>", 81, "https://prep.dev/interview/1/feedback")
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "81/100")
	assert.NotContains(t, msg.HTML, "<script>")
}
