package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"prepflow/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var transcript = []models.TranscriptMessage{
	{Role: "assistant", Content: "Tell me about yourself."},
	{Role: "user", Content: "I build Go services."},
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 5)
	assert.Equal(t, "Communication Skills", cats[0].Name)
	assert.Equal(t, "Confidence & Clarity", cats[4].Name)
}

func TestParseCategories_Rejects(t *testing.T) {
	for name, in := range map[string]string{
		"empty":     "[]",
		"no name":   "- description: x",
		"duplicate": "- name: A\n- name: A",
		"not yaml":  "{{",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCategories([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestFormatTranscript(t *testing.T) {
	assert.Equal(t,
		"- assistant: Tell me about yourself.\n- user: I build Go services.\n",
		FormatTranscript(transcript))
	assert.Empty(t, FormatTranscript(nil))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(transcript, DefaultCategories())

	assert.Contains(t, p, "Transcript:\n- assistant: Tell me about yourself.\n")
	assert.Contains(t, p, "Do not add categories other than the ones provided")
	assert.Contains(t, p, "- **Problem-Solving**: Ability to analyze problems and propose solutions.")
}

func TestFeedbackSchema(t *testing.T) {
	s := FeedbackSchema(DefaultCategories())

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t,
		[]string{"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment"},
		s.Required)

	cs := s.Properties["categoryScores"]
	require.NotNil(t, cs)
	assert.Equal(t, int64(5), *cs.MinItems)
	assert.Equal(t, int64(5), *cs.MaxItems)
	assert.Len(t, cs.Items.Properties["name"].Enum, 5)
}

func validJSON(t *testing.T) string {
	t.Helper()
	var cats []map[string]any
	for i, c := range DefaultCategories() {
		cats = append(cats, map[string]any{"name": c.Name, "score": 60 + i, "comment": " ok "})
	}
	raw, err := json.Marshal(map[string]any{
		"totalScore":          72.6,
		"categoryScores":      cats,
		"strengths":           []string{"clear", " "},
		"areasForImprovement": []string{"depth"},
		"finalAssessment":     "  Solid.  ",
	})
	require.NoError(t, err)
	return string(raw)
}

func TestParseAssessment(t *testing.T) {
	a, err := ParseAssessment("```json\n"+validJSON(t)+"\n```", DefaultCategories())
	require.NoError(t, err)

	assert.Equal(t, 73, a.TotalScore)
	require.Len(t, a.CategoryScores, 5)
	assert.Equal(t, "Communication Skills", a.CategoryScores[0].Name)
	assert.Equal(t, 64, a.CategoryScores[4].Score)
	assert.Equal(t, "ok", a.CategoryScores[0].Comment)
	assert.Equal(t, []string{"clear"}, a.Strengths)
	assert.Equal(t, "Solid.", a.FinalAssessment)
}

func TestParseAssessment_ReordersAndClamps(t *testing.T) {
	cats := []Category{{Name: "A"}, {Name: "B"}}
	in := `{"totalScore": 140, "categoryScores": [
		{"name": "B", "score": -3, "comment": "b"},
		{"name": "Extra", "score": 50, "comment": "x"},
		{"name": "A", "score": 99.5, "comment": "a"}
	]}`

	a, err := ParseAssessment(in, cats)
	require.NoError(t, err)

	assert.Equal(t, 100, a.TotalScore)
	want := []models.CategoryScore{
		{Name: "A", Score: 100, Comment: "a"},
		{Name: "B", Score: 0, Comment: "b"},
	}
	if diff := cmp.Diff(want, a.CategoryScores); diff != "" {
		t.Errorf("CategoryScores mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, a.Strengths)
}

func TestParseAssessment_Errors(t *testing.T) {
	cats := []Category{{Name: "A"}, {Name: "B"}}

	_, err := ParseAssessment("not json", cats)
	assert.ErrorIs(t, err, ErrInvalidAssessment)

	_, err = ParseAssessment(`{"categoryScores": [{"name": "A", "score": 1}]}`, cats)
	assert.ErrorIs(t, err, ErrInvalidAssessment)
}

func geminiResponse(text string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	return raw
}

func newTestGenerator(t *testing.T, baseURL string) *GeminiGenerator {
	t.Helper()
	g, err := NewGeminiGenerator(context.Background(), GeminiConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsed:      500 * time.Millisecond,
	})
	require.NoError(t, err)
	return g
}

func TestGeminiGenerator_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.0-flash-001:generateContent"), r.URL.Path)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"code": 500, "message": "boom", "status": "INTERNAL"}}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiResponse(validJSON(t)))
	}))
	defer srv.Close()

	a, err := newTestGenerator(t, srv.URL).Generate(context.Background(), transcript)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 73, a.TotalScore)
	assert.Contains(t, gotBody, "systemInstruction")
	assert.Contains(t, gotBody, "generationConfig")
}

func TestGeminiGenerator_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiResponse("not json at all"))
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), transcript)
	assert.ErrorIs(t, err, ErrInvalidAssessment)
}

func TestGeminiGenerator_EmptyTranscript(t *testing.T) {
	_, err := newTestGenerator(t, "http://127.0.0.1:0").Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestNewGeminiGenerator_ZeroBackoffUsesDefaults(t *testing.T) {
	g, err := NewGeminiGenerator(context.Background(), GeminiConfig{APIKey: "test-key"})
	require.NoError(t, err)

	b, ok := g.newBackoff().(*backoff.ExponentialBackOff)
	require.True(t, ok)
	assert.Equal(t, DefaultInitialInterval, b.InitialInterval)
	assert.Equal(t, DefaultMaxInterval, b.MaxInterval)
	assert.Equal(t, DefaultMaxElapsed, b.MaxElapsedTime)
}

func TestGeminiGenerator_ZeroBackoffDoesNotSpin(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiResponse("not json"))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, transcript)

	assert.Error(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}
