package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"prepflow/internal/models"
)

var ErrInvalidAssessment = errors.New("invalid assessment")

// Assessment is the structured result of scoring one transcript.
type Assessment struct {
	TotalScore          int
	CategoryScores      []models.CategoryScore
	Strengths           []string
	AreasForImprovement []string
	FinalAssessment     string
}

type rawAssessment struct {
	TotalScore     float64 `json:"totalScore"`
	CategoryScores []struct {
		Name    string  `json:"name"`
		Score   float64 `json:"score"`
		Comment string  `json:"comment"`
	} `json:"categoryScores"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
	FinalAssessment     string   `json:"finalAssessment"`
}

// ParseAssessment decodes model output and normalizes it against categories:
// scores are rounded into [0,100], categories follow the configured order,
// unknown names are dropped and a missing category is an error.
func ParseAssessment(text string, categories []Category) (*Assessment, error) {
	var raw rawAssessment
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssessment, err)
	}

	byName := make(map[string]models.CategoryScore, len(raw.CategoryScores))
	for _, c := range raw.CategoryScores {
		name := strings.TrimSpace(c.Name)
		if _, dup := byName[name]; dup {
			continue
		}
		byName[name] = models.CategoryScore{
			Name:    name,
			Score:   clampScore(c.Score),
			Comment: strings.TrimSpace(c.Comment),
		}
	}

	scores := make([]models.CategoryScore, 0, len(categories))
	for _, cat := range categories {
		cs, ok := byName[cat.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing category %q", ErrInvalidAssessment, cat.Name)
		}
		scores = append(scores, cs)
	}

	return &Assessment{
		TotalScore:          clampScore(raw.TotalScore),
		CategoryScores:      scores,
		Strengths:           compact(raw.Strengths),
		AreasForImprovement: compact(raw.AreasForImprovement),
		FinalAssessment:     strings.TrimSpace(raw.FinalAssessment),
	}, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
