// Package ai scores interview transcripts with Gemini.
package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"prepflow/internal/models"

	"gopkg.in/yaml.v3"
)

const SystemInstruction = "You are a professional interviewer analyzing a mock interview. " +
	"Your task is to evaluate the candidate based on structured categories"

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

//go:embed categories.yaml
var categoriesYAML []byte

// DefaultCategories returns the scoring categories in display order.
func DefaultCategories() []Category {
	cats, err := ParseCategories(categoriesYAML)
	if err != nil {
		panic(err)
	}
	return cats
}

func ParseCategories(data []byte) ([]Category, error) {
	var cats []Category
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("parse categories: none defined")
	}
	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.Name == "" {
			return nil, fmt.Errorf("parse categories: empty name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("parse categories: duplicate %q", c.Name)
		}
		seen[c.Name] = true
	}
	return cats, nil
}

// FormatTranscript renders each turn as "- role: content\n".
func FormatTranscript(transcript []models.TranscriptMessage) string {
	var b strings.Builder
	for _, m := range transcript {
		fmt.Fprintf(&b, "- %s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

func BuildPrompt(transcript []models.TranscriptMessage, categories []Category) string {
	var b strings.Builder
	b.WriteString("You are an AI interviewer analyzing a mock interview. Your task is to evaluate the candidate based on structured categories. ")
	b.WriteString("Be thorough and detailed in your analysis. Don't be lenient with the candidate. ")
	b.WriteString("If there are mistakes or areas for improvement, point them out.\n")
	b.WriteString("Transcript:\n")
	b.WriteString(FormatTranscript(transcript))
	b.WriteString("\nPlease score the candidate from 0 to 100 in the following areas. ")
	b.WriteString("Do not add categories other than the ones provided:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- **%s**: %s\n", c.Name, c.Description)
	}
	return b.String()
}
