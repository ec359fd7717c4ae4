package ai

import "google.golang.org/genai"

// FeedbackSchema describes the JSON object Gemini must return. Category
// names are constrained to the configured set.
func FeedbackSchema(categories []Category) *genai.Schema {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	n := int64(len(categories))

	score := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeInteger,
			Description: desc,
			Minimum:     genai.Ptr[float64](0),
			Maximum:     genai.Ptr[float64](100),
		}
	}
	stringList := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"totalScore": score("Overall score from 0 to 100"),
			"categoryScores": {
				Type:     genai.TypeArray,
				MinItems: &n,
				MaxItems: &n,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":    {Type: genai.TypeString, Enum: names},
						"score":   score("Category score from 0 to 100"),
						"comment": {Type: genai.TypeString},
					},
					Required:         []string{"name", "score", "comment"},
					PropertyOrdering: []string{"name", "score", "comment"},
				},
			},
			"strengths":           stringList,
			"areasForImprovement": stringList,
			"finalAssessment":     {Type: genai.TypeString},
		},
		Required: []string{"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment"},
		PropertyOrdering: []string{
			"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment",
		},
	}
}
