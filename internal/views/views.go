// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"prepflow/internal/models"
)

// DateLayout matches the "MMM D, YYYY h:mm A" display format.
const DateLayout = "Jan 2, 2006 3:04 PM"

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{"feedback", "dashboard"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type CategoryView struct {
	Index   int
	Name    string
	Score   int
	Comment string
}

type FeedbackPage struct {
	Role                string
	TotalScore          string
	Date                string
	FinalAssessment     string
	Categories          []CategoryView
	Strengths           []string
	AreasForImprovement []string
	RetakeURL           string
}

// NewFeedbackPage builds the feedback view; feedback may be nil when the
// interview has not been scored yet.
func NewFeedbackPage(interview *models.Interview, feedback *models.Feedback) FeedbackPage {
	page := FeedbackPage{
		Role:            interview.Role,
		TotalScore:      "N/A",
		Date:            "N/A",
		FinalAssessment: "No final assessment available.",
		RetakeURL:       "/interview/" + interview.ID.Hex(),
	}
	if feedback == nil {
		return page
	}

	page.TotalScore = strconv.Itoa(feedback.TotalScore)
	page.Date = formatDate(feedback.CreatedAt)
	if feedback.FinalAssessment != "" {
		page.FinalAssessment = feedback.FinalAssessment
	}
	for i, c := range feedback.CategoryScores {
		comment := c.Comment
		if comment == "" {
			comment = "No comment provided for this category."
		}
		page.Categories = append(page.Categories, CategoryView{
			Index:   i + 1,
			Name:    c.Name,
			Score:   c.Score,
			Comment: comment,
		})
	}
	page.Strengths = feedback.Strengths
	page.AreasForImprovement = feedback.AreasForImprovement
	return page
}

type InterviewCard struct {
	Role      string
	Type      string
	Techstack []string
	Date      string
	Finalized bool
	Link      string
}

type DashboardPage struct {
	User   *models.User
	Mine   []InterviewCard
	Latest []InterviewCard
}

// NewDashboardPage links the user's own interviews to their feedback and
// everyone else's to the interview itself.
func NewDashboardPage(user *models.User, mine, latest []models.Interview) DashboardPage {
	page := DashboardPage{User: user}
	for _, iv := range mine {
		page.Mine = append(page.Mine, card(iv, "/interview/"+iv.ID.Hex()+"/feedback"))
	}
	for _, iv := range latest {
		page.Latest = append(page.Latest, card(iv, "/interview/"+iv.ID.Hex()))
	}
	return page
}

func card(iv models.Interview, link string) InterviewCard {
	return InterviewCard{
		Role:      iv.Role,
		Type:      iv.Type,
		Techstack: iv.Techstack,
		Date:      formatDate(iv.CreatedAt),
		Finalized: iv.Finalized,
		Link:      link,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(DateLayout)
}
