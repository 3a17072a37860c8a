// Package compose turns project metadata into outlines and section text. All
// model calls degrade in place: a failed outline call yields the stock
// outline, a failed section call yields placeholder text that names the
// failure. Callers never see a generation error.
package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/llm"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

// Generator is the text-generation capability. *llm.Client satisfies it;
// tests inject fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

const (
	DocTypeDocument     = "docx"
	DocTypePresentation = "pptx"
)

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Outline produces section titles for the topic. It never fails: a model
// error or unparseable reply yields the default outline for the doc type.
func (s *Service) Outline(ctx context.Context, topic, docType string) []string {
	reply, err := s.gen.Generate(ctx, outlinePrompt(topic, docType))
	if err != nil {
		return DefaultOutline(docType)
	}
	titles := parseOutlineReply(reply, docType)
	if len(titles) == 0 {
		return DefaultOutline(docType)
	}
	return titles
}

// Entries assigns positional ids and order to outline titles: section_N for
// documents, slide_N for presentations, both 1-based.
func Entries(titles []string, docType string) []outline.Entry {
	prefix := "section"
	if docType == DocTypePresentation {
		prefix = "slide"
	}
	entries := make([]outline.Entry, 0, len(titles))
	for i, title := range titles {
		entries = append(entries, outline.Entry{
			ID:    fmt.Sprintf("%s_%d", prefix, i+1),
			Title: title,
			Order: i + 1,
		})
	}
	return entries
}

func DefaultOutline(docType string) []string {
	if docType == DocTypePresentation {
		return []string{"Introduction", "Overview", "Key Points", "Details", "Conclusion"}
	}
	return []string{"Introduction", "Background", "Main Content", "Analysis", "Conclusion"}
}

// Section generates body text for one section. existing, when non-empty, is
// included so the model improves it rather than starting over. On failure the
// returned placeholder embeds the error, section title and topic so the
// document still renders and the reader can see what went wrong.
func (s *Service) Section(ctx context.Context, topic, sectionTitle, docType, existing string) string {
	prompt := sectionPrompt(topic, sectionTitle, docType)
	if existing != "" {
		prompt += fmt.Sprintf("\n\nCurrent content:\n%s\n\nRefine and improve this content based on the above requirements.", existing)
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Sprintf("[Error: OPENROUTER_API_KEY not configured. Please set your OpenRouter API key.]\n\nSection: %s\nTopic: %s\n\nThis is placeholder content. Please configure your OPENROUTER_API_KEY to generate real content.", sectionTitle, topic)
		}
		return fmt.Sprintf("[Error generating content: %s]\n\nSection: %s\nTopic: %s\n\nPlease check your OPENROUTER_API_KEY and API quota.", err, sectionTitle, topic)
	}
	return text
}

// Refine rewrites existing section text per the user's instruction. On
// failure the placeholder carries the original text forward so nothing the
// user already had is lost.
func (s *Service) Refine(ctx context.Context, original, instruction, topic, sectionTitle string) string {
	prompt := fmt.Sprintf(`You are a professional document editor. Refine the following content based on the user's request.

Topic: %s
Section Title: %s
Original Content:
%s

User's Refinement Request: %s

Please refine the content according to the user's request while maintaining the core message and professional tone.`, topic, sectionTitle, original, instruction)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Sprintf("[Error: OPENROUTER_API_KEY not configured.]\n\n%s", original)
		}
		return fmt.Sprintf("[Error refining content: %s]\n\nOriginal content:\n%s", err, original)
	}
	return text
}

func outlinePrompt(topic, docType string) string {
	if docType == DocTypePresentation {
		return fmt.Sprintf(`Generate a presentation outline for the following topic.

Topic: %s

Provide 8-12 slide titles that would make a complete presentation. Return ONLY a JSON array of strings, each string being a slide title. Example format: ["Introduction", "Overview", "Key Points", "Analysis", "Conclusion"]

Do not include any other text, only the JSON array.`, topic)
	}
	return fmt.Sprintf(`Generate a comprehensive document outline for the following topic.

Topic: %s

Provide 5-7 section headers that would make a complete document. Return ONLY a JSON array of strings, each string being a section title. Example format: ["Introduction", "Background", "Analysis", "Findings", "Conclusion"]

Do not include any other text, only the JSON array.`, topic)
}

func sectionPrompt(topic, sectionTitle, docType string) string {
	if docType == DocTypePresentation {
		return fmt.Sprintf(`You are a professional presentation writer. Write content for a PowerPoint slide.

Topic: %s
Slide Title: %s

Write concise, engaging content for this slide. Include:
- Key points (3-5 bullet points)
- Brief explanations
- Actionable insights

Keep it concise (100-200 words) suitable for a presentation slide.`, topic, sectionTitle)
	}
	return fmt.Sprintf(`You are a professional document writer. Write a comprehensive section for a document.

Topic: %s
Section Title: %s

Write detailed, well-structured content for this section. Include:
- Clear introduction to the section
- Main points and explanations
- Supporting details
- Conclusion or transition to next section

Write approximately 300-500 words. Make it professional and informative.`, topic, sectionTitle)
}

// parseOutlineReply extracts titles from a model reply. First choice is the
// bracketed JSON array the prompt asked for; models that ignore the format
// get the line-split fallback, capped at the outline size for the doc type.
func parseOutlineReply(reply, docType string) []string {
	reply = strings.TrimSpace(reply)

	if match := jsonArrayPattern.FindString(reply); match != "" {
		var titles []string
		if err := json.Unmarshal([]byte(match), &titles); err == nil {
			return titles
		}
	}

	var lines []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"`)
		line = strings.Trim(line, `'`)
		if line != "" {
			lines = append(lines, line)
		}
	}
	limit := 7
	if docType == DocTypePresentation {
		limit = 12
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}
