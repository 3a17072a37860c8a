package export

import (
	"fmt"
	"os/exec"
	"strings"
)

// renderDOCX converts the document to OOXML via pandoc. The model is first
// laid out as pandoc markdown: metadata title, a Topic line, then one
// level-1 heading and paragraph per section.
func renderDOCX(doc Document) (*Result, error) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		return nil, fmt.Errorf("%w: pandoc not installed", ErrOfficeDependencyMissing)
	}

	data, err := runPandoc(docxMarkdown(doc), "docx")
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: exportFilename(doc.Title, FormatDOCX),
		MimeType: mimeDOCX,
	}, nil
}

// renderPPTX converts the document to a slide deck via pandoc. The metadata
// title and subtitle become the title slide; each level-1 heading starts a
// new slide.
func renderPPTX(doc Document) (*Result, error) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		return nil, fmt.Errorf("%w: pandoc not installed", ErrOfficeDependencyMissing)
	}

	data, err := runPandoc(pptxMarkdown(doc), "pptx")
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: exportFilename(doc.Title, FormatPPTX),
		MimeType: mimePPTX,
	}, nil
}

func docxMarkdown(doc Document) string {
	var b strings.Builder
	writeMetaBlock(&b, doc.Title, "")
	if doc.Topic != "" {
		b.WriteString("Topic: " + doc.Topic + "\n\n")
	}
	for _, section := range doc.Sections {
		b.WriteString("# " + section.Title + "\n\n")
		if section.Body != "" {
			b.WriteString(section.Body + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pptxMarkdown lays one slide out per section. The first non-empty content
// line is the slide's lead paragraph; the remaining lines become bullets.
func pptxMarkdown(doc Document) string {
	var b strings.Builder
	writeMetaBlock(&b, doc.Title, doc.Topic)
	for _, section := range doc.Sections {
		b.WriteString("# " + section.Title + "\n\n")
		lead := true
		for _, line := range strings.Split(section.Body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			line = strings.TrimPrefix(line, "- ")
			line = strings.TrimPrefix(line, "* ")
			if lead {
				b.WriteString(line + "\n\n")
				lead = false
				continue
			}
			b.WriteString("- " + line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeMetaBlock(b *strings.Builder, title, subtitle string) {
	b.WriteString("---\n")
	b.WriteString("title: " + quoteYAML(title) + "\n")
	if subtitle != "" {
		b.WriteString("subtitle: " + quoteYAML(subtitle) + "\n")
	}
	b.WriteString("---\n\n")
}

func quoteYAML(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func runPandoc(markdown, target string) ([]byte, error) {
	cmd := exec.Command("pandoc",
		"-f", "markdown",
		"-t", target,
		"--standalone",
		"-o", "-",
	)
	cmd.Stdin = strings.NewReader(markdown)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("pandoc failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("pandoc execution failed: %w", err)
	}
	return output, nil
}
