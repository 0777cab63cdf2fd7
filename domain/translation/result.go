package translation

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Section is one labelled part of a formatted result. Content is already
// escaped for markup and carries explicit line breaks.
type Section struct {
	name    SectionName
	content string
}

// NewSection creates a Section from escaped content.
func NewSection(name SectionName, content string) Section {
	return Section{name: name, content: content}
}

// Name returns the section label.
func (s Section) Name() SectionName { return s.name }

// Content returns the escaped section body.
func (s Section) Content() string { return s.content }

// Result is a render-safe formatted completion.
type Result struct {
	sections []Section
	html     string
}

// NewResult renders the given sections in order.
func NewResult(sections ...Section) (Result, error) {
	var parts []string
	for _, s := range sections {
		out, err := renderSection(s)
		if err != nil {
			return Result{}, err
		}
		parts = append(parts, out)
	}
	secs := make([]Section, len(sections))
	copy(secs, sections)
	return Result{sections: secs, html: strings.Join(parts, "\n")}, nil
}

// Sections returns the result sections in display order.
func (r Result) Sections() []Section {
	secs := make([]Section, len(r.sections))
	copy(secs, r.sections)
	return secs
}

// HTML returns the rendered markup.
func (r Result) HTML() string { return r.html }

// Section returns the named section if present.
func (r Result) Section(name SectionName) (Section, bool) {
	for _, s := range r.sections {
		if s.name == name {
			return s, true
		}
	}
	return Section{}, false
}

var sectionTemplate = template.Must(template.New("section").Parse(
	`<section class="result-section result-{{.Slug}}" role="region" aria-labelledby="{{.HeadingID}}">` +
		`<h3 id="{{.HeadingID}}">{{.Name}}</h3>` +
		`<div class="result-content">{{.Content}}</div>` +
		`</section>`,
))

type sectionView struct {
	Name      string
	Slug      string
	HeadingID string
	Content   template.HTML
}

func renderSection(s Section) (string, error) {
	slug := strings.ToLower(string(s.name))
	view := sectionView{
		Name:      string(s.name),
		Slug:      slug,
		HeadingID: "result-" + slug + "-heading",
		// Content was escaped by Normalize before the <br> markers were added.
		Content: template.HTML(s.content), //nolint:gosec
	}
	var buf bytes.Buffer
	if err := sectionTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render %s section: %w", s.name, err)
	}
	return buf.String(), nil
}
