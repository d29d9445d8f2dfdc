package worklog

import "strings"

const headerPrefix = "## "

// Section is one "## <Name>" block. Body holds the raw text between the
// header line and the next header, newlines included.
type Section struct {
	Name string
	Body string
}

// Document is a worklog file as an ordered block list. Parse followed by
// String reproduces the input for any file whose headers carry no trailing
// whitespace.
type Document struct {
	Preamble string
	Sections []Section
}

// Parse splits content into the preamble and its sections.
func Parse(content string) *Document {
	doc := &Document{}
	current := -1

	var buf strings.Builder
	flush := func() {
		if current < 0 {
			doc.Preamble = buf.String()
		} else {
			doc.Sections[current].Body = buf.String()
		}
		buf.Reset()
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		if name, ok := headerName(line); ok {
			flush()
			doc.Sections = append(doc.Sections, Section{Name: name})
			current = len(doc.Sections) - 1
			continue
		}
		buf.WriteString(line)
	}
	flush()

	return doc
}

func headerName(line string) (string, bool) {
	if !strings.HasPrefix(line, headerPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, headerPrefix)), true
}

// String renders the document back to its on-disk form.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteString(d.Preamble)
	for _, s := range d.Sections {
		b.WriteString(headerPrefix)
		b.WriteString(s.Name)
		b.WriteByte('\n')
		b.WriteString(s.Body)
	}
	return b.String()
}

// Section returns the first section called name.
func (d *Document) Section(name string) (Section, bool) {
	if i := d.index(name); i >= 0 {
		return d.Sections[i], true
	}
	return Section{}, false
}

// Names lists section names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		names[i] = s.Name
	}
	return names
}

func (d *Document) index(name string) int {
	for i, s := range d.Sections {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// AppendTo adds content at the end of the named section, after anything
// already there. A missing section is created at the end of the document.
func (d *Document) AppendTo(name, content string) {
	content = strings.TrimRight(content, "\n")

	i := d.index(name)
	if i < 0 {
		d.addSection(name, "\n"+content+"\n")
		return
	}

	existing := strings.TrimRight(d.Sections[i].Body, "\n")
	if strings.TrimSpace(existing) == "" {
		d.Sections[i].Body = "\n" + content + "\n" + d.gap(i)
		return
	}
	d.Sections[i].Body = existing + "\n" + content + "\n" + d.gap(i)
}

// Replace overwrites the body of the named section, creating it at the end
// of the document when missing.
func (d *Document) Replace(name, body string) {
	body = "\n" + strings.TrimRight(body, "\n") + "\n"

	i := d.index(name)
	if i < 0 {
		d.addSection(name, body)
		return
	}
	d.Sections[i].Body = body + d.gap(i)
}

// gap keeps one blank line between a section and the header after it.
func (d *Document) gap(i int) string {
	if i < len(d.Sections)-1 {
		return "\n"
	}
	return ""
}

func (d *Document) addSection(name, body string) {
	if n := len(d.Sections); n > 0 {
		d.Sections[n-1].Body = separated(d.Sections[n-1].Body)
	} else {
		d.Preamble = separated(d.Preamble)
	}
	d.Sections = append(d.Sections, Section{Name: name, Body: body})
}

// separated makes text end in a blank line so a following header starts a
// new block.
func separated(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimRight(text, "\n") + "\n\n"
}
