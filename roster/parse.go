package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Labels are the field captions a roster page uses for program metadata.
// Defaults match the registrar's published pages; they are configurable so a
// differently localized source can be ingested without code changes.
type Labels struct {
	Funding   string
	StudyForm string
	Seats     string
	// Affirmative is the token meaning "yes" in consent/document cells.
	Affirmative string
}

// DefaultLabels returns the captions used by the registrar's public pages.
func DefaultLabels() Labels {
	return Labels{
		Funding:     "Источник финансирования",
		StudyForm:   "Форма обучения",
		Seats:       "Количество мест",
		Affirmative: "да",
	}
}

// Header is the descriptive block preceding a program's applicant table.
type Header struct {
	Name      string
	Funding   string
	StudyForm string
	Seats     int
}

// Row is one applicant row as printed, before any normalization. Free-form
// cells are kept verbatim for the reporting layer.
type Row struct {
	Rank          int
	CandidateID   string // raw, possibly punctuated
	Priority      int
	Consent       string
	Document      string
	AverageScore  string // decimal comma tolerated
	SubjectScores string
}

// HasConsent reports whether the consent cell is affirmative.
func (r Row) HasConsent(l Labels) bool {
	return containsFold(r.Consent, l.Affirmative)
}

// HasOriginalDocument reports whether the document cell is affirmative.
func (r Row) HasOriginalDocument(l Labels) bool {
	return containsFold(r.Document, l.Affirmative)
}

// Score parses the average score cell, accepting a decimal comma.
func (r Row) Score() (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(r.AverageScore), ",", ".")
	return strconv.ParseFloat(s, 64)
}

// Section pairs one program header with its parsed applicant rows.
type Section struct {
	Header      Header
	Rows        []Row
	SkippedRows int // rows with too few cells
}

// Parse extracts every program section from one roster HTML document.
// Program headers are located by <p><strong> elements; metadata fields are
// read from the labelled paragraphs of the enclosing block, and the i-th
// applicant table in document order belongs to the i-th header.
func Parse(content string, labels Labels) ([]Section, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse roster html: %w", err)
	}

	headers := extractHeaders(doc, labels)
	tables := applicantTables(doc)

	sections := make([]Section, 0, len(headers))
	for i, h := range headers {
		sec := Section{Header: h}
		if i < len(tables) {
			sec.Rows, sec.SkippedRows = extractRows(tables[i])
		}
		if len(sec.Rows) == 0 {
			logrus.Warnf("program %q: no applicant rows found", h.Name)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// extractHeaders walks the document for <p><strong> program titles and reads
// the labelled metadata paragraphs from the surrounding block.
func extractHeaders(doc *html.Node, labels Labels) []Header {
	var headers []Header
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "strong" {
			return
		}
		if n.Parent == nil || n.Parent.Data != "p" {
			return
		}
		name := strings.TrimSpace(text(n))
		if name == "" {
			return
		}
		block := n.Parent.Parent // the div wrapping title and metadata
		if block == nil {
			block = n.Parent
		}
		h := Header{Name: name}
		walk(block, func(p *html.Node) {
			if p.Type != html.ElementNode || p.Data != "p" {
				return
			}
			line := strings.TrimSpace(text(p))
			if v, ok := labelled(line, labels.Funding); ok {
				h.Funding = v
			}
			if v, ok := labelled(line, labels.StudyForm); ok {
				h.StudyForm = v
			}
			if v, ok := labelled(line, labels.Seats); ok {
				h.Seats, _ = strconv.Atoi(v)
			}
		})
		headers = append(headers, h)
	})
	return headers
}

// labelled returns the value of a "Label: value" line.
func labelled(line, label string) (string, bool) {
	if label == "" || !strings.HasPrefix(line, label) {
		return "", false
	}
	rest := strings.TrimPrefix(line, label)
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
	return rest, rest != ""
}

// applicantTables returns the applicant tables in document order. Tables
// carrying the bordered class are preferred; when none match, every table is
// taken, which keeps hand-built fixtures and stripped-down exports working.
func applicantTables(doc *html.Node) []*html.Node {
	var bordered, all []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "table" {
			return
		}
		all = append(all, n)
		if strings.Contains(attr(n, "class"), "table-bordered") {
			bordered = append(bordered, n)
		}
	})
	if len(bordered) > 0 {
		return bordered
	}
	return all
}

// extractRows reads applicant rows from one table. Row layout:
// rank, name, candidate id, priority, consent, original document, average
// score, subject scores[, ...]. Rows with fewer than eight cells are
// malformed and skipped.
func extractRows(table *html.Node) (rows []Row, skipped int) {
	walk(table, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		if cls := attr(n, "class"); cls != "" && !strings.Contains(cls, "srt") {
			return
		}
		var cells []string
		walk(n, func(td *html.Node) {
			if td.Type == html.ElementNode && td.Data == "td" {
				cells = append(cells, strings.TrimSpace(text(td)))
			}
		})
		if len(cells) == 0 {
			return // header row
		}
		if len(cells) < 8 {
			skipped++
			return
		}
		rank, _ := strconv.Atoi(cells[0])
		priority, _ := strconv.Atoi(cells[3])
		rows = append(rows, Row{
			Rank:          rank,
			CandidateID:   firstLine(cells[2]),
			Priority:      priority,
			Consent:       cells[4],
			Document:      cells[5],
			AverageScore:  cells[6],
			SubjectScores: cells[7],
		})
	})
	return rows, skipped
}

// firstLine trims a cell down to its identifier line: some sources append
// annotations after the id on separate lines or after a double space.
func firstLine(cell string) string {
	if i := strings.IndexAny(cell, "\n\r"); i >= 0 {
		cell = cell[:i]
	}
	return strings.TrimSpace(cell)
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
