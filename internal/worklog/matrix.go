package worklog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasilibs/go-re2"

	"github.com/aatumaykin/nexcrew/internal/constants"
)

// Phases of an orchestration run, keyed by number.
var phaseNames = map[int]string{
	1: "Planning",
	2: "Plan Review",
	3: "Development",
	4: "Debugging",
	5: "Integration",
}

// PhaseName returns the display name of phase n.
func PhaseName(n int) string {
	if name, ok := phaseNames[n]; ok {
		return name
	}
	return "Unknown"
}

var phasePattern = re2.MustCompile(`Phase\s+(\d+)`)

const (
	matrixHeader    = "| Agent | Role | Phase | Gate |"
	matrixSeparator = "|-------|------|-------|------|"
)

// MatrixRow is one agent line of the status matrix.
type MatrixRow struct {
	Agent        string
	Role         string
	CurrentPhase int
	Completed    bool
}

// PendingAgent is an agent whose row is still in progress.
type PendingAgent struct {
	Agent        string
	Role         string
	CurrentPhase int
}

// RenderMatrix renders the status table for rows.
func RenderMatrix(rows []MatrixRow) string {
	var b strings.Builder
	b.WriteString(matrixHeader)
	b.WriteByte('\n')
	b.WriteString(matrixSeparator)
	b.WriteByte('\n')
	for _, r := range rows {
		gate := constants.GlyphInProgress
		if r.Completed {
			gate = constants.GlyphDone
		}
		fmt.Fprintf(&b, "| %s | %s | Phase %d: %s | %s |\n",
			cell(r.Agent), cell(r.Role), r.CurrentPhase, PhaseName(r.CurrentPhase), gate)
	}
	return b.String()
}

// cell keeps a value from breaking the table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}

// ParseMatrix returns every row of the status matrix in content.
func ParseMatrix(content string) []MatrixRow {
	var rows []MatrixRow
	for _, r := range scanMatrix(content) {
		rows = append(rows, r.MatrixRow)
	}
	return rows
}

// ParsePending returns the rows of the status matrix marked in progress.
// Rows with any other gate, or none, are not pending. A row with no readable
// "Phase N" token restarts from phase 1.
func ParsePending(content string) []PendingAgent {
	var pending []PendingAgent
	for _, r := range scanMatrix(content) {
		if !strings.Contains(r.gate, constants.GlyphInProgress) {
			continue
		}
		pending = append(pending, PendingAgent{
			Agent:        r.Agent,
			Role:         r.Role,
			CurrentPhase: r.CurrentPhase,
		})
	}
	return pending
}

type scannedRow struct {
	MatrixRow
	gate string
}

func scanMatrix(content string) []scannedRow {
	section, ok := Parse(content).Section(constants.SectionAgentStatusMatrix)
	if !ok {
		return nil
	}

	var rows []scannedRow
	for _, line := range strings.Split(section.Body, "\n") {
		cells, ok := tableCells(line)
		if !ok || len(cells) < 4 || isHeaderRow(cells) || isSeparatorRow(cells) {
			continue
		}
		rows = append(rows, scannedRow{
			MatrixRow: MatrixRow{
				Agent:        cells[0],
				Role:         cells[1],
				CurrentPhase: parsePhase(cells[2]),
				Completed:    strings.Contains(cells[3], constants.GlyphDone),
			},
			gate: cells[3],
		})
	}
	return rows
}

func parsePhase(s string) int {
	m := phasePattern.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

func tableCells(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil, false
	}
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells, true
}

func isHeaderRow(cells []string) bool {
	return strings.EqualFold(cells[0], "Agent") && strings.EqualFold(cells[1], "Role")
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, ":-") != "" {
			return false
		}
	}
	return true
}
