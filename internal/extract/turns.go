package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Turn is one question or answer block. Identifiers count questions and
// answers independently: p1, r1, p2, r2, ...
type Turn struct {
	Identifier string
	Text       string
}

// Question and answer turns open with these markers in the transcript.
const (
	questionMarker = "P -"
	answerMarker   = "R -"
)

// ignorePatterns match the header/footer noise the PDF export injects
// into every page: print dates, source URLs, page counters and archive
// metadata lines.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}.*Museu da Pessoa`),
	regexp.MustCompile(`^https?://`),
	regexp.MustCompile(`^\d+/\d+$`),
	regexp.MustCompile(`^autoria: Museu da Pessoa`),
}

func isNoise(line string) bool {
	for _, pat := range ignorePatterns {
		if pat.MatchString(line) {
			return true
		}
	}
	return false
}

// ParseTurns splits transcript lines into question/answer turns. A line
// starting with a marker opens a new turn; any other line continues the
// current one, joined with a space. Lines before the first marker are
// dropped.
func ParseTurns(lines []string) []Turn {
	var turns []Turn
	pCount, rCount := 0, 0
	currentType := ""
	var buffer []string

	flush := func() {
		if currentType == "" || len(buffer) == 0 {
			return
		}
		n := rCount
		if currentType == "p" {
			n = pCount
		}
		turns = append(turns, Turn{
			Identifier: fmt.Sprintf("%s%d", currentType, n),
			Text:       strings.TrimSpace(strings.Join(buffer, " ")),
		})
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isNoise(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, questionMarker):
			flush()
			pCount++
			currentType = "p"
			buffer = []string{strings.TrimSpace(line[len(questionMarker):])}
		case strings.HasPrefix(line, answerMarker):
			flush()
			rCount++
			currentType = "r"
			buffer = []string{strings.TrimSpace(line[len(answerMarker):])}
		default:
			if currentType != "" {
				buffer = append(buffer, line)
			}
		}
	}
	flush()
	return turns
}

// WriteCSV persists turns with an Identifier,Text header.
func WriteCSV(path string, turns []Turn) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"Identifier", "Text"}); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range turns {
		if err := w.Write([]string{t.Identifier, t.Text}); err != nil {
			f.Close()
			return fmt.Errorf("writing turn %s: %w", t.Identifier, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}
