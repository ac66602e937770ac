package nlu

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/voicelist/internal/locale"
)

// DateLayout is the normalized task date format (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// datePattern matches "<day>[.]<month digits or word>? <year>?".
// Examples: "25.12", "12. 05 2026", "5 march 2026", "25 декабря".
var datePattern = regexp.MustCompile(`(\d{1,2})\s*(?:\.\s*)?(\d{1,2}|\p{L}+)?\s*(\d{4})?`)

type relativeDay struct {
	phrase string
	offset int
}

// DateParser turns a free-text date phrase into DD.MM.YYYY.
//
// Relative phrases are checked longest first, then the numeric/named-month
// pattern. Missing month and year default to the current ones; unknown month
// words also fall back to the current month. The day/month combination is not
// validated: "31.02" comes out as "31.02.YYYY".
type DateParser struct {
	relative []relativeDay
	months   map[string]int
	now      func() time.Time
}

// NewDateParser builds a parser from the locale's date vocabulary.
// now may be nil, in which case time.Now is used.
func NewDateParser(dates locale.Dates, now func() time.Time) *DateParser {
	if now == nil {
		now = time.Now
	}

	relative := make([]relativeDay, 0, len(dates.RelativeDays))
	for phrase, offset := range dates.RelativeDays {
		relative = append(relative, relativeDay{phrase: phrase, offset: offset})
	}
	// "day after tomorrow" contains "tomorrow": the longer phrase must win.
	sort.Slice(relative, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(relative[i].phrase), utf8.RuneCountInString(relative[j].phrase)
		if li != lj {
			return li > lj
		}
		return relative[i].phrase < relative[j].phrase
	})

	return &DateParser{
		relative: relative,
		months:   dates.Months,
		now:      now,
	}
}

// Parse returns the normalized date and true, or "" and false when the
// utterance holds nothing that looks like a date.
func (p *DateParser) Parse(utterance string) (string, bool) {
	text := strings.ToLower(utterance)
	today := p.now()

	for _, r := range p.relative {
		if strings.Contains(text, r.phrase) {
			return today.AddDate(0, 0, r.offset).Format(DateLayout), true
		}
	}

	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}

	month := int(today.Month())
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			month = n
		} else if n, ok := p.months[m[2]]; ok {
			month = n
		}
	}

	year := today.Year()
	if m[3] != "" {
		if n, err := strconv.Atoi(m[3]); err == nil {
			year = n
		}
	}

	return fmt.Sprintf("%02d.%02d.%d", day, month, year), true
}
