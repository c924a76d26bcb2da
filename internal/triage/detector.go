package triage

import (
	"regexp"
	"strings"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// criticalPatterns is the ordered catalog of expressions that force the
// urgent protocol regardless of conversation stage. Order only affects
// which pattern is reported; no pattern excludes another. False positives
// are accepted as the safer failure mode.
var criticalPatterns = []string{
	`pensando em suicídio`,
	`pensando em suicidio`,
	`quero (me )?matar`,
	`vou (me )?suicidar`,
	`quero morrer`,
	`não aguento mais`,
	`nao aguento mais`,
	`não suporto mais`,
	`cansei de viver`,
	`vou acabar com tudo`,
	`tentei me matar`,
	`escuto vozes`,
	`ouço vozes`,
	`vejo coisas`,
	`\bsuicídio\b`,
	`\bsuicidio\b`,
}

// Detector scans free text for critical-risk language.
type Detector struct {
	patterns []*regexp.Regexp
	logger   *logging.Logger
}

// NewDetector compiles the critical-phrase catalog.
func NewDetector(logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	patterns := make([]*regexp.Regexp, 0, len(criticalPatterns))
	for _, p := range criticalPatterns {
		// Input is lower-cased before matching, so patterns compile as-is.
		patterns = append(patterns, regexp.MustCompile(p))
	}
	return &Detector{patterns: patterns, logger: logger}
}

// Scan tests the text against the catalog and returns the first matching
// pattern. Only a truncated excerpt of the input is logged to bound log
// volume; the excerpt still carries sensitive content.
func (d *Detector) Scan(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, p := range d.patterns {
		if p.MatchString(lowered) {
			d.logger.Error("critical phrase detected",
				"pattern", p.String(),
				"excerpt", excerpt(text, 50),
			)
			return p.String(), true
		}
	}
	return "", false
}

func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
