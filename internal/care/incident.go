package care

import (
	"strings"

	dom "nekocare/internal/domain"
)

// CanTransition reports whether an incident may move from one status to
// another. Resolved is terminal; active and monitoring switch freely.
func CanTransition(from, to dom.IncidentStatus) bool {
	if from == dom.IncidentResolved {
		return false
	}
	switch to {
	case dom.IncidentActive, dom.IncidentMonitoring, dom.IncidentResolved:
		return true
	}
	return false
}

// statusAliases maps every status word used by clients onto the canonical
// lifecycle.
var statusAliases = map[string]dom.IncidentStatus{
	"active":     dom.IncidentActive,
	"log":        dom.IncidentActive,
	"hospital":   dom.IncidentActive,
	"monitoring": dom.IncidentMonitoring,
	"watching":   dom.IncidentMonitoring,
	"tracking":   dom.IncidentMonitoring,
	"resolved":   dom.IncidentResolved,
}

// ParseStatus accepts a canonical status or one of its aliases.
func ParseStatus(s string) (dom.IncidentStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

var statusLabels = map[string]map[dom.IncidentStatus]string{
	"ja": {
		dom.IncidentActive:     "対応中",
		dom.IncidentMonitoring: "様子見",
		dom.IncidentResolved:   "解決済み",
	},
	"en": {
		dom.IncidentActive:     "Active",
		dom.IncidentMonitoring: "Monitoring",
		dom.IncidentResolved:   "Resolved",
	},
}

// StatusLabel returns the display label of a status. Unknown locales fall
// back to Japanese.
func StatusLabel(st dom.IncidentStatus, locale string) string {
	lang, _, _ := strings.Cut(strings.ToLower(locale), "-")
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels["ja"]
	}
	if l, ok := labels[st]; ok {
		return l
	}
	return string(st)
}
