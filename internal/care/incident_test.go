package care

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dom "nekocare/internal/domain"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(dom.IncidentActive, dom.IncidentMonitoring))
	assert.True(t, CanTransition(dom.IncidentMonitoring, dom.IncidentActive))
	assert.True(t, CanTransition(dom.IncidentActive, dom.IncidentResolved))
	assert.True(t, CanTransition(dom.IncidentMonitoring, dom.IncidentResolved))
	assert.False(t, CanTransition(dom.IncidentResolved, dom.IncidentActive))
	assert.False(t, CanTransition(dom.IncidentResolved, dom.IncidentMonitoring))
	assert.False(t, CanTransition(dom.IncidentActive, "hospital"))
}

func TestParseStatus(t *testing.T) {
	tests := map[string]dom.IncidentStatus{
		"active":     dom.IncidentActive,
		"log":        dom.IncidentActive,
		"hospital":   dom.IncidentActive,
		"Monitoring": dom.IncidentMonitoring,
		"watching":   dom.IncidentMonitoring,
		" tracking ": dom.IncidentMonitoring,
		"resolved":   dom.IncidentResolved,
	}
	for in, want := range tests {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseStatus("closed")
	assert.False(t, ok)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "様子見", StatusLabel(dom.IncidentMonitoring, "ja"))
	assert.Equal(t, "Resolved", StatusLabel(dom.IncidentResolved, "en-US"))
	assert.Equal(t, "対応中", StatusLabel(dom.IncidentActive, "fr"))
	assert.Equal(t, "weird", StatusLabel("weird", "en"))
}
