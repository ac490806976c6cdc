package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type probe struct {
	phase Phase
	name  string
	trace *[]string
}

func (p *probe) Phase() Phase { return p.phase }
func (p *probe) Update(time.Duration) {
	*p.trace = append(*p.trace, p.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&probe{phase: PhaseCleanup, name: "cleanup", trace: &trace})
	r.Register(&probe{phase: PhasePreUpdate, name: "pre", trace: &trace})
	r.Register(&probe{phase: PhaseUpdate, name: "update-a", trace: &trace})
	r.Register(&probe{phase: PhaseUpdate, name: "update-b", trace: &trace})
	require.Equal(t, 4, r.Len())

	r.Tick(time.Millisecond)
	require.Equal(t, []string{"pre", "update-a", "update-b", "cleanup"}, trace,
		"phase order, registration order within a phase")
}

func TestRunnerTickPhase(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&probe{phase: PhaseUpdate, name: "update", trace: &trace})
	r.Register(&probe{phase: PhasePersist, name: "persist", trace: &trace})

	r.TickPhase(PhasePersist, time.Millisecond)
	require.Equal(t, []string{"persist"}, trace)
}

func TestRunnerRegisterAfterTick(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&probe{phase: PhaseUpdate, name: "update", trace: &trace})
	r.Tick(time.Millisecond)

	r.Register(&probe{phase: PhasePreUpdate, name: "pre", trace: &trace})
	trace = trace[:0]
	r.Tick(time.Millisecond)
	require.Equal(t, []string{"pre", "update"}, trace, "re-sorts after late registration")
}
