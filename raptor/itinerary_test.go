package raptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-transit/graph"
)

func _StepKinds(t *testing.T, planner *Planner, dir graph.Direction, from, to int32, at int32) []StepKind {
	opts := _TestOptions()
	opts.Direction = dir
	req := Request{From: from, To: to, Time: _At(at), Options: opts}
	query := _NewQuery("test", planner.net, planner.g, planner.days.Get(req.Time), &req)
	require.NoError(t, query._RunAttempt(context.Background(), 2000, 2))
	require.Equal(t, 1, query.targets.Length())

	steps, err := query.builder.Steps(query.targets.States()[0])
	require.NoError(t, err)
	kinds := []StepKind{}
	for _, step := range steps {
		kinds = append(kinds, step.Kind)
	}
	return kinds
}

func TestStepsForward(t *testing.T) {
	kinds := _StepKinds(t, _BuildLine(t), graph.FORWARD, _NODE_O, _NODE_C, 0)
	assert.Equal(t, []StepKind{WALK_STEP, BOARD_STEP, HOP_STEP, DWELL_STEP, HOP_STEP, ALIGHT_STEP}, kinds)
}

func TestStepsBackward(t *testing.T) {
	kinds := _StepKinds(t, _BuildLine(t), graph.BACKWARD, _NODE_A, _NODE_D, 15)
	assert.Equal(t, []StepKind{BOARD_STEP, HOP_STEP, ALIGHT_STEP, WALK_STEP}, kinds)
}

func TestStepsExpress(t *testing.T) {
	// passes B without stopping, alights at C
	kinds := _StepKinds(t, _BuildExpress(t), graph.FORWARD, 0, 2, 0)
	assert.Equal(t, []StepKind{BOARD_STEP, HOP_STEP, DWELL_STEP, HOP_STEP, ALIGHT_STEP}, kinds)
}

func TestStepKindString(t *testing.T) {
	assert.Equal(t, "DWELL", DWELL_STEP.String())
	assert.Equal(t, "UNKNOWN", StepKind(9).String())
}
