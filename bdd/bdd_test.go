package bdd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/endpointvm/bytecode"
)

type recordingEvaluator struct {
	answers map[int]bool
	called  []int
}

func (e *recordingEvaluator) EvalCondition(idx int) (bool, error) {
	e.called = append(e.called, idx)
	return e.answers[idx], nil
}

func TestWalkTrivialMatch(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: true}}
	idx, err := Walk(nodes, bytecode.NodeRef(0), eval)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestWalkNoMatch(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: false}}
	idx, err := Walk(nodes, bytecode.NodeRef(0), eval)
	require.NoError(t, err)
	require.Equal(t, NoMatch, idx)
}

func TestWalkShortCircuitsUnreachedConditions(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.NodeRef(1)},
		{VarIdx: 1, High: bytecode.ResultRef(1), Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: true, 1: true}}
	idx, err := Walk(nodes, bytecode.NodeRef(0), eval)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, []int{0}, eval.called, "condition 1 must never be evaluated once condition 0 already selects a result")
}

func TestWalkComplementEdgeFlipsOutcome(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.TrueRef, Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: true}}
	idx, err := Walk(nodes, -bytecode.NodeRef(0), eval)
	require.NoError(t, err)
	require.Equal(t, NoMatch, idx, "a complemented edge into a node inverts the raw TRUE terminal into no-match")
}

func TestWalkComplementEdgeOverResultIsMalformed(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: true}}
	_, err := Walk(nodes, -bytecode.NodeRef(0), eval)
	require.Error(t, err)
	var malformed *MalformedRefError
	require.ErrorAs(t, err, &malformed)
}

func TestWalkRawTrueTerminalWithoutResultIsMalformed(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.TrueRef, Low: bytecode.FalseRef},
	}
	eval := &recordingEvaluator{answers: map[int]bool{0: true}}
	_, err := Walk(nodes, bytecode.NodeRef(0), eval)
	require.Error(t, err)
}

func TestWalkOutOfRangeNodeIndexIsMalformed(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.FalseRef},
	}
	_, err := Walk(nodes, bytecode.NodeRef(5), &recordingEvaluator{})
	require.Error(t, err)
	var malformed *MalformedRefError
	require.ErrorAs(t, err, &malformed)
}

func TestWalkPropagatesEvaluatorError(t *testing.T) {
	nodes := []bytecode.Node{
		{VarIdx: 0, High: bytecode.ResultRef(0), Low: bytecode.FalseRef},
	}
	_, err := Walk(nodes, bytecode.NodeRef(0), failingEvaluator{})
	require.Error(t, err)
}

type failingEvaluator struct{}

func (failingEvaluator) EvalCondition(idx int) (bool, error) {
	return false, errTest
}

var errTest = errors.New("injected test failure")
