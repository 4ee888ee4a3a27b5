package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// countingPort replies with a fixed function and counts invocations.
type countingPort struct {
	calls int
	reply func(n int, req reasoning.Request) (string, error)
}

func (p *countingPort) Invoke(_ context.Context, req reasoning.Request) (string, error) {
	p.calls++
	return p.reply(p.calls, req)
}

func quietCaller(port reasoning.Port) *reasoning.Caller {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return reasoning.NewCaller(port, reasoning.RetryConfig{MaxAttempts: 1}, logger)
}

func testActor() *experiment.Actor {
	return &experiment.Actor{ID: "alice", Name: "Alice", ModelRef: "test-model"}
}

func seededTranscript(t *testing.T) *transcript.Transcript {
	t.Helper()
	tr := transcript.New()
	require.NoError(t, tr.Append(transcript.Utterance{
		ActorID: "bob", Round: 1, Position: 0, PublicMessage: "I favor the floor.",
		Choice: experiment.Choice{PrincipleID: 1},
	}))
	require.NoError(t, tr.Append(transcript.Utterance{
		ActorID: "alice", Round: 1, Position: 1, PublicMessage: "I want the average.",
		Choice: experiment.Choice{PrincipleID: 2},
	}))
	return tr
}

func TestNewStrategy(t *testing.T) {
	caller := quietCaller(&countingPort{reply: func(int, reasoning.Request) (string, error) { return "x", nil }})

	tests := []struct {
		name      string
		kind      Kind
		recentMax int
		wantErr   bool
	}{
		{name: "full", kind: KindFull},
		{name: "recent", kind: KindRecent, recentMax: 5},
		{name: "decomposed", kind: KindDecomposed},
		{name: "recent without window", kind: KindRecent, wantErr: true},
		{name: "unknown kind", kind: Kind("telepathic"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStrategy(tt.kind, tt.recentMax, caller)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromptStrategyParsesSections(t *testing.T) {
	port := &countingPort{reply: func(int, reasoning.Request) (string, error) {
		return "SITUATION: two actors disagree\nOTHERS: bob wants the floor\nSTRATEGY: propose a compromise", nil
	}}
	s, err := NewStrategy(KindFull, 0, quietCaller(port))
	require.NoError(t, err)

	entry := s.GenerateEntry(context.Background(), testActor(), 1, "", seededTranscript(t))
	assert.Equal(t, "two actors disagree", entry.SituationAssessment)
	assert.Equal(t, "bob wants the floor", entry.OtherAgentsAnalysis)
	assert.Equal(t, "propose a compromise", entry.StrategyUpdate)
	assert.False(t, entry.Degraded)
	assert.Equal(t, 1, port.calls, "one call per entry")
}

func TestPromptStrategyMissingSectionDegrades(t *testing.T) {
	port := &countingPort{reply: func(int, reasoning.Request) (string, error) {
		return "SITUATION: fine\nSTRATEGY: hold position", nil
	}}
	s, err := NewStrategy(KindFull, 0, quietCaller(port))
	require.NoError(t, err)

	entry := s.GenerateEntry(context.Background(), testActor(), 1, "", seededTranscript(t))
	assert.Equal(t, Sentinel, entry.OtherAgentsAnalysis)
	assert.True(t, entry.Degraded)
	assert.Equal(t, "fine", entry.SituationAssessment, "surviving fields keep their content")
}

func TestPromptStrategyFailureYieldsSentinels(t *testing.T) {
	port := &countingPort{reply: func(int, reasoning.Request) (string, error) {
		return "", errors.New("backend down")
	}}
	s, err := NewStrategy(KindFull, 0, quietCaller(port))
	require.NoError(t, err)

	entry := s.GenerateEntry(context.Background(), testActor(), 2, "", seededTranscript(t))
	assert.Equal(t, Sentinel, entry.SituationAssessment)
	assert.Equal(t, Sentinel, entry.OtherAgentsAnalysis)
	assert.Equal(t, Sentinel, entry.StrategyUpdate)
	assert.True(t, entry.Degraded)
}

func TestRecentStrategyWindowsContext(t *testing.T) {
	caller := quietCaller(&countingPort{reply: func(int, reasoning.Request) (string, error) { return "x", nil }})
	s, err := NewStrategy(KindRecent, 2, caller)
	require.NoError(t, err)

	prior := []Entry{
		{Round: 1, SituationAssessment: "first"},
		{Round: 2, SituationAssessment: "second"},
		{Round: 3, SituationAssessment: "third"},
	}
	ctx := s.BuildContext("alice", transcript.New(), prior)
	assert.NotContains(t, ctx, "first")
	assert.Contains(t, ctx, "second")
	assert.Contains(t, ctx, "third")

	full, err := NewStrategy(KindFull, 0, caller)
	require.NoError(t, err)
	assert.Contains(t, full.BuildContext("alice", transcript.New(), prior), "first")
}

func TestDecomposedStrategyExactlyThreeCalls(t *testing.T) {
	port := &countingPort{reply: func(n int, req reasoning.Request) (string, error) {
		switch n {
		case 1:
			return "bob argued for the floor, alice for the average", nil
		case 2:
			return "bob fears ending up in the lowest class", nil
		default:
			return "offer principle 3 with a modest floor", nil
		}
	}}
	s, err := NewStrategy(KindDecomposed, 0, quietCaller(port))
	require.NoError(t, err)

	entry := s.GenerateEntry(context.Background(), testActor(), 1, "", seededTranscript(t))
	assert.Equal(t, 3, port.calls, "decomposed strategy makes exactly three sub-calls")
	assert.Equal(t, "bob argued for the floor, alice for the average", entry.SituationAssessment)
	assert.Equal(t, "bob fears ending up in the lowest class", entry.OtherAgentsAnalysis)
	assert.Equal(t, "offer principle 3 with a modest floor", entry.StrategyUpdate)
	assert.False(t, entry.Degraded)
}

func TestDecomposedStrategyTargetsLastOtherSpeaker(t *testing.T) {
	var analysisPrompt string
	port := &countingPort{reply: func(n int, req reasoning.Request) (string, error) {
		if n == 2 {
			analysisPrompt = req.Prompt
		}
		return "ok", nil
	}}
	s, err := NewStrategy(KindDecomposed, 0, quietCaller(port))
	require.NoError(t, err)

	// Last speaker overall is alice herself; the analysis must target bob.
	s.GenerateEntry(context.Background(), testActor(), 1, "", seededTranscript(t))
	assert.Contains(t, analysisPrompt, `"bob"`)
}

func TestDecomposedStrategyDegradedStep(t *testing.T) {
	port := &countingPort{reply: func(n int, req reasoning.Request) (string, error) {
		if n == 2 {
			return "", errors.New("timeout")
		}
		return "content", nil
	}}
	s, err := NewStrategy(KindDecomposed, 0, quietCaller(port))
	require.NoError(t, err)

	entry := s.GenerateEntry(context.Background(), testActor(), 1, "", seededTranscript(t))
	assert.Equal(t, 3, port.calls, "a failed step must not stop the remaining steps")
	assert.Equal(t, Sentinel, entry.OtherAgentsAnalysis)
	assert.True(t, entry.Degraded)
	assert.Equal(t, "content", entry.SituationAssessment)
	assert.Equal(t, "content", entry.StrategyUpdate)
}
