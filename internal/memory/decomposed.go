package memory

// #region imports
import (
	"context"
	"fmt"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region strategy

// decomposedStrategy runs three focused sub-calls per actor per round:
// factual recap, single-opponent analysis, next-step strategy. Each step's
// output feeds the next. Exactly three sub-calls, always.
type decomposedStrategy struct {
	caller *reasoning.Caller
}

func (s *decomposedStrategy) BuildContext(_ experiment.ActorID, _ *transcript.Transcript, prior []Entry) string {
	return renderEntries(prior)
}

func (s *decomposedStrategy) GenerateEntry(ctx context.Context, actor *experiment.Actor, round int, _ string, tr *transcript.Transcript) Entry {
	entry := Entry{
		ActorID:   actor.ID,
		Round:     round,
		CreatedAt: time.Now().UTC(),
	}

	// Step 1: objective recap of the recent public transcript only.
	recap := s.invoke(ctx, actor, fmt.Sprintf(
		`Summarize the following group discussion factually, without opinion or speculation:

%s`, renderUtterances(tr.LastN(recentUtteranceWindow))))
	entry.SituationAssessment = recap

	// Step 2: focused analysis of the most recent speaker who is not us.
	target, hasTarget := lastOtherSpeaker(tr, actor.ID)
	analysisPrompt := fmt.Sprintf(
		`Given this recap:
%s

Analyze the position and likely motives of participant %q specifically. One short paragraph.`,
		recap, target)
	if !hasTarget {
		analysisPrompt = fmt.Sprintf(
			`Given this recap:
%s

No other participant has spoken yet. Describe what positions you expect others to take. One short paragraph.`,
			recap)
	}
	analysis := s.invoke(ctx, actor, analysisPrompt)
	entry.OtherAgentsAnalysis = analysis

	// Step 3: one concrete, actionable next step.
	strategy := s.invoke(ctx, actor, fmt.Sprintf(
		`Recap:
%s

Analysis:
%s

State ONE concrete, actionable step you (%s) should take in your next statement. One sentence.`,
		recap, analysis, actor.Name))
	entry.StrategyUpdate = strategy

	if recap == Sentinel || analysis == Sentinel || strategy == Sentinel {
		entry.Degraded = true
	}
	return entry
}

func (s *decomposedStrategy) invoke(ctx context.Context, actor *experiment.Actor, prompt string) string {
	return s.caller.InvokeOr(ctx, reasoning.Request{
		Prompt:      prompt,
		ModelRef:    actor.ModelRef,
		Temperature: actor.Temperature,
	}, Sentinel)
}

// lastOtherSpeaker returns the most recent speaker that is not self.
func lastOtherSpeaker(tr *transcript.Transcript, self experiment.ActorID) (experiment.ActorID, bool) {
	us := tr.Utterances()
	for i := len(us) - 1; i >= 0; i-- {
		if us[i].ActorID != self {
			return us[i].ActorID, true
		}
	}
	return "", false
}

// #endregion
