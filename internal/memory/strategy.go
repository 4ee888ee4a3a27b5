package memory

// #region imports
import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region constructor

// NewStrategy builds the strategy variant selected in configuration.
// recentMax bounds the Recent window and is ignored by the other kinds.
func NewStrategy(kind Kind, recentMax int, caller *reasoning.Caller) (Strategy, error) {
	switch kind {
	case KindFull:
		return &promptStrategy{caller: caller, window: 0}, nil
	case KindRecent:
		if recentMax < 1 {
			return nil, fmt.Errorf("recent memory strategy requires max entries >= 1, got %d", recentMax)
		}
		return &promptStrategy{caller: caller, window: recentMax}, nil
	case KindDecomposed:
		return &decomposedStrategy{caller: caller}, nil
	default:
		return nil, fmt.Errorf("unknown memory strategy %q", kind)
	}
}

// #endregion

// #region prompt-strategy

// promptStrategy covers the Full and Recent variants: prior entries render
// into the context (all of them, or the last window), and one reasoning
// call generates the three reflection fields.
type promptStrategy struct {
	caller *reasoning.Caller
	window int // 0 = unbounded (Full)
}

func (s *promptStrategy) BuildContext(_ experiment.ActorID, _ *transcript.Transcript, prior []Entry) string {
	entries := prior
	if s.window > 0 && len(entries) > s.window {
		entries = entries[len(entries)-s.window:]
	}
	return renderEntries(entries)
}

func (s *promptStrategy) GenerateEntry(ctx context.Context, actor *experiment.Actor, round int, contextStr string, tr *transcript.Transcript) Entry {
	prompt := fmt.Sprintf(`You are %s. Round %d of a group deliberation just happened.

Recent public discussion:
%s

Your prior private notes:
%s

Write three short sections, each on its own line, using exactly these labels:
SITUATION: <objective summary of where the discussion stands>
OTHERS: <what the other participants seem to want>
STRATEGY: <one concrete next step for you>`,
		actor.Name, round, renderUtterances(tr.LastN(recentUtteranceWindow)), orNone(contextStr))

	text, err := s.caller.Invoke(ctx, reasoning.Request{
		Prompt:      prompt,
		ModelRef:    actor.ModelRef,
		Temperature: actor.Temperature,
	})

	entry := Entry{
		ActorID:   actor.ID,
		Round:     round,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		entry.SituationAssessment = Sentinel
		entry.OtherAgentsAnalysis = Sentinel
		entry.StrategyUpdate = Sentinel
		entry.Degraded = true
		return entry
	}

	entry.SituationAssessment = section(text, "SITUATION:")
	entry.OtherAgentsAnalysis = section(text, "OTHERS:")
	entry.StrategyUpdate = section(text, "STRATEGY:")
	if entry.SituationAssessment == Sentinel || entry.OtherAgentsAnalysis == Sentinel || entry.StrategyUpdate == Sentinel {
		entry.Degraded = true
	}
	return entry
}

// #endregion

// #region helpers

const recentUtteranceWindow = 10

// section extracts the text after a label up to the next line, or Sentinel.
func section(text, label string) string {
	idx := strings.Index(text, label)
	if idx < 0 {
		return Sentinel
	}
	rest := text[idx+len(label):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// A section may legitimately span lines until the next label.
		for _, next := range []string{"SITUATION:", "OTHERS:", "STRATEGY:"} {
			if next == label {
				continue
			}
			if cut := strings.Index(rest, next); cut >= 0 {
				rest = rest[:cut]
			}
		}
	}
	out := strings.TrimSpace(rest)
	if out == "" {
		return Sentinel
	}
	return out
}

func renderEntries(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[round %d] situation: %s | others: %s | strategy: %s\n",
			e.Round, e.SituationAssessment, e.OtherAgentsAnalysis, e.StrategyUpdate)
	}
	return b.String()
}

func renderUtterances(us []transcript.Utterance) string {
	if len(us) == 0 {
		return "(no public statements yet)"
	}
	var b strings.Builder
	for _, u := range us {
		fmt.Fprintf(&b, "[round %d] %s: %s\n", u.Round, u.ActorID, u.PublicMessage)
	}
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// #endregion
