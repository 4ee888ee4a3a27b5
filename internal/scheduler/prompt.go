package scheduler

// #region imports
import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region choice-format

// ChoiceFormatInstruction tells an actor how to state its choice so the
// extractor can read it. Shared with the individual-round and ballot paths.
const ChoiceFormatInstruction = `End your statement with a single JSON object on its own line:
{"principle": <1-4>, "constraint": <amount, only for principles 3 and 4>, "reasoning": "<one sentence>"}`

// RenderPrinciples lists the principles in id order for inclusion in prompts.
func RenderPrinciples(principles map[int]experiment.Principle) string {
	ids := make([]int, 0, len(principles))
	for id := range principles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		p := principles[id]
		fmt.Fprintf(&b, "%d. %s: %s", p.ID, p.Name, p.Description)
		if p.RequiresConstraint {
			fmt.Fprintf(&b, " (requires a %s)", p.ParamKind)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// #endregion

// #region turn-prompt

func turnPrompt(actor *experiment.Actor, principles map[int]experiment.Principle, roundSoFar []transcript.Utterance, memoryContext string, round int) string {
	var history strings.Builder
	if len(roundSoFar) == 0 {
		history.WriteString("(you speak first this round)")
	} else {
		for _, u := range roundSoFar {
			fmt.Fprintf(&history, "%s: %s\n", u.ActorID, u.PublicMessage)
		}
	}

	return fmt.Sprintf(`%s

You are deliberating with a group over which distributive justice principle to adopt:
%s
It is round %d. Statements made so far this round:
%s

Your private notes:
%s

Make your public statement to the group, then state your current choice.
%s`,
		actor.Persona, RenderPrinciples(principles), round, history.String(),
		orEmpty(memoryContext), ChoiceFormatInstruction)
}

// #endregion

// #region extraction-prompts

func normalizePrompt(raw string) string {
	return fmt.Sprintf(`Extract the principle choice from the statement below.
Reply with ONLY a JSON object: {"principle": <1-4>, "constraint": <number or omit>, "reasoning": "<short>"}

Statement:
%s`, raw)
}

func correctionPrompt(principles map[int]experiment.Principle, raw string, cause error) string {
	return fmt.Sprintf(`Your previous choice was not valid: %v.

The available principles are:
%s
Restate your choice. %s

Your previous statement:
%s`, cause, RenderPrinciples(principles), ChoiceFormatInstruction, raw)
}

func orEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none yet)"
	}
	return s
}

// #endregion
