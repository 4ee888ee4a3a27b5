package scheduler

// #region imports
import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region sentinels

// NoStatementSentinel replaces a public message whose generation failed.
const NoStatementSentinel = "[no statement]"

// #endregion

// #region execute-round

// ExecuteRound drives every actor's turn in generated order: memory update,
// public statement, choice extraction, transcript append. Turns run
// sequentially by contract: each statement must be visible to the next
// speaker. One actor's failure never aborts the others' turns.
//
// Returns the speaking order used, for the next round's continuity check.
func (s *Scheduler) ExecuteRound(ctx context.Context, round int, actors []*experiment.Actor, tr *transcript.Transcript, previous []experiment.ActorID) ([]experiment.ActorID, error) {
	order := s.SpeakingOrder(actors, round, previous)
	byID := make(map[experiment.ActorID]*experiment.Actor, len(actors))
	for _, a := range actors {
		byID[a.ID] = a
	}

	for position, id := range order {
		actor := byID[id]

		entry := s.memory.Update(ctx, actor, round, tr)
		memoryContext := formatEntry(entry)

		prompt := turnPrompt(actor, s.principles, tr.Round(round), memoryContext, round)
		statement := s.caller.InvokeOr(ctx, reasoning.Request{
			Prompt:      prompt,
			ModelRef:    actor.ModelRef,
			Temperature: actor.Temperature,
		}, NoStatementSentinel)

		choice := s.ExtractChoice(ctx, actor, statement, round, position)
		actor.CurrentChoice = &choice

		if err := tr.Append(transcript.Utterance{
			ID:            uuid.New().String(),
			ActorID:       actor.ID,
			Round:         round,
			Position:      position,
			PublicMessage: statement,
			Choice:        choice,
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			return order, err
		}

		s.logger.Infof("turn round=%d pos=%d actor=%s principle=%d extraction_failed=%v",
			round, position, actor.ID, choice.PrincipleID, choice.ExtractionFailed)
	}

	return order, nil
}

// #endregion

// #region helpers

func formatEntry(e memory.Entry) string {
	return "situation: " + e.SituationAssessment +
		"\nothers: " + e.OtherAgentsAnalysis +
		"\nstrategy: " + e.StrategyUpdate
}

// #endregion
