package phase

// #region imports
import (
	"context"
	"errors"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
)

// #endregion

// #region examples

// presentExamples walks each actor through every configured distribution so
// the familiarization phase grounds later choices. Replies are free-form
// acknowledgments; nothing is parsed.
func (c *Controller) presentExamples(ctx context.Context) {
	for _, actor := range c.actors {
		reply := c.caller.InvokeOr(ctx, reasoning.Request{
			Prompt:      examplePrompt(actor, c.principles, c.engine.Set()),
			ModelRef:    actor.ModelRef,
			Temperature: actor.Temperature,
		}, "[no acknowledgment]")
		c.logger.Debugf("example acknowledgment actor=%s len=%d", actor.ID, len(reply))
	}
}

// #endregion

// #region individual-rounds

// runIndividualRound has each actor privately choose a principle against
// the distribution set, then resolves it economically. Choices that no
// distribution can satisfy are surfaced back to the actor for correction,
// bounded, then defaulted.
func (c *Controller) runIndividualRound(ctx context.Context, round int) {
	for _, actor := range c.actors {
		reply := c.caller.InvokeOr(ctx, reasoning.Request{
			Prompt:      individualPrompt(actor, c.principles, c.engine.Set(), round),
			ModelRef:    actor.ModelRef,
			Temperature: actor.Temperature,
		}, "")
		choice := c.sched.ExtractChoice(ctx, actor, reply, round, 0)

		dist, err := c.engine.ApplyPrinciple(choice)
		for retry := 0; err != nil && errors.Is(err, experiment.ErrInvalidChoice) && retry < c.cfg.MaxEconRetries; retry++ {
			c.logger.WithError(err).Warnf("unsatisfiable choice actor=%s round=%d, re-prompting", actor.ID, round)
			reply = c.caller.InvokeOr(ctx, reasoning.Request{
				Prompt:      unsatisfiablePrompt(c.principles, c.engine.Set(), choice, err),
				ModelRef:    actor.ModelRef,
				Temperature: actor.Temperature,
			}, "")
			choice = c.sched.ExtractChoice(ctx, actor, reply, round, 0)
			dist, err = c.engine.ApplyPrinciple(choice)
		}
		if err != nil {
			c.logger.WithError(err).Warnf("defaulting actor=%s to principle %d", actor.ID, c.cfg.DefaultPrinciple)
			choice = experiment.Choice{
				PrincipleID:      c.cfg.DefaultPrinciple,
				Reasoning:        "[defaulted after unsatisfiable choices]",
				Round:            round,
				ExtractionFailed: true,
			}
			dist, err = c.engine.ApplyPrinciple(choice)
			if err != nil {
				// Default principle cannot fail against a validated set.
				c.logger.WithError(err).Error("default principle unresolvable, skipping actor outcome")
				continue
			}
		}

		actor.CurrentChoice = &choice
		class := c.engine.AssignIncomeClass(dist)
		income := dist.Classes[class]
		payout := c.engine.ComputePayout(income)
		out := c.ledger.Record(actor.ID, round, choice.PrincipleID, class, income, payout)

		c.logger.Infof("individual round=%d actor=%s principle=%d class=%s payout=%.2f wealth=%.2f",
			round, actor.ID, choice.PrincipleID, class, payout, out.CumulativeAfter)
	}
}

// #endregion
