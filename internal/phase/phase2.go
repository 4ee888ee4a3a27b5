package phase

// #region imports
import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
)

// #endregion

// #region deliberation

// deliberate runs sequential discussion rounds until agreement or the
// round limit. Each round every actor speaks once; consensus is checked
// after the round completes.
func (c *Controller) deliberate(ctx context.Context) consensus.Result {
	var prevOrder []experiment.ActorID
	var result consensus.Result

	for round := 1; round <= c.cfg.MaxRounds; round++ {
		if c.checkTimeout(ctx) {
			break
		}

		order, err := c.sched.ExecuteRound(ctx, round, c.actors, c.tr, prevOrder)
		if err != nil {
			c.logger.WithError(err).Errorf("round %d aborted", round)
			break
		}
		prevOrder = order

		result = c.detector.Detect(c.tr, round)
		if result.Unanimous {
			c.logger.Infof("agreement reached at round %d", round)
			return result
		}
	}

	c.logger.Infof("deliberation ended without agreement after %d rounds", result.RoundsToConsensus)
	return result
}

// #endregion

// #region secret-ballot

// secretBallot collects one private vote per actor, concurrently (votes
// are order-insensitive and each goroutine writes only its own slot), and
// evaluates them with the configured consensus strategy.
func (c *Controller) secretBallot(ctx context.Context, prior consensus.Result) consensus.Result {
	c.ballotUsed = true
	round := prior.RoundsToConsensus
	if round == 0 {
		round = c.cfg.MaxRounds
	}

	ballots := make([]experiment.Choice, len(c.actors))
	g := new(errgroup.Group)
	g.SetLimit(c.cfg.RankingConcurrency)

	for i, actor := range c.actors {
		g.Go(func() error {
			reply := c.caller.InvokeOr(ctx, reasoning.Request{
				Prompt:      ballotPrompt(actor, c.principles),
				ModelRef:    actor.ModelRef,
				Temperature: actor.Temperature,
			}, "")
			ballots[i] = c.sched.ExtractChoice(ctx, actor, reply, round, i)
			return nil
		})
	}
	_ = g.Wait()

	choices := make(map[experiment.ActorID]experiment.Choice, len(c.actors))
	for i, actor := range c.actors {
		choices[actor.ID] = ballots[i]
		actor.CurrentChoice = &ballots[i]
	}

	result := c.detector.DetectChoices(choices, round, c.tr.Len())
	c.logger.Infof("secret ballot unanimous=%v dissenting=%d", result.Unanimous, len(result.Dissenting))
	return result
}

// #endregion

// #region outcome

// applyGroupOutcome converts the deliberation result into per-actor
// economic outcomes: the agreed principle when there is one, otherwise the
// configured fallback policy.
func (c *Controller) applyGroupOutcome(result consensus.Result) {
	round := result.RoundsToConsensus
	if round == 0 {
		round = c.cfg.MaxRounds
	}

	if result.Unanimous && result.AgreedChoice != nil {
		dist, err := c.engine.ApplyPrinciple(*result.AgreedChoice)
		if err == nil {
			for _, actor := range c.actors {
				class := c.engine.AssignIncomeClass(dist)
				income := dist.Classes[class]
				payout := c.engine.ComputePayout(income)
				c.ledger.Record(actor.ID, round, result.AgreedChoice.PrincipleID, class, income, payout)
			}
			return
		}
		c.logger.WithError(err).Warn("agreed choice unresolvable, applying fallback")
	}

	c.applyFallback(round)
}

func (c *Controller) applyFallback(round int) {
	c.fallbackApplied = c.cfg.Fallback

	switch c.cfg.Fallback {
	case FallbackDefaultDistribution:
		choice := experiment.Choice{PrincipleID: c.cfg.DefaultPrinciple}
		dist, err := c.engine.ApplyPrinciple(choice)
		if err != nil {
			c.logger.WithError(err).Error("default-distribution fallback unresolvable, using random assignment")
			c.randomAssignment(round)
			return
		}
		for _, actor := range c.actors {
			class := c.engine.AssignIncomeClass(dist)
			income := dist.Classes[class]
			payout := c.engine.ComputePayout(income)
			c.ledger.Record(actor.ID, round, c.cfg.DefaultPrinciple, class, income, payout)
		}

	default:
		c.randomAssignment(round)
	}
}

// randomAssignment gives each actor a uniform class from a uniformly
// chosen distribution. PrincipleID 0 marks that no principle applied.
func (c *Controller) randomAssignment(round int) {
	for _, actor := range c.actors {
		dist := c.engine.RandomDistribution()
		class := c.engine.AssignIncomeClass(dist)
		income := dist.Classes[class]
		payout := c.engine.ComputePayout(income)
		c.ledger.Record(actor.ID, round, 0, class, income, payout)
	}
}

// #endregion
