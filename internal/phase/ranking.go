package phase

// #region imports
import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
)

// #endregion

// #region collection

// collectRankings asks every actor for a full preference order over the
// principles. Collection is order-insensitive, so it runs concurrently,
// bounded to respect backend rate limits; each goroutine writes only its
// own slot. Failed extractions default to the identity order, flagged.
func (c *Controller) collectRankings(ctx context.Context, stage experiment.RankingStage) {
	results := make([]experiment.Ranking, len(c.actors))

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.RankingConcurrency)

	for i, actor := range c.actors {
		g.Go(func() error {
			reply, err := c.caller.Invoke(ctx, reasoning.Request{
				Prompt:      rankingPrompt(actor, c.principles),
				ModelRef:    actor.ModelRef,
				Temperature: actor.Temperature,
			})

			var order []int
			degraded := false
			if err == nil {
				order, err = parseRanking(reply, c.principles)
			}
			if err != nil {
				c.logger.WithError(err).Warnf("ranking degraded actor=%s stage=%s", actor.ID, stage)
				order = identityOrder(c.principles)
				degraded = true
			}

			results[i] = experiment.Ranking{
				ActorID:   actor.ID,
				Stage:     stage,
				Order:     order,
				Degraded:  degraded,
				CreatedAt: time.Now().UTC(),
			}
			return nil
		})
	}
	_ = g.Wait()

	c.rankings = append(c.rankings, results...)
}

// #endregion

// #region parsing

var rankingDigitRe = regexp.MustCompile(`[1-4]`)

// parseRanking reads the first occurrence of each principle id in the
// reply; the order of first appearance is the ranking.
func parseRanking(text string, principles map[int]experiment.Principle) ([]int, error) {
	var order []int
	seen := make(map[int]bool)
	for _, m := range rankingDigitRe.FindAllString(text, -1) {
		id, _ := strconv.Atoi(m)
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	if err := experiment.ValidateRanking(principles, order); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}
	return order, nil
}

func identityOrder(principles map[int]experiment.Principle) []int {
	order := make([]int, 0, len(principles))
	for id := 1; id <= len(principles); id++ {
		order = append(order, id)
	}
	return order
}

// #endregion
