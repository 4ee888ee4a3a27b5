package phase

// #region imports
import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/scheduler"
)

// #endregion

// #region distribution-rendering

func renderDistributions(set economics.DistributionSet) string {
	ds := make([]economics.IncomeDistribution, len(set.Distributions))
	copy(ds, set.Distributions)
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })

	var b strings.Builder
	for _, d := range ds {
		fmt.Fprintf(&b, "Distribution %d:", d.ID)
		for _, class := range d.ClassNames() {
			fmt.Fprintf(&b, " %s=$%.0f", class, d.Classes[class])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// #endregion

// #region prompts

func examplePrompt(actor *experiment.Actor, principles map[int]experiment.Principle, set economics.DistributionSet) string {
	return fmt.Sprintf(`%s

You will take part in an experiment about choosing a distributive justice principle.
The principles:
%s
The possible income distributions (one income class will be assigned to you at random):
%s
Confirm briefly that you understand how each principle would select among these distributions.`,
		actor.Persona, scheduler.RenderPrinciples(principles), renderDistributions(set))
}

func individualPrompt(actor *experiment.Actor, principles map[int]experiment.Principle, set economics.DistributionSet, round int) string {
	return fmt.Sprintf(`%s

Individual round %d. The principles:
%s
The income distributions:
%s
Choose the principle you would want applied to you, knowing your income class will be assigned at random.
%s`,
		actor.Persona, round, scheduler.RenderPrinciples(principles), renderDistributions(set),
		scheduler.ChoiceFormatInstruction)
}

func ballotPrompt(actor *experiment.Actor, principles map[int]experiment.Principle) string {
	return fmt.Sprintf(`%s

The group discussion has ended without agreement. This is a secret ballot:
no one will see your vote or your reasoning. The principles:
%s
Cast your final vote.
%s`,
		actor.Persona, scheduler.RenderPrinciples(principles), scheduler.ChoiceFormatInstruction)
}

func rankingPrompt(actor *experiment.Actor, principles map[int]experiment.Principle) string {
	return fmt.Sprintf(`%s

Rank the following principles from most to least preferred:
%s
Reply with the principle numbers in order, most preferred first, e.g. "3, 1, 2, 4".`,
		actor.Persona, scheduler.RenderPrinciples(principles))
}

func unsatisfiablePrompt(principles map[int]experiment.Principle, set economics.DistributionSet, choice experiment.Choice, cause error) string {
	return fmt.Sprintf(`Your choice (principle %d, constraint %.2f) cannot be satisfied: %v.

The income distributions are:
%s
The principles:
%s
Choose again with a satisfiable constraint, or a different principle.
%s`,
		choice.PrincipleID, choice.Constraint, cause, renderDistributions(set),
		scheduler.RenderPrinciples(principles), scheduler.ChoiceFormatInstruction)
}

// #endregion
