package scheduler

// #region imports
import (
	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

// #endregion

// #region speaking-order

// SpeakingOrder generates the order for a round. Contract for every
// pattern: the first speaker of round N is never the last speaker of round
// N-1 (continuity fairness), whenever more than one actor exists.
func (s *Scheduler) SpeakingOrder(actors []*experiment.Actor, round int, previous []experiment.ActorID) []experiment.ActorID {
	ids := make([]experiment.ActorID, len(actors))
	for i, a := range actors {
		ids[i] = a.ID
	}
	if len(ids) < 2 {
		return ids
	}

	var prevLast experiment.ActorID
	if len(previous) > 0 {
		prevLast = previous[len(previous)-1]
	}

	switch s.cfg.Order.Kind {
	case OrderStrictRotation:
		// Fixed cyclic order: identical every round. First element never
		// equals the roster's last element, so the contract holds.
		return ids
	case OrderHierarchical:
		return s.hierarchicalOrder(ids, prevLast)
	default:
		return s.randomConstraintOrder(ids, prevLast)
	}
}

// #endregion

// #region random-constraint

// randomConstraintOrder shuffles, rejecting orders that violate the
// continuity constraint, up to the bounded attempt count. Falls back to a
// deterministic rotation of the roster.
func (s *Scheduler) randomConstraintOrder(ids []experiment.ActorID, prevLast experiment.ActorID) []experiment.ActorID {
	order := make([]experiment.ActorID, len(ids))
	copy(order, ids)

	for attempt := 0; attempt < s.cfg.Order.MaxShuffleAttempts; attempt++ {
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		if order[0] != prevLast {
			return order
		}
	}

	s.logger.Warnf("shuffle attempts exhausted, using rotation fallback")
	copy(order, ids)
	if order[0] == prevLast {
		rotateLeft(order)
	}
	return order
}

// #endregion

// #region hierarchical

// hierarchicalOrder places the designated leaders first, in their
// configured order, and shuffles the remainder. When the leading actor
// would violate the continuity constraint, the first two slots swap:
// the constraint is a hard contract, leader precedence is not.
func (s *Scheduler) hierarchicalOrder(ids []experiment.ActorID, prevLast experiment.ActorID) []experiment.ActorID {
	present := make(map[experiment.ActorID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	isLeader := make(map[experiment.ActorID]bool, len(s.cfg.Order.Leaders))

	var order []experiment.ActorID
	for _, l := range s.cfg.Order.Leaders {
		if present[l] && !isLeader[l] {
			order = append(order, l)
			isLeader[l] = true
		}
	}

	var rest []experiment.ActorID
	for _, id := range ids {
		if !isLeader[id] {
			rest = append(rest, id)
		}
	}
	s.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	order = append(order, rest...)

	if order[0] == prevLast && len(order) > 1 {
		order[0], order[1] = order[1], order[0]
	}
	return order
}

// #endregion

// #region helpers

func rotateLeft(ids []experiment.ActorID) {
	first := ids[0]
	copy(ids, ids[1:])
	ids[len(ids)-1] = first
}

// #endregion
