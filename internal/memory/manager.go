package memory

// #region imports
import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/transcript"
)

// #endregion

// #region manager

// Manager owns all actors' private memory lists. Entries are append-only;
// only Update writes, during an actor's own turn.
type Manager struct {
	strategy Strategy
	entries  map[experiment.ActorID][]Entry
	logger   *logrus.Logger
}

// NewManager creates a manager around the configured strategy.
func NewManager(strategy Strategy, logger *logrus.Logger) *Manager {
	return &Manager{
		strategy: strategy,
		entries:  make(map[experiment.ActorID][]Entry),
		logger:   logger,
	}
}

// #endregion

// #region update

// Update builds the actor's context, generates this round's entry, and
// appends it. Degraded entries are recorded, never dropped: the round must
// not abort because one reflection failed.
func (m *Manager) Update(ctx context.Context, actor *experiment.Actor, round int, tr *transcript.Transcript) Entry {
	prior := m.entries[actor.ID]
	contextStr := m.strategy.BuildContext(actor.ID, tr, prior)
	entry := m.strategy.GenerateEntry(ctx, actor, round, contextStr, tr)

	if entry.Degraded {
		m.logger.Warnf("memory entry degraded for actor=%s round=%d", actor.ID, round)
	}
	m.entries[actor.ID] = append(m.entries[actor.ID], entry)
	return entry
}

// #endregion

// #region readers

// Context renders an actor's current working context without generating.
func (m *Manager) Context(actorID experiment.ActorID, tr *transcript.Transcript) string {
	return m.strategy.BuildContext(actorID, tr, m.entries[actorID])
}

// Entries returns a copy of an actor's memory list.
func (m *Manager) Entries(actorID experiment.ActorID) []Entry {
	es := m.entries[actorID]
	cp := make([]Entry, len(es))
	copy(cp, es)
	return cp
}

// All returns a copy of every actor's memory list.
func (m *Manager) All() map[experiment.ActorID][]Entry {
	out := make(map[experiment.ActorID][]Entry, len(m.entries))
	for id := range m.entries {
		out[id] = m.Entries(id)
	}
	return out
}

// #endregion
