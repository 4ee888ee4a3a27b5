package export

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/deliberate/internal/record"
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id                   TEXT PRIMARY KEY,
	started_at           TEXT NOT NULL,
	completed_at         TEXT NOT NULL,
	timed_out            INTEGER NOT NULL DEFAULT 0,
	consensus_unanimous  INTEGER NOT NULL DEFAULT 0,
	consensus_validated  INTEGER NOT NULL DEFAULT 0,
	agreed_principle     INTEGER,
	agreed_constraint    REAL,
	rounds_to_consensus  INTEGER NOT NULL DEFAULT 0,
	total_messages       INTEGER NOT NULL DEFAULT 0,
	ballot_used          INTEGER NOT NULL DEFAULT 0,
	fallback_applied     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS actors (
	experiment_id  TEXT NOT NULL,
	actor_id       TEXT NOT NULL,
	name           TEXT NOT NULL,
	model_ref      TEXT NOT NULL,
	temperature    REAL NOT NULL,
	final_wealth   REAL NOT NULL DEFAULT 0,
	FOREIGN KEY (experiment_id) REFERENCES experiments(id)
);

CREATE TABLE IF NOT EXISTS utterances (
	experiment_id     TEXT NOT NULL,
	utterance_id      TEXT NOT NULL,
	actor_id          TEXT NOT NULL,
	round             INTEGER NOT NULL,
	position          INTEGER NOT NULL,
	public_message    TEXT NOT NULL,
	principle         INTEGER NOT NULL,
	constraint_value  REAL NOT NULL DEFAULT 0,
	reasoning         TEXT NOT NULL,
	extraction_failed INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(id)
);

CREATE TABLE IF NOT EXISTS memories (
	experiment_id  TEXT NOT NULL,
	actor_id       TEXT NOT NULL,
	round          INTEGER NOT NULL,
	situation      TEXT NOT NULL,
	others         TEXT NOT NULL,
	strategy       TEXT NOT NULL,
	degraded       INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(id)
);

CREATE TABLE IF NOT EXISTS outcomes (
	experiment_id    TEXT NOT NULL,
	actor_id         TEXT NOT NULL,
	round            INTEGER NOT NULL,
	principle        INTEGER NOT NULL,
	income_class     TEXT NOT NULL,
	actual_income    REAL NOT NULL,
	payout           REAL NOT NULL,
	cumulative_after REAL NOT NULL,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(id)
);

CREATE TABLE IF NOT EXISTS rankings (
	experiment_id  TEXT NOT NULL,
	actor_id       TEXT NOT NULL,
	stage          TEXT NOT NULL,
	rank_order     TEXT NOT NULL,
	degraded       INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (experiment_id) REFERENCES experiments(id)
);

CREATE INDEX IF NOT EXISTS idx_utterances_lookup ON utterances(experiment_id, round, position);
CREATE INDEX IF NOT EXISTS idx_outcomes_lookup ON outcomes(experiment_id, actor_id);
`

// #endregion

// #region exporter

// SQLiteExporter persists experiment records to a SQLite database.
type SQLiteExporter struct {
	db *sql.DB
}

// NewSQLiteExporter opens (or creates) the database and runs migrations.
func NewSQLiteExporter(dbPath string) (*SQLiteExporter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteExporter{db: db}, nil
}

// Close closes the underlying database connection.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}

// #endregion

// #region export

// Export writes the record in one transaction.
func (e *SQLiteExporter) Export(ctx context.Context, rec *record.ExperimentRecord) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var agreedPrinciple any
	var agreedConstraint any
	if rec.Consensus.AgreedChoice != nil {
		agreedPrinciple = rec.Consensus.AgreedChoice.PrincipleID
		agreedConstraint = rec.Consensus.AgreedChoice.Constraint
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO experiments
		(id, started_at, completed_at, timed_out, consensus_unanimous, consensus_validated,
		 agreed_principle, agreed_constraint, rounds_to_consensus, total_messages,
		 ballot_used, fallback_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.CompletedAt.Format(time.RFC3339Nano),
		boolInt(rec.TimedOut),
		boolInt(rec.Consensus.Unanimous),
		boolInt(rec.Consensus.Validated),
		agreedPrinciple,
		agreedConstraint,
		rec.Consensus.RoundsToConsensus,
		rec.Consensus.TotalMessages,
		boolInt(rec.BallotUsed),
		rec.FallbackApplied,
	)
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}

	for _, a := range rec.Actors {
		var wealth float64
		if outs := rec.Outcomes[a.ID]; len(outs) > 0 {
			wealth = outs[len(outs)-1].CumulativeAfter
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO actors (experiment_id, actor_id, name, model_ref, temperature, final_wealth)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, string(a.ID), a.Name, a.ModelRef, a.Temperature, wealth,
		); err != nil {
			return fmt.Errorf("insert actor %s: %w", a.ID, err)
		}
	}

	for _, u := range rec.Utterances {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO utterances
			(experiment_id, utterance_id, actor_id, round, position, public_message,
			 principle, constraint_value, reasoning, extraction_failed, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, u.ID, string(u.ActorID), u.Round, u.Position, u.PublicMessage,
			u.Choice.PrincipleID, u.Choice.Constraint, u.Choice.Reasoning,
			boolInt(u.Choice.ExtractionFailed), u.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert utterance %s: %w", u.ID, err)
		}
	}

	for actorID, entries := range rec.Memories {
		for _, m := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO memories (experiment_id, actor_id, round, situation, others, strategy, degraded, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, string(actorID), m.Round, m.SituationAssessment, m.OtherAgentsAnalysis,
				m.StrategyUpdate, boolInt(m.Degraded), m.CreatedAt.Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert memory for %s: %w", actorID, err)
			}
		}
	}

	for actorID, outs := range rec.Outcomes {
		for _, o := range outs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO outcomes
				(experiment_id, actor_id, round, principle, income_class, actual_income, payout, cumulative_after, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, string(actorID), o.Round, o.PrincipleID, string(o.AssignedClass),
				o.ActualIncome, o.Payout, o.CumulativeAfter, o.CreatedAt.Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert outcome for %s: %w", actorID, err)
			}
		}
	}

	for _, r := range rec.Rankings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rankings (experiment_id, actor_id, stage, rank_order, degraded, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, string(r.ActorID), string(r.Stage), joinInts(r.Order),
			boolInt(r.Degraded), r.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert ranking for %s: %w", r.ActorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion

// #region readers

// Summary is one experiment row for listing.
type Summary struct {
	ID                string
	CompletedAt       string
	Unanimous         bool
	Validated         bool
	RoundsToConsensus int
	BallotUsed        bool
	FallbackApplied   string
}

// ListExperiments returns summaries of all stored experiments, newest first.
func (e *SQLiteExporter) ListExperiments(ctx context.Context) ([]Summary, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, completed_at, consensus_unanimous, consensus_validated,
		       rounds_to_consensus, ballot_used, fallback_applied
		FROM experiments ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var unanimous, validated, ballot int
		if err := rows.Scan(&s.ID, &s.CompletedAt, &unanimous, &validated,
			&s.RoundsToConsensus, &ballot, &s.FallbackApplied); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		s.Unanimous = unanimous != 0
		s.Validated = validated != 0
		s.BallotUsed = ballot != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActorWealth returns each actor's final wealth for an experiment.
func (e *SQLiteExporter) ActorWealth(ctx context.Context, experimentID string) (map[string]float64, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT actor_id, final_wealth FROM actors WHERE experiment_id = ?`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("actor wealth: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var id string
		var wealth float64
		if err := rows.Scan(&id, &wealth); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		out[id] = wealth
	}
	return out, rows.Err()
}

// #endregion

// #region helpers

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// #endregion
