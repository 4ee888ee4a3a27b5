package scheduler

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
)

// #endregion

// #region sentinels

// ExtractionFailedReason replaces the reasoning text of a defaulted choice.
const ExtractionFailedReason = "[extraction failed]"

// DefaultPrincipleID is substituted when extraction and correction fail.
const DefaultPrincipleID = experiment.PrincipleMaxFloor

// #endregion

// #region parsing

var (
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*\}`)
	principleRe  = regexp.MustCompile(`(?i)principle\s*(?:#|number|id)?\s*[:=]?\s*([1-4])\b`)
)

type rawChoice struct {
	Principle   *int     `json:"principle"`
	PrincipleID *int     `json:"principle_id"`
	Constraint  *float64 `json:"constraint"`
	Reasoning   string   `json:"reasoning"`
}

// parseChoice pulls a choice out of raw reply text. Primary form is an
// embedded JSON object; fallback is a "principle N" phrase.
func parseChoice(text string) (experiment.Choice, bool) {
	for _, match := range jsonObjectRe.FindAllString(text, -1) {
		var rc rawChoice
		if err := json.Unmarshal([]byte(match), &rc); err != nil {
			continue
		}
		id := rc.Principle
		if id == nil {
			id = rc.PrincipleID
		}
		if id == nil {
			continue
		}
		c := experiment.Choice{PrincipleID: *id, Reasoning: rc.Reasoning}
		if rc.Constraint != nil {
			c.Constraint = *rc.Constraint
		}
		return c, true
	}

	if m := principleRe.FindStringSubmatch(text); m != nil {
		id, _ := strconv.Atoi(m[1])
		return experiment.Choice{PrincipleID: id, Reasoning: text}, true
	}

	return experiment.Choice{}, false
}

// #endregion

// #region extract-choice

// ExtractChoice turns a raw reply into a validated choice. On parse failure
// it optionally issues one normalization call; structurally invalid choices
// get a structured correction prompt, bounded by MaxCorrections; after that
// the default principle is substituted with an explicit marker.
func (s *Scheduler) ExtractChoice(ctx context.Context, actor *experiment.Actor, raw string, round, position int) experiment.Choice {
	c, ok := parseChoice(raw)

	if !ok && s.cfg.Normalize {
		normalized := s.caller.InvokeOr(ctx, reasoning.Request{
			Prompt:   normalizePrompt(raw),
			ModelRef: actor.ModelRef,
		}, "")
		if c, ok = parseChoice(normalized); ok && c.Reasoning == "" {
			c.Reasoning = raw
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if ok {
			lastErr = experiment.ValidateChoice(s.principles, c)
			if lastErr == nil {
				c.Round = round
				c.SpeakerPosition = position
				c.CreatedAt = time.Now().UTC()
				return c
			}
		} else {
			lastErr = fmt.Errorf("no recognizable choice in reply: %w", experiment.ErrInvalidChoice)
		}

		if attempt >= s.cfg.MaxCorrections {
			break
		}

		s.logger.WithError(lastErr).Warnf("choice invalid for actor=%s, correction %d/%d",
			actor.ID, attempt+1, s.cfg.MaxCorrections)
		reply := s.caller.InvokeOr(ctx, reasoning.Request{
			Prompt:      correctionPrompt(s.principles, raw, lastErr),
			ModelRef:    actor.ModelRef,
			Temperature: actor.Temperature,
		}, "")
		c, ok = parseChoice(reply)
	}

	s.logger.Warnf("extraction failed for actor=%s round=%d, defaulting to principle %d",
		actor.ID, round, DefaultPrincipleID)
	return experiment.Choice{
		PrincipleID:      DefaultPrincipleID,
		Reasoning:        ExtractionFailedReason,
		Round:            round,
		SpeakerPosition:  position,
		ExtractionFailed: true,
		CreatedAt:        time.Now().UTC(),
	}
}

// #endregion
