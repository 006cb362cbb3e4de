package services

import (
	"context"
	"errors"

	"github.com/farsightlab/arv-backend/internal/clients/pictures"
	"github.com/farsightlab/arv-backend/internal/platform/apierr"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
	"github.com/farsightlab/arv-backend/internal/utils"
)

// Selector produces a pair of candidate pictures that differ enough, by
// average color and by description vocabulary, to make a later blind match
// meaningful.
type Selector interface {
	SelectPair(ctx context.Context, excluded map[string]struct{}) (*types.Picture, *types.Picture, error)
}

type selector struct {
	log    *logger.Logger
	source pictures.Source
	policy SelectorPolicy
}

func NewSelector(log *logger.Logger, source pictures.Source, policy SelectorPolicy) Selector {
	return &selector{
		log:    log.With("service", "Selector"),
		source: source,
		policy: policy,
	}
}

// LoadSelectorPolicy reads policy overrides from the environment, falling
// back to the defaults for anything unset.
func LoadSelectorPolicy(log *logger.Logger) SelectorPolicy {
	p := DefaultSelectorPolicy()
	p.MaxPairAttempts = utils.GetEnvAsInt("SELECTOR_MAX_PAIR_ATTEMPTS", p.MaxPairAttempts, log)
	p.MaxSlotAttempts = utils.GetEnvAsInt("SELECTOR_MAX_SLOT_ATTEMPTS", p.MaxSlotAttempts, log)
	p.MinColorDistance = utils.GetEnvAsFloat("SELECTOR_MIN_COLOR_DISTANCE", p.MinColorDistance, log)
	p.MaxLexicalSimilarity = utils.GetEnvAsFloat("SELECTOR_MAX_LEXICAL_SIMILARITY", p.MaxLexicalSimilarity, log)
	return p
}

var errSlotExhausted = errors.New("could not fill picture slot")

func (s *selector) SelectPair(ctx context.Context, excluded map[string]struct{}) (*types.Picture, *types.Picture, error) {
	first, err := s.fillSlot(ctx, excluded, "")
	if err != nil {
		if errors.Is(err, errSlotExhausted) {
			return nil, nil, apierr.SelectionExhausted("no usable candidate for first slot within %d attempts", s.policy.MaxSlotAttempts)
		}
		return nil, nil, err
	}

	for attempt := 0; attempt < s.policy.MaxPairAttempts; attempt++ {
		second, err := s.fillSlot(ctx, excluded, first.ID)
		if err != nil {
			if errors.Is(err, errSlotExhausted) {
				return nil, nil, apierr.SelectionExhausted("no usable candidate for second slot within %d attempts", s.policy.MaxSlotAttempts)
			}
			return nil, nil, err
		}

		if s.policy.Accepts(first, second) {
			return first, second, nil
		}
		// Keep the first slot, resample only the second.
		s.log.Debug("Rejected candidate pair, resampling second slot",
			"attempt", attempt+1,
			"first_id", first.ID,
			"second_id", second.ID,
		)
	}

	return nil, nil, apierr.SelectionExhausted("no sufficiently dissimilar pair within %d attempts", s.policy.MaxPairAttempts)
}

// fillSlot fetches one candidate whose id is neither excluded nor equal to
// otherID, resampling up to MaxSlotAttempts before giving up the slot.
func (s *selector) fillSlot(ctx context.Context, excluded map[string]struct{}, otherID string) (*types.Picture, error) {
	for attempt := 0; attempt < s.policy.MaxSlotAttempts; attempt++ {
		pic, err := s.source.FetchRandomCandidate(ctx)
		if err != nil {
			if errors.Is(err, pictures.ErrSourceUnavailable) {
				return nil, apierr.SourceUnavailable(err)
			}
			return nil, err
		}
		if pic == nil || pic.ID == "" {
			continue
		}
		if pic.ID == otherID {
			continue
		}
		if _, isExcluded := excluded[pic.ID]; isExcluded {
			continue
		}
		return pic, nil
	}
	return nil, errSlotExhausted
}
