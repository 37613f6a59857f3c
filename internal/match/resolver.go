package match

import (
	"context"
	"strings"

	"resolver/pkg/domain"
	"resolver/pkg/logger"
	"resolver/pkg/serrors"

	"go.uber.org/zap"
)

// Query is the caller-supplied description of the company to resolve.
type Query struct {
	// Name is the raw, possibly misspelled or abbreviated company name.
	Name string
	// Identifier is the optional raw registration string. A malformed value is
	// logged and ignored rather than failing the resolution, keeping name-only
	// matching available.
	Identifier string
}

// Scored describes the winning candidate and the numbers that selected it.
type Scored struct {
	// Index is the winner's position in the candidate slice passed to Resolve.
	// Candidates keep their identity by index; the resolver never mutates or
	// clones them.
	Index int
	// Candidate is the winning row.
	Candidate domain.Company
	// NameScore is the name similarity in [0, 100].
	NameScore float64
	// RegistrationBonus is the identifier-derived score term. It outweighs the
	// name score tenfold because a correct register number is authoritative.
	RegistrationBonus float64
	// FinalScore is RegistrationBonus + 0.1 * NameScore.
	FinalScore float64
	// NameOnly is true when the winner came from the fallback pass that
	// ignores registration identifiers entirely.
	NameOnly bool
}

// Options tune the resolver.
type Options struct {
	// ViabilityFloor is the score the best candidate must strictly exceed in a
	// name-only pass for the resolution to count as a match. The zero value
	// reproduces the historical behavior of accepting any positive evidence.
	ViabilityFloor float64
}

// Registration bonus tiers. A candidate without any identifier is penalized;
// a documented candidate is preferred when the query supplied no identifier;
// when both sides carry one, similarity maps onto a steep tier ladder so that
// near-exact register numbers dominate every name consideration.
const (
	penaltyUndocumented = -50.0
	bonusDocumented     = 100.0

	bonusTierExact  = 1000.0
	bonusTierHigh   = 800.0
	bonusTierMedium = 500.0
	bonusTierLow    = 200.0
	bonusTierFloor  = 50.0

	nameWeight = 0.1
)

func registrationBonus(similarity float64) float64 {
	switch {
	case similarity >= 0.95:
		return bonusTierExact
	case similarity >= 0.8:
		return bonusTierHigh
	case similarity >= 0.6:
		return bonusTierMedium
	case similarity >= 0.4:
		return bonusTierLow
	default:
		return bonusTierFloor
	}
}

// Resolve selects the candidate most likely to be the company the query
// means. Candidates are scored independently; ties resolve to the earliest
// index so repeated runs over the same input pick the same winner.
//
// When a query identifier was supplied but produced no evidence at all (every
// candidate at or below the undocumented penalty), the scoring repeats once
// with identifiers ignored before giving up: a wrong or stale register number
// should not defeat an exact name match.
//
// Returns serrors.ErrNoCandidates for an empty candidate list and
// serrors.ErrNoMatchFound when nothing clears the viability floor.
func Resolve(ctx context.Context, query Query, candidates []domain.Company, opts Options) (*Scored, error) {
	if len(candidates) == 0 {
		return nil, serrors.With(serrors.ErrNoCandidates, "no candidates to match %q against", query.Name)
	}

	queryName := CanonicalName(query.Name)

	var queryID *Identifier
	if strings.TrimSpace(query.Identifier) != "" {
		if queryID = ParseIdentifier(query.Identifier); queryID == nil {
			// recoverable: proceed as if no identifier was supplied
			logger.Warn(ctx, "ignoring malformed registration identifier",
				zap.String("identifier", query.Identifier))
		}
	}

	prepared := make([]*Identifier, len(candidates))
	canonical := make([]string, len(candidates))
	for i, c := range candidates {
		canonical[i] = CanonicalName(c.Name)
		prepared[i] = ParseIdentifier(c.RegistrationNumber)
	}

	best := scorePass(ctx, queryName, queryID, canonical, prepared, candidates, false)

	// the undocumented penalty is the score of "no evidence at all": no
	// identifier agreement and zero name overlap
	if best.FinalScore > penaltyUndocumented+opts.ViabilityFloor {
		return best, nil
	}

	if queryID != nil {
		logger.Debug(ctx, "identifier produced no evidence, retrying name-only",
			zap.String("identifier", queryID.String()))
		best = scorePass(ctx, queryName, nil, canonical, prepared, candidates, true)
		if best.FinalScore > opts.ViabilityFloor {
			return best, nil
		}
	}

	return nil, serrors.With(serrors.ErrNoMatchFound, "no candidate for %q above viability floor", query.Name)
}

// scorePass scores every candidate once and returns the best. In the
// name-only pass the registration bonus is fixed at zero for everyone, so
// only name evidence counts. Selection uses strict comparison: the first
// candidate to reach the top score keeps it.
func scorePass(ctx context.Context,
	queryName string,
	queryID *Identifier,
	canonical []string,
	prepared []*Identifier,
	candidates []domain.Company,
	nameOnly bool) *Scored {
	var best *Scored
	for i := range candidates {
		nameScore := NameScore(queryName, canonical[i])

		var bonus float64
		if !nameOnly {
			switch {
			case prepared[i] == nil:
				bonus = penaltyUndocumented
			case queryID == nil:
				bonus = bonusDocumented
			default:
				bonus = registrationBonus(RegistrationSimilarity(queryID, prepared[i]))
			}
		}

		final := bonus + nameWeight*nameScore
		logger.Debug(ctx, "scored candidate",
			zap.Int("index", i),
			zap.String("name", candidates[i].Name),
			zap.Float64("nameScore", nameScore),
			zap.Float64("registrationBonus", bonus),
			zap.Float64("finalScore", final))

		if best == nil || final > best.FinalScore {
			best = &Scored{
				Index:             i,
				Candidate:         candidates[i],
				NameScore:         nameScore,
				RegistrationBonus: bonus,
				FinalScore:        final,
				NameOnly:          nameOnly,
			}
		}
	}

	return best
}
