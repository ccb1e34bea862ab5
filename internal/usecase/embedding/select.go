package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
)

// Candidate is one provider offered to Select. Embedder is the provider's fully
// decorated chain (cache, throttle).
type Candidate struct {
	Name       string
	Model      string
	Dimensions int
	Configured bool
	Embedder   domain.Embedder
}

// Selection is the startup decision about which providers serve embed calls.
type Selection struct {
	Primary  Candidate
	Fallback *Candidate
	// FallbackSkipped explains why a configured second provider is not used.
	FallbackSkipped string
}

// Select picks the primary and optional fallback provider:
//   - preferred has credentials: it is primary; the other one becomes the fallback when
//     it has credentials and produces vectors of the same size;
//   - otherwise a configured alternative is primary, without fallback;
//   - otherwise preferred is primary and every call fails with ErrEmbeddingUnconfigured.
func Select(preferred string, candidates ...Candidate) (Selection, error) {
	var pref *Candidate
	var others []Candidate
	for i := range candidates {
		if candidates[i].Name == preferred && pref == nil {
			pref = &candidates[i]
			continue
		}
		others = append(others, candidates[i])
	}
	if pref == nil {
		return Selection{}, fmt.Errorf("unknown embedding provider %q: %w", preferred, domain.ErrInvalidInput)
	}

	if pref.Configured {
		sel := Selection{Primary: *pref}
		for _, o := range others {
			if !o.Configured {
				continue
			}
			if o.Dimensions != pref.Dimensions {
				sel.FallbackSkipped = fmt.Sprintf("%s produces %d dimensions, %s produces %d",
					o.Name, o.Dimensions, pref.Name, pref.Dimensions)
				continue
			}
			fb := o
			sel.Fallback = &fb
			sel.FallbackSkipped = ""
			break
		}
		return sel, nil
	}

	for _, o := range others {
		if o.Configured {
			return Selection{Primary: o}, nil
		}
	}

	primary := *pref
	primary.Embedder = unconfigured{name: pref.Name}
	return Selection{Primary: primary}, nil
}

// Embedder composes the selection into one domain.Embedder.
func (s Selection) Embedder(logger *zap.Logger) domain.Embedder {
	if s.Fallback == nil {
		return named{Candidate: s.Primary}
	}
	return NewFallbackEmbedder(s.Primary, *s.Fallback, logger)
}

// named stamps the provider name on results when no fallback pair is in play.
type named struct{ Candidate }

func (n named) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := n.Embedder.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%s: %w", n.Name, err)
	}
	res.Provider = n.Name
	return res, nil
}

type unconfigured struct{ name string }

func (u unconfigured) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf("%s: %w", u.name, domain.ErrEmbeddingUnconfigured)
}

func (u unconfigured) HealthCheck(context.Context) error {
	return fmt.Errorf("%s: %w", u.name, domain.ErrEmbeddingUnconfigured)
}
