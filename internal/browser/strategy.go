package browser

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Strategy is one named way of finding an element
type Strategy struct {
	Name string
	Find func(ctx context.Context) (Element, error)
}

// TryEach runs strategies in order and returns the first match with its strategy name.
// A strategy failing with anything other than ErrNotFound is logged and skipped,
// since the remote DOM may change under an in-flight lookup.
func TryEach(ctx context.Context, logger zerolog.Logger, purpose string, strategies ...Strategy) (Element, string, error) {
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		el, err := s.Find(ctx)
		if err == nil && el != nil {
			logger.Debug().Str("purpose", purpose).Str("strategy", s.Name).Msg("Locator strategy matched.")
			return el, s.Name, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			logger.Debug().Err(err).Str("purpose", purpose).Str("strategy", s.Name).Msg("Locator strategy failed.")
		}
	}

	logger.Warn().Str("purpose", purpose).Int("strategies", len(strategies)).Msg("No locator strategy matched.")
	return nil, "", ErrNotFound
}

// VisibleStrategy finds the first visible match of loc under q that passes accept.
// A nil accept admits every visible match.
func VisibleStrategy(name string, q Querier, loc Locator, accept func(ctx context.Context, el Element) (bool, error)) Strategy {
	return Strategy{
		Name: name,
		Find: func(ctx context.Context) (Element, error) {
			if accept == nil {
				return FirstVisible(ctx, q, loc)
			}

			elements, err := q.Query(ctx, loc)
			if err != nil {
				return nil, err
			}
			for _, el := range elements {
				visible, err := el.Visible(ctx)
				if err != nil || !visible {
					continue
				}
				ok, err := accept(ctx, el)
				if err != nil {
					continue
				}
				if ok {
					return el, nil
				}
			}
			return nil, ErrNotFound
		},
	}
}
