package browser

import (
	"context"
	"errors"
	"time"
)

const maxPollInterval = 100 * time.Millisecond

// Sleep pauses for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FirstVisible returns the first visible element matching loc, or the last one when
// loc.Last is set. Elements that vanish between query and check are skipped.
func FirstVisible(ctx context.Context, q Querier, loc Locator) (Element, error) {
	elements, err := q.Query(ctx, loc)
	if err != nil {
		return nil, err
	}

	for i := range elements {
		el := elements[i]
		if loc.Last {
			el = elements[len(elements)-1-i]
		}
		visible, err := el.Visible(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if visible {
			return el, nil
		}
	}
	return nil, ErrNotFound
}

// AnyVisible reports whether any locator has a visible match right now
func AnyVisible(ctx context.Context, q Querier, locs ...Locator) bool {
	for _, loc := range locs {
		if _, err := FirstVisible(ctx, q, loc); err == nil {
			return true
		}
	}
	return false
}

// AnyPresent reports whether any locator matches at least one element, visible or not
func AnyPresent(ctx context.Context, q Querier, locs ...Locator) bool {
	for _, loc := range locs {
		if elements, err := q.Query(ctx, loc); err == nil && len(elements) > 0 {
			return true
		}
	}
	return false
}

// WaitVisible polls until one of locs has a visible match or timeout elapses.
// Earlier locators win when several match in the same round. The index of the
// winning locator is returned alongside the element.
func WaitVisible(ctx context.Context, q Querier, timeout time.Duration, locs ...Locator) (Element, int, error) {
	deadline := time.Now().Add(timeout)
	poll := pollInterval(timeout)

	for {
		for i, loc := range locs {
			el, err := FirstVisible(ctx, q, loc)
			if err == nil {
				return el, i, nil
			}
			if !errors.Is(err, ErrNotFound) && ctx.Err() != nil {
				return nil, -1, ctx.Err()
			}
		}

		if !time.Now().Before(deadline) {
			return nil, -1, ErrNotFound
		}
		if err := Sleep(ctx, poll); err != nil {
			return nil, -1, err
		}
	}
}

func pollInterval(timeout time.Duration) time.Duration {
	poll := timeout / 10
	if poll > maxPollInterval {
		poll = maxPollInterval
	}
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	return poll
}
