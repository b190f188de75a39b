package pipeline

import (
	"context"
	"sync"
)

// Session keeps the last successful result so a failed run can still show
// something.
type Session struct {
	last *Result
	mu   sync.Mutex
}

// Run executes p. On failure it returns the previous successful result, if
// any, with replayed set, alongside the error.
func (s *Session) Run(ctx context.Context, p *Pipeline) (res *Result, replayed bool, err error) {
	res, err = p.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		return s.last, s.last != nil, err
	}

	s.last = res

	return res, false, nil
}
