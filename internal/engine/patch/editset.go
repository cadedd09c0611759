package patch

import (
	"context"
	"sync"

	"vuescope/internal/shared/util"

	"golang.org/x/sync/errgroup"
)

// EditSet collects edits from concurrent producers, keyed by path.
type EditSet struct {
	mu    sync.Mutex
	edits map[string][]Edit
}

func NewEditSet() *EditSet {
	return &EditSet{edits: make(map[string][]Edit)}
}

// Add queues edits for path.
func (s *EditSet) Add(path string, edits ...Edit) {
	if len(edits) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits[path] = append(s.edits[path], edits...)
}

// Paths lists the paths with queued edits, sorted.
func (s *EditSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return util.SortedStringKeys(s.edits)
}

// Edits returns a copy of the edits queued for path.
func (s *EditSet) Edits(path string) []Edit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Edit(nil), s.edits[path]...)
}

// Len returns the number of queued edits.
func (s *EditSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.edits {
		n += len(e)
	}
	return n
}

// Commit applies each path's edits through p, paths in parallel. Every path
// is attempted. Failures are returned keyed by path and their edits stay
// queued; committed edits are removed.
func (s *EditSet) Commit(ctx context.Context, p *Patcher) map[string]error {
	paths := s.Paths()

	var mu sync.Mutex
	failed := make(map[string]error)
	taken := make(map[string]int, len(paths))
	var g errgroup.Group
	for _, path := range paths {
		edits := s.Edits(path)
		taken[path] = len(edits)
		g.Go(func() error {
			err := p.Apply(ctx, path, edits)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[path] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range paths {
		if _, bad := failed[path]; bad {
			continue
		}
		if rest := s.edits[path][taken[path]:]; len(rest) > 0 {
			s.edits[path] = rest
		} else {
			delete(s.edits, path)
		}
	}
	return failed
}
