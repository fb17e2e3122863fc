package doctor

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages health checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[Category][]HealthChecker
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[Category][]HealthChecker),
	}
}

// RegisterChecker registers a health checker
func (r *Registry) RegisterChecker(checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category := checker.Category()
	r.checkers[category] = append(r.checkers[category], checker)
}

// RunAll executes all registered health checkers concurrently. Results are
// grouped by category in report order, then in registration order.
func (r *Registry) RunAll(ctx context.Context) []CheckResult {
	return r.runCheckers(ctx, r.CheckersForCategories(nil))
}

// RunCategory executes all health checkers in a specific category concurrently
func (r *Registry) RunCategory(ctx context.Context, category Category) []CheckResult {
	return r.runCheckers(ctx, r.CheckersForCategories([]Category{category}))
}

// CheckersForCategories returns the checkers of the given categories in
// report order. Empty categories means all.
func (r *Registry) CheckersForCategories(categories []Category) []HealthChecker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []HealthChecker

	for _, category := range r.orderedCategories() {
		if len(categories) > 0 && !slices.Contains(categories, category) {
			continue
		}

		out = append(out, r.checkers[category]...)
	}

	return out
}

// orderedCategories lists registered categories, known ones first.
func (r *Registry) orderedCategories() []Category {
	ordered := make([]Category, 0, len(r.checkers))

	for _, c := range categoryOrder {
		if _, ok := r.checkers[c]; ok {
			ordered = append(ordered, c)
		}
	}

	var extra []Category

	for c := range r.checkers {
		if !slices.Contains(categoryOrder, c) {
			extra = append(extra, c)
		}
	}

	slices.Sort(extra)

	return append(ordered, extra...)
}

// runCheckers executes the given checkers concurrently
func (*Registry) runCheckers(ctx context.Context, checkers []HealthChecker) []CheckResult {
	results := make([]CheckResult, len(checkers))
	g, gctx := errgroup.WithContext(ctx)

	for i := range checkers {
		checker := checkers[i]

		g.Go(func() error {
			result := checker.Check(gctx)
			result.Category = checker.Category()
			results[i] = result

			return nil
		})
	}

	// Wait for all checks to complete
	_ = g.Wait()

	return results
}

// CheckerCount returns the total number of registered checkers
func (r *Registry) CheckerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, checkers := range r.checkers {
		count += len(checkers)
	}

	return count
}
