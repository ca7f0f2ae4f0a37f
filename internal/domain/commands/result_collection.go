package commands

import "github.com/rios0rios0/mrhelper/internal/domain/entities"

// resultCollection is a multi-producer, single-consumer buffer of resolution
// results. Workers may Push concurrently; Drain must be called once, after
// every producer has returned. Drained order is arrival order.
type resultCollection struct {
	results chan entities.ResolutionResult
}

func newResultCollection(capacity int) *resultCollection {
	return &resultCollection{results: make(chan entities.ResolutionResult, capacity)}
}

// Push never blocks as long as each worker pushes at most once.
func (c *resultCollection) Push(result entities.ResolutionResult) {
	c.results <- result
}

func (c *resultCollection) Drain() []entities.ResolutionResult {
	close(c.results)
	drained := make([]entities.ResolutionResult, 0, len(c.results))
	for result := range c.results {
		drained = append(drained, result)
	}
	return drained
}
