package acor

import "sort"

// initArchive seeds the archive with ArchiveSize solutions drawn uniformly
// from each variable's initial range, evaluates them and sorts ascending by
// cost.
func (o *optimizer) initArchive() error {
	k := o.cfg.ArchiveSize
	o.archive = make([]Solution, 0, k+o.cfg.PopSize)
	for i := 0; i < k; i++ {
		position := make([]float64, len(o.cfg.Variables))
		for j, v := range o.cfg.Variables {
			position[j] = v.Sample(o.rng)
		}
		cost, err := o.evaluate(position, Initialization())
		if err != nil {
			return err
		}
		o.archive = append(o.archive, Solution{Position: position, Cost: cost})
	}
	sortByCost(o.archive)
	return nil
}

// merge appends a population to the archive, re-ranks and truncates back to
// ArchiveSize, discarding the worst len(pop) entries. An archive member
// survives as long as it outranks the newcomers, so the best cost never
// increases.
func (o *optimizer) merge(pop []Solution) {
	o.archive = append(o.archive, pop...)
	sortByCost(o.archive)
	o.archive = o.archive[:o.cfg.ArchiveSize]
}

// sortByCost sorts best first. The sort is stable so incumbents keep their
// rank over newcomers with equal cost.
func sortByCost(solutions []Solution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].Cost < solutions[j].Cost
	})
}
