package timeline

import "github.com/hylla/ritning/internal/domain"

// ResolveDependencies returns the dependency tasks of task that exist in the
// same project, in DependencyIDs order.
//
// tasks may hold more than one project; anything outside task.ProjectID is
// ignored, as are ids that no longer exist. Cycles are not detected.
func ResolveDependencies(task domain.Task, tasks []domain.Task) []domain.Task {
	out := []domain.Task{}
	if len(task.DependencyIDs) == 0 {
		return out
	}

	sameProject := make(map[string]domain.Task, len(tasks))
	for _, candidate := range tasks {
		if candidate.ProjectID != task.ProjectID {
			continue
		}
		sameProject[candidate.ID] = candidate
	}

	seen := map[string]struct{}{}
	for _, id := range task.DependencyIDs {
		dep, ok := sameProject[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, dep)
	}
	return out
}
