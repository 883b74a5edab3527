package timeline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hylla/ritning/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// GroupKind tags a bucket key so sentinel buckets cannot be mistaken for real ids.
type GroupKind string

// GroupKind values.
const (
	GroupProject    GroupKind = "project"
	GroupNoProject  GroupKind = "no_project"
	GroupAssignee   GroupKind = "assignee"
	GroupUnassigned GroupKind = "unassigned"
)

// GroupKey identifies one bucket.
type GroupKey struct {
	Kind GroupKind
	ID   string
}

// IsSentinel reports whether the key stands for missing project/assignee.
func (k GroupKey) IsSentinel() bool {
	return k.Kind == GroupNoProject || k.Kind == GroupUnassigned
}

// String renders the sentinel kind or the real id.
func (k GroupKey) String() string {
	if k.IsSentinel() {
		return string(k.Kind)
	}
	return k.ID
}

// TaskNode is a top-level task with its direct subtasks.
type TaskNode struct {
	Task     domain.Task
	Subtasks []domain.Task
}

// Bucket is one group of top-level tasks with rollup counts.
//
// Counts cover top-level members only; subtasks never roll up into them.
type Bucket struct {
	Key             GroupKey
	Label           string
	Health          domain.ProjectHealth
	Tasks           []TaskNode
	TotalCount      int
	DoneCount       int
	InProgressCount int
}

// CompletionPercent returns the share of done members.
func (b Bucket) CompletionPercent() float64 {
	if b.TotalCount == 0 {
		return 0
	}
	return float64(b.DoneCount) / float64(b.TotalCount) * 100
}

// GroupByProject folds the flat task list into project buckets ordered by
// project code descending, with the no_project bucket last.
func GroupByProject(tasks []domain.Task, projects []domain.Project) []Bucket {
	byID := make(map[string]domain.Project, len(projects))
	for _, project := range projects {
		byID[project.ID] = project
	}

	buckets := foldBuckets(tasks, func(task domain.Task) GroupKey {
		if task.ProjectID == "" {
			return GroupKey{Kind: GroupNoProject}
		}
		return GroupKey{Kind: GroupProject, ID: task.ProjectID}
	})
	for idx := range buckets {
		bucket := &buckets[idx]
		if bucket.Key.IsSentinel() {
			bucket.Label = "No project"
			continue
		}
		project, ok := byID[bucket.Key.ID]
		if !ok {
			bucket.Label = bucket.Key.ID
			continue
		}
		bucket.Label = project.Code + " " + project.Name
		bucket.Health = project.Health
	}

	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		if c := compareSentinelLast(a.Key, b.Key); c != 0 {
			return c
		}
		if c := cmp.Compare(byID[b.Key.ID].Code, byID[a.Key.ID].Code); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.ID, b.Key.ID)
	})
	return buckets
}

// GroupByAssignee folds the flat task list into assignee buckets ordered by
// person name ascending, with the unassigned bucket last.
func GroupByAssignee(tasks []domain.Task, people []domain.Person) []Bucket {
	names := make(map[string]string, len(people))
	for _, person := range people {
		names[person.ID] = person.Name
	}

	buckets := foldBuckets(tasks, func(task domain.Task) GroupKey {
		if task.AssigneeID == "" {
			return GroupKey{Kind: GroupUnassigned}
		}
		return GroupKey{Kind: GroupAssignee, ID: task.AssigneeID}
	})
	for idx := range buckets {
		bucket := &buckets[idx]
		switch {
		case bucket.Key.IsSentinel():
			bucket.Label = "Unassigned"
		case names[bucket.Key.ID] != "":
			bucket.Label = names[bucket.Key.ID]
		default:
			bucket.Label = bucket.Key.ID
		}
	}

	// Collators keep internal buffers, so each call gets its own.
	collator := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		if c := compareSentinelLast(a.Key, b.Key); c != 0 {
			return c
		}
		if c := collator.CompareString(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.ID, b.Key.ID)
	})
	return buckets
}

// foldBuckets groups top-level tasks by key and attaches one level of subtasks.
func foldBuckets(tasks []domain.Task, keyOf func(domain.Task) GroupKey) []Bucket {
	children := map[string][]domain.Task{}
	for _, task := range tasks {
		if task.IsTopLevel() {
			continue
		}
		children[task.ParentTaskID] = append(children[task.ParentTaskID], task)
	}

	index := map[GroupKey]int{}
	out := []Bucket{}
	for _, task := range tasks {
		if !task.IsTopLevel() {
			continue
		}
		key := keyOf(task)
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, Bucket{Key: key})
		}
		subtasks := slices.Clone(children[task.ID])
		slices.SortStableFunc(subtasks, compareTasks)
		if subtasks == nil {
			subtasks = []domain.Task{}
		}

		bucket := &out[pos]
		bucket.Tasks = append(bucket.Tasks, TaskNode{Task: task, Subtasks: subtasks})
		bucket.TotalCount++
		switch task.Status {
		case domain.StatusDone:
			bucket.DoneCount++
		case domain.StatusInProgress:
			bucket.InProgressCount++
		}
	}
	for idx := range out {
		slices.SortStableFunc(out[idx].Tasks, func(a, b TaskNode) int {
			return compareTasks(a.Task, b.Task)
		})
	}
	return out
}

// compareSentinelLast orders sentinel keys after every real key.
func compareSentinelLast(a, b GroupKey) int {
	switch {
	case a.IsSentinel() == b.IsSentinel():
		return 0
	case a.IsSentinel():
		return 1
	default:
		return -1
	}
}

// compareTasks orders tasks by start date, then name, then id.
func compareTasks(a, b domain.Task) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
