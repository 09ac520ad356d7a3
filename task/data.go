package task

import "encoding/json"

// MultiTaskData carries the working data handed from task to task. Each
// task that produces data owns a named dataset; one dataset is selected
// as the default for key lookups. The task history records every task
// that has touched the payload, in order, and only ever grows.
//
// A MultiTaskData instance is single-owner: it is created per invocation
// and handed off from the execution wrapper to the scheduler without
// retained aliases, so it carries no internal locking.
type MultiTaskData struct {
	datasets   map[string]map[string]any
	defaultKey string
	history    []string
}

// NewMultiTaskData creates a payload with a single empty dataset scoped
// to the given task name, selected as the default.
func NewMultiTaskData(taskName string) *MultiTaskData {
	return &MultiTaskData{
		datasets:   map[string]map[string]any{taskName: {}},
		defaultKey: taskName,
	}
}

// Get returns the value stored under key in the default dataset.
func (d *MultiTaskData) Get(key string) (any, bool) {
	ds, ok := d.datasets[d.defaultKey]
	if !ok {
		return nil, false
	}
	v, ok := ds[key]
	return v, ok
}

// Set stores value under key in the default dataset, creating the
// dataset if needed.
func (d *MultiTaskData) Set(key string, value any) {
	ds, ok := d.datasets[d.defaultKey]
	if !ok {
		ds = map[string]any{}
		d.datasets[d.defaultKey] = ds
	}
	ds[key] = value
}

// Dataset returns the dataset produced by the named task, or false if
// that task contributed no data.
func (d *MultiTaskData) Dataset(taskName string) (map[string]any, bool) {
	ds, ok := d.datasets[taskName]
	return ds, ok
}

// MergeDataset stores data as the dataset owned by taskName, replacing
// any existing dataset under that name.
func (d *MultiTaskData) MergeDataset(taskName string, data map[string]any) {
	d.datasets[taskName] = data
}

// SelectDefault switches the default dataset to the one owned by
// taskName. Returns false if no such dataset exists.
func (d *MultiTaskData) SelectDefault(taskName string) bool {
	if _, ok := d.datasets[taskName]; !ok {
		return false
	}
	d.defaultKey = taskName
	return true
}

// Merge folds the datasets and history of other into d. Datasets from
// other replace same-named datasets in d; history entries from other are
// appended in order, skipping names already present, preserving the
// append-only history invariant.
func (d *MultiTaskData) Merge(other *MultiTaskData) {
	if other == nil {
		return
	}
	for name, ds := range other.datasets {
		d.datasets[name] = ds
	}
	seen := make(map[string]struct{}, len(d.history))
	for _, name := range d.history {
		seen[name] = struct{}{}
	}
	for _, name := range other.history {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		d.history = append(d.history, name)
	}
}

// Copy returns a new MultiTaskData with copied dataset maps and history.
// Dataset values themselves are shared, which matches the single-writer
// handoff model: a branch mutates only its own task's dataset.
func (d *MultiTaskData) Copy() *MultiTaskData {
	cp := &MultiTaskData{
		datasets:   make(map[string]map[string]any, len(d.datasets)),
		defaultKey: d.defaultKey,
		history:    append([]string(nil), d.history...),
	}
	for name, ds := range d.datasets {
		inner := make(map[string]any, len(ds))
		for k, v := range ds {
			inner[k] = v
		}
		cp.datasets[name] = inner
	}
	return cp
}

// AddTaskHistory appends taskName to the payload's task history.
func (d *MultiTaskData) AddTaskHistory(taskName string) {
	d.history = append(d.history, taskName)
}

// History returns a copy of the task history in append order.
func (d *MultiTaskData) History() []string {
	return append([]string(nil), d.history...)
}

// multiTaskDataJSON is the wire shape used when a payload crosses a
// queue boundary.
type multiTaskDataJSON struct {
	Datasets map[string]map[string]any `json:"datasets"`
	Default  string                    `json:"default"`
	History  []string                  `json:"history,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d *MultiTaskData) MarshalJSON() ([]byte, error) {
	return json.Marshal(multiTaskDataJSON{
		Datasets: d.datasets,
		Default:  d.defaultKey,
		History:  d.history,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *MultiTaskData) UnmarshalJSON(data []byte) error {
	var wire multiTaskDataJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.datasets = wire.Datasets
	if d.datasets == nil {
		d.datasets = map[string]map[string]any{}
	}
	d.defaultKey = wire.Default
	d.history = wire.History
	return nil
}
