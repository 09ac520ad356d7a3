package task_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/portrain/lightflow/task"
)

func TestMultiTaskDataDefaultDataset(t *testing.T) {
	d := task.NewMultiTaskData("extract")

	if _, ok := d.Get("missing"); ok {
		t.Error("Get on empty dataset should miss")
	}
	d.Set("rows", 10)
	if v, ok := d.Get("rows"); !ok || v != 10 {
		t.Errorf("Get(rows) = %v, %v", v, ok)
	}
	ds, ok := d.Dataset("extract")
	if !ok || ds["rows"] != 10 {
		t.Errorf("Dataset(extract) = %v, %v", ds, ok)
	}
}

func TestMultiTaskDataSelectDefault(t *testing.T) {
	d := task.NewMultiTaskData("extract")
	d.Set("rows", 10)
	d.MergeDataset("transform", map[string]any{"rows": 20})

	if !d.SelectDefault("transform") {
		t.Fatal("SelectDefault(transform) = false")
	}
	if v, _ := d.Get("rows"); v != 20 {
		t.Errorf("Get(rows) after select = %v; want 20", v)
	}
	if d.SelectDefault("nonexistent") {
		t.Error("SelectDefault on unknown dataset should fail")
	}
	if v, _ := d.Get("rows"); v != 20 {
		t.Error("failed select must not change the default")
	}
}

func TestMultiTaskDataMerge(t *testing.T) {
	a := task.NewMultiTaskData("extract")
	a.Set("rows", 10)
	a.AddTaskHistory("extract")

	b := task.NewMultiTaskData("transform")
	b.Set("rows", 20)
	b.AddTaskHistory("extract")
	b.AddTaskHistory("transform")

	a.Merge(b)

	if ds, ok := a.Dataset("transform"); !ok || ds["rows"] != 20 {
		t.Errorf("merged dataset = %v, %v", ds, ok)
	}
	want := []string{"extract", "transform"}
	if got := a.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("history = %v; want %v", got, want)
	}

	a.Merge(nil) // no-op
	if got := a.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("history after nil merge = %v; want %v", got, want)
	}
}

func TestMultiTaskDataCopy(t *testing.T) {
	d := task.NewMultiTaskData("extract")
	d.Set("rows", 10)
	d.AddTaskHistory("extract")

	cp := d.Copy()
	cp.Set("rows", 99)
	cp.AddTaskHistory("other")

	if v, _ := d.Get("rows"); v != 10 {
		t.Errorf("original mutated through copy: rows = %v", v)
	}
	if got := d.History(); len(got) != 1 {
		t.Errorf("original history grew through copy: %v", got)
	}
}

func TestMultiTaskDataJSONRoundTrip(t *testing.T) {
	d := task.NewMultiTaskData("extract")
	d.Set("rows", float64(10))
	d.MergeDataset("transform", map[string]any{"ok": true})
	d.AddTaskHistory("extract")

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got task.MultiTaskData
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := got.Get("rows"); !ok || v != float64(10) {
		t.Errorf("Get(rows) = %v, %v", v, ok)
	}
	if ds, ok := got.Dataset("transform"); !ok || ds["ok"] != true {
		t.Errorf("Dataset(transform) = %v, %v", ds, ok)
	}
	if want := []string{"extract"}; !reflect.DeepEqual(got.History(), want) {
		t.Errorf("history = %v; want %v", got.History(), want)
	}
}
