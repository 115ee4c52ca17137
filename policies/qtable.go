package policies

import (
	"encoding/json"
	"os"
	"path"
	"sort"
)

// QTable is a sparse state -> action -> value map.
// Missing entries read as the given default and are not created by reads.
type QTable struct {
	table   map[string]map[string]float64
	entries int
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	actions, ok := q.table[state]
	if !ok {
		return def
	}
	val, ok := actions[action]
	if !ok {
		return def
	}
	return val
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.entries += 1
	}
	q.table[state][action] = val
}

// Size is the number of (state, action) entries
func (q *QTable) Size() int {
	return q.entries
}

func (q *QTable) States() int {
	return len(q.table)
}

type qEntry struct {
	State  string  `json:"state"`
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

// Record writes the table size and the highest valued entries as json
func (q *QTable) Record(filePath string, top int) error {
	entries := make([]qEntry, 0, q.entries)
	for s, actions := range q.table {
		for a, v := range actions {
			entries = append(entries, qEntry{State: s, Action: a, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		if entries[i].State != entries[j].State {
			return entries[i].State < entries[j].State
		}
		return entries[i].Action < entries[j].Action
	})
	if len(entries) > top {
		entries = entries[:top]
	}

	out := map[string]interface{}{
		"states":  q.States(),
		"entries": q.Size(),
		"top":     entries,
	}
	bs, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path.Dir(filePath), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(filePath, bs, 0644)
}
