// Package optimization provides shared data structures for break-even solver
// results.
package optimization

// Summary captures the outcome of a single solve directive: the field that
// was searched, the goal it was searched against, and the value that meets
// it. Achieved holds the goal metric at the reported value.
type Summary struct {
	Scenario        string   `json:"scenario"`
	Field           string   `json:"field"`
	Goal            string   `json:"goal"`
	Target          float64  `json:"target"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	Achieved        float64  `json:"achieved"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty"`
	TargetDisplay   string   `json:"targetDisplay,omitempty"`
}
