package harness

// ChainInfo records the shape of one generated chain.
type ChainInfo struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

// Outcome is the result of one assertion.
type Outcome struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Pass   bool   `json:"pass"`

	// Detail carries the measured values. It is left out of snapshots.
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every assertion passed.
	Pass bool `json:"pass"`

	Chains   []ChainInfo `json:"chains"`
	Outcomes []Outcome   `json:"outcomes"`

	// Errors contains one message per failed assertion.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Chains:   []ChainInfo{},
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record appends an assertion outcome, adding err to Errors when non-nil.
func (r *Result) record(a Assertion, detail string, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{
		Type:   a.Type,
		Target: target(a),
		Pass:   err == nil,
		Detail: detail,
	})
	if err != nil {
		r.AddError(err.Error())
	}
}
