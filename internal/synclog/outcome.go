package synclog

import "leansync-jira/internal/models"

// Policy controls how a round's field writes survive its logged messages
type Policy struct {
	// ErrorLogField receives the status text; empty disables status writes
	ErrorLogField string
	// AlwaysSave lists fields whose computed values are kept on error
	AlwaysSave map[string]bool
}

// Outcome is what a round finally hands to the issue store
type Outcome struct {
	Writes models.WriteSet
	Failed bool
	Status string
}

// Finalize applies the three-way outcome rule:
//   - no messages: the writes stand and the status field is cleared
//   - warnings only: the writes stand and the warnings become the status
//   - errors: only the status field and always-saved fields are written
func Finalize(writes models.WriteSet, acc *Accumulator, p Policy) Outcome {
	if acc == nil {
		acc = New()
	}

	if !acc.Errors.IsEmpty() {
		status := acc.Errors.String()
		if !acc.Warnings.IsEmpty() {
			status += "\n" + acc.Warnings.String()
		}
		out := models.WriteSet{}
		for field := range p.AlwaysSave {
			if v, ok := writes[field]; ok {
				out[field] = v
			}
		}
		if p.ErrorLogField != "" {
			out.SetText(p.ErrorLogField, status)
		}
		return Outcome{Writes: out, Failed: true, Status: status}
	}

	out := writes.Clone()
	status := acc.Warnings.String()
	if p.ErrorLogField != "" {
		out.SetText(p.ErrorLogField, status)
	}
	return Outcome{Writes: out, Status: status}
}
