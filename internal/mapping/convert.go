package mapping

import "leansync-jira/internal/transform"

// Convert runs the field's value transforms in order: lookup table, date
// reformatting, duration conversion, then HTML decoding or encoding. A step
// that fails keeps the value it was given and contributes a warning, so one
// bad value never fails the round.
func (f *Field) Convert(value string) (string, []string) {
	var warnings []string

	if f.Values != nil {
		value = transform.LookupValue(f.Values, value)
	}

	if f.HasDateFormat() {
		if out, err := transform.ReformatDate(value, f.DateFrom, f.DateTo); err != nil {
			warnings = append(warnings, err.Error())
		} else {
			value = out
		}
	}

	if f.HasDurationUnits() {
		if out, err := transform.ConvertDuration(value, f.DurationFrom, f.DurationTo); err != nil {
			warnings = append(warnings, err.Error())
		} else {
			value = out
		}
	}

	switch {
	case f.DecodeHTML:
		value = transform.DecodeHTML(value)
	case f.EncodeHTML:
		value = transform.EncodeHTML(value)
	}
	return value, warnings
}
