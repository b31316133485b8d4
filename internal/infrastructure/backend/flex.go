package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// flexString accepts JSON strings, numbers and null. The backend sends ids,
// ages and salaries either way depending on the record's origin.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(strings.TrimSpace(n.String()))
	return nil
}
