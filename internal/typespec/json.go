package typespec

import "encoding/json"

// MarshalJSON writes t with its usual field tags, except that an empty
// ConstructorParams is kept: it records a constructor declared without
// parameters, which renders as "class()" rather than "class".
func (t *Type) MarshalJSON() ([]byte, error) {
	type plain Type
	out := struct {
		plain
		ConstructorParams *[]*Param `json:"constructorParams,omitempty"`
	}{plain: plain(*t)}
	if t.ConstructorParams != nil {
		out.ConstructorParams = &t.ConstructorParams
	}
	return json.Marshal(out)
}
