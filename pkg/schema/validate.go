package schema

import "sort"

// Schema maps configuration keys to their expected types.
type Schema map[string]Type

// Validate checks data against the schema. Every key in the schema must be
// present and well typed; keys absent from the schema are rejected so that
// typos in configuration surface early. An empty schema accepts only empty
// data.
func Validate(s Schema, data map[string]any) error {
	var errs []error

	for _, key := range s.Keys() {
		value, ok := data[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}
		if err := s[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	for _, key := range sortedKeys(data) {
		if _, ok := s[key]; !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema", Value: data[key]})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidatePartial checks only the keys present in data. It is used for
// configuration patches, where omitted keys keep their current value.
func ValidatePartial(s Schema, data map[string]any) error {
	var errs []error
	for _, key := range sortedKeys(data) {
		t, ok := s[key]
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema", Value: data[key]})
			continue
		}
		if err := t.Validate(data[key]); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: data[key]})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Keys returns the schema keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
