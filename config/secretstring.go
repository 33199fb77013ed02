package config

// secretMask replaces secret values in every rendering of the configuration.
const secretMask = "<secret>"

// SecretString holds credentials, such as server token. Value is only
// available through explicit conversion: printing, logging and marshaling
// show mask instead.
type SecretString string

func (s SecretString) masked() string {
	if len(s) == 0 {
		return ""
	}
	return secretMask
}

func (s SecretString) String() string {
	return s.masked()
}

func (s SecretString) GoString() string {
	return `"` + s.masked() + `"`
}

// MarshalJSON writes null for empty value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + secretMask + `"`), nil
}

// MarshalYAML writes null for empty value.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return secretMask, nil
}
