package types

// redactedPlaceholder is what secret values render as in logs and dumps.
const redactedPlaceholder = "[REDACTED]"

var redactedJSON = []byte(`"` + redactedPlaceholder + `"`)

// SecretString is a string type for sensitive configuration values
// (connection strings, session keys). It renders redacted through fmt and
// JSON so a config dump or log line cannot leak the raw value.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to the points where the real value is required (pool construction,
// password comparison).
func (s SecretString) Unmask() string {
	return string(s)
}
