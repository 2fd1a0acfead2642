package resilience

// ErrorMapping associates a matcher with the message reported when it matches.
type ErrorMapping struct {
	Match   Matcher
	Message string
}

// Classifier is an ordered list of mappings. The first matching entry wins;
// later entries with an identical matcher are never reached.
type Classifier []ErrorMapping

// NewClassifier pairs kinds and messages by position. It returns
// ErrMappingMismatch when their lengths differ.
func NewClassifier(kinds []Matcher, messages []string) (Classifier, error) {
	if len(kinds) != len(messages) {
		return nil, ErrMappingMismatch
	}

	c := make(Classifier, len(kinds))
	for i := range kinds {
		c[i] = ErrorMapping{Match: kinds[i], Message: messages[i]}
	}
	return c, nil
}

// Resolve returns the message of the first entry matching err. When nothing
// matches it returns DefaultMessage and false.
func (c Classifier) Resolve(err error) (string, bool) {
	for _, m := range c {
		if m.Match != nil && m.Match(err) {
			return m.Message, true
		}
	}
	return DefaultMessage, false
}
