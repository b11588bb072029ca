package chainhook

import "strings"

// Wildcard is the value that matches any string in a field governed by a
// StringMatch or a plain equality comparison.
const Wildcard = "*"

// StringMatch is the Equals/StartsWith/EndsWith shape shared by every
// hex-field predicate (Txid, witness script, OP_RETURN payload, addresses).
// Exactly one of the three should be set; Matches treats an empty StringMatch
// as "matches nothing".
type StringMatch struct {
	Equals     string `yaml:"equals,omitempty" json:"equals,omitempty"`
	StartsWith string `yaml:"starts_with,omitempty" json:"starts_with,omitempty"`
	EndsWith   string `yaml:"ends_with,omitempty" json:"ends_with,omitempty"`
}

// Matches reports whether value satisfies the configured comparison.
// A Wildcard operand matches any value, mirroring the original chainhook-sdk
// matcher's "*" escape hatch on every string field.
func (m StringMatch) Matches(value string) bool {
	value = strings.ToLower(value)
	switch {
	case m.Equals != "":
		if m.Equals == Wildcard {
			return true
		}
		return value == strings.ToLower(m.Equals)
	case m.StartsWith != "":
		if m.StartsWith == Wildcard {
			return true
		}
		return strings.HasPrefix(value, strings.ToLower(m.StartsWith))
	case m.EndsWith != "":
		if m.EndsWith == Wildcard {
			return true
		}
		return strings.HasSuffix(value, strings.ToLower(m.EndsWith))
	default:
		return false
	}
}

// IsZero reports whether none of the three comparison modes are set.
func (m StringMatch) IsZero() bool {
	return m.Equals == "" && m.StartsWith == "" && m.EndsWith == ""
}

// EqualsWildcard reports whether value equals want, treating want == "*" as
// matching anything. Used for plain (non-hex) equality fields such as
// contract_identifier and asset_identifier.
func EqualsWildcard(want, value string) bool {
	if want == Wildcard {
		return true
	}
	return want == value
}
