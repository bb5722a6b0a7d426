package validation

import (
	"testing"
)

func TestIsValidChainAddress(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"0x1234567890123456789012345678901234567890", true},
		{"0xabcdefABCDEF1234567890123456789012345678", true},
		{"0x0000000000000000000000000000000000000000", true},

		// Invalid cases
		{"1234567890123456789012345678901234567890", false},     // No 0x
		{"0x12345678901234567890123456789012345678", false},     // Too short
		{"0x123456789012345678901234567890123456789012", false}, // Too long
		{"0xGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGG", false},   // Invalid chars
		{"", false},
		{"0x", false},
	}

	for _, tc := range tests {
		result := IsValidChainAddress(tc.addr)
		if result != tc.valid {
			t.Errorf("IsValidChainAddress(%q) = %v, want %v", tc.addr, result, tc.valid)
		}
	}
}

func TestIsValidCountry(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"US", true},
		{"IR", true},
		{"us", false},
		{"USA", false},
		{"U", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsValidCountry(tc.code); got != tc.valid {
			t.Errorf("IsValidCountry(%q) = %v, want %v", tc.code, got, tc.valid)
		}
	}
}

func TestIsValidScreeningID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"scr_0123456789abcdef01234567", true},
		{"scr_0123456789ABCDEF01234567", false}, // uppercase hex
		{"scr_0123", false},                     // too short
		{"wh_0123456789abcdef01234567", false},  // wrong prefix
		{"", false},
	}

	for _, tc := range tests {
		if got := IsValidScreeningID(tc.id); got != tc.valid {
			t.Errorf("IsValidScreeningID(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

func TestSanitizeAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0x1234567890123456789012345678901234567890", "0x1234567890123456789012345678901234567890"},
		{"0xABCDEF1234567890123456789012345678901234", "0xabcdef1234567890123456789012345678901234"},
		{"  0x1234567890123456789012345678901234567890  ", "0x1234567890123456789012345678901234567890"},
		{"1234567890123456789012345678901234567890", "0x1234567890123456789012345678901234567890"},
	}

	for _, tc := range tests {
		result := SanitizeAddress(tc.input)
		if result != tc.expected {
			t.Errorf("SanitizeAddress(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"  hello  ", 10, "hello"},
		{"hello world", 5, "hello"},
		{"hello\x00world", 20, "helloworld"},
	}

	for _, tc := range tests {
		result := SanitizeString(tc.input, tc.maxLen)
		if result != tc.expected {
			t.Errorf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, result, tc.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	// Test valid input
	errors := Validate(
		Required("name", "Acme Exports Ltd"),
		ValidChainAddress("chainAddress", "0x1234567890123456789012345678901234567890"),
		ValidCountry("country", "DE"),
	)
	if len(errors) != 0 {
		t.Errorf("Expected no errors, got %v", errors)
	}

	// Test invalid input
	errors = Validate(
		Required("name", ""),
		ValidChainAddress("chainAddress", "invalid"),
		ValidCountry("country", "Germany"),
	)
	if len(errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(errors))
	}
}

func TestOneOf(t *testing.T) {
	if err := OneOf("kind", "INDIVIDUAL", "INDIVIDUAL", "ENTITY", "WALLET")(); err != nil {
		t.Errorf("Expected no error for allowed value, got %v", err)
	}
	if err := OneOf("kind", "ROBOT", "INDIVIDUAL", "ENTITY", "WALLET")(); err == nil {
		t.Error("Expected error for disallowed value")
	}
	// Empty passes; Required handles presence.
	if err := OneOf("kind", "", "INDIVIDUAL")(); err != nil {
		t.Errorf("Expected no error for empty value, got %v", err)
	}
}

func TestMaxLength(t *testing.T) {
	// Under limit
	err := MaxLength("field", "hello", 10)()
	if err != nil {
		t.Error("Expected no error for string under limit")
	}

	// At limit
	err = MaxLength("field", "hello", 5)()
	if err != nil {
		t.Error("Expected no error for string at limit")
	}

	// Over limit
	err = MaxLength("field", "hello world", 5)()
	if err == nil {
		t.Error("Expected error for string over limit")
	}
}
