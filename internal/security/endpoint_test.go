package security

import "testing"

// Only IP-literal and scheme cases here; hostname cases would hit DNS.
func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"bad scheme", "ftp://media.example.com", true},
		{"no host", "https://", true},
		{"localhost", "https://localhost/search", true},
		{"metadata host", "http://metadata.google.internal/", true},
		{"loopback literal", "http://127.0.0.1:9200/search", true},
		{"private literal", "https://10.1.2.3/search", true},
		{"link-local literal", "http://169.254.169.254/latest", true},
		{"unspecified literal", "http://0.0.0.0/", true},
		{"public literal", "https://93.184.216.34/search", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpointURL(%q) err=%v, wantErr=%v", tt.url, err, tt.wantErr)
			}
		})
	}
}
