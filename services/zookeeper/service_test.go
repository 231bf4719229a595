package zookeeper

import (
	"encoding/json"
	"testing"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		uri      string
		expected []string
	}{
		{"/services/enercheck/1.0", []string{"services", "enercheck", "1.0"}},
		{"services/enercheck/1.0/", []string{"services", "enercheck", "1.0"}},
		{"//services//enercheck", []string{"services", "enercheck"}},
		{"/", nil},
		{"", nil},
	}
	for _, c := range cases {
		parts := splitPath(c.uri)
		if len(parts) != len(c.expected) {
			t.Errorf("splitPath(%q) gave %v, expected %v", c.uri, parts, c.expected)
			continue
		}
		for i := range parts {
			if parts[i] != c.expected[i] {
				t.Errorf("splitPath(%q) gave %v, expected %v", c.uri, parts, c.expected)
				break
			}
		}
	}
}

func TestAnnounceDataRoundTrip(t *testing.T) {
	aData := AnnounceData{
		Status: "ALIVE",
		ServiceEndpoint: Address{
			Host: "192.168.99.100",
			Port: 4430,
		},
	}
	asBytes, err := json.Marshal(aData)
	if err != nil {
		t.Errorf("could not marshal announcement: %v", err)
	}
	asString := string(asBytes)
	expected := `{"serviceEndpoint":{"host":"192.168.99.100","port":4430},"status":"ALIVE"}`
	if asString != expected {
		t.Errorf("announcement %s did not match expected %s", asString, expected)
	}
	var parsed AnnounceData
	if err := json.Unmarshal(asBytes, &parsed); err != nil {
		t.Errorf("could not unmarshal announcement: %v", err)
	}
	if parsed.ServiceEndpoint.Port != 4430 || parsed.Status != "ALIVE" {
		t.Errorf("announcement did not survive round trip: %v", parsed)
	}
}
