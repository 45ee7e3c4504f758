package capture

import (
	"encoding/json"
	"testing"
)

func TestParseResourceID(t *testing.T) {
	tests := []struct {
		in      string
		want    ResourceID
		wantErr bool
	}{
		{"ResourceId::42", 42, false},
		{"42", 42, false},
		{" ResourceId::0 ", NullResource, false},
		{"ResourceId::", 0, true},
		{"tex", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResourceID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResourceID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseResourceID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestResourceID_String(t *testing.T) {
	if got := ResourceID(7).String(); got != "ResourceId::7" {
		t.Errorf("String() = %q", got)
	}
	if got := ResourceID(7).Number(); got != "7" {
		t.Errorf("Number() = %q", got)
	}
	if !NullResource.IsNull() || ResourceID(1).IsNull() {
		t.Error("IsNull() mismatch")
	}
}

func TestResourceID_JSON(t *testing.T) {
	var ids []ResourceID
	if err := json.Unmarshal([]byte(`["ResourceId::3", 4, "5"]`), &ids); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 4 || ids[2] != 5 {
		t.Errorf("ids = %v", ids)
	}

	out, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `["ResourceId::3","ResourceId::4","ResourceId::5"]` {
		t.Errorf("Marshal = %s", out)
	}

	var bad ResourceID
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("expected error for boolean id")
	}
}
