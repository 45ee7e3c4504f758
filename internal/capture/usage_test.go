package capture

import "testing"

func TestResourceUsage_Classification(t *testing.T) {
	inputs := []ResourceUsage{
		VertexBuffer, IndexBuffer, VSConstants, PSConstants, AllConstants,
		VSResource, PSResource, CSResource, AllResource, InputTarget, CopySrc, ResolveSrc,
	}
	draws := []ResourceUsage{
		ColorTarget, DepthStencilTarget, StreamOut, CopyDst, ResolveDst,
		VSRWResource, PSRWResource, CSRWResource, AllRWResource,
		Indirect, Clear, Discard, GenMips, Resolve, Copy, Barrier, CPUWrite,
	}

	for _, u := range inputs {
		if !u.IsInput() {
			t.Errorf("%s should be an input", u)
		}
	}
	for _, u := range draws {
		if u.IsInput() {
			t.Errorf("%s should count as a draw", u)
		}
	}
}

func TestResourceUsage_IsColorProducer(t *testing.T) {
	for u := VertexBuffer; u < usageCount; u++ {
		want := u == ColorTarget || u == CopySrc || u == Copy
		if got := u.IsColorProducer(); got != want {
			t.Errorf("%s.IsColorProducer() = %v, want %v", u, got, want)
		}
	}
}

func TestResourceUsage_Text(t *testing.T) {
	for u := VertexBuffer; u < usageCount; u++ {
		text, err := u.MarshalText()
		if err != nil {
			t.Fatalf("%d MarshalText: %v", u, err)
		}
		var back ResourceUsage
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != u {
			t.Errorf("round trip %s -> %s", u, back)
		}
	}

	if _, err := UsageUnknown.MarshalText(); err == nil {
		t.Error("UsageUnknown should not marshal")
	}
	if _, err := ParseUsage("Present"); err == nil {
		t.Error("ParseUsage(Present) should fail")
	}
	if got := ResourceUsage(200).String(); got != "ResourceUsage(200)" {
		t.Errorf("String() = %q", got)
	}
}
