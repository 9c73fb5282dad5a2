package backend

import "testing"

func TestUint16Param(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   uint16
		ok     bool
	}{
		{"uint16", map[string]any{ParamVendorID: uint16(0x1050)}, 0x1050, true},
		{"int", map[string]any{ParamVendorID: 0x0407}, 0x0407, true},
		{"int64", map[string]any{ParamVendorID: int64(0x0402)}, 0x0402, true},
		{"uint32", map[string]any{ParamVendorID: uint32(0x0204)}, 0x0204, true},
		{"negative int", map[string]any{ParamVendorID: -1}, 0, false},
		{"int too large", map[string]any{ParamVendorID: 0x10000}, 0, false},
		{"missing", map[string]any{}, 0, false},
		{"wrong type", map[string]any{ParamVendorID: "1050"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := uint16Param(tt.params, ParamVendorID)
			if ok != tt.ok {
				t.Fatalf("uint16Param() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("uint16Param() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestChoose_PrefersUSB(t *testing.T) {
	// The libusb backend reports itself supported wherever it
	// compiles, so the probe must land on it first.
	b, err := Choose()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := b.(*USB); !ok {
		t.Errorf("Choose() = %T, want *USB", b)
	}
}
