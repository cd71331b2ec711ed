package flash

import (
	"errors"
	"testing"
)

func TestRegionContains(t *testing.T) {
	r := Region{Base: 0x1000, Size: 0x1000}

	tests := []struct {
		addr uint32
		want bool
	}{
		{0x0FFF, false},
		{0x1000, true},
		{0x1FFF, true},
		{0x2000, false},
		{0, false},
		{0xFFFFFFFF, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.addr); got != tt.want {
			t.Errorf("Contains(0x%X) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestRegionOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Region
		want bool
	}{
		{
			name: "identical",
			a:    Region{0, 0x1000},
			b:    Region{0, 0x1000},
			want: true,
		},
		{
			name: "adjacent do not overlap",
			a:    Region{0, 0x1000},
			b:    Region{0x1000, 0x1000},
			want: false,
		},
		{
			name: "one byte of overlap",
			a:    Region{0, 0x1001},
			b:    Region{0x1000, 0x1000},
			want: true,
		},
		{
			name: "contained",
			a:    Region{0, 0x10000},
			b:    Region{0x4000, 0x100},
			want: true,
		},
		{
			name: "empty region never overlaps",
			a:    Region{0, 0},
			b:    Region{0, 0x1000},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})
	if err := router.SetExternal(Region{Base: 0x100000, Size: 0x200000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		addr       uint32
		wantKind   RegionKind
		wantOffset uint32
		wantErr    bool
	}{
		{name: "internal start", addr: 0, wantKind: RegionInternal, wantOffset: 0},
		{name: "internal end", addr: 0x0FFFFF, wantKind: RegionInternal, wantOffset: 0x0FFFFF},
		{name: "external start", addr: 0x100000, wantKind: RegionExternal, wantOffset: 0},
		{name: "external translated", addr: 0x140010, wantKind: RegionExternal, wantOffset: 0x40010},
		{name: "external end", addr: 0x2FFFFF, wantKind: RegionExternal, wantOffset: 0x1FFFFF},
		{name: "past external", addr: 0x300000, wantErr: true},
		{name: "far out", addr: 0xF0000000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := router.Classify(tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var addrErr *AddressError
				if !errors.As(err, &addrErr) {
					t.Fatalf("error type = %T, want *AddressError", err)
				}
				if addrErr.Address != tt.addr {
					t.Errorf("Address = 0x%X, want 0x%X", addrErr.Address, tt.addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", target.Kind, tt.wantKind)
			}
			if target.Offset != tt.wantOffset {
				t.Errorf("Offset = 0x%X, want 0x%X", target.Offset, tt.wantOffset)
			}
		})
	}
}

func TestClassifyWithoutExternal(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})

	if _, err := router.Classify(0x080000); err != nil {
		t.Errorf("internal address rejected: %v", err)
	}
	if _, err := router.Classify(0x100000); err == nil {
		t.Error("address past internal accepted with no external window")
	}
}

func TestSetExternalValidation(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})

	if err := router.SetExternal(Region{Base: 0x100000, Size: 0}); err == nil {
		t.Error("empty external region accepted")
	}

	err := router.SetExternal(Region{Base: 0x080000, Size: 0x100000})
	var overlapErr *RegionOverlapError
	if !errors.As(err, &overlapErr) {
		t.Fatalf("error type = %T, want *RegionOverlapError", err)
	}
}

func TestSetExternalBase(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})
	if err := router.SetExternal(Region{Base: 0x100000, Size: 0x100000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := router.SetExternalBase(0x200000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target, err := router.Classify(0x200040)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Kind != RegionExternal || target.Offset != 0x40 {
		t.Errorf("target = %+v, want external offset 0x40", target)
	}

	// The old window no longer routes.
	if _, err := router.Classify(0x100000); err == nil {
		t.Error("old window still routes after the move")
	}
}

func TestSetExternalBaseRejectsOverlap(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})
	if err := router.SetExternal(Region{Base: 0x100000, Size: 0x100000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := router.SetExternalBase(0x080000); err == nil {
		t.Fatal("overlapping move accepted")
	}

	// The window stays where it was.
	target, err := router.Classify(0x100010)
	if err != nil || target.Offset != 0x10 {
		t.Errorf("window moved despite rejected base: target=%+v err=%v", target, err)
	}
}

func TestSetExternalBaseWithoutWindow(t *testing.T) {
	router := NewRouter(Region{Base: 0, Size: 0x100000})
	if err := router.SetExternalBase(0x200000); !errors.Is(err, ErrNoExternal) {
		t.Errorf("error = %v, want ErrNoExternal", err)
	}
}
