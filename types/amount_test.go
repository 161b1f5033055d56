package types_test

import (
	"testing"

	"github.com/xraph/vesting/types"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name string
		s    types.Shares
		num  uint64
		den  uint64
		want types.Shares
	}{
		{"zero shares", 0, 500, 1000, 0},
		{"zero elapsed", 1000, 0, 1000, 0},
		{"half elapsed", 1000, 500, 1000, 500},
		{"full elapsed", 1000, 1000, 1000, 1000},
		{"floor division", 1000, 1, 3, 333},
		{"two of four intervals", 1000, 180, 360, 500},
		{"large values need 128-bit product", 1 << 62, 1 << 32, 1 << 33, 1 << 61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.MulDiv(tt.s, tt.num, tt.den)
			if got != tt.want {
				t.Errorf("MulDiv(%d, %d, %d) = %d, want %d", tt.s, tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestMulDivMonotonic(t *testing.T) {
	const total = 31104000 // 360 days in seconds
	shares := types.Shares(987654321)

	var prev types.Shares
	for elapsed := uint64(0); elapsed <= total; elapsed += total / 96 {
		got := types.MulDiv(shares, elapsed, total)
		if got < prev {
			t.Fatalf("MulDiv not monotonic: elapsed=%d got=%d prev=%d", elapsed, got, prev)
		}
		if got > shares {
			t.Fatalf("MulDiv exceeded total shares: elapsed=%d got=%d", elapsed, got)
		}
		prev = got
	}

	if got := types.MulDiv(shares, total, total); got != shares {
		t.Errorf("MulDiv at full duration = %d, want %d", got, shares)
	}
}

func TestMulDivPanicsOnZeroDenominator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero denominator")
		}
	}()
	types.MulDiv(1, 1, 0)
}

func TestAddOverflow(t *testing.T) {
	if _, overflow := types.AddAssets(1, 2); overflow {
		t.Error("unexpected overflow for small assets sum")
	}
	if _, overflow := types.AddAssets(^types.Assets(0), 1); !overflow {
		t.Error("expected overflow for max assets + 1")
	}
	if _, overflow := types.AddShares(^types.Shares(0), 1); !overflow {
		t.Error("expected overflow for max shares + 1")
	}
	if sum, overflow := types.AddShares(40, 2); overflow || sum != 42 {
		t.Errorf("AddShares(40, 2) = %d, overflow=%v", sum, overflow)
	}
}
