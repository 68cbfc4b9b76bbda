package workload

import (
	"context"
	"fmt"
	"math/big"

	"github.com/aryankumar/concur/internal/async"
	"github.com/aryankumar/concur/internal/work"
)

// PowName is the registry name of the CPU-bound unit
const PowName = "pow"

// Pow computes n^n and returns the bit length of the result. The value itself
// is discarded; only the work matters.
func Pow(ctx context.Context, n int) (int, error) {
	return pow(ctx, n, nil)
}

// PowUnit returns the CPU-bound unit. Its cooperative form yields to other
// tasks between multiplications, so it never blocks the executor for a whole
// exponentiation.
func PowUnit() work.Unit[int, int] {
	return work.Unit[int, int]{
		Name: PowName,
		Sync: Pow,
		Async: func(t *async.Task, n int) (int, error) {
			return pow(t.Context(), n, t.Yield)
		},
	}
}

// Items returns count consecutive exponents starting at start
func Items(start, count int) []int {
	if count < 0 {
		count = 0
	}
	items := make([]int, count)
	for i := range items {
		items[i] = start + i
	}
	return items
}

// pow is square-and-multiply over math/big, checking ctx and calling step
// between rounds
func pow(ctx context.Context, n int, step func()) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("exponent must not be negative, got %d", n)
	}

	result := big.NewInt(1)
	base := big.NewInt(int64(n))

	for e := n; e > 0; e >>= 1 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if e&1 == 1 {
			result.Mul(result, base)
		}
		if e > 1 {
			base.Mul(base, base)
		}
		if step != nil {
			step()
		}
	}

	return result.BitLen(), nil
}
