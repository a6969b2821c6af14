package atoms_test

import (
	"fmt"

	"github.com/katalvlaran/ptens/atoms"
)

// ExamplePack_Permute aligns a pack with another item order.
func ExamplePack_Permute() {
	p, _ := atoms.FromSlices([][]int{{0, 1, 2}, {2, 3}})
	q, _ := p.Permute([]int{1, 0})
	fmt.Print(q)
	fmt.Println(q.TotalSize())
	// Output:
	// (2,3)
	// (0,1,2)
	// 5
}
