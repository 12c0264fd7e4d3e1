package array

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
)

var _ = Describe("Array staging buffer", func() {
	DescribeTable("should be empty after a failed stage",
		func(parallelism int) {
			a, err := NewBuilder().WithParallelism(parallelism).Build("STA")
			Expect(err).NotTo(HaveOccurred())

			ok := tensor.VectorOf(1, 2, 3, 4)
			e := Edge{
				A: []tensor.Vector{ok, ok, ok, tensor.VectorOf(1, 2)},
				B: []tensor.Vector{ok, ok, ok, ok},
			}

			Expect(a.stage(&e)).To(MatchError(tensor.ErrShapeMismatch))

			for i := range a.staged {
				for j := range a.staged[i] {
					Expect(a.staged[i][j]).To(Equal(pe.Pending{}))
				}
			}

			a.commit()
			Expect(a.ReadOutput()).To(Equal(tensor.NewMatrix(4)))
			Expect(a.Cell(0, 0).Right).To(Equal(tensor.VectorOf(0, 0, 0, 0)))
		},
		Entry("serial", 0),
		Entry("parallel", 4),
	)
})
