package pe_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sta/pe"
	"github.com/sarchlab/sta/tensor"
)

var _ = Describe("PE", func() {
	var (
		p *pe.PE
		a tensor.Vector
		b tensor.Vector
	)

	BeforeEach(func() {
		var err error
		p, err = pe.NewBuilder().Build("PE")
		Expect(err).NotTo(HaveOccurred())

		a = tensor.VectorOf(1, 2, 3, 4)
		b = tensor.VectorOf(5, 6, 7, 8)
	})

	edge := func(sumIn int32, load, reset bool) {
		Expect(p.Evaluate(pe.Inputs{
			Left:    a,
			Top:     b,
			SumIn:   sumIn,
			LoadSum: load,
			Reset:   reset,
		})).To(Succeed())
	}

	It("should start with a zero accumulator", func() {
		Expect(p.SumOut()).To(Equal(int32(0)))
		Expect(p.VectorWidth()).To(Equal(4))
		Expect(p.RightOut()).To(Equal(tensor.VectorOf(0, 0, 0, 0)))
		Expect(p.BottomOut()).To(Equal(tensor.VectorOf(0, 0, 0, 0)))
	})

	It("should reset, load, then accumulate", func() {
		edge(0, false, true)
		Expect(p.SumOut()).To(Equal(int32(0)))

		edge(100, true, false)
		Expect(p.SumOut()).To(Equal(int32(100)))

		edge(0, false, false)
		Expect(p.SumOut()).To(Equal(int32(170)))

		edge(0, false, false)
		Expect(p.SumOut()).To(Equal(int32(240)))

		Expect(p.RightOut()).To(Equal(a))
		Expect(p.BottomOut()).To(Equal(b))

		edge(0, false, true)
		Expect(p.SumOut()).To(Equal(int32(0)))
	})

	It("should let reset dominate load and accumulate", func() {
		edge(55, true, false)
		edge(1234, true, true)
		Expect(p.SumOut()).To(Equal(int32(0)))
	})

	It("should load sum_in exactly regardless of operands", func() {
		for _, s := range []int32{0, -1, 1, math.MaxInt32, math.MinInt32, 100} {
			a = tensor.VectorOf(127, -128, 127, -128)
			b = tensor.VectorOf(-128, 127, -128, 127)
			edge(s, true, false)
			Expect(p.SumOut()).To(Equal(s))
		}
	})

	It("should accumulate linearly", func() {
		edge(-500, true, false)

		for k := int32(1); k <= 10; k++ {
			edge(0, false, false)
			Expect(p.SumOut()).To(Equal(-500 + k*70))
		}
	})

	It("should pass operands through on every kind of edge", func() {
		for _, ctl := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
			a = tensor.VectorOf(rand.Intn(256)-128, 1, -1, 0)
			b = tensor.VectorOf(9, rand.Intn(256)-128, 3, -7)
			edge(42, ctl[0], ctl[1])
			Expect(p.RightOut()).To(Equal(a))
			Expect(p.BottomOut()).To(Equal(b))
		}
	})

	It("should not alias the caller's operand slices", func() {
		edge(0, false, false)
		a[0] = 99
		Expect(p.RightOut()[0]).To(Equal(int8(1)))

		out := p.BottomOut()
		out[0] = 99
		Expect(p.BottomOut()[0]).To(Equal(int8(5)))
	})

	DescribeTable("int8 extremes are sign-extended before multiplying",
		func(left, top []int, sumIn int32) {
			a = tensor.VectorOf(left...)
			b = tensor.VectorOf(top...)

			edge(0, false, true)
			edge(sumIn, true, false)
			edge(0, false, false)
			Expect(p.SumOut()).To(Equal(sumIn + tensor.Dot(a, b)))
			edge(0, false, false)
			Expect(p.SumOut()).To(Equal(sumIn + 2*tensor.Dot(a, b)))
		},
		Entry("zeros", []int{0, 0, 0, 0}, []int{0, 0, 0, 0}, int32(0)),
		Entry("max positive A", []int{127, 127, 127, 127}, []int{1, 1, 1, 1}, int32(0)),
		Entry("max positive B", []int{1, 1, 1, 1}, []int{127, 127, 127, 127}, int32(0)),
		Entry("max negative A", []int{-128, -128, -128, -128}, []int{1, 1, 1, 1}, int32(0)),
		Entry("max negative B", []int{1, 1, 1, 1}, []int{-128, -128, -128, -128}, int32(0)),
		Entry("mixed extremes", []int{127, -128, 127, -128}, []int{-128, 127, -128, 127}, int32(1000)),
	)

	It("should compute the mixed extremes dot product exactly", func() {
		Expect(tensor.Dot(
			tensor.VectorOf(127, -128, 127, -128),
			tensor.VectorOf(-128, 127, -128, 127),
		)).To(Equal(int32(-65024)))
	})

	It("should wrap on int32 overflow", func() {
		a = tensor.VectorOf(1, 0, 0, 0)
		b = tensor.VectorOf(1, 0, 0, 0)
		edge(math.MaxInt32, true, false)
		edge(0, false, false)
		Expect(p.SumOut()).To(Equal(int32(math.MinInt32)))
	})

	It("should reject operands of the wrong width", func() {
		err := p.Evaluate(pe.Inputs{
			Left: tensor.VectorOf(1, 2, 3),
			Top:  b,
		})
		Expect(err).To(MatchError(tensor.ErrShapeMismatch))

		err = p.Evaluate(pe.Inputs{
			Left: a,
			Top:  tensor.VectorOf(1, 2, 3, 4, 5),
		})
		Expect(err).To(MatchError(tensor.ErrShapeMismatch))
		Expect(p.SumOut()).To(Equal(int32(0)))
	})

	It("should not change state until a prepared update is committed", func() {
		next, err := p.Prepare(pe.Inputs{Left: a, Top: b})
		Expect(err).NotTo(HaveOccurred())
		Expect(next.State().Acc).To(Equal(int32(70)))
		Expect(p.SumOut()).To(Equal(int32(0)))

		next.Commit()
		Expect(p.SumOut()).To(Equal(int32(70)))
		Expect(p.Snapshot().Right).To(Equal(a))
	})
})

var _ = Describe("Builder", func() {
	It("should build PEs with a custom width", func() {
		p, err := pe.NewBuilder().WithVectorWidth(8).Build("Wide")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("Wide"))
		Expect(p.VectorWidth()).To(Equal(8))
		Expect(p.RightOut()).To(HaveLen(8))
	})

	It("should reject non-positive widths", func() {
		_, err := pe.NewBuilder().WithVectorWidth(0).Build("Bad")
		Expect(err).To(MatchError(tensor.ErrInvalidConfig))

		_, err = pe.NewBuilder().WithVectorWidth(-3).Build("Bad")
		Expect(err).To(MatchError(tensor.ErrInvalidConfig))
	})
})
