package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		wins  []int
		mean  float64
		stdev float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, w := range c.wins {
			s.Push(float64(w))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestCombine(t *testing.T) {
	is := is.New(t)
	vals := []float64{10, 12, 23, 23, 16, 23, 21, 16, 5, 9, 14}

	whole := &Statistic{}
	for _, v := range vals {
		whole.Push(v)
	}

	// Split the samples across three workers and merge.
	parts := []*Statistic{{}, {}, {}}
	for i, v := range vals {
		parts[i%3].Push(v)
	}
	merged := &Statistic{}
	for _, p := range parts {
		merged.Combine(p)
	}

	is.Equal(merged.Iterations(), whole.Iterations())
	is.True(FuzzyEqual(merged.Mean(), whole.Mean()))
	is.True(FuzzyEqual(merged.Variance(), whole.Variance()))
}

func TestCombineEmpty(t *testing.T) {
	is := is.New(t)
	a := &Statistic{}
	b := &Statistic{}
	b.Push(3)
	b.Push(5)
	a.Combine(b)
	is.Equal(a.Iterations(), 2)
	is.True(FuzzyEqual(a.Mean(), 4))

	a.Combine(&Statistic{})
	is.Equal(a.Iterations(), 2)
}
