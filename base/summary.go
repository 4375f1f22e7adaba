package base

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sugarme/gotch/nn"
)

// Summary lists variables of a VarStore sorted by name with their shapes and
// number of parameters.
func Summary(vs *nn.VarStore) dataframe.DataFrame {
	vars := vs.Variables()
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	shapes := make([]string, len(names))
	params := make([]int, len(names))
	for i, n := range names {
		v := vars[n]
		size := v.MustSize()
		shapes[i] = fmt.Sprint(size)
		params[i] = int(numel(size))
	}

	return dataframe.New(
		series.New(names, series.String, "Variable"),
		series.New(shapes, series.String, "Shape"),
		series.New(params, series.Int, "Params"),
	)
}

// TotalParams counts all parameters held by a VarStore.
func TotalParams(vs *nn.VarStore) int64 {
	var total int64
	for _, v := range vs.Variables() {
		total += numel(v.MustSize())
	}
	return total
}

func numel(size []int64) int64 {
	n := int64(1)
	for _, d := range size {
		n *= d
	}
	return n
}
