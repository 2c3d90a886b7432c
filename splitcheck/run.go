// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package splitcheck

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shadeopt/toolchain"
)

// AllLevels lists every optimization level.
func AllLevels() []int {
	levels := make([]int, 0, toolchain.MaxOptLevel+1)
	for n := range toolchain.MaxOptLevel + 1 {
		levels = append(levels, n)
	}
	return levels
}

// RunLevels runs c at each level with at most jobs cases in flight.
// jobs <= 0 means no limit. Levels are independent: a failing level does
// not stop the others. Reports are returned in the order of levels and
// the errors of all failing levels are joined.
func (d *Driver) RunLevels(ctx context.Context, c Case, levels []int, jobs int) ([]*Report, error) {
	reports := make([]*Report, len(levels))
	errs := make([]error, len(levels))

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, level := range levels {
		g.Go(func() error {
			r, err := d.Run(ctx, c, level)
			reports[i] = r
			if err != nil {
				errs[i] = fmt.Errorf("%s at O%d: %w", c.SourceName, level, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, errors.Join(errs...)
}
