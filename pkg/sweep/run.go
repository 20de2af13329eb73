// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sweep

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tidwall/btree"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/flashsize/pkg/layout"
	"github.com/daviszhen/flashsize/pkg/util"
)

type Order int

const (
	ByIndex Order = iota
	ByReservation
)

func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "index":
		return ByIndex, nil
	case "reservation", "size":
		return ByReservation, nil
	}
	return ByIndex, fmt.Errorf("unknown sweep order %q: want index or reservation", s)
}

type Result struct {
	Point *Point
	Plan  *layout.Plan
}

func indexLess(a, b *Result) bool {
	return a.Point.Index < b.Point.Index
}

func reservationLess(a, b *Result) bool {
	if c := a.Plan.ReservedSize.Cmp(b.Plan.ReservedSize); c != 0 {
		return c < 0
	}
	return a.Point.Index < b.Point.Index
}

// Results is the ordered outcome of a sweep.
type Results struct {
	tree *btree.BTreeG[*Result]
}

func newResults(order Order) *Results {
	less := indexLess
	if order == ByReservation {
		less = reservationLess
	}
	return &Results{tree: btree.NewBTreeG[*Result](less)}
}

func (res *Results) Len() int {
	return res.tree.Len()
}

func (res *Results) Scan(iter func(r *Result) bool) {
	res.tree.Scan(iter)
}

func (res *Results) Slice() []*Result {
	ret := make([]*Result, 0, res.tree.Len())
	res.tree.Scan(func(r *Result) bool {
		ret = append(ret, r)
		return true
	})
	return ret
}

// Smallest returns the point with the smallest reservation.
func (res *Results) Smallest() (*Result, bool) {
	var best *Result
	res.tree.Scan(func(r *Result) bool {
		if best == nil || reservationLess(r, best) {
			best = r
		}
		return true
	})
	return best, best != nil
}

// Run plans every point with at most workers concurrent calculations.
// Points are independent; the first failure cancels the rest.
func Run(ctx context.Context, catalog *layout.Catalog, points []*Point, workers int, order Order) (*Results, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	plans := make([]*layout.Plan, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pt := range points {
		i, pt := i, pt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := catalog.Plan(*pt.Params)
			if err != nil {
				return fmt.Errorf("sweep point %d (%s): %w", pt.Index, pt.Label(), err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := newResults(order)
	for i, pt := range points {
		res.tree.Set(&Result{Point: pt, Plan: plans[i]})
	}
	util.Info("sweep finished",
		zap.Int("points", len(points)),
		zap.Int("workers", workers))
	return res, nil
}
