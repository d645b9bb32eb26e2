// Package sweep discovers project-owned AWS resources across regions and
// accounts. It only lists: deletion stays with the operator, the sweep is the
// pre-filter a human reviews before destroying anything.
package sweep

import (
	"context"

	"github.com/common-fate/clio"
	"github.com/pkg/errors"
)

// DefaultRegions is the fixed commercial region set the sweep iterates when
// the operator does not narrow it.
func DefaultRegions() []string {
	return []string{
		"us-east-1", "us-east-2", "us-west-1", "us-west-2",
		"ca-central-1",
		"eu-west-1", "eu-west-2", "eu-west-3", "eu-central-1", "eu-north-1",
		"ap-south-1", "ap-northeast-1", "ap-northeast-2", "ap-northeast-3",
		"ap-southeast-1", "ap-southeast-2",
		"sa-east-1",
	}
}

// RegionFunc is one region's share of a sweep.
type RegionFunc func(ctx context.Context, region string) error

// Run executes fn once per region, strictly in order, each region completing
// before the next begins. A failing region is logged and the remaining
// regions still run (best-effort sweep: one region's API outage must not
// abandon the rest). Run returns an error only when every region failed.
func Run(ctx context.Context, runID string, regions []string, fn RegionFunc) error {
	if len(regions) == 0 {
		return nil
	}

	var failed int
	var lastErr error
	for _, region := range regions {
		clio.Debugw("sweeping region", "run", runID, "region", region)
		if err := fn(ctx, region); err != nil {
			failed++
			lastErr = err
			clio.Errorw("region sweep failed", "run", runID, "region", region, "error", err.Error())
		}
	}

	if failed == len(regions) {
		return errors.Wrapf(lastErr, "sweep %s failed in all %d regions", runID, len(regions))
	}
	return nil
}
