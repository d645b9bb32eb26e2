package sweep

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestRunContinuesPastFailures(t *testing.T) {
	regions := []string{"us-east-1", "eu-west-1", "ap-south-1"}

	var visited []string
	err := Run(context.Background(), "test-run", regions, func(ctx context.Context, region string) error {
		visited = append(visited, region)
		if region == "eu-west-1" {
			return errors.New("api outage")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("one failing region must not fail the sweep, got %v", err)
	}

	if len(visited) != len(regions) {
		t.Fatalf("want all regions visited, got %v", visited)
	}
	for i, region := range regions {
		if visited[i] != region {
			t.Errorf("regions must run in order: want %s at %d, got %s", region, i, visited[i])
		}
	}
}

func TestRunFailsWhenAllRegionsFail(t *testing.T) {
	err := Run(context.Background(), "test-run", []string{"us-east-1", "eu-west-1"}, func(ctx context.Context, region string) error {
		return errors.New("no credentials")
	})
	if err == nil {
		t.Fatal("expected an error when every region fails")
	}
}

func TestRunNoRegions(t *testing.T) {
	err := Run(context.Background(), "test-run", nil, func(ctx context.Context, region string) error {
		t.Fatal("callback must not run")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDefaultRegionsStable(t *testing.T) {
	a := DefaultRegions()
	b := DefaultRegions()
	if len(a) == 0 {
		t.Fatal("default region set is empty")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("default region set is not stable: %v vs %v", a, b)
		}
	}
}
