package sweep

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"

	"github.com/mhanyc/orgkit/pkg/naming"
)

// memberRole is the role AWS Organizations creates in every member account.
const memberRole = "OrganizationAccountAccessRole"

// Result is one discovered resource that matched a project pattern.
type Result struct {
	Account  string
	Region   string
	Service  string
	Resource string
	// Pattern is the project pattern the resource name matched. Printed next
	// to every hit so an operator can spot a substring collision with a
	// foreign resource.
	Pattern string
}

// Sweeper lists resources in one account and filters them down to the
// project's pattern set.
type Sweeper struct {
	cfg      aws.Config
	account  string
	patterns []string
}

// New returns a Sweeper over the given credentials. account is a label for
// results only; the credentials decide what is actually visible.
func New(cfg aws.Config, account string, patterns []string) *Sweeper {
	return &Sweeper{cfg: cfg, account: account, patterns: patterns}
}

// ForAccount returns a Sweeper that assumes the organization access role in
// a member account, so dev/staging/prod can be swept from management
// credentials.
func (s *Sweeper) ForAccount(accountID string) *Sweeper {
	stsClient := sts.NewFromConfig(s.cfg)
	provider := stscreds.NewAssumeRoleProvider(stsClient, "arn:aws:iam::"+accountID+":role/"+memberRole)

	cfg := s.cfg.Copy()
	cfg.Credentials = aws.NewCredentialsCache(provider)
	return &Sweeper{cfg: cfg, account: accountID, patterns: s.patterns}
}

func (s *Sweeper) regional(region string) aws.Config {
	cfg := s.cfg.Copy()
	cfg.Region = region
	return cfg
}

func (s *Sweeper) match(region, service, name string) (Result, bool) {
	pattern, ok := naming.Match(name, s.patterns)
	if !ok {
		return Result{}, false
	}
	return Result{
		Account:  s.account,
		Region:   region,
		Service:  service,
		Resource: name,
		Pattern:  pattern,
	}, true
}

// Buckets lists all S3 buckets in the account (a global listing) and returns
// the project-owned ones, resolving each hit's region best-effort.
func (s *Sweeper) Buckets(ctx context.Context) ([]Result, error) {
	client := s3.NewFromConfig(s.cfg)
	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, errors.Wrap(err, "listing buckets")
	}

	var results []Result
	for _, b := range out.Buckets {
		r, ok := s.match("", "s3", aws.ToString(b.Name))
		if !ok {
			continue
		}
		r.Region = s.bucketRegion(ctx, client, aws.ToString(b.Name))
		results = append(results, r)
	}
	return results, nil
}

func (s *Sweeper) bucketRegion(ctx context.Context, client *s3.Client, bucket string) string {
	loc, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: &bucket})
	if err != nil {
		return "unknown"
	}
	// an empty location constraint means us-east-1.
	if loc.LocationConstraint == "" {
		return "us-east-1"
	}
	return string(loc.LocationConstraint)
}

// Roles lists IAM roles (global) and returns the project-owned ones.
func (s *Sweeper) Roles(ctx context.Context) ([]Result, error) {
	client := iam.NewFromConfig(s.cfg)
	p := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})

	var results []Result
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "listing roles")
		}
		for _, role := range page.Roles {
			if r, ok := s.match("global", "iam", aws.ToString(role.RoleName)); ok {
				results = append(results, r)
			}
		}
	}
	return results, nil
}

// Tables lists DynamoDB tables in one region (terraform lock tables) and
// returns the project-owned ones.
func (s *Sweeper) Tables(ctx context.Context, region string) ([]Result, error) {
	client := dynamodb.NewFromConfig(s.regional(region))
	p := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{})

	var results []Result
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "listing tables in %s", region)
		}
		for _, name := range page.TableNames {
			if r, ok := s.match(region, "dynamodb", name); ok {
				results = append(results, r)
			}
		}
	}
	return results, nil
}

// Functions lists Lambda functions in one region (edge function replicas
// included) and returns the project-owned ones.
func (s *Sweeper) Functions(ctx context.Context, region string) ([]Result, error) {
	client := lambda.NewFromConfig(s.regional(region))
	p := lambda.NewListFunctionsPaginator(client, &lambda.ListFunctionsInput{})

	var results []Result
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "listing functions in %s", region)
		}
		for _, fn := range page.Functions {
			if r, ok := s.match(region, "lambda", aws.ToString(fn.FunctionName)); ok {
				results = append(results, r)
			}
		}
	}
	return results, nil
}

// Stacks lists live CloudFormation stacks in one region and returns the
// project-owned ones.
func (s *Sweeper) Stacks(ctx context.Context, region string) ([]Result, error) {
	client := cloudformation.NewFromConfig(s.regional(region))
	p := cloudformation.NewDescribeStacksPaginator(client, &cloudformation.DescribeStacksInput{})

	var results []Result
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "listing stacks in %s", region)
		}
		for _, stack := range page.Stacks {
			if stack.StackStatus == cfntypes.StackStatusDeleteComplete {
				continue
			}
			if r, ok := s.match(region, "cloudformation", aws.ToString(stack.StackName)); ok {
				results = append(results, r)
			}
		}
	}
	return results, nil
}

// Region runs every regional sweep for one region.
func (s *Sweeper) Region(ctx context.Context, region string) ([]Result, error) {
	var results []Result
	for _, f := range []func(context.Context, string) ([]Result, error){s.Tables, s.Functions, s.Stacks} {
		rs, err := f(ctx, region)
		if err != nil {
			return results, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

// Global runs the account-wide sweeps that are not tied to a region.
func (s *Sweeper) Global(ctx context.Context) ([]Result, error) {
	buckets, err := s.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.Roles(ctx)
	if err != nil {
		return buckets, err
	}
	return append(buckets, roles...), nil
}
