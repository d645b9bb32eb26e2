package registry

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"
)

// DetectManagementAccount resolves the management account ID from the
// caller's live AWS credentials. Used when the registry file has no
// management entry: the operator bootstraps from the management account, so
// the current identity is authoritative.
func DetectManagementAccount(ctx context.Context, cfg aws.Config) (string, error) {
	client := sts.NewFromConfig(cfg)
	ci, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", errors.Wrap(err, "getting caller identity")
	}

	id := aws.ToString(ci.Account)
	if !ValidAccountID(id) {
		return "", errors.Errorf("caller identity returned unexpected account ID %q", id)
	}
	return id, nil
}
