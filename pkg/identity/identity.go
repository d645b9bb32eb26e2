package identity

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidIdentity is returned when a project identity fails validation.
var ErrInvalidIdentity = errors.New("invalid project identity")

var (
	shortNamePattern = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)
	testEnvPattern   = regexp.MustCompile(`^(integration-test|unit-test)-[0-9]+$`)
)

// Project is the identity of the project every resource name is derived from.
// It is constructed once at process start and passed explicitly; there are no
// process-wide defaults.
type Project struct {
	// GitHubRepository in owner/repo form, e.g. "mhanyc/demo-cicd-terraform".
	GitHubRepository string
	// Name is the short project name, lowercase kebab-case.
	Name string
	// Region is the home AWS region for regional resources.
	Region string
}

// New validates the inputs and returns a Project.
// The repository and region are treated as already-validated opaque strings
// apart from the owner/repo shape check; only the short name carries the
// full pattern invariant.
func New(githubRepository, name, region string) (Project, error) {
	if !shortNamePattern.MatchString(name) {
		return Project{}, errors.Wrapf(ErrInvalidIdentity, "project name %q must match %s", name, shortNamePattern)
	}
	if !strings.Contains(githubRepository, "/") {
		return Project{}, errors.Wrapf(ErrInvalidIdentity, "github repository %q must be in owner/repo form", githubRepository)
	}
	return Project{
		GitHubRepository: githubRepository,
		Name:             name,
		Region:           region,
	}, nil
}

// Owner is the lowercased repository owner, the part before the first "/".
func (p Project) Owner() string {
	owner, _, _ := strings.Cut(p.GitHubRepository, "/")
	return strings.ToLower(owner)
}

// Repo is the repository name, the part after the first "/".
func (p Project) Repo() string {
	_, repo, _ := strings.Cut(p.GitHubRepository, "/")
	return repo
}

// FullName is the owner-qualified project name, e.g. "mhanyc-demo-cicd-terraform".
func (p Project) FullName() string {
	return p.Owner() + "-" + p.Repo()
}

// ValidEnvironment reports whether s names a deployment environment:
// one of the fixed tiers, or a dynamically numbered test tier.
func ValidEnvironment(s string) bool {
	switch s {
	case "management", "dev", "staging", "prod":
		return true
	}
	return testEnvPattern.MatchString(s)
}
