// Package naming derives the project's resource-naming strings from its
// identity. The same algorithm is implemented by the terraform configuration;
// the two must stay byte-for-byte identical because both tools look up IAM
// roles and state buckets by the names they derive independently.
package naming

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/mhanyc/orgkit/pkg/identity"
)

// Names is the full set of derived naming strings. It is recomputed on every
// invocation and never persisted: the inputs can change between runs (for
// example after the repository is forked).
type Names struct {
	Project            string   `json:"project"`
	FullProject        string   `json:"full_project"`
	StateBucketPrefix  string   `json:"state_bucket_prefix"`
	LockTablePrefix    string   `json:"lock_table_prefix"`
	KMSKeyPrefix       string   `json:"kms_key_prefix"`
	IAMRolePrefix      string   `json:"iam_role_prefix"`
	ReadOnlyRolePrefix string   `json:"readonly_role_prefix"`
	AccountNamePrefix  string   `json:"account_name_prefix"`
	AccountEmailPrefix string   `json:"account_email_prefix"`
	Patterns           []string `json:"patterns"`
}

// TitleCase uppercases the first character of each hyphen-delimited segment
// and leaves the remainder of each segment unchanged, so
// "demo-cicd-terraform" becomes "Demo-Cicd-Terraform".
//
// The rule must match the terraform title() function exactly; anything
// cleverer here (unicode title mapping, digit handling) would diverge from
// the role names the terraform side derives.
func TitleCase(s string) string {
	segments := strings.Split(s, "-")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = strings.ToUpper(seg[:1]) + seg[1:]
	}
	return strings.Join(segments, "-")
}

// Derive computes the naming set for a project identity. It is pure and
// deterministic: equal identities always yield equal Names.
func Derive(p identity.Project) (Names, error) {
	// re-validate the short name so callers constructing Project directly
	// still hit the invariant.
	if _, err := identity.New(p.GitHubRepository, p.Name, p.Region); err != nil {
		return Names{}, err
	}

	full := p.FullName()
	title := TitleCase(p.Name)

	n := Names{
		Project:            p.Name,
		FullProject:        full,
		StateBucketPrefix:  full + "-terraform-state",
		LockTablePrefix:    full + "-terraform-lock",
		KMSKeyPrefix:       full + "-terraform-state-key",
		IAMRolePrefix:      "GitHubActions-" + title,
		ReadOnlyRolePrefix: title,
		AccountNamePrefix:  p.Name + "-",
		AccountEmailPrefix: "aws+" + p.Name,
	}

	// set semantics with a stable order: duplicates collapse, sorted output.
	seen := map[string]bool{}
	for _, pat := range []string{p.Name, full, title, "terraform-state", "GitHubActions", "cloudtrail-logs"} {
		if !seen[pat] {
			seen[pat] = true
			n.Patterns = append(n.Patterns, pat)
		}
	}
	sort.Strings(n.Patterns)

	return n, nil
}

// Env renders the naming set as environment variables, the form the
// terraform configuration and the CI workflows consume.
func (n Names) Env() map[string]string {
	return map[string]string{
		"PROJECT_NAME":         n.Project,
		"PROJECT_FULL_NAME":    n.FullProject,
		"STATE_BUCKET_PREFIX":  n.StateBucketPrefix,
		"LOCK_TABLE_PREFIX":    n.LockTablePrefix,
		"KMS_KEY_PREFIX":       n.KMSKeyPrefix,
		"IAM_ROLE_PREFIX":      n.IAMRolePrefix,
		"READONLY_ROLE_PREFIX": n.ReadOnlyRolePrefix,
		"ACCOUNT_NAME_PREFIX":  n.AccountNamePrefix,
		"ACCOUNT_EMAIL_PREFIX": n.AccountEmailPrefix,
		"PROJECT_PATTERNS":     strings.Join(n.Patterns, ","),
	}
}

// Render is the canonical textual form of the naming set: sorted KEY=value
// lines, one per line.
func (n Names) Render() string {
	env := n.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(env[k])
		b.WriteString("\n")
	}
	return b.String()
}

// JSON renders the naming set as indented JSON.
func (n Names) JSON() (string, error) {
	out, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
