// Package registry persists the environment → AWS account ID mapping for the
// project. The file is owned exclusively for the duration of one
// load-modify-save cycle; there is no locking, callers serialize externally.
package registry

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
)

// Environment is one of the fixed deployment tiers.
type Environment string

const (
	Management Environment = "management"
	Dev        Environment = "dev"
	Staging    Environment = "staging"
	Prod       Environment = "prod"
)

// Environments lists the tiers in file order.
var Environments = []Environment{Management, Dev, Staging, Prod}

// Required lists the tiers that must be bound before foundation bootstrap.
// Management is exempt: it can be detected from live credentials at runtime.
var Required = []Environment{Dev, Staging, Prod}

var (
	// ErrCorruptRegistry means the registry file exists but is not parsable.
	ErrCorruptRegistry = errors.New("registry file is corrupt")
	// ErrIncompleteRegistry means a required environment has no bound account.
	ErrIncompleteRegistry = errors.New("registry is incomplete")
)

var accountIDPattern = regexp.MustCompile(`^[0-9]{12}$`)

// ValidAccountID reports whether s is a 12-digit AWS account ID.
func ValidAccountID(s string) bool {
	return accountIDPattern.MatchString(s)
}

// ReplacedAccount records a previously bound account that was superseded.
// Entries are written once and never mutated, only overwritten by a newer
// replacement for the same environment.
type ReplacedAccount struct {
	OldAccountID string `json:"old_account_id"`
	OldStatus    string `json:"old_status"`
	ReplacedDate string `json:"replaced_date"`
	Reason       string `json:"reason"`
}

// Snapshot is the full registry state: one account binding per environment
// plus the replacement history. Unknown top-level fields from the file are
// carried through Save so forward-compatible fields survive a rewrite.
type Snapshot struct {
	Accounts map[Environment]string
	Replaced map[Environment]ReplacedAccount

	extra map[string]json.RawMessage
}

// NewSnapshot returns an empty snapshot with every environment unset.
func NewSnapshot() *Snapshot {
	accounts := make(map[Environment]string, len(Environments))
	for _, env := range Environments {
		accounts[env] = ""
	}
	return &Snapshot{Accounts: accounts}
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	s.Accounts = make(map[Environment]string, len(Environments))
	for _, env := range Environments {
		s.Accounts[env] = ""
		v, ok := raw[string(env)]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(v, &id); err != nil {
			return errors.Wrapf(err, "field %q", env)
		}
		s.Accounts[env] = id
		delete(raw, string(env))
	}

	if v, ok := raw["_replaced"]; ok {
		if err := json.Unmarshal(v, &s.Replaced); err != nil {
			return errors.Wrap(err, "field _replaced")
		}
		delete(raw, "_replaced")
	}

	s.extra = raw
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.extra)+len(Environments)+1)
	for k, v := range s.extra {
		out[k] = v
	}
	for _, env := range Environments {
		out[string(env)] = s.Accounts[env]
	}
	if len(s.Replaced) > 0 {
		out["_replaced"] = s.Replaced
	}
	return json.Marshal(out)
}

// Load reads the registry at path. A missing file is the expected state
// before first bootstrap and yields an empty snapshot, not an error.
func Load(fsys afero.Fs, path string) (*Snapshot, error) {
	data, err := afero.ReadFile(fsys, path)
	if os.IsNotExist(err) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading registry %s", path)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(ErrCorruptRegistry, "%s: %s", path, err)
	}
	return &snap, nil
}

// Save writes the full snapshot atomically: the content goes to a uniquely
// named temp file in the same directory, which is then renamed over path.
// A crash mid-write never leaves a half-written registry behind.
func Save(fsys afero.Fs, path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding registry")
	}
	data = append(data, '\n')

	tmp := path + ".tmp-" + ksuid.New().String()
	if err := afero.WriteFile(fsys, tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing registry %s", tmp)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, "renaming registry into place at %s", path)
	}
	return nil
}

// Set binds an account ID to an environment. Rebinding the same ID is a
// no-op; rebinding a different ID is refused so history is never dropped
// silently (use Replace).
func (s *Snapshot) Set(env Environment, accountID string) error {
	if !ValidAccountID(accountID) {
		return errors.Errorf("account ID %q must be exactly 12 digits", accountID)
	}
	if current := s.Accounts[env]; current != "" && current != accountID {
		return errors.Errorf("%s is already bound to account %s; use replace to supersede it", env, current)
	}
	if s.Accounts == nil {
		s.Accounts = map[Environment]string{}
	}
	s.Accounts[env] = accountID
	return nil
}

// Replace archives the environment's current binding into the replacement
// history and binds the new account ID. History for other environments is
// left untouched.
func (s *Snapshot) Replace(env Environment, newAccountID, oldStatus, reason string, now time.Time) error {
	if !ValidAccountID(newAccountID) {
		return errors.Errorf("account ID %q must be exactly 12 digits", newAccountID)
	}
	old := s.Accounts[env]
	if old == "" {
		return errors.Errorf("%s has no bound account to replace; use set instead", env)
	}
	if old == newAccountID {
		return errors.Errorf("%s is already bound to account %s", env, newAccountID)
	}

	if s.Replaced == nil {
		s.Replaced = map[Environment]ReplacedAccount{}
	}
	s.Replaced[env] = ReplacedAccount{
		OldAccountID: old,
		OldStatus:    oldStatus,
		ReplacedDate: now.UTC().Format(time.RFC3339),
		Reason:       reason,
	}
	s.Accounts[env] = newAccountID
	return nil
}

// RequireComplete fails unless dev, staging and prod all have bound
// accounts. The error names the missing environments so the operator knows
// which bootstrap step to rerun.
func (s *Snapshot) RequireComplete() error {
	var missing []string
	for _, env := range Required {
		if s.Accounts[env] == "" {
			missing = append(missing, string(env))
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrIncompleteRegistry, "no account bound for %s; run 'orgkit accounts set' or the organization bootstrap first", strings.Join(missing, ", "))
	}
	return nil
}

// Filter returns the bound account IDs, restricted to the environments in
// the optional comma-separated allow-list. An unknown environment name in
// the list is an error: this feeds destroy gating, so a typo must not
// silently widen or narrow the selection.
func (s *Snapshot) Filter(allowList string) (map[Environment]string, error) {
	allowed := map[Environment]bool{}
	if strings.TrimSpace(allowList) != "" {
		for _, tok := range strings.Split(allowList, ",") {
			env := Environment(strings.TrimSpace(tok))
			if !knownEnvironment(env) {
				return nil, errors.Errorf("unknown environment %q in filter", tok)
			}
			allowed[env] = true
		}
	}

	out := map[Environment]string{}
	for _, env := range Environments {
		if s.Accounts[env] == "" {
			continue
		}
		if len(allowed) > 0 && !allowed[env] {
			continue
		}
		out[env] = s.Accounts[env]
	}
	return out, nil
}

func knownEnvironment(env Environment) bool {
	for _, e := range Environments {
		if e == env {
			return true
		}
	}
	return false
}
