package registry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func TestLoadMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	snap, err := Load(fsys, "accounts.json")
	if err != nil {
		t.Fatalf("missing registry must not be an error, got %v", err)
	}
	for _, env := range Environments {
		if snap.Accounts[env] != "" {
			t.Errorf("%s should be unset, got %q", env, snap.Accounts[env])
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "accounts.json", []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(fsys, "accounts.json")
	if !errors.Is(err, ErrCorruptRegistry) {
		t.Fatalf("want ErrCorruptRegistry, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := `{
  "management": "111111111111",
  "dev": "222222222222",
  "staging": "",
  "prod": "444444444444",
  "notes": {"owner": "platform-team"},
  "_replaced": {
    "staging": {"old_account_id": "333333333333", "old_status": "suspended", "replaced_date": "2024-01-02T03:04:05Z", "reason": "failed bootstrap"}
  }
}`
	if err := afero.WriteFile(fsys, "accounts.json", []byte(in), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := Load(fsys, "accounts.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(fsys, "accounts.json", snap); err != nil {
		t.Fatal(err)
	}

	again, err := Load(fsys, "accounts.json")
	if err != nil {
		t.Fatal(err)
	}

	want := map[Environment]string{Management: "111111111111", Dev: "222222222222", Staging: "", Prod: "444444444444"}
	for env, id := range want {
		if again.Accounts[env] != id {
			t.Errorf("%s: want %q got %q", env, id, again.Accounts[env])
		}
	}
	if again.Replaced[Staging].OldAccountID != "333333333333" {
		t.Errorf("replacement history lost: %+v", again.Replaced)
	}

	// unknown top-level fields survive the rewrite.
	data, err := afero.ReadFile(fsys, "accounts.json")
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["notes"]; !ok {
		t.Errorf("unknown field dropped on round-trip: %s", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := Save(fsys, "accounts.json", NewSnapshot()); err != nil {
		t.Fatal(err)
	}

	infos, err := afero.ReadDir(fsys, ".")
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range infos {
		if strings.Contains(info.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", info.Name())
		}
	}
}

func TestRequireComplete(t *testing.T) {
	testcases := []struct {
		name     string
		accounts map[Environment]string
		wantErr  bool
	}{
		{
			name:     "all bound",
			accounts: map[Environment]string{Dev: "222222222222", Staging: "333333333333", Prod: "444444444444"},
		},
		{
			name:     "management only",
			accounts: map[Environment]string{Management: "111111111111"},
			wantErr:  true,
		},
		{
			name:     "staging missing",
			accounts: map[Environment]string{Dev: "222222222222", Prod: "444444444444"},
			wantErr:  true,
		},
		{
			name:     "management absent is fine",
			accounts: map[Environment]string{Dev: "222222222222", Staging: "333333333333", Prod: "444444444444"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			snap := NewSnapshot()
			for env, id := range tc.accounts {
				snap.Accounts[env] = id
			}

			err := snap.RequireComplete()
			if tc.wantErr {
				if !errors.Is(err, ErrIncompleteRegistry) {
					t.Fatalf("want ErrIncompleteRegistry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestSetRefusesSilentOverwrite(t *testing.T) {
	snap := NewSnapshot()
	if err := snap.Set(Dev, "222222222222"); err != nil {
		t.Fatal(err)
	}
	// rebinding the same ID is a no-op
	if err := snap.Set(Dev, "222222222222"); err != nil {
		t.Fatal(err)
	}
	if err := snap.Set(Dev, "999999999999"); err == nil {
		t.Fatal("expected overwrite of a different bound ID to be refused")
	}
	if err := snap.Set(Dev, "not-an-id"); err == nil {
		t.Fatal("expected a malformed account ID to be rejected")
	}
}

func TestReplacePreservesOtherHistory(t *testing.T) {
	snap := NewSnapshot()
	snap.Accounts[Dev] = "222222222222"
	snap.Replaced = map[Environment]ReplacedAccount{
		Staging: {OldAccountID: "333333333333", OldStatus: "suspended", ReplacedDate: "2024-01-02T03:04:05Z", Reason: "failed bootstrap"},
	}

	now := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	if err := snap.Replace(Dev, "555555555555", "pending-close", "account recreated", now); err != nil {
		t.Fatal(err)
	}

	if snap.Accounts[Dev] != "555555555555" {
		t.Errorf("dev not rebound: %q", snap.Accounts[Dev])
	}
	old := snap.Replaced[Dev]
	if old.OldAccountID != "222222222222" {
		t.Errorf("old dev account not archived: %+v", old)
	}
	if old.ReplacedDate != "2025-06-07T08:09:10Z" {
		t.Errorf("replaced date: got %q", old.ReplacedDate)
	}
	if snap.Replaced[Staging].OldAccountID != "333333333333" {
		t.Errorf("staging history was touched: %+v", snap.Replaced[Staging])
	}
}

func TestReplaceRequiresBoundAccount(t *testing.T) {
	snap := NewSnapshot()
	err := snap.Replace(Dev, "555555555555", "replaced", "reason", time.Now())
	if err == nil {
		t.Fatal("expected replace of an unbound environment to fail")
	}
}

func TestFilter(t *testing.T) {
	snap := NewSnapshot()
	snap.Accounts[Management] = "111111111111"
	snap.Accounts[Dev] = "222222222222"
	snap.Accounts[Prod] = "444444444444"

	all, err := snap.Filter("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("empty filter should return every bound account, got %v", all)
	}

	subset, err := snap.Filter("dev, prod")
	if err != nil {
		t.Fatal(err)
	}
	if len(subset) != 2 || subset[Dev] == "" || subset[Prod] == "" {
		t.Errorf("want dev and prod, got %v", subset)
	}

	// staging is allowed but unbound, so it is simply absent.
	subset, err = snap.Filter("staging")
	if err != nil {
		t.Fatal(err)
	}
	if len(subset) != 0 {
		t.Errorf("unbound environments must not appear, got %v", subset)
	}

	if _, err := snap.Filter("dev,production"); err == nil {
		t.Fatal("expected an unknown environment in the filter to be an error")
	}
}

func TestValidAccountID(t *testing.T) {
	testcases := []struct {
		give string
		want bool
	}{
		{give: "123456789012", want: true},
		{give: "12345678901", want: false},
		{give: "1234567890123", want: false},
		{give: "12345678901a", want: false},
		{give: "", want: false},
	}
	for _, tc := range testcases {
		if got := ValidAccountID(tc.give); got != tc.want {
			t.Errorf("ValidAccountID(%q): want %v got %v", tc.give, tc.want, got)
		}
	}
}
