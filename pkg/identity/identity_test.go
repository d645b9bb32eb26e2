package identity

import (
	"testing"

	"github.com/pkg/errors"
)

func TestNew(t *testing.T) {
	testcases := []struct {
		name    string
		repo    string
		project string
		wantErr bool
	}{
		{name: "ok", repo: "mhanyc/demo-cicd-terraform", project: "demo-cicd-terraform"},
		{name: "minimum length", repo: "a/b", project: "abc"},
		{name: "too short", repo: "a/b", project: "ab", wantErr: true},
		{name: "uppercase", repo: "a/b", project: "Demo", wantErr: true},
		{name: "underscore", repo: "a/b", project: "demo_app", wantErr: true},
		{name: "no slash in repo", repo: "mhanyc", project: "demo-app", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.repo, tc.project, "us-east-1")
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidIdentity) {
					t.Fatalf("want ErrInvalidIdentity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestOwnerLowered(t *testing.T) {
	p, err := New("MHanyc/Demo-Repo", "demo-repo", "us-east-1")
	if err != nil {
		t.Fatal(err)
	}
	if want := "mhanyc"; p.Owner() != want {
		t.Errorf("Owner: want %s got %s", want, p.Owner())
	}
	if want := "Demo-Repo"; p.Repo() != want {
		t.Errorf("Repo: want %s got %s", want, p.Repo())
	}
	if want := "mhanyc-Demo-Repo"; p.FullName() != want {
		t.Errorf("FullName: want %s got %s", want, p.FullName())
	}
}

func TestValidEnvironment(t *testing.T) {
	valid := []string{"management", "dev", "staging", "prod", "integration-test-42", "unit-test-1"}
	for _, s := range valid {
		if !ValidEnvironment(s) {
			t.Errorf("%q should be a valid environment", s)
		}
	}

	invalid := []string{"", "production", "integration-test-", "unit-test-abc", "test-1"}
	for _, s := range invalid {
		if ValidEnvironment(s) {
			t.Errorf("%q should not be a valid environment", s)
		}
	}
}
