package inventory

import (
	"errors"
	"strings"
	"testing"
)

func stubCNAME(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := lookupCNAME
	lookupCNAME = fn
	t.Cleanup(func() { lookupCNAME = orig })
}

func TestFqdnResolved(t *testing.T) {
	stubCNAME(t, func(hostname string) (string, error) {
		return hostname + ".example.com.", nil
	})

	if got := fqdn("host1"); got != "host1.example.com" {
		t.Fatalf("fqdn = %q, want host1.example.com", got)
	}
}

func TestFqdnResolutionFailureFallsBack(t *testing.T) {
	stubCNAME(t, func(string) (string, error) {
		return "", errors.New("no such host")
	})

	if got := fqdn("host1"); got != "host1" {
		t.Fatalf("fqdn = %q, want the short name on resolution failure", got)
	}
}

func TestFqdnEmptyAnswerFallsBack(t *testing.T) {
	stubCNAME(t, func(string) (string, error) {
		return ".", nil
	})

	if got := fqdn("host1"); got != "host1" {
		t.Fatalf("fqdn = %q, want the short name on an empty answer", got)
	}
}

func TestCollectHostUsesFQDN(t *testing.T) {
	stubCNAME(t, func(hostname string) (string, error) {
		return hostname + ".example.com.", nil
	})

	hi, err := CollectHost()
	if err != nil {
		t.Fatalf("CollectHost returned error: %v", err)
	}
	if !strings.HasSuffix(hi.Hostname, ".example.com") {
		t.Fatalf("Hostname = %q, want it fully qualified", hi.Hostname)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"debian": "Debian",
		"ubuntu": "Ubuntu",
		"Debian": "Debian",
		"":       "",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
