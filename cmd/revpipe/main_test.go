package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRankCommand(t *testing.T) {
	out, err := execute(t, "rank", "--limit", "3")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Ranked []struct {
			Country string `json:"country"`
		} `json:"ranked"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Ranked) != 3 || got.Ranked[0].Country != "USA" {
		t.Fatalf("ranked = %+v", got)
	}
}

func TestPredictCommand(t *testing.T) {
	out, err := execute(t, "predict", "USA")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"total_monthly_revenue": 1525`) {
		t.Fatalf("out = %s", out)
	}
	if _, err := execute(t, "predict", "Atlantis"); err == nil {
		t.Fatal("expected unknown country error")
	}
}

func TestStrategyCommand(t *testing.T) {
	out, err := execute(t, "strategy", "mortgage rates", "--countries", "USA,Japan")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"is_premium_keyword": true`) || !strings.Contains(out, `"country": "Japan"`) {
		t.Fatalf("out = %s", out)
	}
}

func TestRunCommand(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("THROTTLE_DELAY", "0s")
	out, err := execute(t, "run", "--keywords", "home loans", "--countries", "UK,Canada")
	if err != nil {
		t.Fatal(err)
	}
	var rep struct {
		TotalGenerated int      `json:"total_generated"`
		Countries      []string `json:"countries"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.TotalGenerated != 2 || rep.Countries[0] != "UK" {
		t.Fatalf("report = %+v", rep)
	}
}
