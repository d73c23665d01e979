package navindex

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	ids := []string{"bin_10", "bin_2", "Bin_1", "bin_002b", "alpha", "bin_2a"}
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
	want := "alpha,Bin_1,bin_2,bin_2a,bin_002b,bin_10"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	ix := make(Index)
	ix.Add("bin_10", "gc", "bin_10.gc.png")
	ix.Add("bin_2", "gc", "bin_2.gc.png")
	ix.Add("bin_2", "td", "bin_2.td.png")

	if err := Write(dir, ix); err != nil {
		t.Fatalf("write: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), `<frame src="bin_2.gc.png" name="plot">`) {
		t.Errorf("expected first plot of bin_2 in frame, got:\n%s", index)
	}

	menu, err := os.ReadFile(filepath.Join(dir, MenuFile))
	if err != nil {
		t.Fatal(err)
	}
	m := string(menu)
	i2, i10 := strings.Index(m, "<i>  bin_2:</i>"), strings.Index(m, "<i>  bin_10:</i>")
	if i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("expected bin_2 listed before bin_10, got:\n%s", m)
	}
	if !strings.Contains(m, `href="bin_2.td.png" target="plot"`) {
		t.Errorf("expected link to bin_2.td.png")
	}
	if strings.Count(m, "<li>") != 3 {
		t.Errorf("expected 3 links, got %d", strings.Count(m, "<li>"))
	}
}

func TestWrite_Empty(t *testing.T) {
	if err := Write(t.TempDir(), Index{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bin_1.td.png", "bin_1.gc.png", "bin_3.coverage.svg", "notes", IndexFile} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	os.Mkdir(filepath.Join(dir, "bin_9.sub"), 0o755)

	ix, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	ids := ix.GenomeIDs()
	if strings.Join(ids, ",") != "bin_1,bin_3" {
		t.Fatalf("unexpected genomes %v", ids)
	}
	if ix["bin_1"][0].Label != "gc" || ix["bin_1"][1].File != "bin_1.td.png" {
		t.Errorf("unexpected artifacts %+v", ix["bin_1"])
	}
}
