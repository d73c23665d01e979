// Package navindex writes a two-frame HTML index for browsing per-genome
// artifacts such as plots.
package navindex

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	IndexFile = "index.html"
	MenuFile  = "plot_menu.html"
)

// ErrEmpty is returned when an index has no artifacts to link.
var ErrEmpty = errors.New("no artifacts to index")

// Artifact is one linked file of a genome.
type Artifact struct {
	Label string
	File  string
}

// Index maps genome ids to their artifacts, in display order.
type Index map[string][]Artifact

// Add appends an artifact to a genome.
func (ix Index) Add(genomeID, label, file string) {
	ix[genomeID] = append(ix[genomeID], Artifact{Label: label, File: file})
}

// GenomeIDs returns the genome ids in natural alphanumeric order.
func (ix Index) GenomeIDs() []string {
	ids := make([]string, 0, len(ix))
	for id, arts := range ix {
		if len(arts) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
	return ids
}

var indexTmpl = template.Must(template.New("index").Parse(`<html>
<head><title>binrefine plots</title></head>
<frameset cols="15%,85%">
<frame src="plot_menu.html" name="menu">
<frame src="{{.File}}" name="plot">
</frameset>
</html>
`))

var menuTmpl = template.Must(template.New("menu").Parse(`<html>
<script>
    function change_title(name) {
        document.getElementById("active_plot").innerHTML = name;
    }
</script>

<style>
ul {
margin-top: 0px;
margin-bottom: 12px;
}
</style>

<body>
<div><b>Active plot:</b>
<div id="active_plot">{{.ActiveGenome}}<br>{{.ActiveLabel}}</div>
</div>
<br>
<div><b>Plots:</b></div>
{{range .Genomes}}<i>  {{.ID}}:</i>
    <ul>
{{- $id := .ID}}
{{range .Artifacts}}    <li><a href="{{.File}}" target="plot" onclick="change_title({{printf "%s<br>%s" $id .Label}});">{{.Label}}</a><br></li>
{{end}}    </ul>
{{end}}</body>
</html>
`))

type menuGenome struct {
	ID        string
	Artifacts []Artifact
}

// Write writes IndexFile and MenuFile to dir. The frame initially shows the
// first artifact of the first genome.
func Write(dir string, ix Index) error {
	ids := ix.GenomeIDs()
	if len(ids) == 0 {
		return ErrEmpty
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	first := ix[ids[0]][0]

	if err := render(filepath.Join(dir, IndexFile), indexTmpl, first); err != nil {
		return err
	}

	data := struct {
		ActiveGenome string
		ActiveLabel  string
		Genomes      []menuGenome
	}{ActiveGenome: ids[0], ActiveLabel: first.Label}
	for _, id := range ids {
		data.Genomes = append(data.Genomes, menuGenome{ID: id, Artifacts: ix[id]})
	}
	return render(filepath.Join(dir, MenuFile), menuTmpl, data)
}

func render(path string, t *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := t.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Scan builds an index from the files of dir named "<genome>.<label>.<ext>".
// Index files themselves and names without a label are skipped.
func Scan(dir string) (Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	ix := make(Index)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == IndexFile || name == MenuFile {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		genome, label, ok := strings.Cut(stem, ".")
		if !ok || genome == "" || label == "" {
			continue
		}
		ix.Add(genome, label, name)
	}
	for _, arts := range ix {
		sort.Slice(arts, func(i, j int) bool { return NaturalLess(arts[i].Label, arts[j].Label) })
	}
	return ix, nil
}

// NaturalLess orders strings with embedded numbers by numeric value, so
// "bin_2" sorts before "bin_10".
func NaturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			a, b = ra, rb
			continue
		}
		la, lb := lower(ca), lower(cb)
		if la != lb {
			return la < lb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
