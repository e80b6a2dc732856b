// Command sqllint checks that every SQL string constant starts with a unique
// `--sql <uuid>` marker so statements can be traced from the query log.
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)^\s*(--sql[^\n]*\n)?\s*(select|insert|update|delete|with)\b`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type finding struct {
	file    string
	line    int
	name    string
	message string
}

func (f finding) String() string {
	return fmt.Sprintf("%s:%d %s (%s)", f.file, f.line, f.message, f.name)
}

// statement is one SQL constant with its marker.
type statement struct {
	file   string
	line   int
	name   string
	marker string
}

func main() {
	cmd := &cobra.Command{
		Use:           "sqllint [paths...]",
		Short:         "Check --sql audit markers on SQL constants",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			findings, err := lintPaths(args)
			if err != nil {
				return err
			}
			if len(findings) > 0 {
				for _, f := range findings {
					cmd.PrintErrln("  " + f.String())
				}
				return fmt.Errorf("%d SQL marker problem(s)", len(findings))
			}
			return nil
		},
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sqllint:", err)
		os.Exit(1)
	}
}

func lintPaths(paths []string) ([]finding, error) {
	var stmts []statement
	var findings []finding
	for _, target := range paths {
		err := filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			s, f, err := scanFile(path, src)
			if err != nil {
				return err
			}
			stmts = append(stmts, s...)
			findings = append(findings, f...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	findings = append(findings, duplicates(stmts)...)
	return findings, nil
}

// scanFile collects SQL constants of one file and reports malformed markers.
func scanFile(path string, src []byte) ([]statement, []finding, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, err
	}
	var stmts []statement
	var findings []finding
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil || !sqlKeywordPattern.MatchString(raw) {
				continue
			}
			name := ""
			if i < len(vs.Names) {
				name = vs.Names[i].Name
			}
			line := fset.Position(bl.Pos()).Line
			marker := firstLine(raw)
			if !uuidMarkerPattern.MatchString(marker) {
				findings = append(findings, finding{file: path, line: line, name: name, message: "missing or invalid --sql <uuid> marker"})
				continue
			}
			stmts = append(stmts, statement{file: path, line: line, name: name, marker: marker})
		}
		return true
	})
	return stmts, findings, nil
}

func duplicates(stmts []statement) []finding {
	byMarker := map[string][]statement{}
	for _, s := range stmts {
		byMarker[s.marker] = append(byMarker[s.marker], s)
	}
	var out []finding
	for marker, group := range byMarker {
		if len(group) < 2 {
			continue
		}
		for _, s := range group[1:] {
			out = append(out, finding{
				file:    s.file,
				line:    s.line,
				name:    s.name,
				message: fmt.Sprintf("marker %s already used by %s", strings.TrimPrefix(marker, "--sql "), group[0].name),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].file != out[j].file {
			return out[i].file < out[j].file
		}
		return out[i].line < out[j].line
	})
	return out
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if v == "" {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}
