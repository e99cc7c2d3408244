// Command hlbc is a thin demonstration consumer of the decompiler core,
// not a product surface, the same way cmd/paserati is a thin consumer of
// pkg/driver. It decompiles a hand-built module (see demo.go — a real .hl
// loader is outside this module's scope) and either prints a structural
// summary, dumps a YAML view of the result, or opens an interactive
// browser.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/hlbc-go/hlbc/internal/ast"
	"github.com/hlbc-go/hlbc/internal/decompiler"
)

func main() {
	yamlOut := flag.Bool("yaml", false, "print the decompiled module as YAML instead of a summary")
	browse := flag.Bool("browse", false, "open the interactive class/function browser")
	diagnostics := flag.Bool("diagnostics", false, "collect and print soft diagnostics alongside the summary")
	flag.Parse()

	code, classTypes, looseFunctions := demoModule()
	opts := decompiler.Options{CollectDiagnostics: *diagnostics}
	result := decompiler.DecompileModule(code, classTypes, looseFunctions, opts)

	switch {
	case *browse:
		if err := runBrowser(result); err != nil {
			fmt.Fprintln(os.Stderr, "hlbc: browse:", err)
			os.Exit(70)
		}
	case *yamlOut:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if err := enc.Encode(toYAMLView(result)); err != nil {
			fmt.Fprintln(os.Stderr, "hlbc: yaml:", err)
			os.Exit(70)
		}
	default:
		printSummary(result)
	}
}

func printSummary(result *decompiler.ModuleResult) {
	fmt.Printf("session %s\n", result.Session)
	fmt.Printf("%d loose function(s), %d class(es), %d diagnostic(s)\n",
		len(result.Functions), len(result.Classes), len(result.Diagnostics))
	for ref, stmts := range result.Functions {
		fmt.Printf("  fn#%d: %d statement(s)\n", ref, len(stmts))
	}
	for _, c := range result.Classes {
		parent := c.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("  class %s (parent %s): %d field(s), %d method(s)\n", c.Name, parent, len(c.Fields), len(c.Methods))
	}
	for _, d := range result.Diagnostics {
		fmt.Println("  " + d.String())
	}
}

// yamlView reshapes ModuleResult into a form yaml.v3 renders cleanly:
// statements are flattened to their String() form rather than their
// internal Go struct shape, since the AST's sealed interfaces carry
// unexported marker methods the printer has no need to expose.
type yamlView struct {
	Session   string              `yaml:"session"`
	Functions map[string][]string `yaml:"functions"`
	Classes   []yamlClass         `yaml:"classes"`
}

type yamlClass struct {
	Name    string        `yaml:"name"`
	Parent  string        `yaml:"parent,omitempty"`
	Fields  []yamlField   `yaml:"fields"`
	Methods []yamlMethod  `yaml:"methods"`
}

type yamlField struct {
	Name   string `yaml:"name"`
	Static bool   `yaml:"static"`
}

type yamlMethod struct {
	Fun        int      `yaml:"fun"`
	Static     bool     `yaml:"static"`
	Dynamic    bool     `yaml:"dynamic"`
	Statements []string `yaml:"statements"`
}

func toYAMLView(result *decompiler.ModuleResult) yamlView {
	v := yamlView{Session: result.Session.String(), Functions: make(map[string][]string, len(result.Functions))}
	for ref, stmts := range result.Functions {
		v.Functions[fmt.Sprintf("fn#%d", ref)] = stmtStrings(stmts)
	}
	for _, c := range result.Classes {
		yc := yamlClass{Name: c.Name, Parent: c.Parent}
		for _, f := range c.Fields {
			yc.Fields = append(yc.Fields, yamlField{Name: f.Name, Static: f.Static})
		}
		for _, m := range c.Methods {
			yc.Methods = append(yc.Methods, yamlMethod{
				Fun: int(m.Fun), Static: m.Static, Dynamic: m.Dynamic,
				Statements: stmtStrings(m.Statements),
			})
		}
		v.Classes = append(v.Classes, yc)
	}
	return v
}

func stmtStrings(stmts []ast.Stmt) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.String()
	}
	return out
}

func runBrowser(result *decompiler.ModuleResult) error {
	m := newBrowserModel(result)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
