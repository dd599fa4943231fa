// script_test.go — end-to-end corpus runner.
//
// Each YAML file under testdata/scripts holds a list of cases: a source
// script, optional argv, and either the exact stdout or a substring the
// error must contain. The corpus exercises the whole pipeline the way the
// CLI does.
package weave

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type scriptCase struct {
	Name   string   `yaml:"name"`
	Source string   `yaml:"source"`
	Argv   []string `yaml:"argv"`
	Stdout string   `yaml:"stdout"`
	Error  string   `yaml:"error"`
}

type scriptFile struct {
	Cases []scriptCase `yaml:"cases"`
}

func Test_Scripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no script corpus found")
	}

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		var file scriptFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			t.Fatalf("unmarshal %s: %v", path, err)
		}

		base := strings.TrimSuffix(filepath.Base(path), ".yaml")
		for _, c := range file.Cases {
			c := c
			t.Run(base+"/"+c.Name, func(t *testing.T) {
				argv := c.Argv
				if len(argv) == 0 {
					argv = []string{"script.wv"}
				}
				var out strings.Builder
				runErr := RunSource(c.Source, argv, &out)

				if c.Error != "" {
					if runErr == nil {
						t.Fatalf("want error containing %q, got success with output %q", c.Error, out.String())
					}
					if !strings.Contains(runErr.Error(), c.Error) {
						t.Fatalf("error %q does not contain %q", runErr.Error(), c.Error)
					}
					return
				}
				if runErr != nil {
					t.Fatalf("unexpected error: %v", runErr)
				}
				if out.String() != c.Stdout {
					t.Fatalf("stdout = %q, want %q", out.String(), c.Stdout)
				}
			})
		}
	}
}
