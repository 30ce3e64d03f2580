// depscheck fails the build when the simulation core grows a dependency on
// the transport layer. The determinism guarantees rest on internal/sim (and
// the primitives beneath it) staying free of network and wall-clock concerns.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

var forbidden = map[string][]string{
	"dust-and-lead/server/internal/sim":     {"dust-and-lead/server/internal/net", "net/http", "github.com/gorilla/websocket"},
	"dust-and-lead/server/internal/ecs":     {"dust-and-lead/server/internal/sim", "dust-and-lead/server/internal/net"},
	"dust-and-lead/server/internal/spatial": {"dust-and-lead/server/internal/sim", "dust-and-lead/server/internal/net"},
	"dust-and-lead/server/internal/content": {"dust-and-lead/server/internal/sim"},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		for prefix, banned := range forbidden {
			if !strings.HasPrefix(pkg.ImportPath, prefix) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, ban := range banned {
					if imp == ban || strings.HasPrefix(imp, ban+"/") {
						violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}
