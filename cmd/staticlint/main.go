// The staticlint command is the project's multichecker. It runs a fixed set
// of go/analysis passes, ineffassign, nilerr, the noosexit analyzer and the
// staticcheck analyzers named in config.json next to the binary. Without
// config.json every SA analyzer is enabled.
//
// Usage:
//
//	go build -o staticlint ./cmd/staticlint && ./staticlint ./...
package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/hourstracker/cmd/staticlint/noosexit"
)

// Config is the name of the JSON file that lists enabled staticcheck analyzers.
const Config = `config.json`

// ConfigData lists staticcheck analyzer names, e.g. "SA1000", "SA4010".
type ConfigData struct {
	Staticcheck []string
}

func loadConfig() (ConfigData, error) {
	appfile, err := os.Executable()
	if err != nil {
		return ConfigData{}, err
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), Config))
	if errors.Is(err, os.ErrNotExist) {
		var all ConfigData
		for _, v := range staticcheck.Analyzers {
			if strings.HasPrefix(v.Analyzer.Name, "SA") {
				all.Staticcheck = append(all.Staticcheck, v.Analyzer.Name)
			}
		}
		return all, nil
	}
	if err != nil {
		return ConfigData{}, err
	}

	var cfg ConfigData
	if err = json.Unmarshal(data, &cfg); err != nil {
		return ConfigData{}, err
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	myChecks := []*analysis.Analyzer{
		copylock.Analyzer, // the storage mutex must never be copied
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
	}

	checks := make(map[string]bool)
	for _, v := range cfg.Staticcheck {
		checks[v] = true
	}

	for _, v := range staticcheck.Analyzers {
		if checks[v.Analyzer.Name] {
			myChecks = append(myChecks, v.Analyzer)
		}
	}

	multichecker.Main(myChecks...)
}
