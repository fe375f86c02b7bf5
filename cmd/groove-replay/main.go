package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stringcoach/internal/fixture"
	"github.com/danielpatrickdp/stringcoach/internal/groove"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	pretty := flag.Bool("pretty", false, "indent output")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: groove-replay --fixture path/to/fixture.json [--pretty]")
		os.Exit(2)
	}

	f, err := fixture.Load(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(1)
	}

	cfg := groove.DefaultConfig()
	if len(f.Windows) > 0 {
		results, err := fixture.ProcessMultiWindow(f, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			os.Exit(1)
		}
		for _, res := range results {
			emit(map[string]any{"window": res.Label, "envelope": res.Envelope}, *pretty)
		}
		return
	}

	env, err := fixture.Process(f, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
	emit(env, *pretty)
}

// #endregion main

// #region output

func emit(v any, pretty bool) {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// #endregion output
