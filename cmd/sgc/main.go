package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/stringcoach/internal/log"
	"github.com/danielpatrickdp/stringcoach/internal/runtime"
)

// #region main

func main() {
	log.Init(envOr("SGC_LOG_LEVEL", "info"))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "next":
		err = runNext(os.Args[2:])
	case "ingest-session":
		err = runIngest(os.Args[2:])
	case "attach":
		err = runAttach(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgc init")
	fmt.Fprintln(os.Stderr, "       sgc next --slot N")
	fmt.Fprintln(os.Stderr, "       sgc ingest-session --slot N [--file session.json]")
	fmt.Fprintln(os.Stderr, "       sgc attach --slot N --file clip.wav [--kind audio]")
	fmt.Fprintln(os.Stderr, "data directory is taken from SGC_DATA_DIR (default \"data\")")
}

// #endregion main

// #region subcommands

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := runtime.Open(runtime.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer r.Close()

	return printJSON(map[string]string{
		"device_id": r.DeviceID(),
		"db_path":   r.DBPath(),
	})
}

func runNext(args []string) error {
	fs := flag.NewFlagSet("next", flag.ExitOnError)
	slot := fs.Int("slot", 1, "local learner slot (1..99)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := runtime.Open(runtime.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer r.Close()

	payload, err := r.ComputeAssignment(*slot)
	if err != nil {
		return err
	}
	return printRaw(payload)
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest-session", flag.ExitOnError)
	slot := fs.Int("slot", 1, "local learner slot (1..99)")
	file := fs.String("file", "", "session JSON file (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var payload []byte
	var err error
	if *file != "" {
		payload, err = os.ReadFile(*file)
	} else {
		payload, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read session payload: %w", err)
	}

	r, err := runtime.Open(runtime.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer r.Close()

	sessionID, feedback, err := r.IngestSession(payload, *slot)
	if err != nil {
		return err
	}
	var fb any
	if err := json.Unmarshal(feedback, &fb); err != nil {
		return fmt.Errorf("decode feedback: %w", err)
	}
	return printJSON(map[string]any{
		"stored_session_id": sessionID,
		"coach_feedback":    fb,
	})
}

func runAttach(args []string) error {
	fs := flag.NewFlagSet("attach", flag.ExitOnError)
	slot := fs.Int("slot", 1, "local learner slot (1..99)")
	file := fs.String("file", "", "media file to attach")
	kind := fs.String("kind", "audio", "attachment kind")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("attach requires --file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	ext := strings.TrimPrefix(filepath.Ext(*file), ".")

	r, err := runtime.Open(runtime.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer r.Close()

	payload, err := r.IngestAttachment(*slot, data, ext, *kind)
	if err != nil {
		return err
	}
	return printRaw(payload)
}

// #endregion subcommands

// #region helpers

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printRaw(payload []byte) error {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return err
	}
	return printJSON(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
