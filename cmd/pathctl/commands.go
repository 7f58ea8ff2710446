package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pathctl/internal/batch"
	"github.com/danmuck/pathctl/internal/config"
	"github.com/danmuck/pathctl/internal/interchange"
	"github.com/danmuck/pathctl/internal/store"
)

const defaultConfigFile = "pathctl.toml"

func runDecode(_ context.Context, e *env, args []string) error {
	flags := subFlags(e, "decode")
	formatFlag := flags.String("format", "", "output format: yaml|cbor (default from config)")
	output := flags.StringP("output", "o", "", "write to this file instead of stdout")
	if err := parseSub(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usagef("decode takes exactly one FILE")
	}
	file := flags.Arg(0)

	format := e.cfg.Format
	if *formatFlag != "" {
		f, err := interchange.ParseFormat(*formatFlag)
		if err != nil {
			return usagef("%v", err)
		}
		format = f
	} else if f, ok := interchange.FormatFor(*output); ok {
		format = f
	}

	pf, info, err := store.Load(file, e.cfg.LoadOptions())
	if err != nil {
		return err
	}
	data, err := interchange.Marshal(interchange.FromPathFile(pf), format)
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = e.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	log.Info().
		Str("file", file).
		Str("output", *output).
		Str("format", string(format)).
		Int("paths", info.Stats.Paths).
		Int("waypoints", info.Stats.Waypoints).
		Msg("decoded path file")
	return nil
}

func runEncode(_ context.Context, e *env, args []string) error {
	flags := subFlags(e, "encode")
	from := flags.String("from", "", "input format: yaml|cbor (default from extension, then config)")
	output := flags.StringP("output", "o", "", "path file to write (required)")
	compression := flags.String("compression", "", "none|zstd|lz4 (default from extension, then config)")
	if err := parseSub(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return usagef("encode takes exactly one DOC")
	}
	if *output == "" {
		return usagef("encode requires -o FILE")
	}
	docPath := flags.Arg(0)

	format := e.cfg.Format
	if *from != "" {
		f, err := interchange.ParseFormat(*from)
		if err != nil {
			return usagef("%v", err)
		}
		format = f
	} else if f, ok := interchange.FormatFor(docPath); ok {
		format = f
	}

	target, c, err := resolveOutput(*output, *compression, e.cfg.Compression)
	if err != nil {
		return err
	}

	data, err := readInput(docPath)
	if err != nil {
		return err
	}
	doc, err := interchange.Unmarshal(data, format)
	if err != nil {
		return fmt.Errorf("%s: %w", docPath, err)
	}
	opts := e.cfg.SaveOptions()
	opts.Compression = c
	info, err := store.Save(target, doc.PathFile(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %d paths, %d waypoints, %d bytes (%s, %d stored) %s\n",
		info.Path, info.Stats.Paths, info.Stats.Waypoints,
		info.EncodedSize, info.Compression, info.StoredSize, info.Digest.Short())
	return nil
}

// resolveOutput picks the compression for an output file. An extension that
// names a codec wins; an explicit flag that disagrees with it is an error.
// Otherwise the flag or config value applies and its extension is appended so
// later reads detect it.
func resolveOutput(output, flagValue string, fallback store.Compression) (string, store.Compression, error) {
	c := fallback
	explicit := flagValue != ""
	if explicit {
		parsed, err := store.ParseCompression(flagValue)
		if err != nil {
			return "", 0, usagef("%v", err)
		}
		c = parsed
	}
	byExt := store.CompressionFor(output)
	if byExt != store.CompressionNone {
		if explicit && c != byExt {
			return "", 0, usagef("--compression %s conflicts with output %s", c, output)
		}
		return output, byExt, nil
	}
	if c != store.CompressionNone {
		return output + c.Ext(), c, nil
	}
	return output, c, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runInspect(ctx context.Context, e *env, args []string) error {
	flags := subFlags(e, "inspect")
	if err := parseSub(flags, args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return usagef("inspect takes at least one FILE")
	}

	results, err := batch.Inspect(ctx, flags.Args(), e.cfg.BatchOptions())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tPATHS\tWAYPOINTS\tENCODED\tSTORED\tCODEC\tSKIPPED\tDIGEST")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", r.File, r.Err)
			continue
		}
		st := r.Info.Stats
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%d/%d/%d\t%s\n",
			r.File, st.Paths, st.Waypoints, r.Info.EncodedSize, r.Info.StoredSize,
			r.Info.Compression, st.MetadataBytes, st.ReservedSlots, st.Trailing,
			r.Info.Digest.Short())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return summarize(e, results)
}

func runVerify(ctx context.Context, e *env, args []string) error {
	flags := subFlags(e, "verify")
	if err := parseSub(flags, args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return usagef("verify takes at least one FILE")
	}

	results, err := batch.Verify(ctx, flags.Args(), e.cfg.BatchOptions())
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(e.stdout, "FAIL %s: %v\n", r.File, r.Err)
			continue
		}
		fmt.Fprintf(e.stdout, "ok   %s %s\n", r.File, r.Info.Digest.Short())
	}
	return summarize(e, results)
}

func summarize(e *env, results []batch.Result) error {
	s := batch.Summarize(results)
	fmt.Fprintf(e.stdout, "%d files, %d failed, %d paths, %d waypoints, %d bytes\n",
		s.Files, s.Failed, s.Paths, s.Waypoints, s.Bytes)
	if s.Failed > 0 {
		return errFailed
	}
	return nil
}

func runConfig(_ context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return usagef("config requires a subcommand: init | validate")
	}
	switch args[0] {
	case "init":
		flags := subFlags(e, "config init")
		output := flags.StringP("output", "o", defaultConfigFile, "where to write the template")
		force := flags.Bool("force", false, "overwrite an existing file")
		if err := parseSub(flags, args[1:]); err != nil {
			return err
		}
		if flags.NArg() != 0 {
			return usagef("config init takes no arguments")
		}
		if err := config.WriteTemplate(*output, *force); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "wrote config template to %s\n", *output)
		return nil
	case "validate":
		flags := subFlags(e, "config validate")
		if err := parseSub(flags, args[1:]); err != nil {
			return err
		}
		if flags.NArg() > 1 {
			return usagef("config validate takes at most one FILE")
		}
		path := e.configPath
		if flags.NArg() == 1 {
			path = flags.Arg(0)
		}
		if path == "" {
			path = defaultConfigFile
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "validated config at %s\n", path)
		return nil
	default:
		return usagef("unknown config subcommand %q", args[0])
	}
}
