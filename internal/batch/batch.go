// Package batch runs store operations over many files with bounded
// concurrency. Each file gets its own buffer and PathFile, so codec calls
// never share state.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/pathctl/internal/pathfile"
	"github.com/danmuck/pathctl/internal/store"
)

const DefaultConcurrency = 4

var ErrRoundTripMismatch = errors.New("batch: re-decoded path file differs")

type Options struct {
	Concurrency int
	Load        store.LoadOptions
}

func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
		Load:        store.DefaultLoadOptions(),
	}
}

// Result is the outcome for one file. Err holds per-file failures.
type Result struct {
	File string
	Info store.Info
	Err  error
}

// Summary aggregates results.
type Summary struct {
	Files     int
	Failed    int
	Paths     int
	Waypoints int
	Bytes     int
}

// Inspect loads every file and reports what it holds.
func Inspect(ctx context.Context, files []string, opts Options) ([]Result, error) {
	return run(ctx, files, opts, "inspect", func(file string) (store.Info, error) {
		_, info, err := store.Load(file, opts.Load)
		return info, err
	})
}

// Verify loads every file, re-encodes it, decodes the new bytes and checks
// the two decodes agree and that encoding is repeatable.
func Verify(ctx context.Context, files []string, opts Options) ([]Result, error) {
	return run(ctx, files, opts, "verify", func(file string) (store.Info, error) {
		pf, info, err := store.Load(file, opts.Load)
		if err != nil {
			return info, err
		}
		return info, roundTrip(pf, opts.Load)
	})
}

func roundTrip(pf *pathfile.PathFile, opts store.LoadOptions) error {
	first, err := pathfile.Marshal(pf, opts.MaxEncodedSize)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	again, _, err := pathfile.DecodeWithLimits(first, opts.Limits)
	if err != nil {
		return fmt.Errorf("re-decode: %w", err)
	}
	if !pf.Equal(again) {
		return ErrRoundTripMismatch
	}
	second, err := pathfile.Marshal(again, opts.MaxEncodedSize)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	if store.DigestOf(first) != store.DigestOf(second) {
		return ErrRoundTripMismatch
	}
	return nil
}

func run(ctx context.Context, files []string, opts Options, op string, fn func(file string) (store.Info, error)) ([]Result, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := fn(file)
			results[i] = Result{File: file, Info: info, Err: err}
			if err != nil {
				log.Warn().Str("op", op).Str("file", file).Err(err).Msg("file failed")
				return nil
			}
			log.Debug().
				Str("op", op).
				Str("file", file).
				Str("digest", info.Digest.Short()).
				Msg("file ok")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Files++
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Paths += r.Info.Stats.Paths
		s.Waypoints += r.Info.Stats.Waypoints
		s.Bytes += r.Info.EncodedSize
	}
	return s
}
