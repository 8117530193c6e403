// Package mdwriter builds the ECMA-335 metadata tables and heaps for a
// single managed module: given an in-memory object graph (graph.go), it
// assigns RIDs, encodes signatures and coded tokens, and produces the
// #Strings/#US/#GUID/#Blob heaps plus the finalized, sorted table rows a
// downstream PE/CLI image writer needs. Two strategies are available
// (§4.6, §4.7): a normal build that assigns fresh RIDs from scratch, and a
// token-preserving build that incrementally extends a previously built
// module while keeping its existing RIDs and heap offsets intact. Build is
// the single entry point; see Options for the strategy and preservation
// knobs.
package mdwriter

import "github.com/clrmeta/mdwriter/internal/log"

// PreserveOptions are the four option bits from §4.8/§6: setting one before
// Build changes the orchestrator's builder choice and heap-seeding
// behavior; setting it after Build has already run is a programmer error
// (spec.md §6 "Configuration surface").
type PreserveOptions struct {
	// PreserveTokens selects the preserving builder (§4.7) over the normal
	// one (§4.6) and copies source.Tables forward verbatim when set.
	PreserveTokens bool
	// PreserveStringsOffsets seeds #Strings from source.Strings. Heap
	// seeding happens only in the preserving builder: with PreserveTokens
	// unset, this and the two bits below have no effect.
	PreserveStringsOffsets bool
	// PreserveUSOffsets seeds #US from source.US (with PreserveTokens only).
	PreserveUSOffsets bool
	// PreserveBlobOffsets seeds #Blob from source.Blob (with PreserveTokens
	// only).
	PreserveBlobOffsets bool
}

// Options configures a build, mirroring the teacher's file.go Options
// struct shape: a plain struct of behavior flags plus an injectable logger,
// consumed once at construction time.
type Options struct {
	PreserveOptions

	// Source supplies the original heaps/tables to preserve from. Read only
	// when PreserveTokens is set; ignored otherwise.
	Source *SourceModule

	// Resources are the three external byte-chunk collaborators (§6).
	Resources ResourceStores

	// Warnings receives non-fatal BuildWarning diagnostics (§7). Defaults
	// to a sink that discards everything if left nil.
	Warnings WarningSink

	// Logger receives structural trace/debug output during the build.
	// Defaults to a no-op logger if left nil, matching the teacher's New().
	Logger log.Logger
}

// Output is everything the downstream PE writer needs once a build
// completes (§6 "Outputs"): populated heap buffers and the final per-table
// row vectors, exposed read-only from this point on (§3 "Lifecycles").
type Output struct {
	Strings *StringsHeap
	US      *UserStringsHeap
	Guid    *GuidHeap
	Blob    *BlobHeap
	Tables  *TablesStore
}

// Build is the orchestrator's single entry point (§4.8): it selects the
// normal or preserving strategy by PreserveOptions.PreserveTokens, runs the
// chosen builder to completion (including the final sort pass), and hands
// back the frozen output. Heaps are seeded from opts.Source only on the
// preserving path; the normal path never seeds them.
func Build(module *Module, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	helper := log.NewHelper(logger)
	warnings := opts.Warnings
	if warnings == nil {
		warnings = nopSink{}
	}

	helper = helper.With("module", module.Name)
	helper.Info("build starting")

	var (
		b   *Builder
		err error
	)
	if opts.PreserveTokens {
		helper.Debug("using preserving builder")
		b, err = BuildPreserving(module, opts.Source, opts.PreserveOptions, opts.Resources, warnings, helper)
	} else {
		helper.Debug("using normal builder")
		b, err = BuildNormal(module, opts.Resources, warnings, helper)
	}
	if err != nil {
		helper.Error("build failed", "err", err)
		return nil, err
	}

	helper.Info("build complete",
		"typedefs", b.Tables.TypeDef.count(),
		"fields", b.Tables.Field.count(),
		"methods", b.Tables.MethodDef.count(),
	)
	return &Output{
		Strings: b.Strings,
		US:      b.US,
		Guid:    b.Guid,
		Blob:    b.Blob,
		Tables:  b.Tables,
	}, nil
}
