package packager

import (
	"context"

	"capestudio/internal/cape"
	"capestudio/internal/faults"
	"capestudio/internal/fileutil"
	"capestudio/internal/logging"
)

// Result is the outcome of one build within BuildAll.
type Result struct {
	Definition cape.Definition
	Err        error
}

// BuildAll rebuilds every definition in order, deleting any previous archive
// first. A failing cape does not stop the rest; its error is kept on its Result.
func (b *Builder) BuildAll(ctx context.Context, defs []cape.Definition) []Result {
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Definition: def, Err: err})
			continue
		}
		if _, err := fileutil.RemoveIfExists(def.ArchivePathIn(b.zipsDir)); err != nil {
			results = append(results, Result{Definition: def, Err: b.ioError("remove previous archive", def.ItemID, err)})
			continue
		}
		def.ArchivePath = ""
		_, err := b.Build(ctx, &def)
		if err != nil {
			logging.ErrorWithContext(b.logger, "cape build failed", "package_failed",
				logging.String(logging.FieldItemID, def.ItemID),
				logging.Error(err),
				logging.String("error_class", faults.Classify(err)),
			)
		}
		results = append(results, Result{Definition: def, Err: err})
	}
	return results
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
