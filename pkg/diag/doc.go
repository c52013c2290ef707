/*
Package diag records why an edit was refused.

Every rejected edit produces an Artifact: the reason, the pattern, the
thresholds in force and the ranked candidates, each with a patch from the
pattern and the target lines around it. A Sink decides where it goes;
FileSink writes one JSON file per artifact into the diagnostics directory,
named by UTC time and a random id so concurrent runs never collide.

	sink := diag.NewFileSink(cfg.Diagnostics.Dir)
	path, err := sink.Emit(ctx, artifact)

List, Filter and Prune read the directory back for the diagnostics command.
*/
package diag
