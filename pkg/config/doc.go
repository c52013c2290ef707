/*
Package config loads the tunables of the fuzzy edit engine.

	              +-------------+
	              |  Default()  |
	              +------+------+
	                     |
	      +--------------+--------------+
	      |              |              |
	+-----+-----+  +-----+-----+  +-----+-----+
	|   YAML    |  |    HCL    |  |   JSON    |
	|  Parser   |  |  Parser   |  |  Parser   |
	+-----+-----+  +-----+-----+  +-----+-----+
	      |              |              |
	      +--------------+--------------+
	                     |
	              +------+------+
	              | FUZZPATCH_* |
	              |   env vars  |
	              +------+------+
	                     |
	              +------+------+
	              |  Validate   |
	              +-------------+

🎯 Purpose:
- Holds the acceptance policy (threshold and ambiguity margin)
- Holds search cost knobs (length slack, prefilter, score floor, workers)
- Holds where rejection diagnostics are written

🔄 Flow:
1. Start from Default()
2. Decode the file over it; keys the file omits keep their default
3. Apply FUZZPATCH_* overrides
4. Resolve the diagnostics directory and validate

🔍 Example:

	cfg, err := config.LoadOptional(ctx, ".fuzzpatch.yaml")
	if err != nil {
		return err
	}
	fmt.Println(cfg.Thresholds.AcceptThreshold)
*/
package config
