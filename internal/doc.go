// Package internal provides the migration engine behind jmig.
//
// The Engine owns one recipe.Driver per enabled recipe. For every Java file
// it parses the source once, runs each recipe over the compilation unit in
// name order and renders the final revision back to bytes. Files that no
// recipe touches are reported as unchanged and, when a cache is configured,
// skipped on later runs until their content or the recipe set changes.
//
// Usage:
//
//	engine, err := internal.NewEngine(".", nil, logger)
//	if err != nil {
//	    // handle error
//	}
//	engine.IgnorePath("generated/")
//
//	result, err := engine.Run("src/test/java/FooTest.java")
//	if err != nil {
//	    // handle error
//	}
//	if result.Modified() {
//	    os.WriteFile(result.Filename, result.Output, 0o644)
//	}
//
// Watch runs the same pipeline for every Java file written below a set of
// directories until its context is cancelled.
package internal
