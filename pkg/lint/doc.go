// Package lint reconciles a user's stylelint configuration with the rules the
// installed library ships.
//
// # Registry
//
// The library exposes no machine-readable rule list outside JavaScript, so the
// registry is read from the install layout: every directory under
// lib/rules is one rule.
//
//	reg, err := lint.ReadRegistry(osfs.New("/"), "/project/node_modules/stylelint")
//
// # Deprecation
//
// Stylelint has no deprecation metadata either. A Classifier scans the first
// DefaultChunkSize bytes of lib/rules/<rule>/README.md for the word
// "deprecated", case-insensitively. Notices further down are not seen.
//
//	c := lint.NewClassifier(lint.ClassifierConfig{FS: fs, LibraryDir: dir})
//	verdicts, err := c.ClassifyAll(ctx, reg.Names())
//
// A missing README is fatal unless MissingDocNotDeprecated is selected.
//
// # Reconciliation
//
// Reconcile is a pure function of the registry, the resolved user rules and
// the deprecation verdicts:
//
//	res := lint.Reconcile(reg.Names(), resolved, verdicts)
//	res.Unused          // available, not configured, not deprecated
//	res.UserDeprecated  // configured and deprecated
//	res.Invalid         // configured but not in the registry
package lint
