// Package core defines the shared language of findrules.
//
// This package contains:
//   - Domain values (RuleName, UserConfig)
//   - The error taxonomy surfaced to users (ConfigNotFoundError,
//     ConfigMalformedError, DocArtifactUnavailableError, RegistryUnavailableError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
