// Package errors provides the classified error foundation used across
// lastupdated. Errors carry a category (git, config, resolve, ...) and a
// severity; only fatal errors abort a run, everything else is reported as a
// per-file warning by the pipeline.
package errors
