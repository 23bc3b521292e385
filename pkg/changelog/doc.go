/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package changelog turns merged pull requests into dated, categorized
// sections of a CHANGELOG.md document.
//
// The package has three parts:
//
//   - Categorize assigns every pull request to exactly one Category, using
//     labels first, then a conventional-commit title prefix, then Chore.
//   - Merger computes the cutoff date from an existing document, selects the
//     pull requests merged since then, renders a new section and splices it in
//     directly below the document header.
//   - Updater runs one batch: read the document from a Store, fetch from a
//     Source, merge, and write the result back once.
//
// Expected usage:
//
//	u := changelog.NewUpdater(repo, source, store)
//	res, err := u.Run(ctx)
//	if err != nil {
//		// fatal
//	}
//	if !res.Updated {
//		// nothing new since the last run
//	}
package changelog
