// Package kioskcontent manages the content shown on a public kiosk: pages
// with rich text, an optional image and attached documents, and the ordered
// navigation buttons that link to them.
//
// It exposes a single Service interface that keeps the coupled resources
// (page records, attachment records and uploaded files) consistent across
// create, update, delete and reorder operations.
// Implementations of the repositories (memory, SQLite, Postgres) and the
// asset store (memory, filesystem, S3) are provided under subpackages.
//
// Uploaded files are addressed by their sanitized stored name. Saving a file
// whose sanitized name collides with an existing one silently overwrites it;
// deleting an absent file is a no-op. Replacing a page image or button icon
// retains the previous file.
package kioskcontent
