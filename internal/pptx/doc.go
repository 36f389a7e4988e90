// Package pptx opens presentation packages (OPC zip archives) and exposes the
// parts slidevox needs: the ordered slide list, notes text, slide media
// relationships, and payload bytes.
//
// A Package opened writable holds an exclusive lock on "<path>.lock" until it
// is closed. Payload rewrites are buffered and only reach disk on Commit,
// which writes a sibling temp file and renames it over the original. Members
// that were not rewritten are copied in their original compressed form, and
// relationship parts are never modified.
package pptx
