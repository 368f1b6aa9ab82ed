package model

// Package model defines the records shared across the tool: the operation
// mode, the per-invocation download task, playlist previews and probed media
// information.
