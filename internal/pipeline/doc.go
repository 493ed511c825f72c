// Package pipeline orchestrates file discovery, per-file transcoding, and
// batch summary reporting.
//
// Enumerate turns input paths into candidates. RunJob drives one candidate
// through a Backend (the in-process native decoder or an external ffmpeg
// process) and always yields exactly one Outcome. Run and Start process a
// whole batch, sequentially by default or on a bounded worker pool.
//
// Every early stop, cancellation or failure, follows one rule: output that
// holds at least one frame is finalized and kept as a valid shorter file,
// anything else is removed.
package pipeline
