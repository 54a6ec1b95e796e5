// Package editor owns a live frame arrangement and keeps it consistent.
//
// A [Controller] holds the canvas size, the frame/image model, the
// rendering surface and the selection. Every exposed operation runs under
// the controller's lock:
//
//   - CreateFrame, DeleteFrame, UpdateFrame edit frames
//   - BindImage, SetImageSource attach images to frames
//   - SetBackground, ClearBackground manage the canvas background
//   - SerializeTemplate, LoadTemplate save and restore the arrangement
//   - HandleEvent applies surface interactions (select, drag, resize)
//
// Edits keep bound images fitted and clipped: a drag in progress re-fits
// and re-clips, and a completed edit also snaps the frame to the grid.
//
// # Asynchronous work
//
// Resolving an image's native size and fetching a background may block.
// Those operations return a [Task] that completes when the result has been
// applied. Each task records the generation it was started under; Clear
// and LoadTemplate start a new generation. A result that arrives after its
// generation ended, or after its image or background was replaced, is
// dropped and the task fails with STALE_COMPLETION.
package editor
