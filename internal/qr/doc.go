// Package qr generates QR codes with a centred logo and refuses to ship any
// code it cannot read back.
//
// Generation runs as a strictly forward pipeline of four stages:
//
//	Encoder → Renderer → Compositor → Verifier
//
// The Encoder turns text into a square module Matrix at error-correction
// level H (about 30% of the symbol can be damaged and still recovered).
// The Renderer paints that matrix one pixel per module onto a square canvas
// and optionally burns a caption into the margin below it. The Compositor
// caps the logo width at 30% of the canvas, scales it bilinearly and pastes
// it over the canvas centre. The Verifier decodes the composited canvas and
// compares the result to the original text.
//
// # Outcomes
//
// A generation attempt ends in exactly one terminal State:
//   - Accepted: the canvas decoded to the original text and was written to the sink.
//   - Rejected: the pipeline ran to completion but the logo broke the code
//     (Outcome Mismatch or DecodeFailed). Nothing is written and no error is returned.
//   - Aborted: a stage could not complete (bad request, text too long, logo
//     unreadable, canvas too large, sink failure). Nothing is written and the
//     returned error wraps one of the sentinel errors in errors.go.
//
// # Geometry
//
// All coordinates are 0-based with (0,0) at the top-left corner. When a
// caption is requested the Generator shrinks the symbol so that a band of
// Renderer.CaptionMargin pixels stays free on every side; the symbol remains
// centred on the canvas and the caption lands below its quiet zone.
//
// # Thread Safety
//
// A Generator keeps no per-request state and may be shared between
// goroutines. Each call to Generate allocates its own canvas and scaled logo.
package qr
