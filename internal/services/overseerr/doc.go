// Package overseerr submits media requests to an Overseerr server. Each
// release is requested individually so one rejected title cannot sink the
// rest of a batch.
package overseerr
