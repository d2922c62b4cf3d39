// Command digitarr checks for new digital movie releases and requests them
// through Overseerr and Riven.
package main
