// Package chimer runs the hourly chime.
//
// The Scheduler decides on every tick whether the top of the hour has come
// and the hour lies inside the configured window, and hands the clip list to
// the audio sequencer. One loop goroutine serves both the ticker and control
// commands (test play, style change, autostart toggle, exit), so chime
// decisions never run in parallel. Run wires the loop to the real settings
// file, sound device, autostart registration and single-instance lock.
package chimer
