// Package audio plays chime clips.
//
// Output is the capability over the sound device: load one clip, play it,
// ask whether it is still busy, stop it. BeepOutput implements it with
// faiface/beep. Sequencer plays an ordered list of clips back-to-back on an
// Output without blocking its caller: the first clip starts before
// PlaySequence returns and a worker goroutine advances through the rest by
// polling Busy at a bounded interval. A newer sequence always pre-empts the
// older one.
package audio
