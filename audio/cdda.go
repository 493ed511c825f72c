// SPDX-License-Identifier: EPL-2.0

package audio

// CD audio constants
const (
	CDDASampleRate    = 44100 // Hz
	CDDAChannels      = 2     // Stereo
	CDDABitsPerSample = 16
)

// CDDA is the output format of every conversion.
var CDDA = Format{SampleRate: CDDASampleRate, Channels: CDDAChannels}
