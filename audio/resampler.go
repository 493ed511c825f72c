// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/mp32cdda/utils"
)

// Kernel parameters. They are fixed so output is reproducible.
const (
	sincZeroCrossings = 32
	sincOversample    = 512
	sincBeta          = 9.0
	sincCutoff        = 0.95
)

// Resampler converts interleaved stereo samples from one rate to another
// with a Kaiser windowed sinc kernel.
//
// The resampler keeps enough history between calls that feeding a stream in
// blocks gives the same samples as feeding it at once. Output frame n sits at
// input time n*src/dst, tracked as an exact fraction so the phase never
// drifts. Both channels share the same weights.
//
// A Resampler belongs to a single stream and is not safe for concurrent use.
type Resampler struct {
	srcRate int64 // reduced by gcd
	dstRate int64

	identity bool

	table  []float64
	radius int64 // input frames either side of the output time

	// History of input frames, left[0] is absolute input frame histStart.
	left, right []float64
	histStart   int64

	inFrames  int64
	outFrames int64
	flushed   bool

	weights []float64
}

// NewResampler creates a stereo resampler from srcRate to dstRate.
func NewResampler(srcRate, dstRate int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: invalid ratio %d/%d", ErrResampler, srcRate, dstRate)
	}

	g := gcd(int64(srcRate), int64(dstRate))
	r := &Resampler{
		srcRate:  int64(srcRate) / g,
		dstRate:  int64(dstRate) / g,
		identity: srcRate == dstRate,
	}
	if r.identity {
		return r, nil
	}

	// Cutoff is relative to the input Nyquist; when downsampling it has to
	// sit under the output Nyquist instead.
	cutoff := sincCutoff * math.Min(1, float64(dstRate)/float64(srcRate))
	r.table = utils.SincTable(cutoff, sincZeroCrossings, sincOversample, sincBeta)
	r.radius = int64(math.Ceil(float64(sincZeroCrossings) / cutoff))
	r.weights = make([]float64, 2*r.radius)

	// Silence before the first frame.
	r.left = make([]float64, r.radius, 8192)
	r.right = make([]float64, r.radius, 8192)
	r.histStart = -r.radius

	return r, nil
}

// Identity reports whether the resampler copies samples through unchanged.
func (r *Resampler) Identity() bool { return r.identity }

// Ratio returns dst/src.
func (r *Resampler) Ratio() float64 { return float64(r.dstRate) / float64(r.srcRate) }

// InputFrames is the number of frames passed to Process so far.
func (r *Resampler) InputFrames() int64 { return r.inFrames }

// OutputFrames is the number of frames produced so far.
func (r *Resampler) OutputFrames() int64 { return r.outFrames }

// Process resamples one block of interleaved stereo samples. The returned
// slice may be shorter or longer than the input and may be empty while the
// filter is filling.
func (r *Resampler) Process(stereo []int16) ([]int16, error) {
	if r.flushed {
		return nil, fmt.Errorf("%w: process after flush", ErrResampler)
	}
	if len(stereo) == 0 || len(stereo)%2 != 0 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidBlock, len(stereo))
	}

	frames := int64(len(stereo) / 2)
	r.inFrames += frames

	if r.identity {
		r.outFrames += frames
		out := make([]int16, len(stereo))
		copy(out, stereo)
		return out, nil
	}

	for f := range frames {
		r.left = append(r.left, utils.Int16ToFloat64(stereo[2*f]))
		r.right = append(r.right, utils.Int16ToFloat64(stereo[2*f+1]))
	}

	// Frame n needs input up to index floor(n*src/dst)+radius.
	last := r.inFrames - 1
	limit := (last-r.radius+1)*r.dstRate - 1 // n*src <= limit
	var out []int16
	if limit >= 0 {
		out = r.render(limit/r.srcRate + 1)
	}
	r.trim()

	return out, nil
}

// Flush pads the stream with silence and returns the remaining frames, so
// that the total output is ceil(inputFrames*dst/src) frames.
// After Flush the resampler accepts no more input.
func (r *Resampler) Flush() ([]int16, error) {
	if r.flushed {
		return nil, nil
	}
	r.flushed = true
	if r.identity || r.inFrames == 0 {
		return nil, nil
	}

	pad := make([]float64, r.radius)
	r.left = append(r.left, pad...)
	r.right = append(r.right, pad...)

	total := (r.inFrames*r.dstRate + r.srcRate - 1) / r.srcRate
	out := r.render(total)
	r.left, r.right = nil, nil

	return out, nil
}

// render produces output frames up to (not including) frame end.
func (r *Resampler) render(end int64) []int16 {
	if end <= r.outFrames {
		return nil
	}

	out := make([]int16, 0, 2*(end-r.outFrames))
	for n := r.outFrames; n < end; n++ {
		num := n * r.srcRate
		ip := num / r.dstRate
		frac := float64(num%r.dstRate) / float64(r.dstRate)

		first := ip - r.radius + 1
		base := first - r.histStart
		for k := range r.weights {
			r.weights[k] = r.kernel(math.Abs(float64(int64(k)-r.radius+1) - frac))
		}

		var l, rt float64
		for k, w := range r.weights {
			l += w * r.left[base+int64(k)]
			rt += w * r.right[base+int64(k)]
		}
		out = append(out, utils.Float64ToInt16(l), utils.Float64ToInt16(rt))
	}
	r.outFrames = end

	return out
}

// kernel looks up the windowed sinc at distance d input frames.
func (r *Resampler) kernel(d float64) float64 {
	pos := d * sincOversample
	i := int(pos)
	if i >= len(r.table)-1 {
		return 0
	}
	t := pos - float64(i)
	return r.table[i] + t*(r.table[i+1]-r.table[i])
}

// trim drops history the next output frame no longer needs.
func (r *Resampler) trim() {
	keepFrom := (r.outFrames*r.srcRate)/r.dstRate - r.radius + 1
	drop := keepFrom - r.histStart
	if drop <= 0 {
		return
	}
	if drop > int64(len(r.left)) {
		drop = int64(len(r.left))
	}
	r.left = append(r.left[:0], r.left[drop:]...)
	r.right = append(r.right[:0], r.right[drop:]...)
	r.histStart += drop
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
