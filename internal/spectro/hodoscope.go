package spectro

import "math"

// HodoscopeView is the narrow slice of the hodoscope detector the
// selector needs: per-plane paddle geometry and hit lists, plus the
// event's reference start time. The concrete detector is injected at
// construction; the core never looks it up by name.
type HodoscopeView interface {
	// NPaddles returns the paddle count of the given plane.
	NPaddles(plane int) int
	// PlaneCenter returns the geometric centre position of the plane (cm).
	PlaneCenter(plane int) float64
	// PlaneSpacing returns the paddle pitch of the plane (cm).
	PlaneSpacing(plane int) float64
	// HitPaddles returns the zero-based paddle indices with a recorded
	// hit in the plane for the current event.
	HitPaddles(plane int) []int
	// StartTimeCenter returns the reference start time for the event (ns).
	StartTimeCenter() float64
}

// ScintMatcher scores how well a track's focal-plane projection agrees
// with the paddles actually hit in the two matching hodoscope planes.
// The mismatch is a paddle-count distance: zero means the projection
// lands on a hit paddle's neighbourhood exactly.
type ScintMatcher struct {
	Hodo HodoscopeView

	// Plane indices of the matching X and Y planes within the hodoscope.
	PlaneX int
	PlaneY int

	// Z position and thickness of each matching plane (cm), measured
	// from the focal plane.
	ZPosX  float64
	DZPosX float64
	ZPosY  float64
	DZPosY float64
}

// YMismatch returns the paddle mismatch of the track against the Y
// matching plane. nTracks is the total number of tracks in the event;
// with one track there is nothing to discriminate and the mismatch is
// defined as zero.
func (m *ScintMatcher) YMismatch(t *Track, nTracks int) float64 {
	if nTracks == 1 {
		return 0
	}
	hitPos := t.Y + t.Phi*(m.ZPosY+0.5*m.DZPosY)
	expect := expectedPaddle(
		(m.Hodo.PlaneCenter(m.PlaneY)-hitPos)/m.Hodo.PlaneSpacing(m.PlaneY),
		m.Hodo.NPaddles(m.PlaneY))
	return minPaddleDistance(expect, m.Hodo.HitPaddles(m.PlaneY))
}

// XMismatch is YMismatch for the X matching plane. The sign convention
// differs between the views: here the projection leads the plane centre.
func (m *ScintMatcher) XMismatch(t *Track, nTracks int) float64 {
	if nTracks == 1 {
		return 0
	}
	hitPos := t.X + t.Theta*(m.ZPosX+0.5*m.DZPosX)
	expect := expectedPaddle(
		(hitPos-m.Hodo.PlaneCenter(m.PlaneX))/m.Hodo.PlaneSpacing(m.PlaneX),
		m.Hodo.NPaddles(m.PlaneX))
	return minPaddleDistance(expect, m.Hodo.HitPaddles(m.PlaneX))
}

// expectedPaddle converts a paddle-pitch offset into a one-based paddle
// number clamped into [1, nPaddles]. Halves round to even, the nearest
// integer rule of the legacy calibrations.
func expectedPaddle(pitchOffset float64, nPaddles int) int {
	n := int(math.RoundToEven(pitchOffset)) + 1
	if n > nPaddles {
		n = nPaddles
	}
	if n < 1 {
		n = 1
	}
	return n
}

// minPaddleDistance returns the minimum |expected - hit - 1| over the
// hit paddles, or zero when the plane recorded no hits.
func minPaddleDistance(expect int, hits []int) float64 {
	best := 0.0
	for i, pad := range hits {
		d := math.Abs(float64(expect - pad - 1))
		if i == 0 || d < best {
			best = d
		}
	}
	return best
}
