package transition

import "searchy/internal/domain"

// Snapshot is a frozen copy of an endpoint's artwork at the moment the
// transition starts. Data is the encoded image; Fallback is drawn when there is none.
type Snapshot struct {
	ResultID string
	Data     []byte
	Fallback string
}

// Endpoint is a view taking part in a transition, either the cell being
// left or the screen being entered
type Endpoint interface {
	// ImageRect returns the artwork rect in screen points, false if not laid out
	ImageRect() (domain.Rect, bool)
	Snapshot() Snapshot
	SetImageHidden(hidden bool)
}

// Layer is the temporary overlay a driver draws its snapshot into
type Layer interface {
	Insert(snap Snapshot, frame domain.Rect)
	SetFrame(frame domain.Rect)
	Remove()
	Active() bool
}

// Overlay is the Layer the controller composites over the current screen
type Overlay struct {
	snap   Snapshot
	frame  domain.Rect
	active bool
}

// Insert implements Layer
func (o *Overlay) Insert(snap Snapshot, frame domain.Rect) {
	o.snap = snap
	o.frame = frame
	o.active = true
}

// SetFrame implements Layer
func (o *Overlay) SetFrame(frame domain.Rect) {
	if o.active {
		o.frame = frame
	}
}

// Remove implements Layer
func (o *Overlay) Remove() {
	o.snap = Snapshot{}
	o.frame = domain.Rect{}
	o.active = false
}

// Active implements Layer
func (o *Overlay) Active() bool {
	return o.active
}

// Current returns what is on the overlay, if anything
func (o *Overlay) Current() (Snapshot, domain.Rect, bool) {
	return o.snap, o.frame, o.active
}
