// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"golang.org/x/exp/slices"
)

// A Taint is a set of frames. Frames with the same kind, callee, callee port, call position and call kind are
// joined together.
//
// The zero Taint is bottom and ready to use. Taint values share their frames map: use Clone before mutating a
// taint that is stored elsewhere.
type Taint struct {
	frames map[frameKey]Frame
}

// NewTaint returns the taint containing frames.
func NewTaint(frames ...Frame) Taint {
	var t Taint
	for _, f := range frames {
		t.Add(f)
	}
	return t
}

// IsBottom returns true when the taint has no frame.
func (t Taint) IsBottom() bool { return len(t.frames) == 0 }

// Len returns the number of frames.
func (t Taint) Len() int { return len(t.frames) }

// Add joins frame f into t.
func (t *Taint) Add(f Frame) {
	if t.frames == nil {
		t.frames = map[frameKey]Frame{}
	}
	k := f.key()
	if old, ok := t.frames[k]; ok {
		t.frames[k] = old.Join(f)
	} else {
		t.frames[k] = f
	}
}

// JoinWith joins o into t.
func (t *Taint) JoinWith(o Taint) {
	for _, f := range o.frames {
		t.Add(f)
	}
}

// Join returns the join of t and o without modifying either.
func (t Taint) Join(o Taint) Taint {
	r := t.Clone()
	r.JoinWith(o)
	return r
}

// Clone returns a taint that does not share memory with t.
func (t Taint) Clone() Taint {
	if len(t.frames) == 0 {
		return Taint{}
	}
	frames := make(map[frameKey]Frame, len(t.frames))
	for k, f := range t.frames {
		frames[k] = f
	}
	return Taint{frames: frames}
}

// Leq returns true when every frame of t is less than the frame with the same key in o.
func (t Taint) Leq(o Taint) bool {
	for k, f := range t.frames {
		g, ok := o.frames[k]
		if !ok || !f.Leq(g) {
			return false
		}
	}
	return true
}

// Equal returns true when t and o have the same frames.
func (t Taint) Equal(o Taint) bool {
	if len(t.frames) != len(o.frames) {
		return false
	}
	for k, f := range t.frames {
		g, ok := o.frames[k]
		if !ok || !f.Equal(g) {
			return false
		}
	}
	return true
}

// Frames returns the frames of t in a deterministic order.
func (t Taint) Frames() []Frame {
	keys := make([]frameKey, 0, len(t.frames))
	for k := range t.frames {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, frameKey.less)
	frames := make([]Frame, len(keys))
	for i, k := range keys {
		frames[i] = t.frames[k]
	}
	return frames
}

// Kinds returns the kinds of the frames of t, without duplicates.
func (t Taint) Kinds() []Kind {
	var kinds []Kind
	for _, f := range t.Frames() {
		if !slices.Contains(kinds, f.kind) {
			kinds = append(kinds, f.kind)
		}
	}
	return kinds
}

// Filter returns the taint with the frames satisfying keep.
func (t Taint) Filter(keep func(Frame) bool) Taint {
	var r Taint
	for _, f := range t.frames {
		if keep(f) {
			r.Add(f)
		}
	}
	return r
}

// Map returns the taint where every frame is replaced by f(frame).
func (t Taint) Map(f func(Frame) Frame) Taint {
	var r Taint
	for _, frame := range t.frames {
		r.Add(f(frame))
	}
	return r
}

// AddLocallyInferredFeatures returns the taint with features added to the locally inferred features of every
// frame.
func (t Taint) AddLocallyInferredFeatures(features FeatureMayAlwaysSet) Taint {
	if features.IsEmpty() {
		return t
	}
	return t.Map(func(f Frame) Frame { return f.WithLocallyInferredFeatures(features) })
}

// AddUserFeatures returns the taint with user features added to every frame.
func (t Taint) AddUserFeatures(features FeatureSet) Taint {
	if features.IsEmpty() {
		return t
	}
	return t.Map(func(f Frame) Frame { return f.WithUserFeatures(features) })
}

// Propagate returns the taint seen from a call site to callee, where t was attached to calleePort. Frames at
// maxDistance or more are dropped. viaFeatures computes the call-site features of each frame from its
// via-type-of and via-value-of ports.
func (t Taint) Propagate(callee string, calleePort access.AccessPath, position Position, maxDistance int,
	viaFeatures func(Frame) FeatureSet) Taint {
	var r Taint
	for _, f := range t.frames {
		if f.distance >= maxDistance {
			continue
		}
		var callsiteFeatures FeatureSet
		if viaFeatures != nil {
			callsiteFeatures = viaFeatures(f)
		}
		r.Add(f.Propagate(callee, calleePort, position, callsiteFeatures))
	}
	return r
}

// ToJSON returns the array of frame objects of t.
func (t Taint) ToJSON() []map[string]any {
	frames := t.Frames()
	out := make([]map[string]any, len(frames))
	for i, f := range frames {
		out[i] = f.ToJSON()
	}
	return out
}

func (t Taint) String() string {
	frames := t.Frames()
	parts := make([]string, len(frames))
	for i, f := range frames {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
