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
	"fmt"
	"strconv"
	"strings"

	"github.com/awslabs/argot-taint-models/analysis/taint/access"
	"github.com/awslabs/argot-taint-models/internal/funcutil"
)

// CallKind describes how far a frame is from its declaration.
type CallKind uint8

const (
	Declaration CallKind = iota // A Declaration frame comes from a user-written model
	Origin                      // An Origin frame has been propagated once from its declaration
	CallSite                    // A CallSite frame has been propagated at least twice
)

// Propagate returns the call kind of the frame after one more call site.
func (c CallKind) Propagate() CallKind {
	if c == Declaration {
		return Origin
	}
	return CallSite
}

func (c CallKind) String() string {
	switch c {
	case Declaration:
		return "Declaration"
	case Origin:
		return "Origin"
	default:
		return "CallSite"
	}
}

// CallKindFromString parses a call kind.
func CallKindFromString(s string) (CallKind, error) {
	switch s {
	case "Declaration":
		return Declaration, nil
	case "Origin":
		return Origin, nil
	case "CallSite":
		return CallSite, nil
	default:
		return Declaration, fmt.Errorf("invalid call kind %q", s)
	}
}

// frameKey groups frames that are joined together in a Taint.
type frameKey struct {
	kind         Kind
	calleePort   string
	callee       string
	callPosition funcutil.Optional[Position]
	callKind     CallKind
}

func (k frameKey) less(o frameKey) bool {
	if k.kind != o.kind {
		return k.kind.String() < o.kind.String()
	}
	if k.calleePort != o.calleePort {
		return k.calleePort < o.calleePort
	}
	if k.callee != o.callee {
		return k.callee < o.callee
	}
	if k.callPosition != o.callPosition {
		if k.callPosition.IsNone() || o.callPosition.IsNone() {
			return k.callPosition.IsNone()
		}
		return k.callPosition.Value().Less(o.callPosition.Value())
	}
	return k.callKind < o.callKind
}

// A Frame is one element of a Taint: a kind of taint together with the trace information (callee, callee port,
// call position, distance) and the features collected along the trace.
//
// Frames are values: no operation modifies a frame in place.
type Frame struct {
	kind                    Kind
	calleePort              access.AccessPath
	callee                  string
	callPosition            funcutil.Optional[Position]
	distance                int
	callKind                CallKind
	origins                 NameSet
	inferredFeatures        FeatureMayAlwaysSet
	locallyInferredFeatures FeatureMayAlwaysSet
	userFeatures            FeatureSet
	viaTypeOf               RootSet
	viaValueOf              RootSet
	outputPaths             StringSet
}

// NewFrame returns the frame described by config. Callers are responsible for validating the config.
func NewFrame(config TaintConfig) Frame {
	return Frame{
		kind:                    config.Kind,
		calleePort:              config.CalleePort,
		callee:                  config.Callee,
		callPosition:            config.CallPosition,
		distance:                config.Distance,
		callKind:                config.CallKind,
		origins:                 config.Origins,
		inferredFeatures:        config.InferredFeatures,
		locallyInferredFeatures: config.LocallyInferredFeatures,
		userFeatures:            config.UserFeatures,
		viaTypeOf:               config.ViaTypeOf,
		viaValueOf:              config.ViaValueOf,
		outputPaths:             config.OutputPaths,
	}
}

// Config returns the configuration that NewFrame maps to f.
func (f Frame) Config() TaintConfig {
	return TaintConfig{
		Kind:                    f.kind,
		CalleePort:              f.calleePort,
		Callee:                  f.callee,
		CallPosition:            f.callPosition,
		Distance:                f.distance,
		CallKind:                f.callKind,
		Origins:                 f.origins,
		InferredFeatures:        f.inferredFeatures,
		LocallyInferredFeatures: f.locallyInferredFeatures,
		UserFeatures:            f.userFeatures,
		ViaTypeOf:               f.viaTypeOf,
		ViaValueOf:              f.viaValueOf,
		OutputPaths:             f.outputPaths,
	}
}

func (f Frame) key() frameKey {
	return frameKey{
		kind:         f.kind,
		calleePort:   f.calleePort.String(),
		callee:       f.callee,
		callPosition: f.callPosition,
		callKind:     f.callKind,
	}
}

// Kind returns the kind of the frame.
func (f Frame) Kind() Kind { return f.kind }

// CalleePort returns the port of the callee the taint comes from (or goes to).
func (f Frame) CalleePort() access.AccessPath { return f.calleePort }

// Callee returns the signature of the callee, empty for leaf frames.
func (f Frame) Callee() string { return f.callee }

// CallPosition returns the position of the call, if any.
func (f Frame) CallPosition() funcutil.Optional[Position] { return f.callPosition }

// Distance returns the number of calls between the frame and its declaration.
func (f Frame) Distance() int { return f.distance }

// CallKind returns the call kind of the frame.
func (f Frame) CallKind() CallKind { return f.callKind }

// Origins returns the methods (with port) the frame was declared on.
func (f Frame) Origins() NameSet { return f.origins }

// InferredFeatures returns the features inferred along the trace.
func (f Frame) InferredFeatures() FeatureMayAlwaysSet { return f.inferredFeatures }

// LocallyInferredFeatures returns the features inferred within the current method.
func (f Frame) LocallyInferredFeatures() FeatureMayAlwaysSet { return f.locallyInferredFeatures }

// UserFeatures returns the features declared by the user.
func (f Frame) UserFeatures() FeatureSet { return f.userFeatures }

// ViaTypeOf returns the ports whose type is added as a feature at call sites.
func (f Frame) ViaTypeOf() RootSet { return f.viaTypeOf }

// ViaValueOf returns the ports whose constant value is added as a feature at call sites.
func (f Frame) ViaValueOf() RootSet { return f.viaValueOf }

// OutputPaths returns the output paths of a propagation frame.
func (f Frame) OutputPaths() StringSet { return f.outputPaths }

// Features returns all the features of the frame: inferred, locally inferred and (always) user features.
func (f Frame) Features() FeatureMayAlwaysSet {
	features := f.inferredFeatures.Add(f.locallyInferredFeatures)
	if !f.userFeatures.IsEmpty() {
		features = features.Add(MakeAlways(f.userFeatures))
	}
	return features
}

// IsLeaf returns true for frames without callee.
func (f Frame) IsLeaf() bool { return f.callee == "" }

// WithOrigins returns the frame with origins added.
func (f Frame) WithOrigins(origins NameSet) Frame {
	f.origins = f.origins.Union(origins)
	return f
}

// WithLocallyInferredFeatures returns the frame with features added to its locally inferred features.
func (f Frame) WithLocallyInferredFeatures(features FeatureMayAlwaysSet) Frame {
	f.locallyInferredFeatures = f.locallyInferredFeatures.Add(features)
	return f
}

// WithUserFeatures returns the frame with user features added.
func (f Frame) WithUserFeatures(features FeatureSet) Frame {
	f.userFeatures = f.userFeatures.Union(features)
	return f
}

// Join returns the join of two frames with the same key. The distance is the minimum distance, the features are
// joined and every set is unioned.
func (f Frame) Join(g Frame) Frame {
	if f.distance > g.distance {
		f.distance = g.distance
	}
	f.origins = f.origins.Union(g.origins)
	f.inferredFeatures = f.inferredFeatures.Join(g.inferredFeatures)
	f.locallyInferredFeatures = f.locallyInferredFeatures.Join(g.locallyInferredFeatures)
	f.userFeatures = f.userFeatures.Union(g.userFeatures)
	f.viaTypeOf = f.viaTypeOf.Union(g.viaTypeOf)
	f.viaValueOf = f.viaValueOf.Union(g.viaValueOf)
	f.outputPaths = f.outputPaths.Union(g.outputPaths)
	return f
}

// Leq is the order of Join for frames with the same key.
func (f Frame) Leq(g Frame) bool {
	return f.distance >= g.distance &&
		f.origins.Leq(g.origins) &&
		f.inferredFeatures.Leq(g.inferredFeatures) &&
		f.locallyInferredFeatures.Leq(g.locallyInferredFeatures) &&
		f.userFeatures.Leq(g.userFeatures) &&
		f.viaTypeOf.Leq(g.viaTypeOf) &&
		f.viaValueOf.Leq(g.viaValueOf) &&
		f.outputPaths.Leq(g.outputPaths)
}

// Equal returns true for identical frames.
func (f Frame) Equal(g Frame) bool {
	return f.key() == g.key() && f.Leq(g) && g.Leq(f)
}

// Propagate returns the frame seen from a caller of callee, at the given call site: the callee port becomes the
// port the frame was attached to in the callee model, the distance increases by one and every feature is folded
// into the inferred features, including the materialized via-type-of and via-value-of features.
func (f Frame) Propagate(callee string, calleePort access.AccessPath, position Position,
	callsiteFeatures FeatureSet) Frame {
	features := f.Features()
	if !callsiteFeatures.IsEmpty() {
		features = features.Add(MakeAlways(callsiteFeatures))
	}
	return Frame{
		kind:             f.kind,
		calleePort:       calleePort,
		callee:           callee,
		callPosition:     funcutil.Some(position),
		distance:         f.distance + 1,
		callKind:         f.callKind.Propagate(),
		origins:          f.origins,
		inferredFeatures: features,
		outputPaths:      f.outputPaths,
	}
}

func (f Frame) String() string {
	var b strings.Builder
	b.WriteString("Frame(kind=" + f.kind.String())
	if f.callee != "" {
		b.WriteString(", callee=" + f.callee)
	}
	if !f.calleePort.Root().IsLeaf() || f.calleePort.Path().Len() > 0 {
		b.WriteString(", callee_port=" + f.calleePort.String())
	}
	if pos, ok := f.callPosition.Get(); ok {
		b.WriteString(", call_position=" + pos.String())
	}
	if f.distance != 0 {
		b.WriteString(", distance=" + strconv.Itoa(f.distance))
	}
	if !f.origins.IsEmpty() {
		b.WriteString(", origins=" + f.origins.String())
	}
	if features := f.Features(); !features.IsEmpty() {
		b.WriteString(", features=" + features.String())
	}
	if !f.outputPaths.IsEmpty() {
		b.WriteString(", output_paths=" + f.outputPaths.String())
	}
	b.WriteString(")")
	return b.String()
}
