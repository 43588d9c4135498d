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

package access

import (
	"fmt"
	"strconv"
	"strings"
)

// RootKind is the kind of a port.
type RootKind uint8

const (
	LeafKind                RootKind = iota // A LeafKind root is the callee port of a frame declared in a model
	ArgumentKind                            // An ArgumentKind root is a parameter of the method, the receiver is 0
	ReturnKind                              // A ReturnKind root is the return value
	CallEffectCallChainKind                 // A CallEffectCallChainKind root is the call chain reaching the call
	CallEffectIntentKind                    // A CallEffectIntentKind root is the intent sent by the call
	AnchorKind                              // An AnchorKind root is the callee port of a cross-repository template
	ProducerKind                            // A ProducerKind root is the callee port of a cross-repository producer
)

// A Root identifies a port of a method: an argument, the return value or a call-effect anchor. Leaf, Anchor and
// Producer roots only appear as callee ports of frames.
//
// Root is comparable and can be used as a map key. The zero Root is Leaf.
type Root struct {
	kind     RootKind
	position int
}

// Argument returns the root of the parameter at index i. For methods with a receiver, the receiver is argument 0.
func Argument(i int) Root { return Root{kind: ArgumentKind, position: i} }

// Receiver returns the root of the receiver of a method, which is its first argument.
func Receiver() Root { return Argument(0) }

// Return returns the root of the return value.
func Return() Root { return Root{kind: ReturnKind} }

// CallEffectCallChain returns the root of the call-chain call effect.
func CallEffectCallChain() Root { return Root{kind: CallEffectCallChainKind} }

// CallEffectIntent returns the root of the intent call effect.
func CallEffectIntent() Root { return Root{kind: CallEffectIntentKind} }

// Leaf returns the root used as callee port of declared frames.
func Leaf() Root { return Root{kind: LeafKind} }

// Anchor returns the anchor root.
func Anchor() Root { return Root{kind: AnchorKind} }

// Producer returns the producer root.
func Producer() Root { return Root{kind: ProducerKind} }

// Kind returns the kind of the root.
func (r Root) Kind() RootKind { return r.kind }

// IsArgument returns true if r is a method parameter.
func (r Root) IsArgument() bool { return r.kind == ArgumentKind }

// ParameterPosition returns the index of the parameter. Panics if the root is not an argument.
func (r Root) ParameterPosition() int {
	if r.kind != ArgumentKind {
		panic(fmt.Sprintf("access: root %s is not an argument", r))
	}
	return r.position
}

// IsReturn returns true if r is the return value.
func (r Root) IsReturn() bool { return r.kind == ReturnKind }

// IsCallEffect returns true for call-effect roots.
func (r Root) IsCallEffect() bool {
	return r.kind == CallEffectCallChainKind || r.kind == CallEffectIntentKind
}

// IsLeaf returns true for the leaf root.
func (r Root) IsLeaf() bool { return r.kind == LeafKind }

// IsAnchor returns true for the anchor root.
func (r Root) IsAnchor() bool { return r.kind == AnchorKind }

// IsProducer returns true for the producer root.
func (r Root) IsProducer() bool { return r.kind == ProducerKind }

// IsLeafPort returns true for the roots that terminate a trace: leaf, anchor and producer.
func (r Root) IsLeafPort() bool {
	return r.kind == LeafKind || r.kind == AnchorKind || r.kind == ProducerKind
}

// Less is a total order on roots: by kind, then by parameter position.
func (r Root) Less(other Root) bool {
	if r.kind != other.kind {
		return r.kind < other.kind
	}
	return r.position < other.position
}

func (r Root) String() string {
	switch r.kind {
	case ArgumentKind:
		return "Argument(" + strconv.Itoa(r.position) + ")"
	case ReturnKind:
		return "Return"
	case CallEffectCallChainKind:
		return "call-chain"
	case CallEffectIntentKind:
		return "call-intent"
	case LeafKind:
		return "Leaf"
	case AnchorKind:
		return "Anchor"
	case ProducerKind:
		return "Producer"
	default:
		return "unknown"
	}
}

// RootFromString parses a root. It is the inverse of Root.String.
func RootFromString(s string) (Root, error) {
	switch s {
	case "Return":
		return Return(), nil
	case "call-chain":
		return CallEffectCallChain(), nil
	case "call-intent":
		return CallEffectIntent(), nil
	case "Leaf":
		return Leaf(), nil
	case "Anchor":
		return Anchor(), nil
	case "Producer":
		return Producer(), nil
	}
	if inner, ok := strings.CutPrefix(s, "Argument("); ok {
		if digits, ok := strings.CutSuffix(inner, ")"); ok {
			n, err := strconv.Atoi(digits)
			if err == nil && n >= 0 {
				return Argument(n), nil
			}
		}
	}
	return Root{}, fmt.Errorf("invalid root %q", s)
}
