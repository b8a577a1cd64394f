// Package harness replays scripted key events through the remap engine and
// records what a virtual keyboard would receive.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: layer1_arrow_release
//	description: "Layer1 turns J into Left until the layer is released"
//	alt_layout: false
//	events:
//	  - down CAPSLOCK
//	  - down J
//	  - up CAPSLOCK
//
// Each event is a key state (down, up or repeat) followed by a key name as
// accepted by key.Parse.
//
// # Trace Format
//
// Every processed event produces a line with the decision and the modifiers
// active afterwards, followed by indented lines for each emitted key action,
// forwarded events and executed effects:
//
//	down J: substitute(LEFT) [layer1]
//	  emit LEFT down
//	up CAPSLOCK: block []
//	  emit LEFT up
//	  run reset layer
//
// The last line reports the held keys of the engine and the keys left
// pressed on the virtual keyboard. Both are zero for a well-behaved run.
package harness
