// Package io reads state graphs and writes path covers as JSON.
//
// # State Graph Format
//
// A state graph lists states and the actions between them. The first state
// is the root every trail starts from:
//
//	{
//	  "states": [
//	    {"id": "init", "label": "x = 0"},
//	    {"id": "s1", "label": "x = 1"}
//	  ],
//	  "actions": [
//	    {"from": "init", "to": "s1", "name": "Inc"},
//	    {"from": "s1", "to": "init", "name": "Reset"}
//	  ],
//	  "depth": 2
//	}
//
// State ids are hashed with xxhash into the fingerprints the core uses, so
// ReadGraph rejects duplicate ids, fingerprint collisions and actions that
// name unknown states before anything reaches the flow network. The optional
// depth is the length of the longest trace seen during exploration and caps
// the heuristic optimizer.
//
// # Feeding
//
// [Feed] registers the root and then adds states and actions from several
// goroutines at once, the way an exploration engine does. The returned
// [Index] maps the ids assigned by the builder back to graph entries.
//
// # Trail Formats
//
// Covers are written either as JSON Lines, one trail per line as it is
// produced, or as a single document holding the run statistics and all
// trails. [ReadTrails] accepts both.
package io
