// Package host runs websg guest modules.
//
// It owns the wazero runtime, the scene graph guests manipulate, and the
// host function registry bound to the "websg" import module. LoadModule
// validates a guest's exports and layout version; the returned Instance
// drives the guest's initialize and update entry points, and Loop calls
// update on a fixed tick.
package host
