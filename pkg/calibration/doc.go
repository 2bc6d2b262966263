// Package calibration holds the battery level synthesis model:
//
//   - ChargeStatus and Transition: the enumerated charging states and the
//     pure transition function over (previous, current) pairs
//   - Action: what the daemon must do in the OS for a cycle
//   - State: the calibration state mutated once per poll cycle
//   - Status: a read-only view model exposed by the status API
//
// The types carry no I/O. The daemon package feeds readings in and turns
// Actions into shell commands.
package calibration
