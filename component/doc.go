// Package component defines the lifecycle contract shared by rxkit's
// long-lived resources.
//
// Schedulers that own goroutines implement Component so that a binary can
// start them in order, stop them in reverse order with a drain deadline, and
// report their health. Registry drives that lifecycle.
//
//   - Component: Name/Start/Stop/Health
//   - Describable: optional one-line startup summary
package component
